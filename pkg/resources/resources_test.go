package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSubtract(t *testing.T) {
	r := Of(10, 50, 0)
	r = r.Add(Of(1, 2, 3))
	assert.True(t, r.Equal(Of(11, 52, 3)))

	r = r.Subtract(Of(1, 2, 3))
	assert.True(t, r.Equal(Of(10, 50, 0)))
}

func TestSubtractClampsAtZero(t *testing.T) {
	r := Of(1, 1, 1)
	r = r.Subtract(Of(5, 5, 5))
	assert.True(t, r.Equal(Of(0, 0, 0)))
}

func TestSubtractUnknownKindIsNoop(t *testing.T) {
	r := New(map[string]float64{CPUs: 4})
	r = r.Subtract(New(map[string]float64{Mem: 10}))
	assert.Equal(t, 4.0, r.Get(CPUs))
	assert.Equal(t, 0.0, r.Get(Mem))
	_, present := r.ToJSON()[Mem]
	assert.False(t, present)
}

func TestDominates(t *testing.T) {
	tests := []struct {
		name     string
		lhs      Resources
		rhs      Resources
		expected bool
	}{
		{"equal dominates", Of(1, 1, 1), Of(1, 1, 1), true},
		{"greater dominates", Of(2, 2, 2), Of(1, 1, 1), true},
		{"lesser does not dominate", Of(1, 1, 1), Of(2, 1, 1), false},
		{"absent kind treated as zero", New(map[string]float64{CPUs: 5}), New(map[string]float64{Mem: 0}), true},
		{"absent kind cannot be dominated", New(map[string]float64{}), New(map[string]float64{CPUs: 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.lhs.Dominates(tt.rhs))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Of(1, 2, 3).Equal(Of(1, 2, 3)))
	assert.False(t, Of(1, 2, 3).Equal(Of(1, 2, 4)))
	assert.True(t, New(map[string]float64{CPUs: 1}).Equal(New(map[string]float64{CPUs: 1, Mem: 0})))
}

func TestRemoveKind(t *testing.T) {
	r := Of(1, 2, 3).RemoveKind(Disk)
	assert.Equal(t, 0.0, r.Get(Disk))
	_, present := r.ToJSON()[Disk]
	assert.False(t, present)
}

func TestSignedSubtractCanGoNegative(t *testing.T) {
	diff := Of(1, 1, 1).SignedSubtract(Of(2, 1, 0))
	assert.Equal(t, -1.0, diff[CPUs])
	assert.Equal(t, 0.0, diff[Mem])
	assert.Equal(t, 1.0, diff[Disk])
}

func TestToJSONProjection(t *testing.T) {
	j := Of(1, 2, 0).ToJSON()
	assert.Equal(t, 1.0, j[CPUs])
	assert.Equal(t, 2.0, j[Mem])
	_, ok := j[Disk]
	assert.False(t, ok)
}
