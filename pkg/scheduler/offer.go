package scheduler

import (
	"time"

	"github.com/cuemby/warren/pkg/resources"
)

// Offer is a grant of resources on a specific agent, issued by the cluster
// framework for a single scheduling tick. A node may receive more than one
// offer per tick; AddAllocatedOffers sums them before deciding what the
// node can keep.
type Offer struct {
	ID          string
	AgentID     string
	FrameworkID string
	Resources   resources.Resources
	CreatedAt   time.Time
}

// NewOffer creates an Offer.
func NewOffer(id, agentID, frameworkID string, res resources.Resources, createdAt time.Time) Offer {
	return Offer{ID: id, AgentID: agentID, FrameworkID: frameworkID, Resources: res, CreatedAt: createdAt}
}

func sumOffers(offers []Offer) resources.Resources {
	total := resources.Resources{}
	for _, o := range offers {
		total = total.Add(o.Resources)
	}
	return total
}
