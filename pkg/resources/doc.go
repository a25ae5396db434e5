// Package resources implements the typed, extensible resource algebra used
// throughout scheduling: an open map from resource kind name to a
// non-negative scalar quantity, with add/subtract/dominates/equal semantics
// that tolerate unknown kinds rather than erroring.
package resources
