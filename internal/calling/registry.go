package calling

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry maps call ids to incident details. With a zero TTL entries
// live for the process lifetime; a positive TTL enables expiry for
// long-running deployments.
type Registry struct {
	entries *cache.Cache
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		return &Registry{entries: cache.New(cache.NoExpiration, 0)}
	}
	return &Registry{entries: cache.New(ttl, 2*ttl)}
}

func (r *Registry) Set(callID string, details IncidentDetails) {
	r.entries.SetDefault(callID, details)
}

// Get returns the incident for a call id. A miss is a valid
// "no incident" answer, not an error.
func (r *Registry) Get(callID string) (IncidentDetails, bool) {
	v, ok := r.entries.Get(callID)
	if !ok {
		return IncidentDetails{}, false
	}
	return v.(IncidentDetails), true
}
