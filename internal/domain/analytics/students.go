package analytics

import "time"

// Student is an enrolled learner inside one tenant. The creation timestamp is
// the origin for every time-to-first-activity window. Immutable from the
// scoring pipeline's perspective.
type Student struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
