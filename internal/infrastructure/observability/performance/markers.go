// Package performance provides operation timing markers for profiling
// refresh cycles and request handling.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single operation timing marker
type Marker struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	TenantID  string                 `json:"tenantId"`
	StartTime time.Time              `json:"startTime"`
	EndTime   time.Time              `json:"endTime,omitempty"`
	Duration  time.Duration          `json:"duration,omitempty"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`

	mu       sync.Mutex
	complete bool
}

// Complete marks the operation as finished and records its duration.
// Safe to call more than once; only the first call takes effect.
func (m *Marker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.complete {
		return
	}
	m.EndTime = time.Now().UTC()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.complete = true
}

// SetSuccess records whether the operation succeeded
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Success = success
}

// SetError records a failure with its error message
func (m *Marker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Success = false
	if err != nil {
		m.Error = err.Error()
	}
}

// AddMetadata attaches a key-value pair to the marker
func (m *Marker) AddMetadata(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Metadata == nil {
		m.Metadata = make(map[string]interface{})
	}
	m.Metadata[key] = value
}

// IsComplete reports whether Complete has been called
func (m *Marker) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.complete
}
