package performance

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker records operation markers in a bounded ring buffer. Instances are
// created at startup and injected into services; once the buffer is full the
// oldest markers are overwritten.
type Tracker struct {
	mu       sync.RWMutex
	markers  []*Marker
	next     int
	size     int
	capacity int
	counter  atomic.Uint64
	logger   *slog.Logger
}

// NewTracker creates a tracker retaining at most capacity markers
func NewTracker(capacity int, logger *slog.Logger) *Tracker {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Tracker{
		markers:  make([]*Marker, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// StartOperation begins tracking a named operation for a tenant
func (t *Tracker) StartOperation(name, tenantID string) *Marker {
	seq := t.counter.Add(1)
	marker := &Marker{
		ID:        fmt.Sprintf("%s-%d", name, seq),
		Name:      name,
		TenantID:  tenantID,
		StartTime: time.Now().UTC(),
		Success:   true,
	}

	t.mu.Lock()
	t.markers[t.next] = marker
	t.next = (t.next + 1) % t.capacity
	if t.size < t.capacity {
		t.size++
	}
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Debug("Operation started",
			slog.String("operation", name),
			slog.String("tenantId", tenantID),
			slog.String("markerId", marker.ID),
		)
	}

	return marker
}

// RecentMarkers returns up to limit completed markers, newest first
func (t *Tracker) RecentMarkers(limit int) []*Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > t.size {
		limit = t.size
	}

	out := make([]*Marker, 0, limit)
	for i := 0; i < t.size && len(out) < limit; i++ {
		idx := (t.next - 1 - i + t.capacity) % t.capacity
		m := t.markers[idx]
		if m != nil && m.IsComplete() {
			out = append(out, m)
		}
	}
	return out
}

// Summary aggregates completed markers by operation name
func (t *Tracker) Summary() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make(map[string]OperationStats)
	for i := 0; i < t.size; i++ {
		m := t.markers[i]
		if m == nil || !m.IsComplete() {
			continue
		}
		s := stats[m.Name]
		s.Count++
		s.TotalDuration += m.Duration
		if !m.Success {
			s.Failures++
		}
		if m.Duration > s.MaxDuration {
			s.MaxDuration = m.Duration
		}
		stats[m.Name] = s
	}

	for name, s := range stats {
		if s.Count > 0 {
			s.AverageDuration = s.TotalDuration / time.Duration(s.Count)
			stats[name] = s
		}
	}
	return stats
}

// OperationStats is an aggregate over completed markers for one operation
type OperationStats struct {
	Count           int           `json:"count"`
	Failures        int           `json:"failures"`
	TotalDuration   time.Duration `json:"totalDuration"`
	AverageDuration time.Duration `json:"averageDuration"`
	MaxDuration     time.Duration `json:"maxDuration"`
}
