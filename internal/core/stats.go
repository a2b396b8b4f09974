// Processing statistics and performance monitoring
package core

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/algorithms"
)

const recentOperationLimit = 20

// UnknownFilter buckets operations whose identifier names no filter.
const UnknownFilter = "unknown"

// Operation records one completed or failed processing call.
type Operation struct {
	Timestamp time.Time     `json:"timestamp"`
	Filter    string        `json:"filter"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// FilterStats aggregates operations for one filter.
type FilterStats struct {
	Count     int           `json:"count"`
	Failures  int           `json:"failures"`
	Total     time.Duration `json:"-"`
	AverageMS float64       `json:"average_ms"`
}

// Stats tracks processing outcomes. It is safe for concurrent use.
type Stats struct {
	mu        sync.Mutex
	logger    logrus.FieldLogger
	started   time.Time
	total     int
	failures  int
	perFilter map[string]*FilterStats
	recent    []Operation
}

func NewStats(logger logrus.FieldLogger) *Stats {
	return &Stats{
		logger:    logger,
		started:   time.Now(),
		perFilter: make(map[string]*FilterStats),
		recent:    make([]Operation, 0, recentOperationLimit),
	}
}

// Record adds one operation. A nil err counts as success.
func (s *Stats) Record(filter string, duration time.Duration, err error) {
	op := Operation{
		Timestamp: time.Now(),
		Filter:    filter,
		Success:   err == nil,
		Duration:  duration,
	}
	if err != nil {
		op.Error = err.Error()
	}

	s.mu.Lock()
	s.total++
	fs, ok := s.perFilter[filter]
	if !ok {
		fs = &FilterStats{}
		s.perFilter[filter] = fs
	}
	fs.Count++
	fs.Total += duration
	if err != nil {
		s.failures++
		fs.Failures++
	}
	if len(s.recent) == recentOperationLimit {
		copy(s.recent, s.recent[1:])
		s.recent = s.recent[:recentOperationLimit-1]
	}
	s.recent = append(s.recent, op)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"filter":      filter,
		"success":     op.Success,
		"duration_ms": duration.Milliseconds(),
	}).Debug("STATS: Operation recorded")
}

// statsKey maps a caller supplied identifier to a bounded set of names:
// canonical filter identifiers plus UnknownFilter.
func statsKey(filterID string) string {
	if kind, err := algorithms.ParseKind(filterID); err == nil {
		return kind.String()
	}
	return UnknownFilter
}

// Snapshot is a point in time copy of the statistics.
type Snapshot struct {
	UptimeSeconds float64                `json:"uptime_seconds"`
	Total         int                    `json:"total_operations"`
	Failures      int                    `json:"failures"`
	SuccessRate   float64                `json:"success_rate"`
	Filters       map[string]FilterStats `json:"filters"`
	Recent        []Operation            `json:"recent"`
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Total:         s.total,
		Failures:      s.failures,
		SuccessRate:   1,
		Filters:       make(map[string]FilterStats, len(s.perFilter)),
		Recent:        append([]Operation(nil), s.recent...),
	}
	if s.total > 0 {
		snap.SuccessRate = float64(s.total-s.failures) / float64(s.total)
	}
	for name, fs := range s.perFilter {
		c := *fs
		if c.Count > 0 {
			c.AverageMS = float64(c.Total.Microseconds()) / float64(c.Count) / 1000
		}
		snap.Filters[name] = c
	}
	return snap
}
