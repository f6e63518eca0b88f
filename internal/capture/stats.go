// ===== internal/capture/stats.go =====
package capture

import (
	"sync"

	"wifigaze/internal/frame"
	"wifigaze/pkg/models"
	"wifigaze/pkg/utils"
)

// Stats counts what one interface's pipeline did with its lines.
type Stats struct {
	mu         sync.Mutex
	lines      uint64
	duplicates uint64
	malformed  uint64
	forwarded  uint64
	suppressed map[string]uint64
	byChannel  map[int]uint64
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{
		suppressed: make(map[string]uint64),
		byChannel:  make(map[int]uint64),
	}
}

func (s *Stats) line() {
	s.mu.Lock()
	s.lines++
	s.mu.Unlock()
}

func (s *Stats) duplicate() {
	s.mu.Lock()
	s.duplicates++
	s.mu.Unlock()
}

func (s *Stats) malformedLine() {
	s.mu.Lock()
	s.malformed++
	s.mu.Unlock()
}

func (s *Stats) record(line frame.Line, v frame.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !v.Forward {
		s.suppressed[v.Reason]++
		return
	}
	s.forwarded++
	if freq, ok := utils.ParseFrequency(line.Frequency); ok {
		s.byChannel[utils.FrequencyToChannel(freq)]++
	}
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() models.CaptureCounters {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.CaptureCounters{
		Lines:      s.lines,
		Duplicates: s.duplicates,
		Malformed:  s.malformed,
		Forwarded:  s.forwarded,
		Suppressed: make(map[string]uint64, len(s.suppressed)),
		ByChannel:  make(map[int]uint64, len(s.byChannel)),
	}
	for reason, n := range s.suppressed {
		out.Suppressed[reason] = n
	}
	for ch, n := range s.byChannel {
		out.ByChannel[ch] = n
	}
	return out
}
