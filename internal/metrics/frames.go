package metrics

import (
	"sync"
	"time"
)

// DefaultWindow is the span the frame rate is averaged over
const DefaultWindow = 2 * time.Second

// FrameStats counts frames for one pipeline instance. Safe for concurrent use.
type FrameStats struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	stamps  []time.Time
	frames  uint64
	dropped uint64
	latency time.Duration
	quality map[string]float64
}

// Stats is a point-in-time copy of FrameStats
type Stats struct {
	Frames      uint64
	Dropped     uint64
	FPS         float64
	MeanLatency time.Duration
	Quality     map[string]float64
}

func NewFrameStats(window time.Duration) *FrameStats {
	if window <= 0 {
		window = DefaultWindow
	}
	return &FrameStats{window: window, now: time.Now}
}

// FrameProcessed records a delivered frame and how long processing took
func (s *FrameStats) FrameProcessed(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.stamps = append(s.stamps, now)
	s.trim(now)

	s.frames++
	s.latency += latency
}

// FrameDropped records a frame discarded before reaching the surface
func (s *FrameStats) FrameDropped() {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
}

// SetQuality stores the latest sampled quality metrics
func (s *FrameStats) SetQuality(values map[string]float64) {
	s.mu.Lock()
	s.quality = values
	s.mu.Unlock()
}

func (s *FrameStats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trim(s.now())
	st := Stats{Frames: s.frames, Dropped: s.dropped}
	if s.frames > 0 {
		st.MeanLatency = s.latency / time.Duration(s.frames)
	}
	if len(s.stamps) > 1 {
		span := s.stamps[len(s.stamps)-1].Sub(s.stamps[0])
		if span > 0 {
			st.FPS = float64(len(s.stamps)-1) / span.Seconds()
		}
	}
	if s.quality != nil {
		st.Quality = make(map[string]float64, len(s.quality))
		for k, v := range s.quality {
			st.Quality[k] = v
		}
	}
	return st
}

func (s *FrameStats) trim(now time.Time) {
	cut := 0
	for cut < len(s.stamps) && now.Sub(s.stamps[cut]) > s.window {
		cut++
	}
	s.stamps = s.stamps[cut:]
}
