package video

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameSink receives frames on the capture goroutine. The Mat is only valid
// for the duration of the call.
type FrameSink func(frame gocv.Mat)

// Stream is a live frame source with at most one attached sink
type Stream struct {
	name   string
	logger logrus.FieldLogger

	mu     sync.Mutex
	sink   FrameSink
	closed bool
}

func NewStream(name string, logger logrus.FieldLogger) *Stream {
	return &Stream{name: name, logger: logger}
}

func (s *Stream) Name() string { return s.name }

// Subscribe replaces the sink; nil detaches
func (s *Stream) Subscribe(sink FrameSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

func (s *Stream) publish(frame gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.sink == nil {
		return
	}
	s.sink(frame)
}

func (s *Stream) close() {
	s.mu.Lock()
	s.closed = true
	s.sink = nil
	s.mu.Unlock()
}
