package video

import (
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-hair-tint/internal/metrics"
	"live-hair-tint/internal/pipeline"
)

// FrameConsumer processes converted frames on the exec goroutine
type FrameConsumer interface {
	Process(frame gocv.Mat, capturedAt time.Time)
}

// Converter scales stream frames to the display size and hands them to the
// engine on the exec goroutine
type Converter struct {
	exec   *Exec
	stats  *metrics.FrameStats
	logger logrus.FieldLogger

	mu       sync.Mutex
	stream   *Stream
	size     image.Point
	flipY    bool
	consumer FrameConsumer
	released bool
}

func NewConverter(exec *Exec, stats *metrics.FrameStats, logger logrus.FieldLogger) *Converter {
	return &Converter{exec: exec, stats: stats, logger: logger}
}

// Attach subscribes to source, detaching from any previous one
func (c *Converter) Attach(source pipeline.FrameSource, width, height int) error {
	stream, ok := source.(*Stream)
	if !ok {
		return errors.Errorf("unsupported frame source %T", source)
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("invalid attach size %dx%d", width, height)
	}

	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return errors.New("converter released")
	}
	previous := c.stream
	c.stream = stream
	c.size = image.Point{X: width, Y: height}
	c.mu.Unlock()

	if previous != nil && previous != stream {
		previous.Subscribe(nil)
	}
	stream.Subscribe(c.onFrame)

	c.logger.WithFields(logrus.Fields{
		"source": stream.Name(),
		"width":  width,
		"height": height,
	}).Debug("VIDEO: converter attached")
	return nil
}

func (c *Converter) SetFlipY(flip bool) {
	c.mu.Lock()
	c.flipY = flip
	c.mu.Unlock()
}

// SetConsumer accepts engines that implement FrameConsumer. Drops are
// counted against the engine's statistics when it exposes them.
func (c *Converter) SetConsumer(engine pipeline.ProcessingEngine) {
	consumer, _ := engine.(FrameConsumer)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumer = consumer
	if s, ok := engine.(interface{ Stats() *metrics.FrameStats }); ok {
		c.stats = s.Stats()
	}
}

// Release detaches from the stream. Frames arriving afterwards are ignored.
func (c *Converter) Release() error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	c.released = true
	stream := c.stream
	c.stream = nil
	c.consumer = nil
	c.mu.Unlock()

	if stream != nil {
		stream.Subscribe(nil)
	}
	return nil
}

func (c *Converter) onFrame(frame gocv.Mat) {
	captured := time.Now()

	c.mu.Lock()
	released, consumer, size, flip, stats := c.released, c.consumer, c.size, c.flipY, c.stats
	c.mu.Unlock()

	if released || consumer == nil || frame.Empty() {
		return
	}

	out := gocv.NewMat()
	if err := gocv.Resize(frame, &out, size, 0, 0, gocv.InterpolationLinear); err != nil {
		out.Close()
		stats.FrameDropped()
		return
	}
	// frames travel bottom-up between converter and engine
	if flip {
		gocv.Flip(out, &out, flipUpDown)
	}

	accepted := c.exec.Submit(
		func() {
			defer out.Close()
			consumer.Process(out, captured)
		},
		func() { out.Close() },
	)
	if !accepted {
		out.Close()
		stats.FrameDropped()
	}
}
