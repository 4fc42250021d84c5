// Camera capture through OpenCV
package video

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-hair-tint/internal/pipeline"
)

const (
	flipUpDown    = 0
	flipLeftRight = 1

	readRetryDelay  = 10 * time.Millisecond
	maxReadFailures = 200
)

// CameraOptions selects the capture device per facing and the requested format
type CameraOptions struct {
	FrontDevice int
	BackDevice  int
	Width       int
	Height      int
	FPS         int
}

// Camera implements pipeline.CameraHelper on gocv.VideoCapture. One
// session is live at a time.
type Camera struct {
	opts   CameraOptions
	logger logrus.FieldLogger

	mu      sync.Mutex
	session *session
	frame   pipeline.Size
}

type session struct {
	device   int
	mirror   bool
	canceled atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

func NewCamera(opts CameraOptions, logger logrus.FieldLogger) *Camera {
	return &Camera{
		opts:   opts,
		logger: logger.WithField("component", "camera"),
		frame:  pipeline.Size{Width: opts.Width, Height: opts.Height},
	}
}

// Start opens the device for facing on a new goroutine. onStarted is
// called from that goroutine unless Stop runs first.
func (c *Camera) Start(facing pipeline.Facing, onStarted pipeline.CameraStartedFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return fmt.Errorf("camera already started on device %d", c.session.device)
	}

	device := c.opts.FrontDevice
	if facing == pipeline.FacingBack {
		device = c.opts.BackDevice
	}

	s := &session{
		device: device,
		mirror: facing == pipeline.FacingFront,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	c.session = s

	c.logger.WithFields(logrus.Fields{
		"device": device,
		"facing": facing,
	}).Info("CAMERA: starting capture")

	go c.run(s, onStarted)
	return nil
}

// ComputeDisplaySize covers view with the capture aspect ratio
func (c *Camera) ComputeDisplaySize(view pipeline.Size) pipeline.Size {
	c.mu.Lock()
	frame := c.frame
	c.mu.Unlock()
	return pipeline.FitDisplaySize(frame, view)
}

// Stop ends the session and waits for the capture goroutine to exit
func (c *Camera) Stop() error {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}

	s.canceled.Store(true)
	close(s.stop)
	<-s.done

	c.logger.WithField("device", s.device).Info("CAMERA: capture stopped")
	return nil
}

func (c *Camera) run(s *session, onStarted pipeline.CameraStartedFunc) {
	defer close(s.done)

	capture, err := gocv.OpenVideoCapture(s.device)
	if err != nil {
		if !s.canceled.Load() {
			onStarted(nil, errors.Wrapf(err, "failed to open capture device %d", s.device))
		}
		return
	}
	defer capture.Close()

	if c.opts.Width > 0 && c.opts.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	}
	if c.opts.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))
	}

	frame := pipeline.Size{
		Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}
	if !frame.Empty() {
		c.mu.Lock()
		c.frame = frame
		c.mu.Unlock()
	}

	if s.canceled.Load() {
		return
	}

	stream := NewStream(fmt.Sprintf("camera:%d", s.device), c.logger)
	onStarted(stream, nil)

	buf := gocv.NewMat()
	defer buf.Close()
	failures := readFailures{limit: maxReadFailures}

	for {
		select {
		case <-s.stop:
			stream.close()
			return
		default:
		}

		if ok := capture.Read(&buf); !ok || buf.Empty() {
			if failures.fail() {
				c.logger.WithFields(logrus.Fields{
					"device":   s.device,
					"failures": failures.count,
				}).Error("CAMERA: capture reads keep failing, ending session")
				stream.close()
				return
			}
			select {
			case <-s.stop:
				stream.close()
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}
		failures.reset()
		if s.mirror {
			gocv.Flip(buf, &buf, flipLeftRight)
		}
		stream.publish(buf)
	}
}

// readFailures counts consecutive failed reads
type readFailures struct {
	count int
	limit int
}

// fail records a failed read and reports whether the limit is reached
func (r *readFailures) fail() bool {
	r.count++
	return r.count >= r.limit
}

func (r *readFailures) reset() { r.count = 0 }
