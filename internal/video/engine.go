package video

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-hair-tint/internal/effects"
	"live-hair-tint/internal/metrics"
	"live-hair-tint/internal/pipeline"
)

// defaultQualityEvery is how often, in frames, quality metrics are sampled
const defaultQualityEvery = 90

// Engine tints frames with an effect definition and presents them on the
// bound surface
type Engine struct {
	spec      pipeline.EngineSpec
	effect    effects.Definition
	stats     *metrics.FrameStats
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger

	mu           sync.Mutex
	output       pipeline.SurfaceHandle
	flipY        bool
	closed       bool
	tint         gocv.Mat
	frames       uint64
	qualityEvery uint64
}

func NewEngine(spec pipeline.EngineSpec, effect effects.Definition, stats *metrics.FrameStats, logger logrus.FieldLogger) *Engine {
	return &Engine{
		spec:      spec,
		effect:    effect,
		stats:     stats,
		evaluator: metrics.NewEvaluator(),
		logger:    logger,
		tint:      gocv.NewMat(),

		qualityEvery: defaultQualityEvery,
	}
}

func (e *Engine) SetOutputSurface(handle pipeline.SurfaceHandle) {
	e.mu.Lock()
	e.output = handle
	e.mu.Unlock()
}

// SetFlipY restores upright orientation of bottom-up input on output
func (e *Engine) SetFlipY(flip bool) {
	e.mu.Lock()
	e.flipY = flip
	e.mu.Unlock()
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.output = nil
	return e.tint.Close()
}

// Stats is the engine's frame statistics
func (e *Engine) Stats() *metrics.FrameStats { return e.stats }

// Process runs on the exec goroutine
func (e *Engine) Process(frame gocv.Mat, capturedAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.output == nil {
		e.stats.FrameDropped()
		return
	}

	out := gocv.NewMat()
	defer out.Close()

	if err := e.apply(frame, &out); err != nil {
		e.logger.WithError(err).Debug("VIDEO: effect failed")
		e.stats.FrameDropped()
		return
	}

	// Sampled while out still shares frame's orientation
	e.frames++
	if e.qualityEvery > 0 && e.frames%e.qualityEvery == 0 {
		e.sampleQuality(frame, out)
	}

	if e.flipY {
		gocv.Flip(out, &out, flipUpDown)
	}

	img, err := out.ToImage()
	if err != nil {
		e.stats.FrameDropped()
		return
	}
	e.output.Present(img)
	e.stats.FrameProcessed(time.Since(capturedAt))
}

func (e *Engine) apply(frame gocv.Mat, out *gocv.Mat) error {
	if e.tint.Empty() || e.tint.Rows() != frame.Rows() || e.tint.Cols() != frame.Cols() || e.tint.Type() != frame.Type() {
		e.tint.Close()
		c := e.effect.Color
		e.tint = gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
			frame.Rows(), frame.Cols(), frame.Type())
	}

	s := e.effect.Strength
	switch e.effect.Mode {
	case effects.ModeLuma:
		gray := gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray); err != nil {
			return err
		}
		gray3 := gocv.NewMat()
		defer gray3.Close()
		if err := gocv.CvtColor(gray, &gray3, gocv.ColorGrayToBGR); err != nil {
			return err
		}
		shaded := gocv.NewMat()
		defer shaded.Close()
		if err := gocv.MultiplyWithParams(gray3, e.tint, &shaded, 1.0/255, -1); err != nil {
			return err
		}
		return gocv.AddWeighted(frame, 1-s, shaded, s, 0, out)
	default:
		return gocv.AddWeighted(frame, 1-s, e.tint, s, 0, out)
	}
}

func (e *Engine) sampleQuality(original, processed gocv.Mat) {
	values := e.evaluator.CalculateAll(original, processed)
	e.stats.SetQuality(values)
	e.logger.WithFields(logrus.Fields{
		"config":  e.spec.Config,
		"quality": values,
	}).Debug("VIDEO: quality sample")
}
