// Package video adapts OpenCV capture and processing to the pipeline contracts.
package video

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"live-hair-tint/internal/effects"
	"live-hair-tint/internal/metrics"
	"live-hair-tint/internal/pipeline"
)

// Factory builds per-instance resources for the coordinator
type Factory struct {
	library     *effects.Library
	logger      logrus.FieldLogger
	statsWindow time.Duration
	execDepth   int

	current atomic.Pointer[metrics.FrameStats]
}

func NewFactory(library *effects.Library, logger logrus.FieldLogger) *Factory {
	return &Factory{
		library:     library,
		logger:      logger.WithField("component", "video"),
		statsWindow: metrics.DefaultWindow,
		execDepth:   defaultExecDepth,
	}
}

func (f *Factory) NewContext() (pipeline.ExecContext, error) {
	return NewExec(f.execDepth, f.logger), nil
}

// NewEngine loads the effect definition for spec.Config
func (f *Factory) NewEngine(ctx pipeline.ExecContext, spec pipeline.EngineSpec) (pipeline.ProcessingEngine, error) {
	exec, ok := ctx.(*Exec)
	if !ok {
		return nil, errors.Errorf("unsupported exec context %T", ctx)
	}

	def, err := f.library.Load(string(spec.Config))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load effect %s", spec.Config)
	}

	stats := metrics.NewFrameStats(f.statsWindow)
	f.current.Store(stats)

	logger := f.logger.WithFields(logrus.Fields{
		"exec":     exec.ID(),
		"config":   spec.Config,
		"input":    spec.InputStream,
		"output":   spec.OutputStream,
		"strength": def.Strength,
		"mode":     def.Mode,
	})
	logger.Info("VIDEO: engine created")

	return NewEngine(spec, def, stats, logger), nil
}

func (f *Factory) NewConverter(ctx pipeline.ExecContext) (pipeline.TextureConverter, error) {
	exec, ok := ctx.(*Exec)
	if !ok {
		return nil, errors.Errorf("unsupported exec context %T", ctx)
	}
	return NewConverter(exec, metrics.NewFrameStats(f.statsWindow), f.logger.WithField("exec", exec.ID())), nil
}

// Stats reports the most recently built engine's statistics
func (f *Factory) Stats() (metrics.Stats, bool) {
	stats := f.current.Load()
	if stats == nil {
		return metrics.Stats{}, false
	}
	return stats.Snapshot(), true
}
