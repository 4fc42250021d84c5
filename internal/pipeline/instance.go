package pipeline

import (
	"errors"
	"fmt"
)

// instance is the live (engine, converter, surface) set for one configuration.
// Only the coordinator loop touches it.
type instance struct {
	gen    uint64
	id     string
	config ConfigID

	surface   RenderSurface
	exec      ExecContext
	engine    ProcessingEngine
	converter TextureConverter

	displaySize     Size
	source          FrameSource
	cameraRequested bool
	cameraBound     bool
	outputBound     bool

	converterReleased bool
	released          bool
}

// releaseConverter frees the converter's resources, leaving engine and
// camera binding allocated
func (i *instance) releaseConverter() error {
	if i.converter == nil || i.converterReleased {
		return nil
	}
	i.converterReleased = true
	if err := i.converter.Release(); err != nil {
		return fmt.Errorf("release converter: %w", err)
	}
	return nil
}

// release stops the camera binding and frees converter, engine and context
// in reverse construction order. Safe to call more than once.
func (i *instance) release(camera CameraHelper) error {
	if i.released {
		return nil
	}
	i.released = true

	var errs []error
	if i.cameraBound {
		i.cameraBound = false
		if err := camera.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop camera: %w", err))
		}
	}
	i.source = nil

	if err := i.releaseConverter(); err != nil {
		errs = append(errs, err)
	}

	if i.engine != nil {
		if i.outputBound {
			i.engine.SetOutputSurface(nil)
			i.outputBound = false
		}
		if err := i.engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close engine: %w", err))
		}
	}

	if i.exec != nil {
		if err := i.exec.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release context: %w", err))
		}
	}

	return errors.Join(errs...)
}
