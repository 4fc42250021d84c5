// Collaborator contracts for the capture -> convert -> process -> render pipeline
package pipeline

import (
	"image"
)

// ConfigID selects the processing behavior the engine runs (one per gallery entry)
type ConfigID string

// Facing is the requested camera direction
type Facing string

const (
	FacingFront Facing = "front"
	FacingBack  Facing = "back"
)

// Size is a width/height pair in pixels
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is degenerate
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// SurfaceHandle is the drawable side of a RenderSurface that an engine renders into
type SurfaceHandle interface {
	Present(frame image.Image)
}

// FrameSource is a live camera capture stream usable by a TextureConverter
type FrameSource interface {
	Name() string
}

// PermissionGate asks the host whether camera access is granted.
// Request delivers its result asynchronously, possibly on another goroutine.
type PermissionGate interface {
	IsGranted() bool
	Request(onResult func(granted bool))
}

// CameraStartedFunc receives the frame source once the camera is live
type CameraStartedFunc func(source FrameSource, err error)

// CameraHelper starts and stops capture for a facing direction
type CameraHelper interface {
	// Start requests capture; onStarted fires later on a capture goroutine
	Start(facing Facing, onStarted CameraStartedFunc) error

	// ComputeDisplaySize derives the render size from the view size
	ComputeDisplaySize(view Size) Size

	// Stop ends the active capture session and cancels a pending start
	Stop() error
}

// SurfaceListener receives RenderSurface lifecycle events
type SurfaceListener interface {
	OnCreated(handle SurfaceHandle)
	OnResized(handle SurfaceHandle, width, height int)
	OnDestroyed(handle SurfaceHandle)
}

// RenderSurface is a drawable surface owned by the view hierarchy
type RenderSurface interface {
	Handle() SurfaceHandle
	SetVisible(visible bool)
}

// ExecContext is the execution context converter and engine share
type ExecContext interface {
	Release() error
}

// EngineSpec binds an engine to its configuration and stream names
type EngineSpec struct {
	Config       ConfigID
	InputStream  string
	OutputStream string
}

// ProcessingEngine consumes converted frames and renders into a surface
type ProcessingEngine interface {
	// SetOutputSurface binds the output; nil unbinds it
	SetOutputSurface(handle SurfaceHandle)
	SetFlipY(flip bool)
	Close() error
}

// TextureConverter adapts a raw frame source into frames for the engine
type TextureConverter interface {
	Attach(source FrameSource, width, height int) error
	SetFlipY(flip bool)
	SetConsumer(engine ProcessingEngine)
	Release() error
}

// Factory constructs the per-instance resources
type Factory interface {
	NewContext() (ExecContext, error)
	NewEngine(ctx ExecContext, spec EngineSpec) (ProcessingEngine, error)
	NewConverter(ctx ExecContext) (TextureConverter, error)
}

// View hosts render surfaces and user notices. Methods are only called
// through the Dispatcher.
type View interface {
	NewSurface(listener SurfaceListener) RenderSurface
	InstallSurface(surface RenderSurface)
	ShowNotice(title, message string)
}

// Dispatcher marshals work onto the UI-owning thread
type Dispatcher interface {
	Do(fn func())
	DoAndWait(fn func())
}
