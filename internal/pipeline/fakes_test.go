package pipeline

import (
	"errors"
	"fmt"
	"image"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testConfigs = []ConfigID{"0000FF", "58C9B9", "DF405A", "F0F8FF"}

// recorder keeps the order in which collaborators were driven
type recorder struct {
	ops []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) reset() { r.ops = nil }

type fakePermission struct {
	granted  bool
	requests int
	pending  []func(bool)
}

func (p *fakePermission) IsGranted() bool { return p.granted }

func (p *fakePermission) Request(onResult func(bool)) {
	p.requests++
	p.pending = append(p.pending, onResult)
}

// answer resolves every outstanding request
func (p *fakePermission) answer(granted bool) {
	p.granted = granted
	pending := p.pending
	p.pending = nil
	for _, fn := range pending {
		fn(granted)
	}
}

type fakeSource struct{ name string }

func (s *fakeSource) Name() string { return s.name }

type fakeCamera struct {
	rec      *recorder
	frame    Size
	starts   int
	stops    int
	startErr error
	pending  []CameraStartedFunc
}

func (c *fakeCamera) Start(facing Facing, onStarted CameraStartedFunc) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.starts++
	c.rec.add("camera.start(%s)", facing)
	c.pending = append(c.pending, onStarted)
	return nil
}

func (c *fakeCamera) ComputeDisplaySize(view Size) Size {
	return FitDisplaySize(c.frame, view)
}

func (c *fakeCamera) Stop() error {
	c.stops++
	c.rec.add("camera.stop")
	return nil
}

// bindings is the number of camera sessions started and not stopped
func (c *fakeCamera) bindings() int { return c.starts - c.stops }

// deliver fires the i-th pending camera-started callback
func (c *fakeCamera) deliver(i int, source FrameSource, err error) {
	c.pending[i](source, err)
}

type fakeExec struct {
	rec      *recorder
	released int
}

func (e *fakeExec) Release() error {
	e.released++
	e.rec.add("context.release")
	return nil
}

type fakeEngine struct {
	rec    *recorder
	spec   EngineSpec
	flip   bool
	output SurfaceHandle
	closed int
}

func (e *fakeEngine) SetOutputSurface(handle SurfaceHandle) {
	e.output = handle
	if handle == nil {
		e.rec.add("engine.output(nil)")
		return
	}
	e.rec.add("engine.output")
}

func (e *fakeEngine) SetFlipY(flip bool) {
	e.flip = flip
	e.rec.add("engine.flip(%t)", flip)
}

func (e *fakeEngine) Close() error {
	e.closed++
	e.rec.add("engine.close")
	return nil
}

type attachCall struct {
	source FrameSource
	size   Size
}

type fakeConverter struct {
	rec      *recorder
	flip     bool
	consumer ProcessingEngine
	attaches []attachCall
	released int
}

func (c *fakeConverter) Attach(source FrameSource, width, height int) error {
	c.attaches = append(c.attaches, attachCall{source: source, size: Size{Width: width, Height: height}})
	c.rec.add("converter.attach(%dx%d)", width, height)
	return nil
}

func (c *fakeConverter) SetFlipY(flip bool) {
	c.flip = flip
	c.rec.add("converter.flip(%t)", flip)
}

func (c *fakeConverter) SetConsumer(engine ProcessingEngine) {
	c.consumer = engine
	c.rec.add("converter.consumer")
}

func (c *fakeConverter) Release() error {
	c.released++
	c.rec.add("converter.release")
	return nil
}

type fakeFactory struct {
	rec           *recorder
	contexts      []*fakeExec
	engines       []*fakeEngine
	converters    []*fakeConverter
	failContext   bool
	failEngine    bool
	failConverter bool
}

func (f *fakeFactory) NewContext() (ExecContext, error) {
	if f.failContext {
		return nil, errors.New("no context")
	}
	e := &fakeExec{rec: f.rec}
	f.contexts = append(f.contexts, e)
	f.rec.add("context.new")
	return e, nil
}

func (f *fakeFactory) NewEngine(ctx ExecContext, spec EngineSpec) (ProcessingEngine, error) {
	if f.failEngine {
		return nil, errors.New("bad graph")
	}
	e := &fakeEngine{rec: f.rec, spec: spec}
	f.engines = append(f.engines, e)
	f.rec.add("engine.new(%s)", spec.Config)
	return e, nil
}

func (f *fakeFactory) NewConverter(ctx ExecContext) (TextureConverter, error) {
	if f.failConverter {
		return nil, errors.New("no texture")
	}
	c := &fakeConverter{rec: f.rec}
	f.converters = append(f.converters, c)
	f.rec.add("converter.new")
	return c, nil
}

func (f *fakeFactory) liveEngines() []*fakeEngine {
	var live []*fakeEngine
	for _, e := range f.engines {
		if e.closed == 0 {
			live = append(live, e)
		}
	}
	return live
}

func (f *fakeFactory) liveConverters() []*fakeConverter {
	var live []*fakeConverter
	for _, c := range f.converters {
		if c.released == 0 {
			live = append(live, c)
		}
	}
	return live
}

func (f *fakeFactory) liveContexts() int {
	n := 0
	for _, e := range f.contexts {
		if e.released == 0 {
			n++
		}
	}
	return n
}

func (f *fakeFactory) lastEngine() *fakeEngine       { return f.engines[len(f.engines)-1] }
func (f *fakeFactory) lastConverter() *fakeConverter { return f.converters[len(f.converters)-1] }

type fakeHandle struct{ frames int }

func (h *fakeHandle) Present(image.Image) { h.frames++ }

type fakeSurface struct {
	rec      *recorder
	listener SurfaceListener
	handle   *fakeHandle
	visible  bool
}

func (s *fakeSurface) Handle() SurfaceHandle { return s.handle }

func (s *fakeSurface) SetVisible(visible bool) {
	s.visible = visible
	s.rec.add("surface.visible(%t)", visible)
}

func (s *fakeSurface) created()         { s.listener.OnCreated(s.handle) }
func (s *fakeSurface) resized(w, h int) { s.listener.OnResized(s.handle, w, h) }
func (s *fakeSurface) destroyed()       { s.listener.OnDestroyed(s.handle) }

type fakeView struct {
	rec       *recorder
	surfaces  []*fakeSurface
	installed *fakeSurface
	notices   []string
}

func (v *fakeView) NewSurface(listener SurfaceListener) RenderSurface {
	s := &fakeSurface{rec: v.rec, listener: listener, handle: &fakeHandle{}}
	v.surfaces = append(v.surfaces, s)
	v.rec.add("surface.new")
	return s
}

func (v *fakeView) InstallSurface(surface RenderSurface) {
	v.installed = surface.(*fakeSurface)
	v.rec.add("surface.install")
}

func (v *fakeView) ShowNotice(title, message string) {
	v.notices = append(v.notices, title+": "+message)
}

func (v *fakeView) lastSurface() *fakeSurface { return v.surfaces[len(v.surfaces)-1] }

type syncDispatcher struct{}

func (syncDispatcher) Do(fn func())        { fn() }
func (syncDispatcher) DoAndWait(fn func()) { fn() }

// harness wires a coordinator to fakes; events are processed by drain
type harness struct {
	t          *testing.T
	c          *Coordinator
	rec        *recorder
	permission *fakePermission
	camera     *fakeCamera
	factory    *fakeFactory
	view       *fakeView
	hook       *test.Hook
}

func newHarness(t *testing.T, granted bool) *harness {
	t.Helper()

	rec := &recorder{}
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)

	h := &harness{
		t:          t,
		rec:        rec,
		permission: &fakePermission{granted: granted},
		camera:     &fakeCamera{rec: rec, frame: Size{Width: 640, Height: 480}},
		factory:    &fakeFactory{rec: rec},
		view:       &fakeView{rec: rec},
		hook:       hook,
	}

	c, err := New(Deps{
		Permission: h.permission,
		Camera:     h.camera,
		Factory:    h.factory,
		View:       h.view,
		Dispatcher: syncDispatcher{},
		Logger:     logger,
	}, Options{
		Configs: testConfigs,
		Facing:  FacingFront,
		FlipY:   true,
	})
	require.NoError(t, err)
	h.c = c
	return h
}

// drain processes queued events on the calling goroutine
func (h *harness) drain() {
	for {
		ev, ok := h.c.events.pop()
		if !ok {
			return
		}
		h.c.handle(ev)
	}
}

func (h *harness) state() State { return h.c.Snapshot().State }

// activate walks the current surface through created, resized and camera start
func (h *harness) activate(w, height int) {
	h.t.Helper()
	surface := h.view.lastSurface()
	surface.created()
	surface.resized(w, height)
	h.drain()
	require.NotEmpty(h.t, h.camera.pending, "camera start was not requested")
	h.camera.deliver(len(h.camera.pending)-1, &fakeSource{name: "front"}, nil)
	h.drain()
}
