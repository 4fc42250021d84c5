// internal/pipeline/coordinator.go
// Pipeline lifecycle coordinator: a single-goroutine state machine fed by a
// generation-tagged event queue
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInputStream  = "input_video"
	DefaultOutputStream = "output_video"
	defaultQueueSize    = 64
)

// Options configures a Coordinator
type Options struct {
	Configs      []ConfigID
	Initial      int
	Facing       Facing
	FlipY        bool
	InputStream  string
	OutputStream string
	QueueSize    int // initial event queue capacity; the queue grows past it
}

// Deps are the collaborators the coordinator drives
type Deps struct {
	Permission PermissionGate
	Camera     CameraHelper
	Factory    Factory
	View       View
	Dispatcher Dispatcher
	Logger     logrus.FieldLogger
}

// Coordinator owns the pipeline instance and sequences its rebuilds.
// Public methods only enqueue events; Run processes them in order.
type Coordinator struct {
	permission PermissionGate
	camera     CameraHelper
	factory    Factory
	view       View
	dispatcher Dispatcher
	logger     logrus.FieldLogger
	opts       Options

	events  *eventQueue
	done    chan struct{}
	started atomic.Bool

	// Loop-owned state
	state             State
	config            ConfigID
	generation        uint64
	current           *instance
	initDone          bool
	permissionPending bool
	rebuilds          uint64
	staleDropped      uint64

	snapMu        sync.RWMutex
	snap          Snapshot
	onStateChange func(Snapshot)
}

// New validates the dependencies and returns a coordinator in StateUninitialized
func New(deps Deps, opts Options) (*Coordinator, error) {
	switch {
	case deps.Permission == nil:
		return nil, fmt.Errorf("permission gate is required")
	case deps.Camera == nil:
		return nil, fmt.Errorf("camera helper is required")
	case deps.Factory == nil:
		return nil, fmt.Errorf("resource factory is required")
	case deps.View == nil:
		return nil, fmt.Errorf("view is required")
	case deps.Dispatcher == nil:
		return nil, fmt.Errorf("dispatcher is required")
	}
	if len(opts.Configs) == 0 {
		return nil, fmt.Errorf("at least one configuration is required")
	}
	if opts.Initial < 0 || opts.Initial >= len(opts.Configs) {
		return nil, fmt.Errorf("initial configuration %d out of range [0,%d)", opts.Initial, len(opts.Configs))
	}
	if opts.InputStream == "" {
		opts.InputStream = DefaultInputStream
	}
	if opts.OutputStream == "" {
		opts.OutputStream = DefaultOutputStream
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Facing == "" {
		opts.Facing = FacingFront
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	configs := make([]ConfigID, len(opts.Configs))
	copy(configs, opts.Configs)
	opts.Configs = configs

	c := &Coordinator{
		permission: deps.Permission,
		camera:     deps.Camera,
		factory:    deps.Factory,
		view:       deps.View,
		dispatcher: deps.Dispatcher,
		logger:     logger.WithField("component", "pipeline"),
		opts:       opts,
		events:     newEventQueue(opts.QueueSize),
		done:       make(chan struct{}),
		state:      StateUninitialized,
		config:     configs[opts.Initial],
	}
	c.snap = Snapshot{State: StateUninitialized, Config: c.config}
	return c, nil
}

// OnStateChange registers an observer called on the UI thread after every
// state or configuration change. Call before Run.
func (c *Coordinator) OnStateChange(fn func(Snapshot)) {
	c.onStateChange = fn
}

// LayoutReady reports that the first layout pass has completed
func (c *Coordinator) LayoutReady() { c.post(layoutReadyEvent{}) }

// Select reports a gallery selection by zero-based index
func (c *Coordinator) Select(index int) { c.post(selectEvent{index: index}) }

// Pause reports host suspension
func (c *Coordinator) Pause() { c.post(pauseEvent{}) }

// Resume reports host resumption
func (c *Coordinator) Resume() { c.post(resumeEvent{}) }

// Reload rebuilds the pipeline if config is the one currently selected
func (c *Coordinator) Reload(config ConfigID) { c.post(reloadEvent{config: config}) }

// Snapshot returns the last published state
func (c *Coordinator) Snapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snap
}

// Run processes events until ctx is cancelled, then releases the live instance
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(c.done)

	c.logger.Info("PIPELINE: Coordinator loop started")
	for {
		if ctx.Err() != nil {
			c.retire()
			c.logger.Info("PIPELINE: Coordinator loop stopped")
			return nil
		}
		if ev, ok := c.events.pop(); ok {
			c.handle(ev)
			continue
		}
		select {
		case <-ctx.Done():
		case <-c.events.wake:
		}
	}
}

// post never blocks. Events posted after Run returns are dropped.
func (c *Coordinator) post(ev event) {
	select {
	case <-c.done:
		c.logger.WithField("event", ev.name()).Debug("PIPELINE: Dropping event after shutdown")
	default:
		c.events.push(ev)
	}
}

func (c *Coordinator) handle(ev event) {
	switch e := ev.(type) {
	case layoutReadyEvent:
		c.handleLayoutReady()
	case selectEvent:
		c.handleSelect(e.index)
	case pauseEvent:
		c.handlePause()
	case resumeEvent:
		if c.initDone {
			c.rebuild("resume")
		}
	case reloadEvent:
		c.handleReload(e.config)
	case permissionEvent:
		c.handlePermission(e.granted)
	case surfaceCreatedEvent:
		c.handleSurfaceCreated(e)
	case surfaceResizedEvent:
		c.handleSurfaceResized(e)
	case surfaceDestroyedEvent:
		c.handleSurfaceDestroyed(e)
	case cameraStartedEvent:
		c.handleCameraStarted(e)
	default:
		c.logger.WithField("event", ev.name()).Warn("PIPELINE: Unhandled event")
	}
}

func (c *Coordinator) handleLayoutReady() {
	if c.initDone {
		return
	}
	c.initDone = true

	if c.permission.IsGranted() {
		c.rebuild("layout_ready")
		return
	}
	c.setState(StateAwaitingPermission)
	c.requestPermission()
}

func (c *Coordinator) handleSelect(index int) {
	if index < 0 || index >= len(c.opts.Configs) {
		c.logger.WithFields(logrus.Fields{
			"index": index,
			"count": len(c.opts.Configs),
		}).WithError(ErrSelectionOutOfRange).Info("PIPELINE: Selection has no configuration")
		c.dispatcher.Do(func() {
			c.view.ShowNotice(NoticeTitle, NoticeMessage)
		})
		return
	}

	c.config = c.opts.Configs[index]
	c.publish()
	c.logger.WithFields(logrus.Fields{"index": index, "config": c.config}).Info("PIPELINE: Configuration selected")

	// The first layout pass builds with whatever is selected by then
	if !c.initDone {
		return
	}
	if c.permission.IsGranted() {
		c.rebuild("selection")
		return
	}
	c.setState(StateAwaitingPermission)
	c.requestPermission()
}

func (c *Coordinator) handlePause() {
	if !c.initDone {
		return
	}
	if c.current != nil {
		if err := c.current.releaseConverter(); err != nil {
			c.instanceLogger(c.current).WithError(err).Warn("PIPELINE: Converter release on pause failed")
		}
	}
	c.setState(StatePaused)
}

func (c *Coordinator) handleReload(config ConfigID) {
	if !c.initDone || config != c.config {
		return
	}
	if !c.permission.IsGranted() {
		c.logger.WithField("config", config).Debug("PIPELINE: Reload deferred until permission is granted")
		return
	}
	c.rebuild("reload")
}

func (c *Coordinator) requestPermission() {
	if c.permissionPending {
		c.logger.Debug("PIPELINE: Permission request already pending")
		return
	}
	c.permissionPending = true
	c.logger.Info("PIPELINE: Requesting camera permission")
	c.permission.Request(func(granted bool) {
		c.post(permissionEvent{granted: granted})
	})
}

func (c *Coordinator) handlePermission(granted bool) {
	c.permissionPending = false
	if !granted {
		c.logger.WithError(ErrPermissionDenied).Warn("PIPELINE: No video until camera access is granted")
		return
	}
	if !c.initDone || c.state != StateAwaitingPermission {
		c.logger.WithField("state", c.state).Debug("PIPELINE: Permission granted, no rebuild needed")
		return
	}
	c.rebuild("permission_granted")
}

// rebuild retires the live instance and constructs the next one. Steps run
// strictly in order; surface events raised meanwhile wait in the queue.
func (c *Coordinator) rebuild(reason string) {
	c.setState(StateBuilding)
	c.rebuilds++

	// 1. Release the previous instance and its camera binding
	c.retire()

	// 2. Fresh surface, installed in place of the previous one
	c.generation++
	inst := &instance{
		gen:    c.generation,
		id:     uuid.NewString(),
		config: c.config,
	}
	log := c.instanceLogger(inst).WithField("reason", reason)
	log.Info("PIPELINE: Building pipeline instance")

	listener := &surfaceListener{c: c, gen: inst.gen}
	c.dispatcher.DoAndWait(func() {
		inst.surface = c.view.NewSurface(listener)
		c.view.InstallSurface(inst.surface)
	})

	// 3-5. Context, engine, converter
	if err := c.construct(inst); err != nil {
		log.WithError(err).Error("PIPELINE: Build failed, no video")
		if rerr := inst.release(c.camera); rerr != nil {
			log.WithError(rerr).Warn("PIPELINE: Releasing partial instance failed")
		}
		c.setState(StateIdle)
		return
	}
	c.current = inst

	// 6. Surface callbacks run once this returns; the camera waits for a size
	if !c.permission.IsGranted() {
		log.Info("PIPELINE: Built without camera permission")
		c.setState(StateAwaitingPermission)
		return
	}
	c.publish()
	log.Debug("PIPELINE: Waiting for surface size before starting camera")
}

func (c *Coordinator) construct(inst *instance) error {
	exec, err := c.factory.NewContext()
	if err != nil {
		return fmt.Errorf("%w: exec context: %w", ErrResourceBuild, err)
	}
	inst.exec = exec

	engine, err := c.factory.NewEngine(exec, EngineSpec{
		Config:       inst.config,
		InputStream:  c.opts.InputStream,
		OutputStream: c.opts.OutputStream,
	})
	if err != nil {
		return fmt.Errorf("%w: engine %q: %w", ErrResourceBuild, inst.config, err)
	}
	inst.engine = engine
	engine.SetFlipY(c.opts.FlipY)

	converter, err := c.factory.NewConverter(exec)
	if err != nil {
		return fmt.Errorf("%w: converter: %w", ErrResourceBuild, err)
	}
	inst.converter = converter
	converter.SetFlipY(c.opts.FlipY)
	converter.SetConsumer(engine)

	return nil
}

// retire releases the live instance, if any
func (c *Coordinator) retire() {
	if c.current == nil {
		return
	}
	inst := c.current
	c.current = nil
	if err := inst.release(c.camera); err != nil {
		c.instanceLogger(inst).WithError(err).Warn("PIPELINE: Instance release reported errors")
		return
	}
	c.instanceLogger(inst).Debug("PIPELINE: Instance released")
}

// live returns the current instance if gen matches it, nil for stale events
func (c *Coordinator) live(gen uint64, ev event) *instance {
	if c.current != nil && c.current.gen == gen && !c.current.released {
		return c.current
	}
	c.staleDropped++
	c.logger.WithFields(logrus.Fields{
		"event":      ev.name(),
		"generation": gen,
		"current":    c.generation,
	}).Debug("PIPELINE: Ignoring stale callback")
	c.publish()
	return nil
}

func (c *Coordinator) handleSurfaceCreated(e surfaceCreatedEvent) {
	inst := c.live(e.gen, e)
	if inst == nil {
		return
	}
	inst.engine.SetOutputSurface(e.handle)
	inst.outputBound = true
}

func (c *Coordinator) handleSurfaceResized(e surfaceResizedEvent) {
	inst := c.live(e.gen, e)
	if inst == nil {
		return
	}
	log := c.instanceLogger(inst)
	if e.width <= 0 || e.height <= 0 {
		log.WithFields(logrus.Fields{"width": e.width, "height": e.height}).Debug("PIPELINE: Ignoring degenerate surface size")
		return
	}

	size := c.camera.ComputeDisplaySize(Size{Width: e.width, Height: e.height})
	if size.Empty() {
		log.WithField("view", fmt.Sprintf("%dx%d", e.width, e.height)).Warn("PIPELINE: Camera helper returned an empty display size")
		return
	}
	inst.displaySize = size

	if c.state == StatePaused {
		return
	}
	if inst.source != nil {
		if err := c.attach(inst); err != nil {
			log.WithError(err).Error("PIPELINE: Converter re-attach failed")
		}
		return
	}

	if !inst.cameraRequested && c.permission.IsGranted() {
		c.startCamera(inst)
	}
}

func (c *Coordinator) handleSurfaceDestroyed(e surfaceDestroyedEvent) {
	inst := c.live(e.gen, e)
	if inst == nil {
		return
	}
	if inst.outputBound {
		inst.engine.SetOutputSurface(nil)
		inst.outputBound = false
	}
}

func (c *Coordinator) startCamera(inst *instance) {
	inst.cameraRequested = true
	gen := inst.gen
	err := c.camera.Start(c.opts.Facing, func(source FrameSource, err error) {
		c.post(cameraStartedEvent{gen: gen, source: source, err: err})
	})
	if err != nil {
		c.instanceLogger(inst).WithError(err).Error("PIPELINE: Camera start failed, no video")
		c.setState(StateIdle)
		return
	}
	inst.cameraBound = true
	c.instanceLogger(inst).WithField("facing", c.opts.Facing).Info("PIPELINE: Camera start requested")
}

func (c *Coordinator) handleCameraStarted(e cameraStartedEvent) {
	inst := c.live(e.gen, e)
	if inst == nil {
		return
	}
	log := c.instanceLogger(inst)
	if e.err != nil || e.source == nil {
		log.WithError(e.err).Error("PIPELINE: Camera did not start, no video")
		c.setState(StateIdle)
		return
	}
	inst.source = e.source

	// Resume rebuilds from scratch, the released converter stays detached
	if c.state == StatePaused {
		return
	}
	if err := c.attach(inst); err != nil {
		log.WithError(err).Error("PIPELINE: Converter attach failed, no video")
		c.setState(StateIdle)
		return
	}

	surface := inst.surface
	c.dispatcher.Do(func() {
		surface.SetVisible(true)
	})
	c.setState(StateActive)
	log.WithField("source", e.source.Name()).Info("PIPELINE: Pipeline active")
}

func (c *Coordinator) attach(inst *instance) error {
	if inst.displaySize.Empty() || inst.converterReleased {
		return nil
	}
	if err := inst.converter.Attach(inst.source, inst.displaySize.Width, inst.displaySize.Height); err != nil {
		return fmt.Errorf("attach converter at %dx%d: %w", inst.displaySize.Width, inst.displaySize.Height, err)
	}
	return nil
}

func (c *Coordinator) setState(s State) {
	if c.state != s {
		c.logger.WithFields(logrus.Fields{"from": c.state, "to": s}).Debug("PIPELINE: State transition")
	}
	c.state = s
	c.publish()
}

func (c *Coordinator) publish() {
	snap := Snapshot{
		State:        c.state,
		Generation:   c.generation,
		Config:       c.config,
		Rebuilds:     c.rebuilds,
		StaleDropped: c.staleDropped,
	}
	if c.current != nil {
		snap.InstanceID = c.current.id
	}

	c.snapMu.Lock()
	c.snap = snap
	c.snapMu.Unlock()

	if fn := c.onStateChange; fn != nil {
		c.dispatcher.Do(func() { fn(snap) })
	}
}

func (c *Coordinator) instanceLogger(inst *instance) logrus.FieldLogger {
	return c.logger.WithFields(logrus.Fields{
		"generation": inst.gen,
		"instance":   inst.id,
		"config":     inst.config,
	})
}
