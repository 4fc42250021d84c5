package pipeline

import "sync"

// event is one input to the coordinator loop. Surface and camera events
// carry the generation of the instance they were issued against.
type event interface {
	name() string
}

type layoutReadyEvent struct{}

type selectEvent struct {
	index int
}

type pauseEvent struct{}

type resumeEvent struct{}

type reloadEvent struct {
	config ConfigID
}

type permissionEvent struct {
	granted bool
}

type surfaceCreatedEvent struct {
	gen    uint64
	handle SurfaceHandle
}

type surfaceResizedEvent struct {
	gen    uint64
	handle SurfaceHandle
	width  int
	height int
}

type surfaceDestroyedEvent struct {
	gen    uint64
	handle SurfaceHandle
}

type cameraStartedEvent struct {
	gen    uint64
	source FrameSource
	err    error
}

func (layoutReadyEvent) name() string      { return "layout_ready" }
func (selectEvent) name() string           { return "select" }
func (pauseEvent) name() string            { return "pause" }
func (resumeEvent) name() string           { return "resume" }
func (reloadEvent) name() string           { return "reload" }
func (permissionEvent) name() string       { return "permission_result" }
func (surfaceCreatedEvent) name() string   { return "surface_created" }
func (surfaceResizedEvent) name() string   { return "surface_resized" }
func (surfaceDestroyedEvent) name() string { return "surface_destroyed" }
func (cameraStartedEvent) name() string    { return "camera_started" }

// surfaceListener tags surface callbacks with the generation of the
// instance that owns the surface
type surfaceListener struct {
	c   *Coordinator
	gen uint64
}

func (l *surfaceListener) OnCreated(handle SurfaceHandle) {
	l.c.post(surfaceCreatedEvent{gen: l.gen, handle: handle})
}

func (l *surfaceListener) OnResized(handle SurfaceHandle, width, height int) {
	l.c.post(surfaceResizedEvent{gen: l.gen, handle: handle, width: width, height: height})
}

func (l *surfaceListener) OnDestroyed(handle SurfaceHandle) {
	l.c.post(surfaceDestroyedEvent{gen: l.gen, handle: handle})
}

// eventQueue is an unbounded FIFO; wake holds at most one pending signal
type eventQueue struct {
	mu    sync.Mutex
	items []event
	wake  chan struct{}
}

func newEventQueue(capacity int) *eventQueue {
	return &eventQueue{
		items: make([]event, 0, capacity),
		wake:  make(chan struct{}, 1),
	}
}

func (q *eventQueue) push(ev event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pop() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return ev, true
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
