package video

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultExecDepth = 2

type job struct {
	run  func()
	drop func()
}

// Exec is the processing goroutine a converter and engine share. Frames
// submitted while it is busy are rejected rather than queued without bound.
type Exec struct {
	id   string
	jobs chan job
	quit chan struct{}
	done chan struct{}
	once sync.Once
	// mu orders Submit against the close of quit in Release
	mu     sync.Mutex
	logger logrus.FieldLogger
}

func NewExec(depth int, logger logrus.FieldLogger) *Exec {
	if depth < 1 {
		depth = defaultExecDepth
	}
	e := &Exec{
		id:   uuid.NewString(),
		jobs: make(chan job, depth),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	e.logger = logger.WithField("exec", e.id)

	go e.loop()
	return e
}

// ID identifies the context in logs
func (e *Exec) ID() string { return e.id }

// Submit queues run; drop is called instead if the job never runs.
// Returns false when the queue is full or the context is released.
func (e *Exec) Submit(run, drop func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-e.quit:
		return false
	default:
	}

	select {
	case e.jobs <- job{run: run, drop: drop}:
		return true
	default:
		return false
	}
}

// Release stops the goroutine and discards pending jobs. Safe to call twice.
func (e *Exec) Release() error {
	e.once.Do(func() {
		e.mu.Lock()
		close(e.quit)
		e.mu.Unlock()

		<-e.done
		e.drain()
		e.logger.Debug("VIDEO: exec context released")
	})
	return nil
}

func (e *Exec) loop() {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		default:
		}

		select {
		case <-e.quit:
			return
		case j := <-e.jobs:
			j.run()
		}
	}
}

func (e *Exec) drain() {
	for {
		select {
		case j := <-e.jobs:
			if j.drop != nil {
				j.drop()
			}
		default:
			return
		}
	}
}
