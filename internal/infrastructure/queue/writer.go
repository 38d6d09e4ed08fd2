package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/api/metrics"
)

const defaultBuffer = 64

// ErrWriterStopped is returned for mutations submitted after the writer stopped.
var ErrWriterStopped = errors.New("write queue stopped")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Writer runs submitted mutations one at a time on a single goroutine, so a
// read-modify-write of a shared collection never interleaves with another.
type Writer struct {
	jobs    chan job
	quit    chan struct{}
	stopped chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool

	quitOnce sync.Once
	log      zerolog.Logger
}

// NewWriter creates a Writer whose queue holds up to buffer pending jobs.
// If buffer <= 0, defaultBuffer is used.
func NewWriter(buffer int, log zerolog.Logger) *Writer {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Writer{
		jobs:    make(chan job, buffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches the writer goroutine. It stops when ctx is cancelled or
// Stop is called.
func (w *Writer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.run(ctx)
}

// Stop shuts the writer down and waits for the in-flight job to finish.
// Pending jobs fail with ErrWriterStopped.
func (w *Writer) Stop() {
	w.quitOnce.Do(func() { close(w.quit) })

	w.mu.Lock()
	started := w.started
	w.closed = true
	w.mu.Unlock()

	if started {
		<-w.stopped
	}
}

// Do enqueues fn and blocks until it has run or ctx is done. fn receives the
// caller's ctx. Before Start and after Stop it fails with ErrWriterStopped.
func (w *Writer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	w.mu.RLock()
	if w.closed || !w.started {
		w.mu.RUnlock()
		return ErrWriterStopped
	}
	select {
	case w.jobs <- j:
		metrics.WriteQueueDepth.Set(float64(len(w.jobs)))
	case <-w.quit:
		w.mu.RUnlock()
		return ErrWriterStopped
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}
	w.mu.RUnlock()

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run(ctx context.Context) {
	defer close(w.stopped)
	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-w.quit:
			w.shutdown()
			return
		case j := <-w.jobs:
			metrics.WriteQueueDepth.Set(float64(len(w.jobs)))
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			j.done <- w.exec(j)
		}
	}
}

// exec runs one job, turning a panic into an error so the writer survives.
func (w *Writer) exec(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("write job panicked")
			err = fmt.Errorf("write job panicked: %v", r)
		}
	}()
	return j.fn(j.ctx)
}

// shutdown stops new submissions, then fails whatever is still queued.
func (w *Writer) shutdown() {
	w.quitOnce.Do(func() { close(w.quit) })

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	for {
		select {
		case j := <-w.jobs:
			j.done <- ErrWriterStopped
		default:
			metrics.WriteQueueDepth.Set(0)
			return
		}
	}
}
