package sync

import (
	"context"
	"log/slog"
	gosync "sync"
)

// Worker runs webhook processing off the request path. The HTTP receiver
// acknowledges the sender and hands the raw body here before any validation
// or store I/O; a full queue drops the event (the sender's delivery contract
// is already satisfied).
type Worker struct {
	proc  *Processor
	log   *slog.Logger
	queue chan Task
	stop  chan struct{}
	done  chan struct{}
	once  gosync.Once
}

func NewWorker(proc *Processor, queueSize int, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Worker{
		proc:  proc,
		log:   logger,
		queue: make(chan Task, queueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the processing goroutine.
func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case t := <-w.queue:
				w.proc.ProcessRaw(context.Background(), t)
			case <-w.stop:
				w.drain()
				return
			}
		}
	}()
}

// drain processes whatever is still queued at shutdown.
func (w *Worker) drain() {
	for {
		select {
		case t := <-w.queue:
			w.proc.ProcessRaw(context.Background(), t)
		default:
			return
		}
	}
}

// TryEnqueue hands a raw webhook body to the worker without blocking.
// Returns false when the queue is full; the caller logs the drop and
// moves on.
func (w *Worker) TryEnqueue(t Task) bool {
	select {
	case w.queue <- t:
		return true
	default:
		return false
	}
}

// Stop signals shutdown and waits for the queue to drain, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.once.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
