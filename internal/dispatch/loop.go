// Package dispatch provides the bridge between the synchronous HTTP tier and
// the messaging-bot runtime: a single long-lived worker goroutine owns all
// outbound Telegram calls, request handlers submit closures and block on the
// returned handle with a timeout.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/logx"
)

// Task is a unit of work executed on the dispatch loop.
type Task func(ctx context.Context) error

// ErrQueueFull is returned when the submission queue is at capacity.
var ErrQueueFull = errors.New("dispatch queue full")

// ErrStopped is returned when submitting to a loop that has shut down.
var ErrStopped = errors.New("dispatch loop stopped")

type counter interface{ Inc() }

type gauge interface {
	Inc()
	Dec()
}

// Metrics carries optional instrumentation for the loop. Nil fields are skipped.
type Metrics struct {
	Submitted counter
	Timeouts  counter
	Depth     gauge
}

type submission struct {
	name string
	task Task
	res  *Result
}

// Result is the handle returned by Submit. Callers block on Wait with a
// timeout; on timeout the underlying task keeps running to completion.
type Result struct {
	done chan struct{}
	loop *Loop
	name string
	err  error
}

// Wait blocks until the task completes or the timeout elapses.
// Timeout does not cancel the task; it returns apperr.Timeout and the
// task finishes in the background.
func (r *Result) Wait(timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-r.done:
		return r.err
	case <-t.C:
		if r.loop.metrics.Timeouts != nil {
			r.loop.metrics.Timeouts.Inc()
		}
		r.loop.logger.Warn("dispatch wait timed out, task detached",
			logx.String("task", r.name),
			logx.Duration("timeout", timeout),
		)
		return fmt.Errorf("task %s: %w", r.name, apperr.Timeout)
	}
}

// Loop is the single background execution context of the process.
// Exactly one worker goroutine drains the queue, so tasks submitted by one
// caller are executed in submission order.
type Loop struct {
	queue   chan submission
	logger  logx.Logger
	metrics Metrics

	startOnce sync.Once
	stop      chan struct{}
	stopped   chan struct{}
}

// NewLoop creates a dispatch loop with the given queue capacity.
func NewLoop(queueSize int, logger logx.Logger, m Metrics) *Loop {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Loop{
		queue:   make(chan submission, queueSize),
		logger:  logger,
		metrics: m,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Submit enqueues a task and returns a waitable handle. The worker is
// started lazily on first use; racing submitters share the single worker.
// A full queue fails fast with ErrQueueFull.
func (l *Loop) Submit(name string, task Task) (*Result, error) {
	l.startOnce.Do(l.startWorker)

	res := &Result{done: make(chan struct{}), loop: l, name: name}
	select {
	case <-l.stop:
		return nil, ErrStopped
	default:
	}

	select {
	case l.queue <- submission{name: name, task: task, res: res}:
		if l.metrics.Submitted != nil {
			l.metrics.Submitted.Inc()
		}
		if l.metrics.Depth != nil {
			l.metrics.Depth.Inc()
		}
		return res, nil
	default:
		return nil, ErrQueueFull
	}
}

// SubmitWait submits a task and blocks up to timeout for its completion.
func (l *Loop) SubmitWait(name string, task Task, timeout time.Duration) error {
	res, err := l.Submit(name, task)
	if err != nil {
		return err
	}
	return res.Wait(timeout)
}

// Run keeps the loop alive until ctx is cancelled, then stops the worker.
// Safe to call once; the worker itself may already be running if Submit
// was called first.
func (l *Loop) Run(ctx context.Context) error {
	l.startOnce.Do(l.startWorker)
	<-ctx.Done()
	close(l.stop)
	<-l.stopped
	return ctx.Err()
}

func (l *Loop) startWorker() {
	go l.work()
}

func (l *Loop) work() {
	defer close(l.stopped)
	for {
		select {
		case s := <-l.queue:
			l.execute(s)
		case <-l.stop:
			// добиваем очередь перед выходом
			for {
				select {
				case s := <-l.queue:
					l.execute(s)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) execute(s submission) {
	if l.metrics.Depth != nil {
		l.metrics.Depth.Dec()
	}
	defer func() {
		if p := recover(); p != nil {
			s.res.err = fmt.Errorf("task %s panicked: %v", s.name, p)
			l.logger.Error("dispatch task panic",
				logx.String("task", s.name),
				logx.Any("panic", p),
			)
		}
		close(s.res.done)
	}()

	// tasks run on a context detached from their submitter: a caller
	// that times out must not cancel the in-flight Telegram call
	s.res.err = s.task(context.Background())
}
