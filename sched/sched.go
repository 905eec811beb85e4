// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sched implements a cooperative clock scheduler.
//
// A Scheduler owns a clock (anything that can run one clock cycle) and a set
// of tasks. Tasks suspend themselves with ClockCycles; Run drives the clock one
// cycle at a time and resumes due tasks in the order in which they suspended.
// Exactly one task runs at any given time, and never while the clock is being
// advanced, so tasks can freely read the state of the clocked circuit.
//
package sched

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrStopped is returned by Task.ClockCycles once the scheduler has stopped.
	ErrStopped = errors.New("scheduler stopped")
	// ErrCycleLimit is returned by Run when the cycle limit set with MaxCycles
	// is reached.
	ErrCycleLimit = errors.New("cycle limit reached")
)

// A Stepper runs a clock for exactly one cycle. *syncsim.Circuit is a Stepper.
//
type Stepper interface {
	TickTock()
}

// StepperFunc adapts a function to the Stepper interface.
//
type StepperFunc func()

// TickTock calls f.
func (f StepperFunc) TickTock() { f() }

// A TaskFunc is the body of a task.
//
type TaskFunc func(t *Task) error

// An Option configures a Scheduler.
//
type Option func(*Scheduler)

// MaxCycles sets the maximum number of clock cycles Run will drive. 0 means
// no limit.
//
func MaxCycles(n uint64) Option {
	return func(s *Scheduler) { s.maxCycles = n }
}

// Logger sets a logger for task lifecycle events.
//
func Logger(l *log.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

type waiter struct {
	t     *Task
	until uint64
}

// Scheduler drives a clock and schedules tasks on it.
//
// Apart from Go and Fork, the scheduler state is only ever touched by the
// goroutine currently holding the baton: Run's goroutine while the clock
// advances, or the one running task.
//
type Scheduler struct {
	clk       Stepper
	maxCycles uint64
	log       *log.Logger

	now     uint64
	pending []*Task  // started, not yet run
	waiters []waiter // suspended tasks, in suspension order
	live    int      // non daemon tasks not yet returned
	ran     bool

	yield chan struct{}
	stop  chan struct{}
	g     errgroup.Group
}

// New returns a new scheduler for the given clock.
//
func New(clk Stepper, opts ...Option) *Scheduler {
	s := &Scheduler{
		clk:   clk,
		yield: make(chan struct{}),
		stop:  make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Go starts a new task. Run returns once all tasks started with Go have
// returned. The task first runs before the next clock cycle.
//
// Go can be called before Run or from a running task.
//
func (s *Scheduler) Go(name string, fn TaskFunc) {
	s.live++
	s.spawn(&Task{name: name, s: s, resume: make(chan struct{})}, fn)
}

// Fork starts a background task. Run does not wait for background tasks to
// return; they are stopped when Run returns.
//
func (s *Scheduler) Fork(name string, fn TaskFunc) {
	s.spawn(&Task{name: name, s: s, daemon: true, resume: make(chan struct{})}, fn)
}

func (s *Scheduler) spawn(t *Task, fn TaskFunc) {
	s.pending = append(s.pending, t)
	s.g.Go(func() error {
		select {
		case <-t.resume:
		case <-s.stop:
			return nil
		}
		err := fn(t)
		if err != nil && errors.Cause(err) != ErrStopped {
			err = errors.Wrap(err, "task "+t.name)
		}
		t.err = err
		t.done = true
		select {
		case s.yield <- struct{}{}:
		case <-s.stop:
		}
		if errors.Cause(err) == ErrStopped {
			return nil
		}
		return err
	})
}

// Now returns the number of clock cycles driven so far.
//
func (s *Scheduler) Now() uint64 { return s.now }

// Run drives the clock until all tasks started with Go have returned.
//
// If a task returns an error, Run stops and returns that error. Run also stops
// when ctx is done or when the cycle limit is reached. Once Run returns, all
// suspended tasks are resumed with ErrStopped and Run waits for them to return.
//
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if s.ran {
		return errors.New("scheduler already run")
	}
	s.ran = true
	defer func() {
		close(s.stop)
		if werr := s.g.Wait(); err == nil {
			err = werr
		}
	}()

	for {
		if err = s.startPending(ctx); err != nil {
			return err
		}
		if s.live == 0 {
			return nil
		}
		if len(s.waiters) == 0 {
			return errors.New("no suspended task")
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "run")
		default:
		}
		if s.maxCycles > 0 && s.now >= s.maxCycles {
			return errors.Wrapf(ErrCycleLimit, "after %d cycles", s.now)
		}

		s.clk.TickTock()
		s.now++

		ws := s.waiters
		s.waiters = nil
		var due []*Task
		for _, w := range ws {
			if w.until <= s.now {
				due = append(due, w.t)
			} else {
				s.waiters = append(s.waiters, w)
			}
		}
		for _, t := range due {
			if err = s.resume(ctx, t); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) startPending(ctx context.Context) error {
	for len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if s.log != nil {
			s.log.Printf("cycle %d: start %s", s.now, t.name)
		}
		if err := s.resume(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// resume hands the baton to t and waits until t suspends or returns.
//
func (s *Scheduler) resume(ctx context.Context, t *Task) error {
	t.resume <- struct{}{}
	select {
	case <-s.yield:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "run")
	}
	if !t.done {
		return s.startPending(ctx)
	}
	if s.log != nil {
		s.log.Printf("cycle %d: %s returned: %v", s.now, t.name, t.err)
	}
	if !t.daemon {
		s.live--
	}
	if t.err != nil && errors.Cause(t.err) != ErrStopped {
		return t.err
	}
	return s.startPending(ctx)
}

// A Task is a schedulable unit of work.
//
type Task struct {
	name   string
	s      *Scheduler
	daemon bool
	resume chan struct{}
	done   bool
	err    error
}

// Name returns the task name.
//
func (t *Task) Name() string { return t.name }

// Now returns the number of clock cycles driven so far.
//
func (t *Task) Now() uint64 { return t.s.now }

// Scheduler returns the scheduler running t.
//
func (t *Task) Scheduler() *Scheduler { return t.s }

// ClockCycles suspends the task for n clock cycles. Tasks due on the same
// cycle are resumed in the order in which they called ClockCycles.
//
// ClockCycles returns ErrStopped if the scheduler stops before the task is
// due.
//
func (t *Task) ClockCycles(n uint) error {
	s := t.s
	select {
	case <-s.stop:
		return ErrStopped
	default:
	}
	if n == 0 {
		return nil
	}
	s.waiters = append(s.waiters, waiter{t, s.now + uint64(n)})
	select {
	case s.yield <- struct{}{}:
	case <-s.stop:
		return ErrStopped
	}
	select {
	case <-t.resume:
		return nil
	case <-s.stop:
		return ErrStopped
	}
}
