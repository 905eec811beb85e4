// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"testing"

	"github.com/db47h/syncsim"
	"github.com/db47h/syncsim/probe"
	"github.com/db47h/syncsim/sched"
	"github.com/pkg/errors"
)

// DefaultMaxCycles is the cycle limit of a Harness when none is given. It
// plays the role of a test timeout for measurements of bits that never
// change.
//
const DefaultMaxCycles = 1 << 20

// A Harness wires a circuit, a scheduler driving its clock and a probe on one
// of its buses.
//
type Harness struct {
	Circuit *syncsim.Circuit
	Sched   *sched.Scheduler
	Bus     *syncsim.BusProbe
}

// NewHarness builds a circuit from parts with spc steps per cycle, and a probe
// on the named bus. Run stops after maxCycles clock cycles (DefaultMaxCycles
// if 0). The circuit is disposed of at the end of the test.
//
func NewHarness(t testing.TB, bus string, spc uint, maxCycles uint64, parts ...syncsim.Part) *Harness {
	t.Helper()
	c, err := syncsim.NewCircuit(0, spc, parts...)
	if err != nil {
		fatal(t, err)
	}
	t.Cleanup(c.Dispose)
	p, err := c.Probe(bus)
	if err != nil {
		fatal(t, err)
	}
	if maxCycles == 0 {
		maxCycles = DefaultMaxCycles
	}
	return &Harness{
		Circuit: c,
		Sched:   sched.New(c, sched.MaxCycles(maxCycles)),
		Bus:     p,
	}
}

// Sampler returns a sampler on the harness bus, clocked by task t.
//
func (h *Harness) Sampler(t *sched.Task, mask uint64) *probe.Sampler {
	return probe.New(h.Bus, t, mask)
}

// Run runs fn as the main task and fails the test if Run returns an error.
//
func (h *Harness) Run(t testing.TB, fn sched.TaskFunc) {
	t.Helper()
	h.Sched.Go(t.Name(), fn)
	if err := h.Sched.Run(context.Background()); err != nil {
		fatal(t, err)
	}
}

func fatal(t testing.TB, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
	t.Fatal(err)
}
