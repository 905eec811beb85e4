package probe_test

import (
	"context"
	"testing"

	hw "github.com/db47h/syncsim"
	hl "github.com/db47h/syncsim/hwlib"
	"github.com/db47h/syncsim/hwtest"
	"github.com/db47h/syncsim/probe"
	"github.com/db47h/syncsim/sched"
	"github.com/pkg/errors"
)

func TestSampler_pulse(t *testing.T) {
	h := hwtest.NewHarness(t, "uo_out", 2, 0,
		hl.Pulse(20, 5, 7)(hw.W{"out": "uo_out[7]"}),
		hl.CounterN(7)(hw.W{"out": "uo_out[0..6]"}),
	)
	var ivs []probe.Interval
	h.Run(t, func(t *sched.Task) error {
		// first cycle: let the parts latch their outputs
		if err := t.ClockCycles(1); err != nil {
			return err
		}
		var err error
		ivs, err = h.Sampler(t, probe.SyncMask).Harvest(context.Background(), 3)
		return err
	})
	exp := []probe.Interval{
		{Pre: 13, Main: 5, PreOut: 0x80, MidOut: 13},
		{Pre: 20, Main: 5, PreOut: 0x80 | 18, MidOut: 38},
		{Pre: 20, Main: 5, PreOut: 0x80 | 43, MidOut: 63},
	}
	for i, iv := range ivs {
		if iv != exp[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, exp[i], iv)
		}
	}
	if n := h.Sched.Now(); n != 1+13+5+2*25 {
		t.Fatalf("measurements ended on cycle %d", n)
	}
}

func TestSampler_sequence(t *testing.T) {
	h := hwtest.NewHarness(t, "uo_out", 2, 0,
		hl.Sequence(8, hwtest.Bits(probe.SyncMask, 1, 1, 1, 0, 0, 0, 0, 0, 1))(hw.W{"out": "uo_out"}),
	)
	var iv probe.Interval
	h.Run(t, func(t *sched.Task) error {
		if err := t.ClockCycles(1); err != nil {
			return err
		}
		var err error
		iv, err = h.Sampler(t, 0).Measure(context.Background())
		return err
	})
	if iv.Pre != 3 || iv.Main != 5 {
		t.Fatalf("expected pre 3, main 5, got %+v", iv)
	}
}

// Active low sync through a NOT gate: asserted and deasserted phases swap.
func TestSampler_inverted(t *testing.T) {
	h := hwtest.NewHarness(t, "uo_out", 2, 0,
		hl.Pulse(20, 5, 0)(hw.W{"out": "sync"}),
		hl.Not(hw.W{"in": "sync", "out": "uo_out[7]"}),
	)
	var ivs []probe.Interval
	h.Run(t, func(t *sched.Task) error {
		if err := t.ClockCycles(1); err != nil {
			return err
		}
		var err error
		ivs, err = h.Sampler(t, 0).Harvest(context.Background(), 2)
		return err
	})
	for i, iv := range ivs {
		if iv.Main != 20 {
			t.Errorf("line %d: expected 20 cycles, got %+v", i, iv)
		}
	}
}

// A concurrent observer on the same clock sees every cycle exactly once.
func TestSampler_observer(t *testing.T) {
	h := hwtest.NewHarness(t, "uo_out", 4, 0,
		hl.Pulse(6, 3, 0)(hw.W{"out": "uo_out[7]"}),
	)
	var seen uint64
	var falls int
	h.Sched.Fork("observer", func(t *sched.Task) error {
		prev := h.Bus.Value()
		for {
			if err := t.ClockCycles(1); err != nil {
				return err
			}
			seen++
			v := h.Bus.Value()
			if prev&probe.SyncMask != 0 && v&probe.SyncMask == 0 {
				falls++
			}
			prev = v
		}
	})
	var ivs []probe.Interval
	h.Run(t, func(t *sched.Task) error {
		if err := t.ClockCycles(1); err != nil {
			return err
		}
		var err error
		ivs, err = h.Sampler(t, 0).Harvest(context.Background(), 4)
		return err
	})
	if len(ivs) != 4 {
		t.Fatalf("expected 4 intervals, got %d", len(ivs))
	}
	for i, iv := range ivs {
		if iv.Main != 3 {
			t.Errorf("line %d: expected 3 cycles, got %+v", i, iv)
		}
	}
	if seen != h.Sched.Now() {
		t.Fatalf("observer saw %d cycles out of %d", seen, h.Sched.Now())
	}
	if falls != 4 {
		t.Fatalf("observer saw %d falling edges, expected 4", falls)
	}
}

// A stuck bit is caught by the sampler bound, or by the scheduler cycle limit.
func TestSampler_stuck(t *testing.T) {
	parts := func() []hw.Part {
		return []hw.Part{hl.Input(func() bool { return false })(hw.W{"out": "uo_out[7]"})}
	}

	h := hwtest.NewHarness(t, "uo_out", 2, 0, parts()...)
	h.Sched.Go("bounded", func(t *sched.Task) error {
		s := h.Sampler(t, 0)
		s.MaxTicks = 100
		_, err := s.Measure(context.Background())
		return err
	})
	err := h.Sched.Run(context.Background())
	if !probe.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}

	h = hwtest.NewHarness(t, "uo_out", 2, 50, parts()...)
	h.Sched.Go("unbounded", func(t *sched.Task) error {
		_, err := h.Sampler(t, 0).Measure(context.Background())
		return err
	})
	err = h.Sched.Run(context.Background())
	if errors.Cause(err) != sched.ErrCycleLimit {
		t.Fatalf("expected cycle limit, got %v", err)
	}
}
