package syncsim_test

import (
	"testing"

	hw "github.com/db47h/syncsim"
	hl "github.com/db47h/syncsim/hwlib"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

// Test a basic clock with a Nor gate.
//
// The purpose of this test is to catch changes in propagation delays
// from Inputs and Outputs as well as testing loops between input and outputs.
//
func Test_clock(t *testing.T) {
	var disable, tick bool

	check := func(v bool) {
		t.Helper()
		if tick != v {
			t.Errorf("expected %v, got %v", v, tick)
		}
	}
	c, err := hw.NewCircuit(0, 16,
		hl.Input(func() bool { return disable })(hw.W{"out": "disable"}),
		hl.Nor(hw.W{"a": "disable", "b": "tick", "out": "tick"}),
		hl.Output(func(out bool) { tick = out })(hw.W{"in": "tick"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	// Output is delayed by one step after the Nor updates it.
	disable = true
	c.Step()
	check(false)
	c.Step()
	// expected signal change in the first couple of steps due to propagation delay
	check(true)
	c.Step()
	check(false)
	c.Step()
	check(false)

	disable = false
	c.Step()
	check(false)
	c.Step()
	check(false)
	c.Step()
	// the clock starts ticking now.
	check(true)
	c.Step()
	check(false)
	c.Step()
	check(true)
	disable = true
	c.Step()
	check(false)
	c.Step()
	check(true)
	c.Step()
	// the clock stops ticking now.
	check(false)
	c.Step()
	check(false)
}

func TestCircuit_cycles(t *testing.T) {
	var clk []bool
	c, err := hw.NewCircuit(1, 3,
		hl.Output(func(v bool) { clk = append(clk, v) })(hw.W{"in": "clk"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	if c.SPC() != 4 {
		t.Fatalf("expected 4 steps per cycle, got %d", c.SPC())
	}
	// the output and the clock driver
	if c.Size() != 2 {
		t.Fatalf("expected 2 components, got %d", c.Size())
	}
	if !c.AtTick() || c.AtTock() {
		t.Fatal("step 0 must be at tick")
	}
	for i := 0; i < 3; i++ {
		c.TickTock()
	}
	if c.Steps() != 12 || c.Cycles() != 3 {
		t.Fatalf("expected 12 steps, 3 cycles, got %d, %d", c.Steps(), c.Cycles())
	}
	exp := []bool{true, true, false, false}
	for i, v := range clk {
		if v != exp[i%4] {
			t.Fatalf("clk at step %d: expected %v, got %v", i, exp[i%4], v)
		}
	}
	c.Tick()
	if !c.AtTock() {
		t.Fatal("expected to be at tock after Tick")
	}
}

func TestNewCircuit_errors(t *testing.T) {
	data := []struct {
		name  string
		parts []hw.Part
		err   string
	}{
		{"empty", nil, "empty part list"},
		{"true_out", []hw.Part{
			hl.Not(hw.W{"in": "a", "out": "true"}),
		}, `mount NOT: NOT.out: output pin connected to constant "true"`},
		{"clk_out", []hw.Part{
			hl.Not(hw.W{"in": "a", "out": "clk"}),
		}, `mount NOT: NOT.out: output pin connected to constant "clk"`},
		{"multi_out", []hw.Part{
			hl.Not(hw.W{"in": "a", "out": "x"}),
			hl.Not(hw.W{"in": "b", "out": "x"}),
		}, "mount NOT: NOT.out: wire x already driven by NOT.out"},
		{"unknown_pin", []hw.Part{
			hl.Not(hw.W{"typo": "a"}),
		}, "mount NOT: invalid pin name typo for part NOT"},
		{"multi_in", []hw.Part{
			hl.Not(hw.W{"in": "a[0..1]"}),
		}, "mount NOT: input pin in connected to more than one wire"},
		{"count_mismatch", []hw.Part{
			hl.InputN(4, func() uint64 { return 0 })(hw.W{"out[0..3]": "x[0..2]"}),
		}, "mount INPUT4: pin count mismatch in pin mapping: out[0..3]:x[0..2]"},
		{"bad_range", []hw.Part{
			hl.Not(hw.W{"in": "x[3..1]"}),
		}, "mount NOT: expand value x[3..1]: invalid bus range 3..1"},
		{"empty_mapping", []hw.Part{
			hl.Not(hw.W{"in": ""}),
		}, "mount NOT: invalid pin mapping in:"},
		{"ok", []hw.Part{
			hl.Not(hw.W{"in": "a", "out": "b"}),
			hl.Not(hw.W{"in": "b", "out": "a"}),
		}, ""},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			c, err := hw.NewCircuit(0, 2, d.parts...)
			if err == nil {
				defer c.Dispose()
			}
			if d.err == "" {
				if err != nil {
					trace(t, err)
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q", d.err)
			}
			if err.Error() != d.err {
				trace(t, err)
				t.Fatalf("expected error %q, got %q", d.err, err.Error())
			}
		})
	}
}
