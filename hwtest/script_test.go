package hwtest_test

import (
	"testing"

	"github.com/db47h/syncsim/hwtest"
	"github.com/pkg/errors"
)

func TestScript(t *testing.T) {
	s := hwtest.NewScript(hwtest.Bits(0x80, 1, 0, 1)...)
	if s.Value() != 0x80 || s.Pos() != 0 {
		t.Fatalf("bad initial state %#x at %d", s.Value(), s.Pos())
	}
	if err := s.ClockCycles(1); err != nil {
		t.Fatal(err)
	}
	if s.Value() != 0 {
		t.Fatalf("expected 0, got %#x", s.Value())
	}
	if err := s.ClockCycles(1); err != nil {
		t.Fatal(err)
	}
	err := s.ClockCycles(1)
	if errors.Cause(err) != hwtest.ErrExhausted {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if s.Pos() != 2 || s.Value() != 0x80 {
		t.Fatalf("expected to stay on last sample, got %#x at %d", s.Value(), s.Pos())
	}

	empty := hwtest.NewScript()
	if empty.Value() != 0 {
		t.Fatal("empty script must read 0")
	}
	if errors.Cause(empty.ClockCycles(1)) != hwtest.ErrExhausted {
		t.Fatal("expected ErrExhausted on empty script")
	}
}
