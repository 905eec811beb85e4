// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package probe measures the phases of a status bit of an output bus, in clock
// cycles.
//
// A Sampler reads the bus once per clock cycle. Measure waits for the
// designated bit to fall, counting the cycles it stays asserted, then counts
// the cycles it stays deasserted until it rises again:
//
//	bit:   1 1 1 0 0 0 0 0 1
//	       |-Pre-|--Main---|
//
// Calling Measure in a loop harvests successive intervals, e.g. successive
// horizontal line periods of a display timing generator.
//
package probe

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"
)

// SyncMask is the default designated bit: bit 7 of the output bus.
//
const SyncMask uint64 = 0x80

// A Bus is a live handle on an output bus. Value returns the current state of
// the bus.
//
type Bus interface {
	Value() uint64
}

// A Clock advances the shared simulation clock. ClockCycles blocks the caller
// for n clock cycles.
//
type Clock interface {
	ClockCycles(n uint) error
}

// Phase is either phase of the designated bit.
//
type Phase int

// Phases.
const (
	Asserted Phase = iota
	Deasserted
)

func (p Phase) String() string {
	switch p {
	case Asserted:
		return "asserted"
	case Deasserted:
		return "deasserted"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// A TimeoutError is returned by Measure when a phase lasts longer than the
// sampler's MaxTicks.
//
type TimeoutError struct {
	Phase Phase
	Mask  uint64
	Ticks uint
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("bit %#x still %s after %d ticks", e.Mask, e.Phase, e.Ticks)
}

// IsTimeout returns true if the cause of err is a *TimeoutError.
//
func IsTimeout(err error) bool {
	_, ok := errors.Cause(err).(*TimeoutError)
	return ok
}

// Interval is the result of a measurement.
//
type Interval struct {
	Pre    uint   // ticks spent asserted before the bit fell
	Main   uint   // ticks spent deasserted: the measured interval
	PreOut uint64 // bus value when Measure was called
	MidOut uint64 // bus value when the bit fell
}

// A Sampler measures phases of the bits selected by Mask on Bus.
//
type Sampler struct {
	Bus   Bus
	Clock Clock
	// Mask selects the designated bit. The bit is asserted when all bits in
	// mask are set. 0 means SyncMask.
	Mask uint64
	// MaxTicks bounds the length of each phase. 0 means no limit, in which
	// case a bit that never changes blocks Measure until ctx is done or the
	// clock fails.
	MaxTicks uint
	// Logger, if not nil, receives a diagnostic line for each measurement.
	Logger *log.Logger
}

// New returns a new sampler for the given bus, clock and designated bit.
//
func New(bus Bus, clk Clock, mask uint64) *Sampler {
	return &Sampler{Bus: bus, Clock: clk, Mask: mask}
}

func (s *Sampler) mask() uint64 {
	if s.Mask == 0 {
		return SyncMask
	}
	return s.Mask
}

// Measure waits for the designated bit to be deasserted, then measures how
// many clock ticks it remains deasserted. If the bit is already deasserted
// when Measure is called, Pre is 0.
//
// Measure returns as soon as the bit is asserted again, without advancing the
// clock any further; the next call starts exactly where this one left off.
//
// ctx is checked before each clock advance. On error, the returned Interval
// holds the counts reached so far.
//
func (s *Sampler) Measure(ctx context.Context) (Interval, error) {
	var iv Interval
	mask := s.mask()
	iv.PreOut = s.Bus.Value()
	if err := s.wait(ctx, Asserted, mask, &iv.Pre); err != nil {
		return iv, err
	}
	iv.MidOut = s.Bus.Value()
	if err := s.wait(ctx, Deasserted, mask, &iv.Main); err != nil {
		return iv, err
	}
	if s.Logger != nil {
		s.Logger.Printf("pre out: 0x%02x cycles: %d, mid out: 0x%02x cycles: %d", iv.PreOut, iv.Pre, iv.MidOut, iv.Main)
	}
	return iv, nil
}

// wait advances the clock while the bit is in phase ph, counting ticks in n.
//
func (s *Sampler) wait(ctx context.Context, ph Phase, mask uint64, n *uint) error {
	for (s.Bus.Value()&mask == mask) == (ph == Asserted) {
		if s.MaxTicks > 0 && *n >= s.MaxTicks {
			return &TimeoutError{Phase: ph, Mask: mask, Ticks: *n}
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s phase", ph)
		}
		if err := s.Clock.ClockCycles(1); err != nil {
			return errors.Wrapf(err, "%s phase, tick %d", ph, *n)
		}
		*n++
	}
	return nil
}

// Harvest runs n successive measurements. On error, it returns the intervals
// measured so far.
//
func (s *Sampler) Harvest(ctx context.Context, n int) ([]Interval, error) {
	r := make([]Interval, 0, n)
	for i := 0; i < n; i++ {
		iv, err := s.Measure(ctx)
		if err != nil {
			return r, errors.Wrapf(err, "measurement %d", i)
		}
		r = append(r, iv)
	}
	return r, nil
}
