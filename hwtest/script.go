// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits and
// measurements taken on them.
//
package hwtest

import "github.com/pkg/errors"

// ErrExhausted is returned by Script.ClockCycles when advancing past the last
// sample.
//
var ErrExhausted = errors.New("script exhausted")

// A Script is a scripted bus and clock: Value returns the current sample and
// ClockCycles moves to the next ones. It implements probe.Bus and probe.Clock.
//
type Script struct {
	samples []uint64
	pos     int
}

// NewScript returns a script over the given samples, positioned on the first
// one.
//
func NewScript(samples ...uint64) *Script {
	return &Script{samples: samples}
}

// Bits builds samples from 0/1 flags: each non-zero flag yields mask, each
// zero flag yields 0.
//
//	Bits(0x80, 1, 1, 0, 1) // []uint64{0x80, 0x80, 0, 0x80}
//
func Bits(mask uint64, flags ...int) []uint64 {
	r := make([]uint64, len(flags))
	for i, f := range flags {
		if f != 0 {
			r[i] = mask
		}
	}
	return r
}

// Value returns the current sample, or 0 for an empty script.
//
func (s *Script) Value() uint64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[s.pos]
}

// ClockCycles advances the script by n samples. Advancing past the last
// sample leaves the script on it and returns ErrExhausted.
//
func (s *Script) ClockCycles(n uint) error {
	if s.pos+int(n) >= len(s.samples) {
		from := s.pos
		if len(s.samples) > 0 {
			s.pos = len(s.samples) - 1
		}
		return errors.Wrapf(ErrExhausted, "advance %d from sample %d", n, from)
	}
	s.pos += int(n)
	return nil
}

// Pos returns the index of the current sample, which is also the number of
// ticks run so far.
//
func (s *Script) Pos() int { return s.pos }
