// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/syncsim"
)

// DFF returns a clocked data flip flop.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w syncsim.W) syncsim.Part {
	return (&syncsim.PartSpec{
		Name:    "DFF",
		Inputs:  []string{pIn},
		Outputs: []string{pOut},
		Mount: func(s *syncsim.Socket) []syncsim.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			var curOut bool
			return []syncsim.Component{
				func(c *syncsim.Circuit) {
					// raising edge?
					if c.AtTick() {
						curOut = c.Get(in)
					}
					c.Set(out, curOut)
				}}
		}}).NewPart(w)
}

// source returns the spec of a clocked part without inputs whose output
// during the n-th clock cycle (counting from 0) is f(n).
//
// A 1 bit source has a single "out" pin, wider sources an out[bits] bus.
//
func source(name string, bits int, f func(n uint64) uint64) *syncsim.PartSpec {
	outs := []string{pOut}
	if bits > 1 {
		outs = bus(bits, pOut)
	}
	return &syncsim.PartSpec{
		Name:    name,
		Outputs: outs,
		Mount: func(s *syncsim.Socket) []syncsim.Component {
			var pins []int
			if bits > 1 {
				pins = s.Bus(pOut, bits)
			} else {
				pins = []int{s.Pin(pOut)}
			}
			var n, cur uint64
			return []syncsim.Component{
				func(c *syncsim.Circuit) {
					if c.AtTick() {
						cur = f(n)
						n++
					}
					SetUint64(c, pins, cur)
				}}
		}}
}

// CounterN returns a free running N-bits counter.
//
//	Outputs: out[bits]
//	Function: out(t) = t mod 2^bits
//
func CounterN(bits int) syncsim.NewPartFn {
	mask := ^uint64(0)
	if bits < 64 {
		mask = 1<<uint(bits) - 1
	}
	return source("COUNTER"+strconv.Itoa(bits), bits, func(n uint64) uint64 {
		return n & mask
	}).NewPart
}

// Pulse returns a periodic pulse source. The output is true for high clock
// cycles then false for low cycles. phase is the number of cycles into the
// period at cycle 0.
//
//	Outputs: out
//	Function: out(t) = (t + phase) mod (high + low) < high
//
// Pulse panics if high + low is 0.
//
func Pulse(high, low, phase uint) syncsim.NewPartFn {
	period := uint64(high) + uint64(low)
	if period == 0 {
		panic("pulse period is 0")
	}
	return source("PULSE", 1, func(n uint64) uint64 {
		if (n+uint64(phase))%period < uint64(high) {
			return 1
		}
		return 0
	}).NewPart
}

// Sequence returns a source replaying the given samples, one per clock cycle.
// Once all samples have been output, the last one is held.
//
//	Outputs: out[bits] (out if bits is 1)
//	Function: out(t) = samples[min(t, len(samples)-1)]
//
func Sequence(bits int, samples []uint64) syncsim.NewPartFn {
	s := append([]uint64(nil), samples...)
	return source("SEQUENCE"+strconv.Itoa(bits), bits, func(n uint64) uint64 {
		if len(s) == 0 {
			return 0
		}
		if n >= uint64(len(s)) {
			n = uint64(len(s)) - 1
		}
		return s[n]
	}).NewPart
}
