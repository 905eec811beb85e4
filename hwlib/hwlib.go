// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for syncsim circuits.
//
// Every part updates its outputs in one simulation step. Clocked parts latch on
// the rising edge of clk; a chain of combinational parts after them settles one
// step per part, which the steps per cycle of the circuit must leave room for.
//
package hwlib

import "github.com/db47h/syncsim"

// common pin names
const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pOut = "out"
)

// bus returns the pin names name[0] to name[bits-1].
func bus(bits int, name string) []string {
	pins := make([]string, bits)
	for i := range pins {
		pins[i] = syncsim.BusPinName(name, i)
	}
	return pins
}

// Uint64 returns the current state of pins as an integer, pins[0] being the
// lsb.
//
func Uint64(c *syncsim.Circuit, pins []int) uint64 {
	var v uint64
	for i, n := range pins {
		if c.Get(n) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// SetUint64 sets the next state of pins to the bits of v, pins[0] being the
// lsb.
//
func SetUint64(c *syncsim.Circuit, pins []int, v uint64) {
	for i, n := range pins {
		c.Set(n, v>>uint(i)&1 != 0)
	}
}
