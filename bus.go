// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package syncsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A BusProbe is a read-only live handle on a set of wires of a circuit.
//
type BusProbe struct {
	c    *Circuit
	pins []int // pins[i] is bit i
}

// Probe returns a probe on the named top level bus or wire.
//
// A bus is made of all wires named bus[i]; indices that were never connected
// read as false. A plain wire name yields a 1 bit probe.
//
func (c *Circuit) Probe(name string) (*BusProbe, error) {
	if n, ok := c.wires[name]; ok {
		return &BusProbe{c, []int{n}}, nil
	}
	width := 0
	bits := make(map[int]int)
	prefix := name + "["
	for k, n := range c.wires {
		if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "]") {
			continue
		}
		i, err := strconv.Atoi(k[len(prefix) : len(k)-1])
		if err != nil || i < 0 {
			continue
		}
		if i >= 64 {
			return nil, errors.Errorf("bus %s is wider than 64 bits", name)
		}
		bits[i] = n
		if i >= width {
			width = i + 1
		}
	}
	if width == 0 {
		return nil, errors.New("no such bus or wire: " + name)
	}
	p := &BusProbe{c, make([]int, width)}
	for i := range p.pins {
		if n, ok := bits[i]; ok {
			p.pins[i] = n
		} else {
			p.pins[i] = cstFalse
		}
	}
	return p, nil
}

// Value returns the current state of the bus. Pin 0 is the lsb.
//
// Value must not be called concurrently with Step.
//
func (p *BusProbe) Value() uint64 {
	var v uint64
	for bit, n := range p.pins {
		if p.c.Get(n) {
			v |= 1 << uint(bit)
		}
	}
	return v
}

// Width returns the bus width in bits.
//
func (p *BusProbe) Width() int { return len(p.pins) }
