// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/syncsim"

// Combinational gates. Their output follows their inputs with a one step
// delay.

var notSpec = &syncsim.PartSpec{
	Name:    "NOT",
	Inputs:  []string{pIn},
	Outputs: []string{pOut},
	Mount: func(s *syncsim.Socket) []syncsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return []syncsim.Component{func(c *syncsim.Circuit) {
			c.Set(out, !c.Get(in))
		}}
	},
}

// binary returns the spec of a two input gate computing fn.
//
func binary(name string, fn func(a, b bool) bool) *syncsim.PartSpec {
	return &syncsim.PartSpec{
		Name:    name,
		Inputs:  []string{pA, pB},
		Outputs: []string{pOut},
		Mount: func(s *syncsim.Socket) []syncsim.Component {
			a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
			return []syncsim.Component{func(c *syncsim.Circuit) {
				c.Set(out, fn(c.Get(a), c.Get(b)))
			}}
		},
	}
}

var (
	andSpec  = binary("AND", func(a, b bool) bool { return a && b })
	nandSpec = binary("NAND", func(a, b bool) bool { return !(a && b) })
	orSpec   = binary("OR", func(a, b bool) bool { return a || b })
	norSpec  = binary("NOR", func(a, b bool) bool { return !(a || b) })
	xorSpec  = binary("XOR", func(a, b bool) bool { return a != b })
)

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(w syncsim.W) syncsim.Part { return notSpec.NewPart(w) }

// And returns an AND gate (out = a && b).
//
func And(w syncsim.W) syncsim.Part { return andSpec.NewPart(w) }

// Nand returns a NAND gate (out = !(a && b)).
//
func Nand(w syncsim.W) syncsim.Part { return nandSpec.NewPart(w) }

// Or returns an OR gate (out = a || b).
//
func Or(w syncsim.W) syncsim.Part { return orSpec.NewPart(w) }

// Nor returns a NOR gate (out = !(a || b)). Looping its output back on one
// input makes an oscillator that runs while the other input is false.
//
func Nor(w syncsim.W) syncsim.Part { return norSpec.NewPart(w) }

// Xor returns a XOR gate (out = a != b).
//
func Xor(w syncsim.W) syncsim.Part { return xorSpec.NewPart(w) }
