// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/syncsim"
)

// IO parts connect a circuit to Go code. They run on every simulation step,
// not once per clock cycle.

func ioSource(name string, outputs []string, mount func(s *syncsim.Socket) syncsim.Component) syncsim.NewPartFn {
	return (&syncsim.PartSpec{
		Name:    name,
		Outputs: outputs,
		Mount: func(s *syncsim.Socket) []syncsim.Component {
			return []syncsim.Component{mount(s)}
		},
	}).NewPart
}

func ioSink(name string, inputs []string, mount func(s *syncsim.Socket) syncsim.Component) syncsim.NewPartFn {
	return (&syncsim.PartSpec{
		Name:   name,
		Inputs: inputs,
		Mount: func(s *syncsim.Socket) []syncsim.Component {
			return []syncsim.Component{mount(s)}
		},
	}).NewPart
}

// Input returns a part driving its output from f.
//
//	Outputs: out
//	Function: out = f()
//
func Input(f func() bool) syncsim.NewPartFn {
	return ioSource("Input", []string{pOut}, func(s *syncsim.Socket) syncsim.Component {
		out := s.Pin(pOut)
		return func(c *syncsim.Circuit) { c.Set(out, f()) }
	})
}

// Output returns a part calling f with the state of its input.
//
//	Inputs: in
//	Function: f(in)
//
func Output(f func(bool)) syncsim.NewPartFn {
	return ioSink("Output", []string{pIn}, func(s *syncsim.Socket) syncsim.Component {
		in := s.Pin(pIn)
		return func(c *syncsim.Circuit) { f(c.Get(in)) }
	})
}

// InputN returns a bits wide input bus driven from f.
//
//	Outputs: out[bits]
//	Function: out = f()
//
func InputN(bits int, f func() uint64) syncsim.NewPartFn {
	return ioSource("INPUT"+strconv.Itoa(bits), bus(bits, pOut), func(s *syncsim.Socket) syncsim.Component {
		out := s.Bus(pOut, bits)
		return func(c *syncsim.Circuit) { SetUint64(c, out, f()) }
	})
}

// OutputN returns a bits wide output bus calling f with the bus value.
//
//	Inputs: in[bits]
//	Function: f(in)
//
func OutputN(bits int, f func(uint64)) syncsim.NewPartFn {
	return ioSink("OUTPUT"+strconv.Itoa(bits), bus(bits, pIn), func(s *syncsim.Socket) syncsim.Component {
		in := s.Bus(pIn, bits)
		return func(c *syncsim.Circuit) { f(Uint64(c, in)) }
	})
}
