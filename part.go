// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package syncsim

import "github.com/pkg/errors"

// A MountFn mounts a part into socket s and returns the components that
// simulate it. The returned closures capture the wire numbers given by the
// socket:
//
//	Mount: func(s *Socket) []Component {
//		in, out := s.Pin("in"), s.Pin("out")
//		return []Component{
//			func(c *Circuit) { c.Set(out, !c.Get(in)) },
//		}
//	}
//
type MountFn func(s *Socket) []Component

// A PartSpec is the blueprint of a part: its name, pins and mount function.
// Its NewPart method is a NewPartFn:
//
//	pulse := &PartSpec{Name: "PULSE", Outputs: IO("out"), Mount: mountPulse}
//	c, err := NewCircuit(0, 2, pulse.NewPart(W{"out": "uo_out[7]"}))
//
type PartSpec struct {
	Name string
	// Pin names, all distinct. IO("a, bus[2]") expands bus declarations.
	Inputs  []string
	Outputs []string

	Mount MountFn
}

// NewPart returns a Part for p with the given connections.
//
func (p *PartSpec) NewPart(conns W) Part {
	return Part{p, conns}
}

func contains(pins []string, name string) bool {
	for _, n := range pins {
		if n == name {
			return true
		}
	}
	return false
}

func (p *PartSpec) isInput(name string) bool  { return contains(p.Inputs, name) }
func (p *PartSpec) isOutput(name string) bool { return contains(p.Outputs, name) }

// busWidth returns the number of pins of the named bus.
//
func (p *PartSpec) busWidth(name string) int {
	n := 0
	for p.isInput(BusPinName(name, n)) || p.isOutput(BusPinName(name, n)) {
		n++
	}
	return n
}

// A NewPartFn returns a new Part with the given connections. All part
// constructors of hwlib return or are NewPartFns.
//
type NewPartFn func(conns W) Part

// A Part is a PartSpec connected to the wires of a circuit.
//
type Part struct {
	*PartSpec
	Conns W
}

// Names of the constant wires present in every circuit. GND is an alias for
// False.
//
var (
	True  = "true"
	False = "false"
	GND   = "false"
	Clk   = "clk"
)

const (
	cstFalse = iota
	cstTrue
	cstClk
	cstCount
)

// A Socket maps the pin names of a part to wire numbers in a circuit.
//
type Socket struct {
	m map[string]int
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	return &Socket{
		m: map[string]int{False: cstFalse, True: cstTrue, Clk: cstClk},
		c: c,
	}
}

// Pin returns the wire connected to the named pin. It panics if no such pin
// exists, which only happens when a MountFn asks for a pin missing from its
// PartSpec.
//
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// PinOrNew returns the wire connected to the named pin, allocating a new wire
// on first use.
//
func (s *Socket) PinOrNew(name string) int {
	n, ok := s.m[name]
	if !ok {
		n = s.c.allocPin()
		s.m[name] = n
	}
	return n
}

// Bus returns the wires of pins name[0] to name[bits-1], lsb first. Like Pin,
// it panics on a missing pin.
//
func (s *Socket) Bus(name string, bits int) []int {
	out := make([]int, bits)
	for i := range out {
		out[i] = s.Pin(BusPinName(name, i))
	}
	return out
}

func isConstant(name string) bool {
	return name == True || name == False || name == Clk
}

// plug builds the socket of part p inside s. drivers tracks which part pin
// drives each wire of the circuit.
//
func (s *Socket) plug(p Part, drivers map[int]string) (*Socket, error) {
	conns, err := p.Conns.expand(p.PartSpec)
	if err != nil {
		return nil, err
	}
	sub := newSocket(s.c)
	for k, vs := range conns {
		switch {
		case p.isInput(k):
			if len(vs) > 1 {
				return nil, errors.New("input pin " + k + " connected to more than one wire")
			}
			sub.m[k] = s.PinOrNew(vs[0])
		case p.isOutput(k):
			n := -1
			for _, v := range vs {
				if isConstant(v) {
					return nil, errors.Errorf("%s.%s: output pin connected to constant %q", p.Name, k, v)
				}
				w, ok := s.m[v]
				switch {
				case n < 0:
					n = s.PinOrNew(v)
				case !ok:
					s.m[v] = n
				case w != n:
					return nil, errors.Errorf("%s.%s: cannot merge wires %s and %s", p.Name, k, vs[0], v)
				}
			}
			if d, ok := drivers[n]; ok {
				return nil, errors.Errorf("%s.%s: wire %s already driven by %s", p.Name, k, vs[0], d)
			}
			drivers[n] = p.Name + "." + k
			sub.m[k] = n
		default:
			return nil, errors.New("invalid pin name " + k + " for part " + p.Name)
		}
	}
	// unconnected inputs read false, unconnected outputs get a private wire.
	for _, i := range p.Inputs {
		if _, ok := sub.m[i]; !ok {
			sub.m[i] = cstFalse
		}
	}
	for _, o := range p.Outputs {
		if _, ok := sub.m[o]; !ok {
			sub.m[o] = s.c.allocPin()
		}
	}
	return sub, nil
}
