// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package syncsim

import (
	"math/bits"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component computes the next state of the wires it drives from the current
// state of the circuit. Components run once per simulation step, possibly
// concurrently with each other, and must only Set the wires they drive.
//
type Component func(c *Circuit)

// Circuit is a clocked circuit simulation.
//
// Wire states live in two frames: components read the current frame with Get
// and write the next one with Set. Frames are swapped at the end of each step.
//
type Circuit struct {
	cur, next []bool
	comps     []Component
	nwires    int
	spc       uint // steps per clock cycle, a power of two
	steps     uint

	wires map[string]int // named top level wires

	pool []chan struct{}
	busy sync.WaitGroup
}

// NewCircuit mounts the given parts and returns a circuit ready to run.
//
// workers is the number of goroutines that run the components of the circuit
// at each step. If less or equal to 0, GOMAXPROCS is used.
//
// stepsPerCycle is the number of simulation steps per clk cycle. It is rounded
// up to a power of two, with a minimum of 2. The clocked parts of hwlib settle
// in one step; chains of combinational parts need one step per gate.
//
// Dispose must be called once the circuit is no longer in use to stop worker
// goroutines.
//
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	c := &Circuit{nwires: cstCount, spc: roundSPC(stepsPerCycle)}
	top := newSocket(c)
	drivers := make(map[int]string)
	for _, p := range parts {
		if p.PartSpec == nil {
			return nil, errors.New("part with nil spec")
		}
		sub, err := top.plug(p, drivers)
		if err != nil {
			return nil, errors.Wrap(err, "mount "+p.Name)
		}
		c.comps = append(c.comps, p.Mount(sub)...)
	}
	c.comps = append(c.comps, (*Circuit).clock)
	c.wires = top.m

	c.cur = make([]bool, c.nwires)
	c.next = make([]bool, c.nwires)
	c.cur[cstTrue], c.next[cstTrue] = true, true
	c.cur[cstClk] = true

	c.startWorkers(workers)
	return c, nil
}

func roundSPC(n uint) uint {
	if n <= 2 {
		return 2
	}
	return 1 << uint(bits.Len(n-1))
}

// clock drives the clk wire: high during the first half of each cycle.
//
func (c *Circuit) clock() {
	if c.cur[cstFalse] || !c.cur[cstTrue] {
		panic("constant wire driven by a component")
	}
	c.next[cstClk] = (c.steps+1)&(c.spc-1) < c.spc/2
}

func (c *Circuit) startWorkers(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(-1)
	}
	size := (len(c.comps) + n - 1) / n
	for cs := c.comps; len(cs) > 0; {
		k := size
		if k > len(cs) {
			k = len(cs)
		}
		ch := make(chan struct{}, 1)
		c.pool = append(c.pool, ch)
		go c.work(cs[:k], ch)
		cs = cs[k:]
	}
}

func (c *Circuit) work(cs []Component, ch <-chan struct{}) {
	for range ch {
		for _, f := range cs {
			f(c)
		}
		c.busy.Done()
	}
	c.busy.Done()
}

// Dispose stops the worker goroutines of the circuit. The circuit must not be
// stepped afterwards.
//
func (c *Circuit) Dispose() {
	c.busy.Add(len(c.pool))
	for _, ch := range c.pool {
		close(ch)
	}
	c.busy.Wait()
	c.pool = nil
}

func (c *Circuit) allocPin() int {
	n := c.nwires
	c.nwires++
	return n
}

// Steps returns the number of simulation steps run so far.
//
func (c *Circuit) Steps() uint { return c.steps }

// Cycles returns the number of complete clock cycles run so far.
//
func (c *Circuit) Cycles() uint { return c.steps / c.spc }

// SPC returns the number of steps per clock cycle.
//
func (c *Circuit) SPC() uint { return c.spc }

// AtTick returns true if the current step is the first step of a clock cycle
// (rising edge of clk). Clocked parts latch their inputs when AtTick is true.
//
func (c *Circuit) AtTick() bool {
	return c.steps&(c.spc-1) == 0
}

// AtTock returns true if the current step is the first step of the second half
// of a clock cycle (falling edge of clk).
//
func (c *Circuit) AtTock() bool {
	return c.steps&(c.spc-1) == c.spc/2
}

// Get returns the current state of wire n, as returned by Socket.Pin.
//
func (c *Circuit) Get(n int) bool { return c.cur[n] }

// Set sets the next state of wire n.
//
func (c *Circuit) Set(n int, s bool) { c.next[n] = s }

// Toggle sets the next state of wire n to the inverse of its current state.
//
func (c *Circuit) Toggle(n int) { c.next[n] = !c.cur[n] }

// Step runs all components once and swaps frames.
//
func (c *Circuit) Step() {
	c.busy.Add(len(c.pool))
	for _, ch := range c.pool {
		ch <- struct{}{}
	}
	c.busy.Wait()
	c.steps++
	c.cur, c.next = c.next, c.cur
}

// Tick steps the simulation until clk falls.
//
func (c *Circuit) Tick() {
	for c.cur[cstClk] {
		c.Step()
	}
}

// Tock steps the simulation until clk rises. Once Tock returns, the outputs of
// clocked parts hold their value for the new cycle.
//
func (c *Circuit) Tock() {
	for !c.cur[cstClk] {
		c.Step()
	}
}

// TickTock runs the simulation for one full clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the number of components in the circuit.
//
func (c *Circuit) Size() int { return len(c.comps) }
