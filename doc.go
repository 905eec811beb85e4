/*
Package syncsim provides a naive clocked circuit simulator together with the
tools to observe it from test code: bus probes that read a set of wires as an
unsigned value, a cooperative clock scheduler (package sched) and an
edge-interval sampler (package probe) that measures how long a status bit of
an output bus stays asserted and deasserted.

Circuits are built from parts (logic gates, counters, pulse sources, etc.,
see package hwlib) connected by named wires:

	c, err := syncsim.NewCircuit(0, 2,
		hwlib.Pulse(16, 4, 0)(syncsim.W{"out": "uo_out[7]"}),
		hwlib.CounterN(7)(syncsim.W{"out": "uo_out[0..6]"}),
	)

Each simulation step evaluates every component once. A clock cycle is
SPC() steps long; clocked parts update once per cycle, on the raising edge of
the clk wire.
*/
package syncsim
