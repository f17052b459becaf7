/*
Package hwbench provides an edge scheduled simulator to verify clocked
digital circuits built in Go.

Circuits are composed of parts (registers, muxers, adders, ...) wired by name
with connection strings, like a real hardware description language:

	reg := hwlib.Register(hwlib.DFFAsyncRstN, 8)
	c, err := hwbench.NewCircuit(0, reg("data=d, async_rst_n=rst_n, q=q"))

Every signal holds up to 64 bits. Parts are closures reading the committed
values of their inputs and setting their outputs; combinational logic is
settled in delta cycles until no signal changes.

A test drives the circuit through a fixed set of synchronization points,
from a single goroutine:

	RisingEdge    the clock has risen; registers sampled their inputs but
	              reads still return the values before the edge.
	ReadOnly      all updates at the current time are applied and settled.
	              Writes are rejected.
	NextTimeStep  the next picosecond, the earliest instant to write stimulus
	              for the next edge.
	FallingEdge   the clock has fallen.
	Timer         an arbitrary delay, running through any edges in between.

Writes are staged and applied, in order, when the next synchronization
method is called, after any pending edge update. An asynchronous reset
written right after a rising edge therefore overrides the update of that
edge.

*/
package hwbench
