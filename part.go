// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

// A Component is a part of a circuit that reads and updates signal states.
// Components are called once per evaluation pass of the circuit. They read
// committed values with Circuit.Get and write next values with Circuit.Set.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query the socket
// for assigned signal numbers and return closures around these numbers.
//
// For example, an 8 bits inverter can be defined like this:
//
//	inv := &PartSpec{
//		Name:    "Not8",
//		Inputs:  IO("in[8]"),
//		Outputs: IO("out[8]"),
//		Mount: func(s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func(c *Circuit) { c.Set(out, ^c.Get(in)) },
//			}
//		}}
//
// Components with internal state (registers) keep it in variables captured
// by the closure. Such state must only change when the component is
// evaluated.
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pins. Must be distinct pin names.
	Inputs Pins
	// Output pins. Must be distinct pin names.
	Outputs Pins
	// Params holds structural parameters of the part (bus widths, channel
	// counts, etc.). They are exposed by circuits through Circuit.Param.
	Params map[string]int

	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a
// Part. It panics if the connection string cannot be parsed.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// pin returns the declaration of pin name and whether it is an output.
//
func (p *PartSpec) pin(name string) (s Signal, output bool, ok bool) {
	if s, ok = p.Inputs.Lookup(name); ok {
		return s, false, true
	}
	s, ok = p.Outputs.Lookup(name)
	return s, true, ok
}

// A NewPartFn is a function that takes a connection configuration and
// returns a new Part. See ParseConnections for the syntax of the connection
// configuration string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a
// host chip.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part

// A Socket maps a part's pin names to signal numbers in a circuit.
//
type Socket struct {
	m map[string]int
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	return &Socket{
		m: map[string]int{Clk: c.clk},
		c: c,
	}
}

// Pin returns the signal number allocated to the given pin name.
// This function panics if the pin does not exist.
//
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// Bus returns the signal numbers allocated to pins name[0] through
// name[n-1].
//
func (s *Socket) Bus(name string, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = s.Pin(BusPinName(name, i))
	}
	return out
}
