// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"sort"

	"github.com/pkg/errors"
)

// Clk is the name of the reserved clock signal. Any part input connected to
// a wire named Clk receives the circuit clock.
//
const Clk = "clk"

// a wire connects pins within a chip.
type wire struct {
	name   string
	width  int
	io     bool   // chip input or output pin
	input  bool   // chip input pin
	driver string // part pin driving the wire
	loads  int    // number of part inputs connected to the wire
}

type chip struct {
	PartSpec
	parts    []Part
	wires    map[string]*wire
	external bool // undriven wires are inputs of the enclosing circuit
}

// Chip composes existing parts into a new part packaged into a chip.
// The pins specified as inputs and outputs will be the inputs and outputs of
// the chip.
//
// A 4 way mux could be built from 2 way muxes like this:
//
//	mux4, err := Chip("MUX4",
//		IO("channels{4}[8], select[2]"),
//		IO("channel_out[8]"),
//		mux2("channels[0..1]=channels[0..1], select=s0, channel_out=m0"),
//		mux2("channels[0..1]=channels[2..3], select=s0, channel_out=m1"),
//		mux2("channels[0]=m0, channels[1]=m1, select=s1, channel_out=channel_out"),
//		...
//	)
//
// Wires that are not chip pins are internal to the chip. Every internal wire
// and every chip output must be driven by exactly one part output, and all
// pins connected to a wire must have the same width. Unconnected part inputs
// are tied to 0.
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips.
//
func Chip(name string, inputs, outputs Pins, parts ...Part) (NewPartFn, error) {
	sp, err := ChipSpec(name, inputs, outputs, parts...)
	if err != nil {
		return nil, err
	}
	return sp.NewPart, nil
}

// ChipSpec is like Chip but returns the PartSpec of the new chip, allowing
// callers to set its Params.
//
func ChipSpec(name string, inputs, outputs Pins, parts ...Part) (*PartSpec, error) {
	c, err := newChip(name, inputs, outputs, parts, false)
	if err != nil {
		return nil, err
	}
	return &c.PartSpec, nil
}

func newChip(name string, inputs, outputs Pins, parts []Part, external bool) (*chip, error) {
	wires := make(map[string]*wire, len(inputs)+len(outputs))
	for _, in := range inputs {
		wires[in.Name] = &wire{name: in.Name, width: in.Width, io: true, input: true}
	}
	for _, o := range outputs {
		if _, ok := wires[o.Name]; ok {
			return nil, errors.New(name + ": pin " + o.Name + " declared as both input and output")
		}
		wires[o.Name] = &wire{name: o.Name, width: o.Width, io: true}
	}
	if _, ok := wires[Clk]; ok {
		return nil, errors.New(name + ": pin name " + Clk + " is reserved")
	}

	for _, p := range parts {
		seen := make(map[string]bool, len(p.Conns))
		for _, cn := range p.Conns {
			sig, isOut, ok := p.pin(cn.Pin)
			if !ok {
				return nil, errors.New("invalid pin name " + cn.Pin + " for part " + p.Name)
			}
			if seen[cn.Pin] {
				return nil, errors.New(p.Name + "." + cn.Pin + ": pin connected more than once")
			}
			seen[cn.Pin] = true
			pn := p.Name + "." + cn.Pin
			switch {
			case isConst(cn.Wire):
				if isOut {
					return nil, errors.New(pn + ":" + cn.Wire + ": output pin connected to a constant")
				}
				v, _ := parseConst(cn.Wire)
				if err := sig.Check(v); err != nil {
					return nil, errors.Wrap(errors.Wrap(ErrConfig, err.Error()), pn)
				}
				continue
			case cn.Wire == Clk:
				if isOut {
					return nil, errors.New(pn + ":" + Clk + ": output pin connected to clock signal")
				}
				if sig.Width != 1 {
					return nil, errors.Wrapf(ErrConfig, "%s: %d-bit pin connected to clock signal", pn, sig.Width)
				}
				continue
			}
			w := wires[cn.Wire]
			if w == nil {
				w = &wire{name: cn.Wire, width: sig.Width}
				wires[cn.Wire] = w
			}
			if w.width != sig.Width {
				return nil, errors.Wrapf(ErrConfig, "%s: %d-bit pin connected to %d-bit wire %s", pn, sig.Width, w.width, w.name)
			}
			if !isOut {
				w.loads++
				continue
			}
			if w.input {
				return nil, errors.New(pn + ":" + cn.Wire + ": chip input pin used as output")
			}
			if w.driver != "" {
				return nil, errors.New(pn + ":" + cn.Wire + ": output pin already used as output")
			}
			w.driver = pn
		}
	}

	names := make([]string, 0, len(wires))
	for n := range wires {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w := wires[n]
		switch {
		case w.input:
		case w.driver == "" && w.io:
			return nil, errors.New(name + ": output pin " + n + " not connected to any part output")
		case w.driver == "" && !external:
			return nil, errors.New("pin " + n + " not connected to any output")
		case w.loads == 0 && !w.io && !external:
			return nil, errors.New("pin " + n + " not connected to any input")
		}
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  inputs,
			Outputs: outputs,
		},
		parts:    parts,
		wires:    wires,
		external: external,
	}
	c.PartSpec.Mount = c.mount
	return c, nil
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component
	cc := s.c
	internal := make(map[string]int)

	signal := func(name string) int {
		if w := c.wires[name]; w.io {
			return s.Pin(name)
		}
		if n, ok := internal[name]; ok {
			return n
		}
		sname := name
		if !c.external {
			sname = c.Name + "." + name
		}
		n := cc.alloc(sname, c.wires[name].width)
		internal[name] = n
		return n
	}

	for _, p := range c.parts {
		sub := newSocket(cc)
		for _, cn := range p.Conns {
			sig, isOut, _ := p.pin(cn.Pin)
			switch {
			case isConst(cn.Wire):
				v, _ := parseConst(cn.Wire)
				sub.m[cn.Pin] = cc.constant(sig.Width, v)
			case cn.Wire == Clk:
				sub.m[cn.Pin] = cc.clk
			default:
				n := signal(cn.Wire)
				sub.m[cn.Pin] = n
				if isOut {
					cc.driven[n] = true
				}
			}
		}
		// unconnected inputs are tied to 0, unconnected outputs get a
		// private signal.
		for _, in := range p.Inputs {
			if _, ok := sub.m[in.Name]; !ok {
				sub.m[in.Name] = cc.constant(in.Width, 0)
			}
		}
		for _, o := range p.Outputs {
			if _, ok := sub.m[o.Name]; !ok {
				n := cc.alloc(p.Name+"."+o.Name, o.Width)
				cc.driven[n] = true
				sub.m[o.Name] = n
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}
