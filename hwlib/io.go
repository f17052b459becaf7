// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwbench"
)

// Const returns a constant source.
//
//	Outputs: out[width]
//	Function: out = v
//
func Const(width int, v uint64) hwbench.NewPartFn {
	if err := word(pOut, width).Check(v); err != nil {
		panic(err)
	}
	return (&hwbench.PartSpec{
		Name:    "CONST" + strconv.Itoa(width),
		Outputs: hwbench.Pins{word(pOut, width)},
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			out := s.Pin(pOut)
			return []hwbench.Component{
				func(c *hwbench.Circuit) { c.Set(out, v) },
			}
		}}).NewPart
}

// Split returns a part that splits a word into its bits.
//
//	Inputs: in[width]
//	Outputs: out[0..width-1]
//	Function: out[i] = bit i of in
//
func Split(width int) hwbench.NewPartFn {
	return (&hwbench.PartSpec{
		Name:    "SPLIT" + strconv.Itoa(width),
		Inputs:  hwbench.Pins{word(pIn, width)},
		Outputs: bus(pOut, width, 1),
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			in, out := s.Pin(pIn), s.Bus(pOut, width)
			return []hwbench.Component{func(c *hwbench.Circuit) {
				v := c.Get(in)
				for bit := range out {
					c.Set(out[bit], v>>uint(bit)&1)
				}
			}}
		}}).NewPart
}

// Join returns a part that assembles bits into a word.
//
//	Inputs: in[0..width-1]
//	Outputs: out[width]
//	Function: bit i of out = in[i]
//
func Join(width int) hwbench.NewPartFn {
	return (&hwbench.PartSpec{
		Name:    "JOIN" + strconv.Itoa(width),
		Inputs:  bus(pIn, width, 1),
		Outputs: hwbench.Pins{word(pOut, width)},
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			in, out := s.Bus(pIn, width), s.Pin(pOut)
			return []hwbench.Component{func(c *hwbench.Circuit) {
				var v uint64
				for bit := range in {
					v |= c.Get(in[bit]) << uint(bit)
				}
				c.Set(out, v)
			}}
		}}).NewPart
}
