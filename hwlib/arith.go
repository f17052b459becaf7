// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwbench"
)

type adder struct {
	A     int `hw:"in,,Width"`
	B     int `hw:"in,,Width"`
	Out   int `hw:"out,,Width"`
	C     int `hw:"out"`
	Width int
}

func (p *adder) Update(c *hwbench.Circuit) {
	va, vb := c.Get(p.A), c.Get(p.B)
	sum := va + vb
	c.Set(p.Out, sum)
	// carry out of bit Width-1
	var carry uint64
	if p.Width == hwbench.MaxWidth {
		if sum < va {
			carry = 1
		}
	} else {
		carry = sum >> uint(p.Width)
	}
	c.Set(p.C, carry)
}

// Adder returns a width bits adder.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width], c
//	Function: out = lsb(a + b)
//	          c = carry out of a + b
//
func Adder(width int) hwbench.NewPartFn {
	checkWidth(width)
	sp := hwbench.MakePart(&adder{Width: width})
	sp.Name = "ADD" + strconv.Itoa(width)
	return sp.NewPart
}

// AddConst returns a width bits incrementer by the constant k.
//
//	Inputs: a[width]
//	Outputs: out[width]
//	Function: out = (a + k) mod 2^width
//
func AddConst(width int, k uint64) hwbench.NewPartFn {
	return (&hwbench.PartSpec{
		Name:    "ADDK" + strconv.Itoa(width),
		Inputs:  hwbench.Pins{word(pA, width)},
		Outputs: hwbench.Pins{word(pOut, width)},
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			a, out := s.Pin(pA), s.Pin(pOut)
			return []hwbench.Component{
				func(c *hwbench.Circuit) { c.Set(out, c.Get(a)+k) },
			}
		}}).NewPart
}
