// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwbench"
)

// MuxSpec returns a PartSpec for a count way mux of width bits channels.
// See MuxN.
//
func MuxSpec(count, width int) *hwbench.PartSpec {
	if count < 2 {
		panic("mux channel count must be at least 2, got " + strconv.Itoa(count))
	}
	sw := SelectWidth(count)
	return &hwbench.PartSpec{
		Name:    "MUX" + strconv.Itoa(count) + "x" + strconv.Itoa(width),
		Inputs:  append(bus(pChannels, count, width), word(pSelect, sw)),
		Outputs: hwbench.Pins{word(pChanOut, width)},
		Params: map[string]int{
			ParamChannelsCount: count,
			ParamChannelsWidth: width,
		},
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			ch, sel, out := s.Bus(pChannels, count), s.Pin(pSelect), s.Pin(pChanOut)
			return []hwbench.Component{
				func(c *hwbench.Circuit) {
					i := c.Get(sel)
					if i >= uint64(len(ch)) {
						c.Set(out, 0)
						return
					}
					c.Set(out, c.Get(ch[i]))
				}}
		}}
}

// MuxN returns a count way multiplexer of width bits channels.
//
//	Inputs: channels[0..count-1][width], select[SelectWidth(count)]
//	Outputs: channel_out[width]
//	Function: channel_out = channels[select], or 0 if select >= count
//	Params: CHANNELS_COUNT, CHANNELS_WIDTH
//
func MuxN(count, width int) hwbench.NewPartFn {
	return MuxSpec(count, width).NewPart
}
