// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides the parts exercised by the bench: registers with
// optional reset and enable, word multiplexers, adders and the program
// counter generation stage of a pipelined RISC-V core.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"math/bits"
	"strconv"

	"github.com/db47h/hwbench"
)

// common pin names
const (
	pA        = "a"
	pB        = "b"
	pIn       = "in"
	pOut      = "out"
	pData     = "data"
	pQ        = "q"
	pAsyncRst = "async_rst_n"
	pSyncRst  = "sync_rst_n"
	pEnable   = "enabler"
	pChannels = "channels"
	pSelect   = "select"
	pChanOut  = "channel_out"
)

// Parameter names exposed by the parts of this package.
//
const (
	ParamWidth         = "WIDTH"
	ParamChannelsCount = "CHANNELS_COUNT"
	ParamChannelsWidth = "CHANNELS_WIDTH"
	ParamPCWidth       = "PC_WIDTH"
)

// word returns a pin declaration of the given width.
func word(name string, width int) hwbench.Signal {
	checkWidth(width)
	return hwbench.Signal{Name: name, Width: width}
}

// bus returns n pins name[0] through name[n-1] of the given width.
func bus(name string, n, width int) hwbench.Pins {
	checkWidth(width)
	p := make(hwbench.Pins, n)
	for i := range p {
		p[i] = hwbench.Signal{Name: hwbench.BusPinName(name, i), Width: width}
	}
	return p
}

func checkWidth(width int) {
	if width <= 0 || width > hwbench.MaxWidth {
		panic("invalid signal width " + strconv.Itoa(width))
	}
}

// SelectWidth returns the width of the select input of a mux with n
// channels.
//
func SelectWidth(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}
