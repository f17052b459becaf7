// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"
	"strings"

	"github.com/db47h/hwbench"
	"github.com/pkg/errors"
)

// RegKind selects the reset and enable behavior of a register.
//
type RegKind int

// Register kinds. Resets are active low.
//
const (
	DFF            RegKind = iota // no reset, loads on every rising edge
	DFFEn                         // no reset, loads when enabler is high
	DFFAsyncRstN                  // asynchronous reset
	DFFAsyncRstNEn                // asynchronous reset, enable gated
	DFFSyncRstN                   // synchronous reset
	DFFSyncRstNEn                 // synchronous reset, enable gated
)

var regNames = [...]string{
	DFF:            "dff",
	DFFEn:          "dff_en",
	DFFAsyncRstN:   "dff_async_rst_n",
	DFFAsyncRstNEn: "dff_async_rst_n_en",
	DFFSyncRstN:    "dff_sync_rst_n",
	DFFSyncRstNEn:  "dff_sync_rst_n_en",
}

// RegKinds returns all register kinds.
//
func RegKinds() []RegKind {
	return []RegKind{DFF, DFFEn, DFFAsyncRstN, DFFAsyncRstNEn, DFFSyncRstN, DFFSyncRstNEn}
}

// ParseRegKind returns the register kind with the given name, as returned by
// RegKind.String.
//
func ParseRegKind(name string) (RegKind, error) {
	for k, n := range regNames {
		if n == name {
			return RegKind(k), nil
		}
	}
	return 0, errors.Errorf("unknown register kind %q", name)
}

func (k RegKind) String() string {
	if k < 0 || int(k) >= len(regNames) {
		return "RegKind(" + strconv.Itoa(int(k)) + ")"
	}
	return regNames[k]
}

// Async returns true if k has an asynchronous reset input.
func (k RegKind) Async() bool { return k == DFFAsyncRstN || k == DFFAsyncRstNEn }

// Sync returns true if k has a synchronous reset input.
func (k RegKind) Sync() bool { return k == DFFSyncRstN || k == DFFSyncRstNEn }

// Gated returns true if k has an enable input.
func (k RegKind) Gated() bool { return k == DFFEn || k == DFFAsyncRstNEn || k == DFFSyncRstNEn }

// ResetPin returns the name of the reset input of k, or "" if k has no
// reset.
//
func (k RegKind) ResetPin() string {
	switch {
	case k.Async():
		return pAsyncRst
	case k.Sync():
		return pSyncRst
	}
	return ""
}

// EnablePin returns the name of the enable input of k, or "" if k is not
// enable gated.
//
func (k RegKind) EnablePin() string {
	if k.Gated() {
		return pEnable
	}
	return ""
}

// RegisterSpec returns the PartSpec of a register of the given kind and
// width. See Register.
//
func RegisterSpec(kind RegKind, width int) *hwbench.PartSpec {
	in := hwbench.Pins{word(pData, width)}
	if p := kind.ResetPin(); p != "" {
		in = append(in, word(p, 1))
	}
	if p := kind.EnablePin(); p != "" {
		in = append(in, word(p, 1))
	}
	return &hwbench.PartSpec{
		Name:    strings.ToUpper(kind.String()),
		Inputs:  in,
		Outputs: hwbench.Pins{word(pQ, width)},
		Params:  map[string]int{ParamWidth: width},
		Mount: func(s *hwbench.Socket) []hwbench.Component {
			d, q := s.Pin(pData), s.Pin(pQ)
			rst, en := -1, -1
			if p := kind.ResetPin(); p != "" {
				rst = s.Pin(p)
			}
			if kind.Gated() {
				en = s.Pin(pEnable)
			}
			async, sync := kind.Async(), kind.Sync()
			var cur uint64
			return []hwbench.Component{
				func(c *hwbench.Circuit) {
					switch {
					case async && c.Get(rst) == 0:
						// level sensitive, also holds through edges
						cur = 0
					case c.Rising():
						switch {
						case sync && c.Get(rst) == 0:
							cur = 0
						case en < 0 || c.Get(en) != 0:
							cur = c.Get(d)
						}
					}
					c.Set(q, cur)
				}}
		}}
}

// Register returns a clocked register of the given kind and width.
//
//	Inputs: data[width], async_rst_n or sync_rst_n (reset kinds), enabler (enable kinds)
//	Outputs: q[width]
//	Function: at each rising edge of clk, if enabler { q = data }
//	          sync_rst_n == 0 clears q at the rising edge
//	          async_rst_n == 0 clears q immediately and holds it cleared
//	Params: WIDTH
//
func Register(kind RegKind, width int) hwbench.NewPartFn {
	return RegisterSpec(kind, width).NewPart
}
