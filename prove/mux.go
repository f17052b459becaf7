// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package prove

import (
	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// MuxIn holds the inputs of a mux counterexample.
//
type MuxIn struct {
	Channels []uint64
	Select   uint64
}

// muxTree builds a count way mux as a tree of 2 way muxes, one level per
// select bit, with missing channels tied to 0.
//
func muxTree(c *logic.C, sel []z.Lit, ch [][]z.Lit) []z.Lit {
	width := len(ch[0])
	level := make([][]z.Lit, 1<<uint(len(sel)))
	for i := range level {
		if i < len(ch) {
			level[i] = ch[i]
		} else {
			level[i] = constant(c, 0, width)
		}
	}
	for _, b := range sel {
		next := make([][]z.Lit, len(level)/2)
		for i := range next {
			next[i] = choose(c, b, level[2*i+1], level[2*i])
		}
		level = next
	}
	return level[0]
}

// Mux checks that a count way mux of width bits channels built as a tree of
// 2 way muxes selects channels[select], and drives 0 for an out of range
// select.
//
// It returns nil if the contract holds, or a *Counterexample.
//
func Mux(count, width int) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	if count < 2 {
		return errors.Wrapf(hwbench.ErrConfig, "invalid channel count %d", count)
	}
	s := logic.NewS()
	c := &s.C
	sel := inputs(s, hwlib.SelectWidth(count))
	ch := make([][]z.Lit, count)
	for i := range ch {
		ch[i] = inputs(s, width)
	}
	out := muxTree(c, sel, ch)

	k := newChecker(s)
	props := []property{{"out_of_range_zero", 0, func(u *logic.Roll, d int) z.Lit {
		inRange := u.C.F
		for i := range ch {
			inRange = u.C.Or(inRange, equal(u.C, at(u, sel, d), constant(u.C, uint64(i), len(sel))))
		}
		return u.C.And(inRange.Not(), isZero(u.C, at(u, out, d)).Not())
	}}}
	for i := range ch {
		props = append(props, property{"selects_channel", 0, func(u *logic.Roll, d int) z.Lit {
			is := equal(u.C, at(u, sel, d), constant(u.C, uint64(i), len(sel)))
			return u.C.And(is, equal(u.C, at(u, out, d), at(u, ch[i], d)).Not())
		}})
	}
	if name, d, ok := k.check(0, props); !ok {
		in := MuxIn{Select: k.value(sel, d), Channels: make([]uint64, count)}
		for i := range ch {
			in.Channels[i] = k.value(ch[i], d)
		}
		return &Counterexample{Circuit: "mux", Property: name, Depth: d, Inputs: []MuxIn{in}}
	}
	return nil
}

// MuxWitness asks the solver for mux inputs with select set to sel and
// channel_out equal to target, where all channels hold distinct values. With
// such inputs, selecting any other channel changes the output.
//
// It returns an error wrapping ErrUnreachable if count distinct values do not
// fit width bits.
//
func MuxWitness(count, width int, sel, target uint64) (MuxIn, error) {
	if err := checkWidth(width); err != nil {
		return MuxIn{}, err
	}
	if count < 2 || sel >= uint64(count) {
		return MuxIn{}, errors.Wrapf(hwbench.ErrConfig, "invalid select %d for %d channels", sel, count)
	}
	if target&^(1<<uint(width)-1) != 0 {
		return MuxIn{}, errors.Wrapf(hwbench.ErrWidth, "target %#x does not fit %d bits", target, width)
	}
	s := logic.NewS()
	sw := inputs(s, hwlib.SelectWidth(count))
	ch := make([][]z.Lit, count)
	for i := range ch {
		ch[i] = inputs(s, width)
	}
	out := muxTree(&s.C, sw, ch)

	k := newChecker(s)
	c := k.u.C
	conds := []z.Lit{
		equal(c, at(k.u, sw, 0), constant(c, sel, len(sw))),
		equal(c, at(k.u, out, 0), constant(c, target, width)),
	}
	for i := range ch {
		for j := i + 1; j < len(ch); j++ {
			conds = append(conds, equal(c, at(k.u, ch[i], 0), at(k.u, ch[j], 0)).Not())
		}
	}
	if !k.solve(c.Ands(conds...)) {
		return MuxIn{}, errors.Wrapf(ErrUnreachable, "%d distinct %d bit channels", count, width)
	}
	in := MuxIn{Select: k.value(sw, 0), Channels: make([]uint64, count)}
	for i := range ch {
		in.Channels[i] = k.value(ch[i], 0)
	}
	return in, nil
}
