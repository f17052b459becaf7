// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package prove

import (
	"strconv"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/model"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// fetch is the gate level encoding of the fetch stage PC generation logic:
// a 4 way source mux, a 2 way prediction mux, an enable gated register with
// asynchronous reset and a +4 adder.
//
type fetch struct {
	s     *logic.S
	width int
	rst   z.Lit
	en    z.Lit
	src   []z.Lit
	pred  z.Lit
	p4e   []z.Lit
	alu   []z.Lit
	ppc   []z.Lit
	pc    []z.Lit
	pc4   []z.Lit
	out   []z.Lit
}

func newFetch(width int) *fetch {
	s := logic.NewS()
	c := &s.C
	f := &fetch{s: s, width: width, rst: s.Lit(), en: s.Lit(), src: inputs(s, 2), pred: s.Lit()}
	f.p4e, f.alu, f.ppc = inputs(s, width), inputs(s, width), inputs(s, width)
	f.pc = latches(s, width)
	f.pc4 = add(c, f.pc, constant(c, 4, width))
	next := choose(c, f.pred, f.ppc, mux(c, f.src, [][]z.Lit{f.pc4, f.p4e, f.alu, constant(c, 0, width)}))
	next = choose(c, f.en, next, f.pc)
	f.out = make([]z.Lit, width)
	for i, m := range next {
		s.SetNext(f.pc[i], s.And(m, f.rst.Not()))
		f.out[i] = s.And(f.pc[i], f.rst.Not())
	}
	return f
}

func (f *fetch) properties() []property {
	// update reports whether the fetch stage is enabled, out of reset and
	// not predicting at cycle d.
	update := func(u *logic.Roll, d int) z.Lit {
		return u.C.Ands(u.At(f.en, d), u.At(f.rst, d).Not(), u.At(f.pred, d).Not())
	}
	return []property{
		{"reset_clears", 0, func(u *logic.Roll, d int) z.Lit {
			return u.C.And(u.At(f.rst, d), isZero(u.C, at(u, f.out, d)).Not())
		}},
		{"reset_beats_prediction", 1, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			return c.Ands(u.At(f.rst, d-1), u.At(f.en, d-1), u.At(f.pred, d-1), isZero(c, at(u, f.pc, d)).Not())
		}},
		{"prediction_overrides", 1, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			return c.Ands(u.At(f.rst, d-1).Not(), u.At(f.en, d-1), u.At(f.pred, d-1),
				equal(c, at(u, f.pc, d), at(u, f.ppc, d-1)).Not())
		}},
		{"disabled_holds", 1, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			return c.Ands(u.At(f.rst, d-1).Not(), u.At(f.en, d-1).Not(),
				equal(c, at(u, f.pc, d), at(u, f.pc, d-1)).Not())
		}},
		{"source_selects", 1, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			src := at(u, f.src, d-1)
			pc := at(u, f.pc, d)
			is := func(s model.PCSource) z.Lit { return equal(c, src, constant(c, uint64(s), 2)) }
			wrong := c.Ors(
				c.And(is(model.SourcePlus4E), equal(c, pc, at(u, f.p4e, d-1)).Not()),
				c.And(is(model.SourceALU), equal(c, pc, at(u, f.alu, d-1)).Not()),
				c.And(is(model.SourceZero), isZero(c, pc).Not()),
			)
			return c.And(update(u, d-1), wrong)
		}},
		{"counts_by_4", 0, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			counting := c.T
			for i := 0; i < d; i++ {
				counting = c.Ands(counting, update(u, i), equal(c, at(u, f.src, i), constant(c, uint64(model.SourcePlus4), 2)))
			}
			return c.And(counting, equal(c, at(u, f.pc, d), constant(c, uint64(4*d), f.width)).Not())
		}},
	}
}

func (f *fetch) inputs(k *checker, d int) []model.FetchIn {
	seq := make([]model.FetchIn, d+1)
	for i := range seq {
		seq[i] = model.FetchIn{
			Reset:       k.bit(f.rst, i),
			Enable:      k.bit(f.en, i),
			Source:      model.PCSource(k.value(f.src, i)),
			Predict:     k.bit(f.pred, i),
			PCPlus4E:    k.value(f.p4e, i),
			ALUResult:   k.value(f.alu, i),
			PredictedPC: k.value(f.ppc, i),
		}
	}
	return seq
}

// Fetch checks the contracts of the fetch stage PC generation logic for every
// input sequence of up to depth cycles:
//
//	reset_clears: an active reset clears the PC at once.
//	reset_beats_prediction: a reset clears the PC even when enabled and
//	                        predicting.
//	prediction_overrides: the prediction override loads predicted_pc_d
//	                      regardless of the source code.
//	disabled_holds: the PC holds its value when fetch is disabled.
//	source_selects: source codes 1, 2 and 3 select pc_plus_4_e,
//	                alu_result_e and 0.
//	counts_by_4: out of reset, with source code 0, the PC counts by 4
//	             modulo 2^width.
//
// It returns nil if all contracts hold, or a *Counterexample.
//
func Fetch(width, depth int) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	f := newFetch(width)
	k := newChecker(f.s)
	if name, d, ok := k.check(depth, f.properties()); !ok {
		return &Counterexample{
			Circuit:  "fetch stage",
			Property: name,
			Depth:    d,
			Inputs:   f.inputs(k, d),
		}
	}
	return nil
}

// A FetchRoute selects how the last update of a FetchTrace loads the PC.
//
type FetchRoute struct {
	Source  model.PCSource
	Predict bool // load predicted_pc_d, Source is left to the solver
}

func (r FetchRoute) String() string {
	if r.Predict {
		return "prediction"
	}
	return "source " + strconv.Itoa(int(r.Source))
}

// FetchTrace searches for the shortest input sequence of at most depth cycles
// that brings a cleared fetch stage to hold target, the last update going
// through route r. At that update, the five next PC candidates (PC + 4,
// pc_plus_4_e, alu_result_e, 0 and predicted_pc_d) hold distinct values, so
// that loading the PC from any other candidate is observable.
//
// The returned sequence follows the conventions of RegisterTrace. It returns
// an error wrapping ErrUnreachable if no such sequence exists.
//
func FetchTrace(width int, r FetchRoute, target uint64, depth int) ([]model.FetchIn, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if width < 3 {
		return nil, errors.Wrapf(hwbench.ErrConfig, "a %d bit PC cannot hold 5 distinct values", width)
	}
	if r.Source > model.SourceZero {
		return nil, errors.Wrapf(hwbench.ErrConfig, "invalid PC source %d", r.Source)
	}
	if target&^(1<<uint(width)-1) != 0 {
		return nil, errors.Wrapf(hwbench.ErrWidth, "target %#x does not fit %d bits", target, width)
	}
	f := newFetch(width)
	k := newChecker(f.s)
	u, c := k.u, k.u.C
	goal := constant(c, target, width)
	for d := 1; d <= depth; d++ {
		e := d - 1
		conds := []z.Lit{
			u.At(f.rst, e).Not(),
			u.At(f.en, e),
			u.At(f.rst, d).Not(),
			equal(c, at(u, f.out, d), goal),
		}
		if r.Predict {
			conds = append(conds, u.At(f.pred, e))
		} else {
			conds = append(conds, u.At(f.pred, e).Not(), equal(c, at(u, f.src, e), constant(c, uint64(r.Source), 2)))
		}
		cands := [][]z.Lit{at(u, f.pc4, e), at(u, f.p4e, e), at(u, f.alu, e), constant(c, 0, width), at(u, f.ppc, e)}
		for i := range cands {
			for j := i + 1; j < len(cands); j++ {
				conds = append(conds, equal(c, cands[i], cands[j]).Not())
			}
		}
		if k.solve(c.Ands(conds...)) {
			return f.inputs(k, d), nil
		}
	}
	return nil, errors.Wrapf(ErrUnreachable, "fetch stage PC = %#x through %v within %d cycles", target, r, depth)
}
