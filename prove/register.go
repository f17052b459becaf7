// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package prove

import (
	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/model"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// register is the gate level encoding of a register: a row of flip-flops
// fed by an enable mux and a reset and-gate.
//
type register struct {
	v    model.Variant
	s    *logic.S
	data []z.Lit
	rst  z.Lit // active high, S.F when the variant has no reset
	en   z.Lit // S.T when the variant is not gated
	q    []z.Lit
	out  []z.Lit
}

func newRegister(v model.Variant, width int) *register {
	s := logic.NewS()
	r := &register{v: v, s: s, rst: s.F, en: s.T}
	r.data = inputs(s, width)
	if v.Reset != model.NoReset {
		r.rst = s.Lit()
	}
	if v.Gated {
		r.en = s.Lit()
	}
	r.q = latches(s, width)
	next := choose(&s.C, r.en, r.data, r.q)
	for i, m := range next {
		s.SetNext(r.q[i], s.And(m, r.rst.Not()))
	}
	r.out = r.q
	if v.Reset == model.AsyncReset {
		r.out = make([]z.Lit, width)
		for i, m := range r.q {
			r.out[i] = s.And(m, r.rst.Not())
		}
	}
	return r
}

func (r *register) properties() []property {
	var ps []property
	switch r.v.Reset {
	case model.AsyncReset:
		ps = append(ps, property{"reset_clears", 0, func(u *logic.Roll, d int) z.Lit {
			return u.C.And(u.At(r.rst, d), isZero(u.C, at(u, r.out, d)).Not())
		}})
	case model.SyncReset:
		ps = append(ps, property{"reset_clears", 1, func(u *logic.Roll, d int) z.Lit {
			return u.C.And(u.At(r.rst, d-1), isZero(u.C, at(u, r.out, d)).Not())
		}})
	}
	if r.v.Gated {
		ps = append(ps, property{"disabled_holds", 1, func(u *logic.Roll, d int) z.Lit {
			c := u.C
			hold := c.And(u.At(r.en, d-1).Not(), u.At(r.rst, d-1).Not())
			return c.And(hold, equal(c, at(u, r.q, d), at(u, r.q, d-1)).Not())
		}})
	}
	ps = append(ps, property{"loads_data", 1, func(u *logic.Roll, d int) z.Lit {
		c := u.C
		load := c.And(u.At(r.en, d-1), u.At(r.rst, d-1).Not())
		return c.And(load, equal(c, at(u, r.q, d), at(u, r.data, d-1)).Not())
	}})
	return ps
}

// inputs returns the input sequence of the last satisfying assignment for
// cycles 0 to d.
//
func (r *register) inputs(k *checker, d int) []model.RegisterIn {
	seq := make([]model.RegisterIn, d+1)
	for i := range seq {
		seq[i] = model.RegisterIn{
			Data:   k.value(r.data, i),
			Reset:  k.bit(r.rst, i),
			Enable: k.bit(r.en, i),
		}
	}
	return seq
}

// Register checks the contracts of a register of variant v for every input
// sequence of up to depth cycles:
//
//	reset_clears: an active reset clears the register, at once if
//	              asynchronous, at the next rising edge if synchronous.
//	disabled_holds: a gated register holds its value when not enabled.
//	loads_data: without reset, an enabled register loads its data input.
//
// It returns nil if all contracts hold, or a *Counterexample.
//
func Register(v model.Variant, width, depth int) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	r := newRegister(v, width)
	k := newChecker(r.s)
	if name, d, ok := k.check(depth, r.properties()); !ok {
		return &Counterexample{
			Circuit:  "register(" + v.String() + ")",
			Property: name,
			Depth:    d,
			Inputs:   r.inputs(k, d),
		}
	}
	return nil
}

// RegisterTrace searches for the shortest input sequence of at most depth
// cycles that brings a cleared register of variant v to hold target.
//
// The returned sequence seq has one element per cycle: seq[i] is applied
// before the i-th rising edge, and the last element is applied while
// observing the target. It returns an error wrapping ErrUnreachable if no
// such sequence exists.
//
func RegisterTrace(v model.Variant, width int, target uint64, depth int) ([]model.RegisterIn, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if target&^(1<<uint(width)-1) != 0 {
		return nil, errors.Wrapf(hwbench.ErrWidth, "target %#x does not fit %d bits", target, width)
	}
	r := newRegister(v, width)
	k := newChecker(r.s)
	goal := constant(k.u.C, target, width)
	for d := 0; d <= depth; d++ {
		if k.solve(equal(k.u.C, at(k.u, r.out, d), goal)) {
			return r.inputs(k, d), nil
		}
	}
	return nil, errors.Wrapf(ErrUnreachable, "register(%v) = %#x within %d cycles", v, target, depth)
}
