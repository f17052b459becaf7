// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package prove checks the behavioral contracts of the circuits under test
// with bounded model checking.
//
// Each circuit is encoded at the bit level as an and-inverter graph with
// latches, unrolled over a number of clock cycles and handed to a SAT solver.
// A contract holds up to depth cycles when the negation of every property is
// unsatisfiable at every unrolled cycle.
//
package prove

import (
	"fmt"

	"github.com/db47h/hwbench"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// ErrUnreachable is returned when no input sequence reaches a target state
// within the requested depth.
//
var ErrUnreachable = errors.New("target not reachable")

// Counterexample reports a violated property.
//
type Counterexample struct {
	Circuit  string
	Property string
	Depth    int         // cycle at which the property fails
	Inputs   interface{} // input sequence leading to the failure
}

func (c *Counterexample) Error() string {
	return fmt.Sprintf("%s: property %s fails at cycle %d", c.Circuit, c.Property, c.Depth)
}

// property is a bad state expressed over the unrolled circuit at cycle d.
//
type property struct {
	name string
	from int // first cycle at which the property is checked
	bad  func(u *logic.Roll, d int) z.Lit
}

type checker struct {
	s    *logic.S
	u    *logic.Roll
	sat  *gini.Gini
	mark []int8
}

func newChecker(s *logic.S) *checker {
	return &checker{s: s, u: logic.NewRoll(s), sat: gini.New()}
}

// solve reports whether m, a literal of the unrolled circuit, is satisfiable.
//
func (k *checker) solve(m z.Lit) bool {
	k.mark, _ = k.u.C.CnfSince(k.sat, k.mark, m)
	k.sat.Assume(m)
	return k.sat.Solve() == 1
}

// check checks all properties at cycles 0 to depth. On failure, it returns
// the failing property and cycle; the solver then holds a witness.
//
func (k *checker) check(depth int, props []property) (string, int, bool) {
	for d := 0; d <= depth; d++ {
		for _, p := range props {
			if d < p.from {
				continue
			}
			if k.solve(p.bad(k.u, d)) {
				return p.name, d, false
			}
		}
	}
	return "", 0, true
}

// value returns the value of word w at cycle d in the last satisfying
// assignment.
//
func (k *checker) value(w []z.Lit, d int) uint64 {
	var v uint64
	for i, m := range w {
		if k.bit(m, d) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// bit returns the value of m at cycle d. Literals outside of the cone of the
// solved property are unconstrained and read as false.
//
func (k *checker) bit(m z.Lit, d int) bool {
	m = k.u.At(m, d)
	if m.Var() > k.sat.MaxVar() {
		return false
	}
	return k.sat.Value(m)
}

// Bit vector construction helpers. Words are little endian.

func inputs(s *logic.S, n int) []z.Lit {
	w := make([]z.Lit, n)
	for i := range w {
		w[i] = s.Lit()
	}
	return w
}

func latches(s *logic.S, n int) []z.Lit {
	w := make([]z.Lit, n)
	for i := range w {
		w[i] = s.Latch(s.F)
	}
	return w
}

func constant(c *logic.C, v uint64, n int) []z.Lit {
	w := make([]z.Lit, n)
	for i := range w {
		w[i] = c.F
		if v&(1<<uint(i)) != 0 {
			w[i] = c.T
		}
	}
	return w
}

func choose(c *logic.C, sel z.Lit, t, e []z.Lit) []z.Lit {
	w := make([]z.Lit, len(t))
	for i := range w {
		w[i] = c.Choice(sel, t[i], e[i])
	}
	return w
}

func add(c *logic.C, a, b []z.Lit) []z.Lit {
	w := make([]z.Lit, len(a))
	carry := c.F
	for i := range w {
		x := c.Xor(a[i], b[i])
		w[i] = c.Xor(x, carry)
		carry = c.Or(c.And(a[i], b[i]), c.And(carry, x))
	}
	return w
}

func equal(c *logic.C, a, b []z.Lit) z.Lit {
	eq := c.T
	for i := range a {
		eq = c.And(eq, c.Xor(a[i], b[i]).Not())
	}
	return eq
}

func isZero(c *logic.C, a []z.Lit) z.Lit {
	return equal(c, a, constant(c, 0, len(a)))
}

// mux returns ws[sel], or 0 if sel is out of range.
//
func mux(c *logic.C, sel []z.Lit, ws [][]z.Lit) []z.Lit {
	out := constant(c, 0, len(ws[0]))
	for i := len(ws) - 1; i >= 0; i-- {
		out = choose(c, equal(c, sel, constant(c, uint64(i), len(sel))), ws[i], out)
	}
	return out
}

// at maps a word of the sequential circuit to cycle d of the unrolled one.
//
func at(u *logic.Roll, w []z.Lit, d int) []z.Lit {
	r := make([]z.Lit, len(w))
	for i, m := range w {
		r[i] = u.At(m, d)
	}
	return r
}

func checkWidth(width int) error {
	if width <= 0 || width > hwbench.MaxWidth {
		return errors.Wrapf(hwbench.ErrConfig, "invalid width %d", width)
	}
	return nil
}
