// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package script runs Lua test scripts against a circuit.
//
// Scripts drive the circuit through a hwtest.Driver with the following
// globals:
//
//	write(name, value)     stage a value for an input signal
//	read(name)             value of a signal
//	expect(name, value)    check the value of a signal
//	rising(), falling()    wait for the next clock edge
//	readonly()             wait for the read-only phase
//	nextstep()             wait for the next time step
//	cycle()                rising() then readonly()
//	timer(ps)              wait for ps picoseconds
//	step(label)            label subsequent failures
//	param(name)            circuit parameter, or nil
//	max(name)              largest value of a signal
//	randint(n)             random integer in [0, n)
//
// Lua numbers are floating point: signal values above 2^53 cannot be used.
//
package script

import (
	"context"
	"math"
	"math/rand"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwtest"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

const maxValue = 1 << 53

type runner struct {
	L   *lua.LState
	d   *hwtest.Driver
	rng *rand.Rand
	err error // first driver error
}

// fail records err and raises a Lua error.
//
func (r *runner) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.L.RaiseError("%v", err)
}

func (r *runner) value(n int) uint64 {
	v := float64(r.L.CheckNumber(n))
	if v < 0 || v >= maxValue || v != math.Trunc(v) {
		r.L.ArgError(n, "not a valid signal value")
	}
	return uint64(v)
}

func (r *runner) wait(f func() error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := f(); err != nil {
			r.fail(err)
		}
		return 0
	}
}

func (r *runner) funcs() map[string]lua.LGFunction {
	d := r.d
	return map[string]lua.LGFunction{
		"write": func(L *lua.LState) int {
			if err := d.Write(L.CheckString(1), r.value(2)); err != nil {
				r.fail(err)
			}
			return 0
		},
		"read": func(L *lua.LState) int {
			v, err := d.Read(L.CheckString(1))
			if err != nil {
				r.fail(err)
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"expect": func(L *lua.LState) int {
			if err := d.Expect(L.CheckString(1), r.value(2)); err != nil {
				r.fail(err)
			}
			return 0
		},
		"cycle": r.wait(func() error {
			if err := d.RisingEdge(); err != nil {
				return err
			}
			return d.ReadOnly()
		}),
		"rising":   r.wait(d.RisingEdge),
		"falling":  r.wait(d.FallingEdge),
		"readonly": r.wait(d.ReadOnly),
		"nextstep": r.wait(d.NextTimeStep),
		"timer": func(L *lua.LState) int {
			if err := d.Timer(hwbench.Time(r.value(1))); err != nil {
				r.fail(err)
			}
			return 0
		},
		"step": func(L *lua.LState) int {
			d.Step(L.CheckString(1))
			return 0
		},
		"param": func(L *lua.LState) int {
			v, ok := d.Param(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"max": func(L *lua.LState) int {
			v, err := d.Max(L.CheckString(1))
			if err != nil {
				r.fail(err)
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"randint": func(L *lua.LState) int {
			n := L.CheckInt64(1)
			if n <= 0 {
				L.ArgError(1, "bound must be positive")
			}
			L.Push(lua.LNumber(r.rng.Int63n(n)))
			return 1
		},
	}
}

// Run runs the Lua script src, named name in error messages, against the
// circuit driven by d. Random numbers are drawn from rng.
//
// Errors returned by the driver, such as *hwtest.AssertionError, are
// returned as is.
//
func Run(ctx context.Context, d *hwtest.Driver, rng *rand.Rand, name, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	r := &runner{L: L, d: d, rng: rng}
	for n, f := range r.funcs() {
		L.SetGlobal(n, L.NewFunction(f))
	}
	err := L.DoString(src)
	switch {
	case r.err != nil:
		return r.err
	case ctx.Err() != nil:
		return errors.Wrapf(hwbench.ErrTimeout, "script %s: %v", name, ctx.Err())
	case err != nil:
		return errors.Wrapf(err, "script %s", name)
	}
	return nil
}
