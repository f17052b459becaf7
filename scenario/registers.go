// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/model"
)

const (
	pinData = "data"
	pinQ    = "q"
)

// Variant returns the model variant of register kind k.
//
func Variant(k hwlib.RegKind) model.Variant {
	v := model.Variant{Gated: k.Gated()}
	switch {
	case k.Async():
		v.Reset = model.AsyncReset
	case k.Sync():
		v.Reset = model.SyncReset
	}
	return v
}

type regBench struct {
	*Seq
	t    *T
	kind hwlib.RegKind
	max  uint64
}

func newRegBench(t *T, k hwlib.RegKind) *regBench {
	b := &regBench{Seq: t.Seq(), t: t, kind: k}
	b.max = hwbench.Signal{Width: t.Config.RegisterWidth}.Mask()
	return b
}

// reset drives the reset input, if any. Resets are active low.
//
func (b *regBench) reset(active bool) {
	if p := b.kind.ResetPin(); p != "" {
		b.Write(p, bit(!active))
	}
}

func (b *regBench) enable(on bool) {
	if p := b.kind.EnablePin(); p != "" {
		b.Write(p, bit(on))
	}
}

// clear puts the register in a known cleared state, with reset released and
// the register enabled.
//
func (b *regBench) clear() {
	b.Step("clear")
	b.enable(true)
	b.Write(pinData, 0)
	b.reset(true)
	b.Cycle()
	b.Expect(pinQ, 0)
	b.NextStep()
	b.reset(false)
}

// store loads v and checks it after the next rising edge.
//
func (b *regBench) store(v uint64) {
	b.Write(pinData, v)
	b.Cycle()
	b.Expect(pinQ, v)
	b.NextStep()
}

func (b *regBench) random() uint64 { return b.t.Rand.Uint64() & b.max }

// nonZero returns a random value in [1, max].
//
func (b *regBench) nonZero() uint64 {
	for {
		if v := b.random(); v != 0 {
			return v
		}
	}
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func regScenario(k hwlib.RegKind, name string, f func(b *regBench)) Scenario {
	return Scenario{
		Name:    k.String() + "/" + name,
		Circuit: k.String(),
		Run: func(t *T) error {
			if err := t.RequireParam(hwlib.ParamWidth, t.Config.RegisterWidth); err != nil {
				return err
			}
			b := newRegBench(t, k)
			b.clear()
			f(b)
			return b.Err()
		},
	}
}

// RegisterScenarios returns the scenarios of the register of kind k.
//
func RegisterScenarios(k hwlib.RegKind) []Scenario {
	ss := []Scenario{
		regScenario(k, "store_min", func(b *regBench) {
			b.Step("store_min")
			b.store(0)
		}),
		regScenario(k, "store_max", func(b *regBench) {
			b.Step("store_max")
			b.store(b.max)
		}),
		regScenario(k, "store_random", func(b *regBench) {
			b.Step("store_random")
			for i := 0; i < b.t.Config.Iterations; i++ {
				b.store(b.random())
			}
		}),
		regScenario(k, "rewrite", func(b *regBench) {
			b.Step("first write")
			b.store(b.random())
			b.Step("rewrite")
			b.store(b.random())
		}),
		regScenario(k, "idempotent_store", func(b *regBench) {
			v := b.random()
			b.Step("store")
			b.store(v)
			b.Step("store again")
			b.store(v)
		}),
		regScenario(k, "store_in_negedge", func(b *regBench) {
			v, w := b.nonZero(), b.random()^b.max
			b.Step("store")
			b.store(v)
			b.Step("falling edge")
			b.Write(pinData, w)
			b.Falling()
			b.ReadOnly()
			b.Expect(pinQ, v)
			b.Step("next rising edge")
			b.Cycle()
			b.Expect(pinQ, w)
		}),
		regScenario(k, "random_model", regModel),
	}
	if k.Gated() {
		ss = append(ss, regScenario(k, "retain_value", func(b *regBench) {
			v, w := b.nonZero(), b.random()^b.max
			b.Step("store")
			b.store(v)
			b.Step("disabled")
			b.enable(false)
			b.Write(pinData, w)
			for i := 0; i < 3; i++ {
				b.Cycle()
				b.Expect(pinQ, v)
				b.NextStep()
			}
			b.Step("enabled")
			b.enable(true)
			b.Cycle()
			b.Expect(pinQ, w)
		}))
	}
	switch {
	case k.Async():
		ss = append(ss, asyncScenarios(k)...)
	case k.Sync():
		ss = append(ss, syncScenarios(k)...)
	}
	return ss
}

func asyncScenarios(k hwlib.RegKind) []Scenario {
	ss := []Scenario{
		regScenario(k, "fall_reset", func(b *regBench) {
			b.Step("store")
			b.store(b.nonZero())
			b.Step("reset after falling edge")
			b.Falling()
			b.reset(true)
			b.Timer(hwbench.Picosecond)
			b.Expect(pinQ, 0)
			b.Step("held through rising edge")
			b.Write(pinData, b.nonZero())
			b.Cycle()
			b.Expect(pinQ, 0)
			b.NextStep()
			b.Step("release")
			v := b.nonZero()
			b.reset(false)
			b.Write(pinData, v)
			b.Cycle()
			b.Expect(pinQ, v)
		}),
		regScenario(k, "rise_reset", func(b *regBench) {
			b.Step("store")
			b.store(b.nonZero())
			b.Step("reset before rising edge")
			b.Write(pinData, b.nonZero())
			b.reset(true)
			b.Rising()
			b.Timer(hwbench.Picosecond)
			b.Expect(pinQ, 0)
			b.reset(false)
			b.Step("reset overrides edge update")
			b.store(b.nonZero())
			b.Write(pinData, b.nonZero())
			b.Rising()
			b.reset(true)
			b.ReadOnly()
			b.Expect(pinQ, 0)
		}),
		storeWhileRst(k),
	}
	if k.Gated() {
		ss = append(ss, regScenario(k, "enabled_but_reseting", func(b *regBench) {
			b.Step("store")
			b.store(b.nonZero())
			b.Step("enabled and reset")
			b.reset(true)
			for i := 0; i < 3; i++ {
				b.Write(pinData, b.nonZero())
				b.Cycle()
				b.Expect(pinQ, 0)
				b.NextStep()
			}
		}))
	}
	return ss
}

func syncScenarios(k hwlib.RegKind) []Scenario {
	return []Scenario{
		regScenario(k, "sync_reset", func(b *regBench) {
			v := b.nonZero()
			b.Step("store")
			b.store(v)
			b.Step("no effect between edges")
			b.reset(true)
			b.Write(pinData, v)
			b.ReadOnly()
			b.Expect(pinQ, v)
			b.NextStep()
			b.Falling()
			b.ReadOnly()
			b.Expect(pinQ, v)
			b.Step("cleared at rising edge")
			b.Cycle()
			b.Expect(pinQ, 0)
			b.NextStep()
			b.reset(false)
			b.Step("pulse between edges")
			b.store(v)
			b.reset(true)
			b.Timer(b.t.Circuit().Clock().Period() / 4)
			b.reset(false)
			b.Cycle()
			b.Expect(pinQ, v)
		}),
		storeWhileRst(k),
	}
}

// storeWhileRst checks that no value is stored while reset is held, for
// either reset kind.
//
func storeWhileRst(k hwlib.RegKind) Scenario {
	return regScenario(k, "store_while_rst", func(b *regBench) {
		b.Step("store")
		b.store(b.nonZero())
		b.Step("store while reset")
		b.reset(true)
		for i := 0; i < 3; i++ {
			b.Write(pinData, b.nonZero())
			b.Cycle()
			b.Expect(pinQ, 0)
			b.NextStep()
		}
	})
}

// regModel compares the register with its reference model over random
// inputs.
//
func regModel(b *regBench) {
	b.Step("random_model")
	m := model.NewRegister(Variant(b.kind), b.t.Config.RegisterWidth)
	for i := 0; i < b.t.Config.Iterations && b.Err() == nil; i++ {
		in := model.RegisterIn{
			Data:   b.random(),
			Reset:  b.kind.ResetPin() != "" && b.t.Rand.Intn(8) == 0,
			Enable: !b.kind.Gated() || b.t.Rand.Intn(4) != 0,
		}
		b.Write(pinData, in.Data)
		b.reset(in.Reset)
		b.enable(in.Enable)
		m.Settle(in)
		m.Rising(in)
		b.Cycle()
		b.Expect(pinQ, m.Q())
		b.NextStep()
		b.Falling()
		b.ReadOnly()
		b.Expect(pinQ, m.Q())
		b.NextStep()
	}
}
