// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/model"
)

// fetch stage pins
const (
	pinRstN      = "async_rst_n"
	pinSource    = "pc_source_e"
	pinEnable    = "enable_fetch_h"
	pinPredict   = "prediction_source_d"
	pinPCPlus4E  = "pc_plus_4_e"
	pinALU       = "alu_result_e"
	pinPredicted = "predicted_pc_d"
	pinPC        = "pc_f"
	pinPCPlus4   = "pc_plus_4_f"
)

// default stimulus of a cleared stage
const (
	aluResult   = 0x2
	predictedPC = 0x3
)

type fetchBench struct {
	*Seq
	t    *T
	mask uint64
	p4e  uint64 // pc_plus_4_e value set by clear
}

// clear drives the default stimulus, resets the stage and releases reset
// with fetch still disabled.
//
func (b *fetchBench) clear() {
	b.Step("clear_stage_start")
	b.p4e = b.t.Rand.Uint64() & b.mask
	b.Write(pinSource, uint64(model.SourcePlus4))
	b.Write(pinEnable, 0)
	b.Write(pinPredict, 0)
	b.Write(pinPCPlus4E, b.p4e)
	b.Write(pinALU, aluResult)
	b.Write(pinPredicted, predictedPC)
	b.Write(pinRstN, 0)
	b.Cycle()
	b.Expect(pinPC, 0)
	b.NextStep()
	b.Write(pinRstN, 1)
	b.Cycle()
	b.Expect(pinPC, 0)
	b.NextStep()
}

// expectPC checks both outputs of the stage.
//
func (b *fetchBench) expectPC(pc uint64) {
	b.Expect(pinPC, pc&b.mask)
	b.Expect(pinPCPlus4, (pc+4)&b.mask)
}

// increment enables fetch and checks one PC increment.
//
func (b *fetchBench) increment() {
	b.Step("increment")
	b.Write(pinEnable, 1)
	b.Cycle()
	b.expectPC(4)
	b.NextStep()
}

// apply drives the stage inputs.
//
func (b *fetchBench) apply(in model.FetchIn) {
	b.Write(pinRstN, bit(!in.Reset))
	b.Write(pinEnable, bit(in.Enable))
	b.Write(pinSource, uint64(in.Source))
	b.Write(pinPredict, bit(in.Predict))
	b.Write(pinPCPlus4E, in.PCPlus4E)
	b.Write(pinALU, in.ALUResult)
	b.Write(pinPredicted, in.PredictedPC)
}

// nonZero returns a random PC in [1, mask].
//
func (b *fetchBench) nonZero() uint64 {
	for {
		if v := b.t.Rand.Uint64() & b.mask; v != 0 {
			return v
		}
	}
}

func newFetchBench(t *T) (*fetchBench, error) {
	if err := t.RequireParam(hwlib.ParamPCWidth, t.Config.PCWidth); err != nil {
		return nil, err
	}
	return &fetchBench{Seq: t.Seq(), t: t, mask: hwbench.Signal{Width: t.Config.PCWidth}.Mask()}, nil
}

func fetchScenario(name string, f func(b *fetchBench)) Scenario {
	return Scenario{
		Name:    CircuitFetch + "/" + name,
		Circuit: CircuitFetch,
		Run: func(t *T) error {
			b, err := newFetchBench(t)
			if err != nil {
				return err
			}
			b.clear()
			f(b)
			return b.Err()
		},
	}
}

// selects returns a scenario checking that, after one increment, source
// code src selects the PC target and holds it while the code stays.
//
func selects(name string, src model.PCSource, target func(b *fetchBench) uint64) Scenario {
	return fetchScenario(name, func(b *fetchBench) {
		b.increment()
		b.Step(name)
		b.Write(pinSource, uint64(src))
		for i := 0; i < 2; i++ {
			b.Cycle()
			b.expectPC(target(b))
			b.NextStep()
		}
	})
}

// FetchScenarios returns the fetch stage scenarios.
//
func FetchScenarios() []Scenario {
	return []Scenario{
		fetchScenario("pc_counting_manually", func(b *fetchBench) {
			b.Step("pc_counting_manually")
			b.Write(pinEnable, 1)
			b.ReadOnly()
			b.expectPC(0)
			for _, pc := range []uint64{0x4, 0x8, 0xc, 0x10} {
				b.Cycle()
				b.expectPC(pc)
			}
		}),
		fetchScenario("pc_counting", func(b *fetchBench) {
			b.Step("pc_counting")
			b.Write(pinEnable, 1)
			for i := 1; i <= b.t.Config.Iterations; i++ {
				b.Cycle()
				b.expectPC(uint64(4 * i))
			}
		}),
		selects("source_selects_pc_plus_4_e", model.SourcePlus4E, func(b *fetchBench) uint64 { return b.p4e }),
		selects("source_selects_alu_result_e", model.SourceALU, func(*fetchBench) uint64 { return aluResult }),
		selects("source_selects_fixed_zero", model.SourceZero, func(*fetchBench) uint64 { return 0 }),
		fetchScenario("mux_predictor", func(b *fetchBench) {
			b.increment()
			b.Step("mux_predictor")
			b.Write(pinSource, uint64(model.SourceZero))
			b.Write(pinPredict, 1)
			for i := 0; i < 2; i++ {
				b.Cycle()
				b.expectPC(predictedPC)
				b.NextStep()
			}
		}),
		fetchScenario("reset_beats_prediction", func(b *fetchBench) {
			b.increment()
			b.Step("reset_beats_prediction")
			b.Write(pinPredict, 1)
			b.Write(pinRstN, 0)
			b.Timer(hwbench.Picosecond)
			b.expectPC(0)
			b.Cycle()
			b.expectPC(0)
		}),
		fetchScenario("fetch_disabled_holds", func(b *fetchBench) {
			b.increment()
			b.Step("fetch_disabled_holds")
			b.Write(pinEnable, 0)
			b.Write(pinSource, uint64(model.SourceALU))
			for i := 0; i < 3; i++ {
				b.Cycle()
				b.expectPC(4)
				b.NextStep()
			}
		}),
		fetchScenario("random_model", fetchModel),
	}
}

// fetchModel compares the stage with its reference model over random inputs.
//
func fetchModel(b *fetchBench) {
	b.Step("random_model")
	rnd := b.t.Rand
	m := model.NewFetch(b.t.Config.PCWidth)
	for i := 0; i < b.t.Config.Iterations && b.Err() == nil; i++ {
		in := model.FetchIn{
			Reset:       rnd.Intn(16) == 0,
			Enable:      rnd.Intn(4) != 0,
			Source:      model.PCSource(rnd.Intn(4)),
			Predict:     rnd.Intn(4) == 0,
			PCPlus4E:    rnd.Uint64() & b.mask,
			ALUResult:   rnd.Uint64() & b.mask,
			PredictedPC: rnd.Uint64() & b.mask,
		}
		b.apply(in)
		m.Settle(in)
		m.Rising(in)
		b.Cycle()
		b.expectPC(m.PC())
		b.NextStep()
	}
}
