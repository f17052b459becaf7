// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"fmt"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/model"
	"github.com/db47h/hwbench/prove"
)

// FormalScenarios returns the scenarios that check the circuit contracts with
// bounded model checking, up to Config.ProveDepth cycles.
//
// Each scenario then asks the solver for inputs that distinguish the expected
// behavior from any other and replays them on the circuit: one vector of
// distinct channels per mux select, the shortest input sequence that loads
// a random value in a register, and one sequence per fetch stage PC source.
//
func FormalScenarios() []Scenario {
	ss := []Scenario{
		{
			Name:    "formal/" + CircuitMux,
			Circuit: CircuitMux,
			Run:     formalMux,
		},
		{
			Name:    "formal/" + CircuitFetch,
			Circuit: CircuitFetch,
			Run:     formalFetch,
		},
	}
	for _, k := range hwlib.RegKinds() {
		k := k
		ss = append(ss, Scenario{
			Name:    "formal/" + k.String(),
			Circuit: k.String(),
			Run: func(t *T) error {
				v, w := Variant(k), t.Config.RegisterWidth
				if err := prove.Register(v, w, t.Config.ProveDepth); err != nil {
					return err
				}
				b := newRegBench(t, k)
				target := b.nonZero()
				seq, err := prove.RegisterTrace(v, w, target, t.Config.ProveDepth)
				if err != nil {
					return err
				}
				t.Log.V(1).Info("witness", "target", target, "cycles", len(seq)-1)
				b.clear()
				b.Step("replay witness")
				last := len(seq) - 1
				for i, in := range seq {
					b.Write(pinData, in.Data)
					b.reset(in.Reset)
					b.enable(in.Enable)
					if i < last {
						b.Cycle()
						b.NextStep()
					}
				}
				b.ReadOnly()
				b.Expect(pinQ, target)
				return b.Err()
			},
		})
	}
	return ss
}

func formalMux(t *T) error {
	n, w := t.Config.MuxChannels, t.Config.MuxWidth
	if err := prove.Mux(n, w); err != nil {
		return err
	}
	if err := requireMux(t); err != nil {
		return err
	}
	s := t.Seq()
	mask := hwbench.Signal{Width: w}.Mask()
	for sel := 0; sel < n && s.Err() == nil; sel++ {
		target := t.Rand.Uint64() & mask
		in, err := prove.MuxWitness(n, w, uint64(sel), target)
		if err != nil {
			return err
		}
		s.Step(fmt.Sprintf("witness for select %d", sel))
		writeChannels(s, in.Channels)
		s.Write(pinSelect, in.Select)
		s.ReadOnly()
		s.Expect(pinChanOut, target)
		s.NextStep()
	}
	return s.Err()
}

// fetchRoutes lists the ways the fetch stage loads a new PC.
//
var fetchRoutes = []prove.FetchRoute{
	{Source: model.SourcePlus4},
	{Source: model.SourcePlus4E},
	{Source: model.SourceALU},
	{Source: model.SourceZero},
	{Predict: true},
}

func formalFetch(t *T) error {
	w, depth := t.Config.PCWidth, t.Config.ProveDepth
	if err := prove.Fetch(w, depth); err != nil {
		return err
	}
	b, err := newFetchBench(t)
	if err != nil {
		return err
	}
	for _, r := range fetchRoutes {
		var target uint64
		switch {
		case !r.Predict && r.Source == model.SourceZero:
		case !r.Predict && r.Source == model.SourcePlus4 && depth < 2:
			// PC + 4 from a cleared stage
			target = 4
		default:
			target = b.nonZero()
		}
		seq, err := prove.FetchTrace(w, r, target, depth)
		if err != nil {
			return err
		}
		t.Log.V(1).Info("witness", "route", r.String(), "target", target, "cycles", len(seq)-1)
		b.clear()
		b.Step("replay witness through " + r.String())
		last := len(seq) - 1
		for i, in := range seq {
			b.apply(in)
			if i < last {
				b.Cycle()
				b.NextStep()
			}
		}
		b.ReadOnly()
		b.expectPC(target)
		if b.Err() != nil {
			break
		}
	}
	return b.Err()
}
