// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"fmt"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/model"
)

const (
	pinSelect  = "select"
	pinChanOut = "channel_out"
)

// writeChannels drives the mux channel inputs.
//
func writeChannels(s *Seq, ch []uint64) {
	for i, v := range ch {
		s.Write(hwbench.BusPinName("channels", i), v)
	}
}

func requireMux(t *T) error {
	if err := t.RequireParam(hwlib.ParamChannelsCount, t.Config.MuxChannels); err != nil {
		return err
	}
	return t.RequireParam(hwlib.ParamChannelsWidth, t.Config.MuxWidth)
}

func muxScenario(name string, f func(t *T, s *Seq)) Scenario {
	return Scenario{
		Name:    CircuitMux + "/" + name,
		Circuit: CircuitMux,
		Run: func(t *T) error {
			if err := requireMux(t); err != nil {
				return err
			}
			s := t.Seq()
			f(t, s)
			return s.Err()
		},
	}
}

// MuxScenarios returns the multiplexer scenarios.
//
func MuxScenarios() []Scenario {
	return []Scenario{
		muxScenario("select_channel", func(t *T, s *Seq) {
			n := t.Config.MuxChannels
			ch := model.Channels(n)
			s.Step("select_channel")
			writeChannels(s, ch)
			for i := range ch {
				s.Write(pinSelect, uint64(i))
				s.Timer(hwbench.Picosecond)
				s.Expect(pinChanOut, ch[i])
			}
		}),
		muxScenario("random_channels", func(t *T, s *Seq) {
			n, w := t.Config.MuxChannels, t.Config.MuxWidth
			m := model.NewMux(n, w)
			s.Step("random_channels")
			for i := 0; i < t.Config.Iterations && s.Err() == nil; i++ {
				ch := model.RandomChannels(t.Rand, n, w)
				if p, ok := model.Pack(ch, w); ok {
					t.Log.V(3).Info("channels", "packed", fmt.Sprintf("%#x", p))
				}
				sel := uint64(t.Rand.Intn(n))
				want, err := m.Select(ch, sel)
				if err != nil {
					s.Fail(err)
					return
				}
				writeChannels(s, ch)
				s.Write(pinSelect, sel)
				s.ReadOnly()
				s.Expect(pinChanOut, want)
				s.NextStep()
			}
		}),
	}
}
