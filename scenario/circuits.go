// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"sort"
	"strings"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
)

// Circuit names of the default registry, besides the register kind names
// returned by hwlib.RegKind.String.
//
const (
	CircuitMux   = "mux"
	CircuitFetch = "fetch_stage"
)

// A Builder returns the part specification of a circuit for the given
// configuration. The part is mounted with each pin connected to a circuit
// signal of the same name.
//
type Builder func(cfg *Config) (*hwbench.PartSpec, error)

// Circuits returns the default circuit registry.
//
func Circuits() map[string]Builder {
	m := map[string]Builder{
		CircuitMux: func(cfg *Config) (*hwbench.PartSpec, error) {
			return hwlib.MuxSpec(cfg.MuxChannels, cfg.MuxWidth), nil
		},
		CircuitFetch: func(cfg *Config) (*hwbench.PartSpec, error) {
			fn, err := hwlib.FetchStage(cfg.PCWidth)
			if err != nil {
				return nil, err
			}
			return fn("").PartSpec, nil
		},
	}
	for _, k := range hwlib.RegKinds() {
		k := k
		m[k.String()] = func(cfg *Config) (*hwbench.PartSpec, error) {
			return hwlib.RegisterSpec(k, cfg.RegisterWidth), nil
		}
	}
	return m
}

// identity returns a connection string connecting all pins of sp to signals
// with the same name.
//
func identity(sp *hwbench.PartSpec) string {
	var b strings.Builder
	for _, pins := range []hwbench.Pins{sp.Inputs, sp.Outputs} {
		for _, p := range pins {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			b.WriteByte('=')
			b.WriteString(p.Name)
		}
	}
	return b.String()
}

// build returns a new circuit built from the part returned by b.
//
func build(b Builder, cfg *Config) (*hwbench.Circuit, error) {
	sp, err := b(cfg)
	if err != nil {
		return nil, err
	}
	c, err := hwbench.NewCircuit(cfg.Workers, sp.NewPart(identity(sp)))
	if err != nil {
		return nil, err
	}
	c.SetMaxDeltas(cfg.MaxDeltas)
	return c, nil
}

func names(m map[string]Builder) []string {
	ns := make([]string, 0, len(m))
	for n := range m {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}
