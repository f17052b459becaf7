// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"os"
	"runtime"

	"github.com/db47h/hwbench"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"go.yaml.in/yaml/v3"
)

// Script describes a scripted scenario.
//
type Script struct {
	Name    string `yaml:"name"`
	Circuit string `yaml:"circuit"`
	File    string `yaml:"file"`
}

// Config holds the suite configuration.
//
type Config struct {
	Seed       int64    `yaml:"seed"`
	Iterations int      `yaml:"iterations"`
	Clock      sim.Freq `yaml:"clock_hz"`
	Timeout    int      `yaml:"timeout"` // in clock periods
	Parallel   int      `yaml:"parallel"`
	Workers    int      `yaml:"workers"` // evaluation workers per circuit
	ProveDepth int      `yaml:"prove_depth"`
	MaxDeltas  int      `yaml:"max_deltas"` // 0 is hwbench.DefaultMaxDeltas

	RegisterWidth int `yaml:"register_width"`
	MuxChannels   int `yaml:"mux_channels"`
	MuxWidth      int `yaml:"mux_width"`
	PCWidth       int `yaml:"pc_width"`

	Scripts []Script `yaml:"scripts"`
}

// DefaultConfig returns the default configuration: seed 666, 32 iterations, a
// 500MHz clock, 8 bit registers, a 4x8 mux and a 32 bit PC.
//
func DefaultConfig() Config {
	return Config{
		Seed:          666,
		Iterations:    32,
		Clock:         500 * sim.MHz,
		Timeout:       1000,
		Parallel:      runtime.GOMAXPROCS(0),
		Workers:       1,
		ProveDepth:    6,
		RegisterWidth: 8,
		MuxChannels:   4,
		MuxWidth:      8,
		PCWidth:       32,
	}
}

// LoadConfig reads a YAML configuration file. Missing fields keep their
// default value.
//
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "load config")
	}
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(hwbench.ErrConfig, "%s: %v", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration. It returns an error wrapping
// hwbench.ErrConfig on failure.
//
func (c *Config) Validate() error {
	if _, err := c.Period(); err != nil {
		return err
	}
	checks := []struct {
		name string
		v    int
		min  int
		max  int
	}{
		{"iterations", c.Iterations, 0, 1 << 20},
		{"timeout", c.Timeout, 1, 1 << 30},
		{"parallel", c.Parallel, 1, 1 << 10},
		{"workers", c.Workers, 0, 1 << 10},
		{"prove_depth", c.ProveDepth, 1, 64},
		{"max_deltas", c.MaxDeltas, 0, 1 << 20},
		{"register_width", c.RegisterWidth, 1, hwbench.MaxWidth},
		{"mux_channels", c.MuxChannels, 2, 1 << 8},
		{"mux_width", c.MuxWidth, 1, hwbench.MaxWidth},
		{"pc_width", c.PCWidth, 3, hwbench.MaxWidth},
	}
	for _, ck := range checks {
		if ck.v < ck.min || ck.v > ck.max {
			return errors.Wrapf(hwbench.ErrConfig, "%s = %d, expected a value in [%d, %d]", ck.name, ck.v, ck.min, ck.max)
		}
	}
	if c.MuxWidth < 64 && uint64(c.MuxChannels) > 1<<uint(c.MuxWidth)-1 {
		return errors.Wrapf(hwbench.ErrConfig, "%d bit mux channels cannot hold distinct values 1..%d", c.MuxWidth, c.MuxChannels)
	}
	for i, s := range c.Scripts {
		if s.Name == "" || s.Circuit == "" || s.File == "" {
			return errors.Wrapf(hwbench.ErrConfig, "script #%d: name, circuit and file are required", i)
		}
	}
	return nil
}

// Period returns the clock period.
//
func (c *Config) Period() (hwbench.Time, error) {
	return hwbench.PeriodOf(c.Clock)
}
