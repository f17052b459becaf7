// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/hwtest"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a scenario run.
//
type Result struct {
	Name     string
	Circuit  string
	Seed     int64
	Edges    uint64       // rising edges seen
	Time     hwbench.Time // simulated time
	Duration time.Duration
	Err      error
}

// Passed returns true if the scenario passed.
func (r *Result) Passed() bool { return r.Err == nil }

// Report aggregates the results of a suite run.
//
type Report struct {
	RunID    xid.ID
	Seed     int64
	Results  []Result
	Duration time.Duration
}

// Failed returns the number of failed scenarios.
//
func (r *Report) Failed() int {
	n := 0
	for i := range r.Results {
		if !r.Results[i].Passed() {
			n++
		}
	}
	return n
}

// An Option configures a Suite.
//
type Option func(*Suite)

// WithLogger sets the suite logger. Each scenario logs through
// l.WithName(scenario name).
//
func WithLogger(l logr.Logger) Option {
	return func(s *Suite) { s.log = l }
}

// WithCircuit registers or replaces a circuit.
//
func WithCircuit(name string, b Builder) Option {
	return func(s *Suite) { s.circuits[name] = b }
}

// Suite is a set of scenarios sharing a configuration.
//
type Suite struct {
	cfg       Config
	log       logr.Logger
	circuits  map[string]Builder
	scenarios []Scenario
	index     map[string]int
}

// NewSuite returns a new suite with the default circuits and no scenarios.
// The configuration is validated first.
//
func NewSuite(cfg Config, opts ...Option) (*Suite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Suite{
		cfg:      cfg,
		log:      logr.Discard(),
		circuits: Circuits(),
		index:    make(map[string]int),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewDefaultSuite returns a suite with all built-in scenarios and the
// scripted scenarios listed in the configuration.
//
func NewDefaultSuite(cfg Config, opts ...Option) (*Suite, error) {
	s, err := NewSuite(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for _, k := range hwlib.RegKinds() {
		if err = s.Add(RegisterScenarios(k)...); err != nil {
			return nil, err
		}
	}
	if err = s.Add(MuxScenarios()...); err != nil {
		return nil, err
	}
	if err = s.Add(FetchScenarios()...); err != nil {
		return nil, err
	}
	if err = s.Add(FormalScenarios()...); err != nil {
		return nil, err
	}
	for _, sc := range cfg.Scripts {
		scr, err := ScriptScenario(sc.Name, sc.Circuit, sc.File)
		if err != nil {
			return nil, err
		}
		if err = s.Add(scr); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Config returns the suite configuration.
func (s *Suite) Config() Config { return s.cfg }

// Circuits returns the sorted names of the registered circuits.
//
func (s *Suite) Circuits() []string { return names(s.circuits) }

// Add adds scenarios to the suite. Scenario names must be unique and refer
// to a registered circuit, if any.
//
func (s *Suite) Add(scs ...Scenario) error {
	for _, sc := range scs {
		if _, ok := s.index[sc.Name]; ok {
			return errors.Wrapf(hwbench.ErrConfig, "duplicate scenario %s", sc.Name)
		}
		if _, ok := s.circuits[sc.Circuit]; sc.Circuit != "" && !ok {
			return errors.Wrapf(hwbench.ErrConfig, "scenario %s: unknown circuit %s", sc.Name, sc.Circuit)
		}
		s.index[sc.Name] = len(s.scenarios)
		s.scenarios = append(s.scenarios, sc)
	}
	return nil
}

// Scenarios returns the names of the scenarios matching filter, in the order
// they were added. A nil filter matches all scenarios.
//
func (s *Suite) Scenarios(filter *regexp.Regexp) []string {
	var ns []string
	for _, sc := range s.scenarios {
		if filter == nil || filter.MatchString(sc.Name) {
			ns = append(ns, sc.Name)
		}
	}
	return ns
}

// NewCircuit returns a new instance of the named circuit.
//
func (s *Suite) NewCircuit(name string) (*hwbench.Circuit, error) {
	b, ok := s.circuits[name]
	if !ok {
		return nil, errors.Wrapf(hwbench.ErrConfig, "unknown circuit %s", name)
	}
	c, err := build(b, &s.cfg)
	return c, errors.Wrapf(err, "build %s", name)
}

// Run runs the named scenario.
//
func (s *Suite) Run(ctx context.Context, name string) Result {
	i, ok := s.index[name]
	if !ok {
		return Result{Name: name, Seed: s.cfg.Seed, Err: errors.Wrapf(hwbench.ErrConfig, "unknown scenario %s", name)}
	}
	return s.run(ctx, s.scenarios[i])
}

func (s *Suite) run(ctx context.Context, sc Scenario) (r Result) {
	start := time.Now()
	log := s.log.WithName(sc.Name)
	r = Result{Name: sc.Name, Circuit: sc.Circuit, Seed: s.cfg.Seed}
	defer func() {
		if p := recover(); p != nil {
			r.Err = errors.Errorf("panic: %v", p)
		}
		r.Duration = time.Since(start)
		if r.Err != nil {
			log.Error(r.Err, "FAIL", "edges", r.Edges, "time", r.Time.String(), "seed", r.Seed)
		} else {
			log.V(1).Info("PASS", "edges", r.Edges, "time", r.Time.String(), "duration", r.Duration.String())
		}
	}()

	t := &T{Rand: rnd(s.cfg.Seed, sc.Name), Config: &s.cfg, Log: log, ctx: ctx}
	if sc.Circuit != "" {
		c, err := s.NewCircuit(sc.Circuit)
		if err != nil {
			r.Err = err
			return r
		}
		defer c.Dispose()
		period, err := s.cfg.Period()
		if err != nil {
			r.Err = err
			return r
		}
		t.Driver = hwtest.NewDriver(ctx, c,
			hwtest.WithLogger(log),
			hwtest.WithTimeout(period*hwbench.Time(s.cfg.Timeout)))
		if err = t.Start(period); err != nil {
			r.Err = err
			return r
		}
		defer func() {
			r.Edges, r.Time = t.Edges(), t.Now()
		}()
	}
	log.V(1).Info("start", "circuit", sc.Circuit)
	r.Err = sc.Run(t)
	return r
}

// RunAll runs all scenarios matching filter, at most Config.Parallel at a
// time. A nil filter matches all scenarios. Results are sorted by scenario
// name.
//
func (s *Suite) RunAll(ctx context.Context, filter *regexp.Regexp) Report {
	start := time.Now()
	rep := Report{RunID: xid.New(), Seed: s.cfg.Seed}
	log := s.log.WithValues("run", rep.RunID.String())
	log.Info("run", "seed", s.cfg.Seed, "parallel", s.cfg.Parallel)

	var scs []Scenario
	for _, sc := range s.scenarios {
		if filter == nil || filter.MatchString(sc.Name) {
			scs = append(scs, sc)
		}
	}
	rep.Results = make([]Result, len(scs))
	var g errgroup.Group
	g.SetLimit(s.cfg.Parallel)
	for i, sc := range scs {
		i, sc := i, sc
		g.Go(func() error {
			rep.Results[i] = s.run(ctx, sc)
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(rep.Results, func(i, j int) bool { return rep.Results[i].Name < rep.Results[j].Name })
	rep.Duration = time.Since(start)
	log.Info("done", "scenarios", len(rep.Results), "failed", rep.Failed(), "duration", rep.Duration.String())
	return rep
}
