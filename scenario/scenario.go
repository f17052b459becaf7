// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package scenario runs verification scenarios against the circuits of
// package hwlib.
//
// A scenario drives one freshly built circuit through a hwtest.Driver and
// fails on the first error it returns. Scenarios are independent: each one
// owns its circuit, clock and random number generator, seeded from the suite
// seed and the scenario name, so that a failing scenario can be replayed in
// isolation.
//
package scenario

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwtest"
	"github.com/go-logr/logr"
)

// T is the state of a running scenario.
//
type T struct {
	*hwtest.Driver
	Rand   *rand.Rand
	Config *Config
	Log    logr.Logger
	ctx    context.Context
}

// Context returns the scenario context.
func (t *T) Context() context.Context { return t.ctx }

// Seq returns a new operation sequence on the scenario driver.
//
func (t *T) Seq() *Seq { return &Seq{d: t.Driver} }

// Rnd returns a random value that fits the named signal.
//
func (t *T) Rnd(name string) (uint64, error) {
	max, err := t.Max(name)
	if err != nil {
		return 0, err
	}
	return t.Rand.Uint64() & max, nil
}

// A Scenario is a named check run against a circuit of the registry.
//
type Scenario struct {
	Name    string
	Circuit string
	Run     func(t *T) error
}

// rnd returns the random number generator of the named scenario.
//
func rnd(seed int64, name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

// Seq chains driver operations. After the first failure, operations are
// no-ops and Err returns the failure.
//
//	s := t.Seq()
//	s.Write("data", 1)
//	s.Rising()
//	s.Expect("q", 1)
//	return s.Err()
//
type Seq struct {
	d   *hwtest.Driver
	err error
}

// Err returns the first error encountered by s.
func (s *Seq) Err() error { return s.err }

func (s *Seq) do(f func() error) {
	if s.err == nil {
		s.err = f()
	}
}

// Step sets the label of subsequent assertion failures.
func (s *Seq) Step(label string) { s.d.Step(label) }

// Write stages value v for the named input.
func (s *Seq) Write(name string, v uint64) { s.do(func() error { return s.d.Write(name, v) }) }

// Rising waits for the next rising edge.
func (s *Seq) Rising() { s.do(s.d.RisingEdge) }

// Falling waits for the next falling edge.
func (s *Seq) Falling() { s.do(s.d.FallingEdge) }

// ReadOnly waits for the read-only phase.
func (s *Seq) ReadOnly() { s.do(s.d.ReadOnly) }

// NextStep waits for the next time step.
func (s *Seq) NextStep() { s.do(s.d.NextTimeStep) }

// Timer waits for dt.
func (s *Seq) Timer(dt hwbench.Time) { s.do(func() error { return s.d.Timer(dt) }) }

// Expect checks the value of the named signal.
func (s *Seq) Expect(name string, want uint64) { s.do(func() error { return s.d.Expect(name, want) }) }

// Cycle waits for the next rising edge, then for the read-only phase.
//
func (s *Seq) Cycle() {
	s.Rising()
	s.ReadOnly()
}

// Read returns the value of the named signal, or 0 after a failure.
//
func (s *Seq) Read(name string) uint64 {
	var v uint64
	s.do(func() (err error) {
		v, err = s.d.Read(name)
		return err
	})
	return v
}

// Fail records err unless s already failed.
//
func (s *Seq) Fail(err error) { s.do(func() error { return err }) }
