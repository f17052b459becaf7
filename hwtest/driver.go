// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits: an edge
// scheduled test driver and part comparison helpers.
//
package hwtest

import (
	"context"
	"fmt"

	"github.com/db47h/hwbench"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// AssertionError reports an observed signal value that differs from the
// expected one.
//
type AssertionError struct {
	Step   string // step label set with Driver.Step
	Signal string
	Want   uint64
	Got    uint64
	Phase  hwbench.Phase
	Edge   uint64 // rising edge count at the time of the check
	Time   hwbench.Time
}

func (e *AssertionError) Error() string {
	step := ""
	if e.Step != "" {
		step = "step " + e.Step + ": "
	}
	return fmt.Sprintf("%s%s = %#x, expected %#x (%v, rising edge #%d, %v)",
		step, e.Signal, e.Got, e.Want, e.Phase, e.Edge, e.Time)
}

// An Option configures a Driver.
//
type Option func(*Driver)

// WithLogger sets the driver logger. Sync points are logged at V(2), writes
// and checks at V(3).
//
func WithLogger(l logr.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithTimeout bounds the simulated time. A wait that moves the simulation
// past t fails with an error wrapping hwbench.ErrTimeout. Zero means no
// limit.
//
func WithTimeout(t hwbench.Time) Option {
	return func(d *Driver) { d.limit = t }
}

// Driver drives a circuit through its synchronization points and checks
// observed values.
//
// Every wait first checks the driver context: a cancelled or expired context
// fails the wait with an error wrapping hwbench.ErrTimeout.
//
type Driver struct {
	c     *hwbench.Circuit
	ctx   context.Context
	log   logr.Logger
	limit hwbench.Time
	step  string
}

// NewDriver returns a new driver for circuit c.
//
func NewDriver(ctx context.Context, c *hwbench.Circuit, opts ...Option) *Driver {
	d := &Driver{c: c, ctx: ctx, log: logr.Discard()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Circuit returns the driven circuit.
//
func (d *Driver) Circuit() *hwbench.Circuit { return d.c }

// Start starts the circuit clock.
//
func (d *Driver) Start(period hwbench.Time) error {
	if err := d.c.Start(period); err != nil {
		return err
	}
	d.log.V(2).Info("clock started", "period", period.String(), "time", d.c.Now().String())
	return nil
}

// Step sets the label reported by subsequent assertion failures.
//
func (d *Driver) Step(label string) {
	d.step = label
	d.log.V(2).Info("step", "label", label)
}

// Now returns the current simulation time.
func (d *Driver) Now() hwbench.Time { return d.c.Now() }

// Edges returns the number of rising clock edges so far.
func (d *Driver) Edges() uint64 { return d.c.Clock().Rises() }

func (d *Driver) wait(p hwbench.Phase, f func() error) error {
	if err := d.ctx.Err(); err != nil {
		return errors.Wrapf(hwbench.ErrTimeout, "wait for %v: %v", p, err)
	}
	if err := f(); err != nil {
		return errors.Wrapf(err, "wait for %v", p)
	}
	if d.limit > 0 && d.c.Now() > d.limit {
		return errors.Wrapf(hwbench.ErrTimeout, "wait for %v: simulated time %v exceeds %v", p, d.c.Now(), d.limit)
	}
	d.log.V(2).Info("sync", "phase", p.String(), "time", d.c.Now().String(), "edge", d.Edges())
	return nil
}

// RisingEdge waits for the next rising edge of the clock.
//
func (d *Driver) RisingEdge() error { return d.wait(hwbench.PhaseRisingEdge, d.c.RisingEdge) }

// FallingEdge waits for the next falling edge of the clock.
//
func (d *Driver) FallingEdge() error { return d.wait(hwbench.PhaseFallingEdge, d.c.FallingEdge) }

// ReadOnly waits until all activity at the current time has settled.
//
func (d *Driver) ReadOnly() error { return d.wait(hwbench.PhaseReadOnly, d.c.ReadOnly) }

// NextTimeStep waits for the next time step.
//
func (d *Driver) NextTimeStep() error { return d.wait(hwbench.PhaseNextStep, d.c.NextTimeStep) }

// Timer waits for dt.
//
func (d *Driver) Timer(dt hwbench.Time) error {
	return d.wait(hwbench.PhaseTimer, func() error { return d.c.Timer(dt) })
}

// Write stages value v for the named input.
//
func (d *Driver) Write(name string, v uint64) error {
	if err := d.c.Write(name, v); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	d.log.V(3).Info("write", "signal", name, "value", v, "time", d.c.Now().String())
	return nil
}

// Read returns the committed value of the named signal.
//
func (d *Driver) Read(name string) (uint64, error) {
	return d.c.Read(name)
}

// Width returns the bit width of the named signal.
//
func (d *Driver) Width(name string) (int, error) {
	s, err := d.c.Lookup(name)
	if err != nil {
		return 0, err
	}
	return s.Width, nil
}

// Max returns the largest value that fits the named signal.
//
func (d *Driver) Max(name string) (uint64, error) {
	s, err := d.c.Lookup(name)
	if err != nil {
		return 0, err
	}
	return s.Mask(), nil
}

// Expect checks that the named signal holds the value want. It returns an
// *AssertionError on mismatch.
//
func (d *Driver) Expect(name string, want uint64) error {
	got, err := d.c.Read(name)
	if err != nil {
		return err
	}
	d.log.V(3).Info("expect", "signal", name, "want", want, "got", got)
	if got != want {
		return &AssertionError{
			Step:   d.step,
			Signal: name,
			Want:   want,
			Got:    got,
			Phase:  d.c.Phase(),
			Edge:   d.Edges(),
			Time:   d.c.Now(),
		}
	}
	return nil
}

// WaitUntil waits for at most maxEdges rising edges until the named signal
// holds the value want, as seen in the read-only phase after each edge.
//
func (d *Driver) WaitUntil(name string, want uint64, maxEdges int) error {
	for i := 0; i < maxEdges; i++ {
		if err := d.RisingEdge(); err != nil {
			return err
		}
		if err := d.ReadOnly(); err != nil {
			return err
		}
		got, err := d.c.Read(name)
		if err != nil {
			return err
		}
		if got == want {
			return nil
		}
	}
	return errors.Wrapf(hwbench.ErrTimeout, "%s != %#x after %d rising edges", name, want, maxEdges)
}

// Param returns the value of the named circuit parameter.
//
func (d *Driver) Param(name string) (int, bool) {
	return d.c.Param(name)
}

// RequireParam checks that the circuit parameter name is set to want. It
// returns an error wrapping hwbench.ErrConfig otherwise.
//
func (d *Driver) RequireParam(name string, want int) error {
	v, ok := d.c.Param(name)
	switch {
	case !ok:
		return errors.Wrapf(hwbench.ErrConfig, "circuit has no parameter %s", name)
	case v != want:
		return errors.Wrapf(hwbench.ErrConfig, "parameter %s = %d, expected %d", name, v, want)
	}
	return nil
}
