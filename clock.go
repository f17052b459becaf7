// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import "github.com/pkg/errors"

// Clock is a free running two-phase clock source.
//
// A started clock is low for the first half period, then toggles every half
// period: rising edges occur at start+period/2+k*period and falling edges
// half a period later. The clock value is exposed to components as the
// reserved signal Clk.
//
type Clock struct {
	period  Time
	running bool
	high    bool
	next    Time   // time of the next edge
	rises   uint64 // rising edge count
	falls   uint64 // falling edge count
}

// Start starts the clock at time now with the given period. The period must
// be an even, non-zero number of picoseconds. Restarting a running clock
// changes its period; the edge counters are preserved.
//
func (k *Clock) Start(now, period Time) error {
	if period == 0 || period%2 != 0 {
		return errors.Wrapf(ErrConfig, "invalid clock period %v: must be even and non-zero", period)
	}
	k.period = period
	k.running = true
	k.high = false
	k.next = now + period/2
	return nil
}

// Stop stops the clock. Edges can no longer be waited for until it is
// started again.
//
func (k *Clock) Stop() {
	k.running = false
}

// Running returns true if the clock has been started and not stopped.
//
func (k *Clock) Running() bool { return k.running }

// Period returns the clock period.
//
func (k *Clock) Period() Time { return k.period }

// High returns the current clock level.
//
func (k *Clock) High() bool { return k.high }

// Rises returns the number of rising edges since the clock was created.
//
func (k *Clock) Rises() uint64 { return k.rises }

// Falls returns the number of falling edges since the clock was created.
//
func (k *Clock) Falls() uint64 { return k.falls }

// Next returns the time of the next edge. ok is false if the clock is not
// running.
//
func (k *Clock) Next() (t Time, ok bool) {
	return k.next, k.running
}

// toggle moves the clock past its next edge and reports whether that edge
// was a rising one.
//
func (k *Clock) toggle() bool {
	k.high = !k.high
	k.next += k.period / 2
	if k.high {
		k.rises++
	} else {
		k.falls++
	}
	return k.high
}
