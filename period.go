// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

// MinPeriod is the shortest period returned by PeriodOf. With a half period of
// at least 2ps, NextTimeStep after a clock edge never reaches the next edge.
//
const MinPeriod = 4 * Picosecond

// PeriodOf returns the clock period for frequency f, rounded to the nearest
// even number of picoseconds so that it can be used with Clock.Start. It
// returns an error wrapping ErrConfig if the period is shorter than
// MinPeriod.
//
func PeriodOf(f sim.Freq) (Time, error) {
	if f <= 0 || math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return 0, errors.Wrapf(ErrConfig, "invalid clock frequency %v", float64(f))
	}
	ps := math.Round(1e12 / float64(f) / 2)
	if Time(ps)*2 < MinPeriod {
		return 0, errors.Wrapf(ErrConfig, "clock frequency %v too high, period must be at least %v", float64(f), MinPeriod)
	}
	return Time(ps) * 2, nil
}
