// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"strconv"

	"github.com/pkg/errors"
)

// MaxWidth is the maximum bit width of a signal.
//
const MaxWidth = 64

// Time is a simulated time in picoseconds.
//
type Time uint64

// Common durations.
//
const (
	Picosecond  Time = 1
	Nanosecond       = 1000 * Picosecond
	Microsecond      = 1000 * Nanosecond
)

func (t Time) String() string {
	switch {
	case t != 0 && t%Microsecond == 0:
		return strconv.FormatUint(uint64(t/Microsecond), 10) + "us"
	case t != 0 && t%Nanosecond == 0:
		return strconv.FormatUint(uint64(t/Nanosecond), 10) + "ns"
	}
	return strconv.FormatUint(uint64(t), 10) + "ps"
}

// A Signal describes a named, fixed-width unsigned wire in a circuit.
//
type Signal struct {
	Name  string
	Width int
}

// Mask returns the bit mask of all valid bits of s.
//
func (s Signal) Mask() uint64 {
	if s.Width >= MaxWidth {
		return ^uint64(0)
	}
	return 1<<uint(s.Width) - 1
}

// Check returns an error wrapping ErrWidth if v does not fit s.
//
func (s Signal) Check(v uint64) error {
	if v&^s.Mask() != 0 {
		return errors.Wrapf(ErrWidth, "value %#x does not fit %d-bit signal %s", v, s.Width, s.Name)
	}
	return nil
}

func (s Signal) String() string {
	if s.Width == 1 {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.Width) + "]"
}

// bus holds the state of all signals in a circuit.
//
// Values are double buffered: components read frame s0 (committed values)
// and write frame s1 (next values). Frames are swapped once every component
// has been evaluated.
//
type bus struct {
	sigs   []Signal
	index  map[string]int
	driven []bool // true if the signal has a driver inside the circuit
	s0     []uint64
	s1     []uint64
}

func (b *bus) alloc(name string, width int) int {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	// nested chips may reuse internal names: make them unique.
	if _, ok := b.index[name]; ok {
		base := name
		for i := 1; ; i++ {
			name = base + "#" + strconv.Itoa(i)
			if _, ok := b.index[name]; !ok {
				break
			}
		}
	}
	n := len(b.sigs)
	b.sigs = append(b.sigs, Signal{Name: name, Width: width})
	b.driven = append(b.driven, false)
	b.s0 = append(b.s0, 0)
	b.s1 = append(b.s1, 0)
	b.index[name] = n
	return n
}

// lookup returns the signal number for the given name.
//
func (b *bus) lookup(name string) (int, error) {
	n, ok := b.index[name]
	if !ok {
		return 0, errors.Wrapf(ErrProtocol, "no signal named %q", name)
	}
	return n, nil
}

// force sets the committed and next value of signal n.
//
func (b *bus) force(n int, v uint64) {
	b.s0[n] = v
	b.s1[n] = v
}

func (b *bus) swap() {
	b.s0, b.s1 = b.s1, b.s0
}

func (b *bus) stable() bool {
	for i, v := range b.s0 {
		if b.s1[i] != v {
			return false
		}
	}
	return true
}
