// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package model

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Mux is the reference model of a count way multiplexer.
//
type Mux struct {
	count int
	width int
}

// NewMux returns a new mux model.
//
func NewMux(count, width int) *Mux {
	return &Mux{count: count, width: width}
}

// Select returns channels[sel]. It returns an error wrapping ErrSelectRange
// if sel is out of range.
//
func (m *Mux) Select(channels []uint64, sel uint64) (uint64, error) {
	if len(channels) != m.count {
		return 0, errors.Errorf("got %d channels, expected %d", len(channels), m.count)
	}
	if sel >= uint64(m.count) {
		return 0, errors.Wrapf(ErrSelectRange, "select %d with %d channels", sel, m.count)
	}
	return channels[sel] & mask(m.width), nil
}

// Channels returns n distinct channel values {1, 2, ..., n}.
//
func Channels(n int) []uint64 {
	ch := make([]uint64, n)
	for i := range ch {
		ch[i] = uint64(i + 1)
	}
	return ch
}

// RandomChannels returns n distinct random values of width bits. It panics if
// n distinct values do not fit width bits.
//
func RandomChannels(r *rand.Rand, n, width int) []uint64 {
	if width < 64 && uint64(n) > 1<<uint(width) {
		panic(errors.Errorf("%d distinct values do not fit %d bits", n, width))
	}
	m := mask(width)
	ch := make([]uint64, 0, n)
	seen := make(map[uint64]bool, n)
	for len(ch) < n {
		v := r.Uint64() & m
		if seen[v] {
			continue
		}
		seen[v] = true
		ch = append(ch, v)
	}
	return ch
}

// Pack packs channels into a single word, channel 0 in the least significant
// bits. It returns false if the channels do not fit 64 bits.
//
func Pack(channels []uint64, width int) (uint64, bool) {
	if len(channels)*width > 64 {
		return 0, false
	}
	var p uint64
	m := mask(width)
	for i, v := range channels {
		p |= (v & m) << uint(i*width)
	}
	return p, true
}

// Unpack is the inverse of Pack.
//
func Unpack(p uint64, count, width int) []uint64 {
	ch := make([]uint64, count)
	m := mask(width)
	for i := range ch {
		ch[i] = p >> uint(i*width) & m
	}
	return ch
}
