// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package model provides behavioral reference models of the circuits under
// test. Models are pure Go state machines with no notion of time: callers
// apply the level sensitive behavior with Settle and the edge triggered
// behavior with Rising.
//
package model

import "github.com/pkg/errors"

// ErrSelectRange is returned by Mux.Select for a select value outside
// [0, count).
//
var ErrSelectRange = errors.New("mux select out of range")

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}
