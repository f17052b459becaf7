// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import "github.com/pkg/errors"

// Error classes returned by the simulation engine. Errors returned by this
// package and its sub-packages wrap one of these with context; use
// errors.Cause or errors.Is to classify them.
//
var (
	// ErrProtocol reports a misuse of the simulation protocol: waiting on a
	// clock that never ticks, writing during the read-only phase, or
	// accessing a signal that does not exist.
	ErrProtocol = errors.New("protocol violation")

	// ErrWidth reports a stimulus value that does not fit the declared
	// width of a signal.
	ErrWidth = errors.New("width violation")

	// ErrConfig reports a structural mismatch between a circuit and what a
	// caller expects of it (parameters, pin widths, wiring).
	ErrConfig = errors.New("configuration mismatch")

	// ErrTimeout reports a bounded wait that expired.
	ErrTimeout = errors.New("timeout")

	// ErrUnstable reports combinational logic that did not settle.
	ErrUnstable = errors.New("circuit did not settle")
)
