// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package model

// ResetKind is the kind of reset of a register.
//
type ResetKind int

// Reset kinds.
//
const (
	NoReset ResetKind = iota
	AsyncReset
	SyncReset
)

func (k ResetKind) String() string {
	switch k {
	case NoReset:
		return "none"
	case AsyncReset:
		return "async"
	case SyncReset:
		return "sync"
	}
	return "invalid"
}

// Variant describes the behavior of a register.
//
type Variant struct {
	Reset ResetKind
	Gated bool // loads only when enabled
}

func (v Variant) String() string {
	s := "reset=" + v.Reset.String()
	if v.Gated {
		s += ",gated"
	}
	return s
}

// RegisterIn holds the inputs of a register. Reset is active high.
//
type RegisterIn struct {
	Data   uint64
	Reset  bool
	Enable bool
}

// Register is the reference model of a register.
//
type Register struct {
	v    Variant
	mask uint64
	q    uint64
}

// NewRegister returns a cleared register of the given variant and width.
//
func NewRegister(v Variant, width int) *Register {
	return &Register{v: v, mask: mask(width)}
}

// Variant returns the register variant.
func (r *Register) Variant() Variant { return r.v }

// Q returns the stored value.
func (r *Register) Q() uint64 { return r.q }

// Settle applies the level sensitive behavior of the register for inputs
// in: an active asynchronous reset clears it.
//
func (r *Register) Settle(in RegisterIn) {
	if r.v.Reset == AsyncReset && in.Reset {
		r.q = 0
	}
}

// Rising applies a rising clock edge with inputs in.
//
func (r *Register) Rising(in RegisterIn) {
	r.q = r.Next(in)
}

// Next returns the value the register would hold after a rising edge with
// inputs in. Reset takes priority over enable.
//
func (r *Register) Next(in RegisterIn) uint64 {
	switch {
	case r.v.Reset != NoReset && in.Reset:
		return 0
	case r.v.Gated && !in.Enable:
		return r.q
	}
	return in.Data & r.mask
}
