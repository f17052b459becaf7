// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package model

// PCSource is the primary next PC selector code of the fetch stage.
//
type PCSource uint64

// PC selector codes.
//
const (
	SourcePlus4  PCSource = iota // PC + 4
	SourcePlus4E                 // externally held PC + 4
	SourceALU                    // ALU result (branch target)
	SourceZero                   // fixed 0
)

// FetchIn holds the inputs of the fetch stage. Reset is active high.
//
type FetchIn struct {
	Reset       bool
	Enable      bool
	Source      PCSource
	Predict     bool // prediction override
	PCPlus4E    uint64
	ALUResult   uint64
	PredictedPC uint64
}

// Fetch is the reference model of the PC generation logic of the fetch
// stage.
//
type Fetch struct {
	mask uint64
	pc   uint64
}

// NewFetch returns a new fetch stage model with a cleared PC.
//
func NewFetch(width int) *Fetch {
	return &Fetch{mask: mask(width)}
}

// PC returns the current PC.
func (f *Fetch) PC() uint64 { return f.pc }

// PCPlus4 returns PC + 4, modulo 2^width.
func (f *Fetch) PCPlus4() uint64 { return (f.pc + 4) & f.mask }

// Next returns the PC the stage would hold after a rising edge with inputs
// in. Reset beats the prediction override, which beats the source code.
//
func (f *Fetch) Next(in FetchIn) uint64 {
	switch {
	case in.Reset:
		return 0
	case !in.Enable:
		return f.pc
	case in.Predict:
		return in.PredictedPC & f.mask
	}
	switch in.Source & 3 {
	case SourcePlus4:
		return f.PCPlus4()
	case SourcePlus4E:
		return in.PCPlus4E & f.mask
	case SourceALU:
		return in.ALUResult & f.mask
	}
	return 0
}

// Settle applies the asynchronous reset.
//
func (f *Fetch) Settle(in FetchIn) {
	if in.Reset {
		f.pc = 0
	}
}

// Rising applies a rising clock edge with inputs in.
//
func (f *Fetch) Rising(in FetchIn) {
	f.pc = f.Next(in)
}
