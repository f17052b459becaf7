package model_test

import (
	"testing"

	"github.com/db47h/hwbench/model"
	"github.com/stretchr/testify/assert"
)

func cleared(width int) *model.Fetch {
	f := model.NewFetch(width)
	rst := model.FetchIn{Reset: true}
	f.Settle(rst)
	f.Rising(rst)
	return f
}

func TestFetch_counting(t *testing.T) {
	f := cleared(32)
	in := model.FetchIn{Enable: true, Source: model.SourcePlus4}
	assert.Equal(t, uint64(0), f.PC())
	assert.Equal(t, uint64(4), f.PCPlus4())
	for pc := uint64(4); pc <= 0x10; pc += 4 {
		f.Rising(in)
		assert.Equal(t, pc, f.PC())
		assert.Equal(t, pc+4, f.PCPlus4())
	}
}

func TestFetch_sources(t *testing.T) {
	base := model.FetchIn{Enable: true, PCPlus4E: 0x40, ALUResult: 0x2, PredictedPC: 0x3}
	td := []struct {
		name   string
		source model.PCSource
		pred   bool
		want   uint64
	}{
		{"plus4", model.SourcePlus4, false, 8},
		{"plus4e", model.SourcePlus4E, false, 0x40},
		{"alu", model.SourceALU, false, 0x2},
		{"zero", model.SourceZero, false, 0},
		{"predictor", model.SourceZero, true, 0x3},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			f := cleared(32)
			f.Rising(base)
			assert.Equal(t, uint64(4), f.PC())
			in := base
			in.Source, in.Predict = d.source, d.pred
			f.Rising(in)
			assert.Equal(t, d.want, f.PC())
			assert.Equal(t, d.want+4, f.PCPlus4())
		})
	}
}

func TestFetch_reset_beats_prediction(t *testing.T) {
	f := cleared(32)
	f.Rising(model.FetchIn{Enable: true})
	in := model.FetchIn{Reset: true, Enable: true, Predict: true, PredictedPC: 0x3}
	f.Settle(in)
	assert.Zero(t, f.PC())
	f.Rising(in)
	assert.Zero(t, f.PC())
}

func TestFetch_disabled_and_wrap(t *testing.T) {
	f := cleared(4)
	f.Rising(model.FetchIn{Enable: true, Source: model.SourceALU, ALUResult: 0xc})
	assert.Equal(t, uint64(0xc), f.PC())
	assert.Equal(t, uint64(0), f.PCPlus4(), "PC+4 wraps")
	f.Rising(model.FetchIn{Enable: false, Source: model.SourceZero})
	assert.Equal(t, uint64(0xc), f.PC())
	f.Rising(model.FetchIn{Enable: true})
	assert.Equal(t, uint64(0), f.PC())
}
