// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwbench"
	"github.com/pkg/errors"
)

// PC source selector codes of the fetch stage.
//
const (
	PCSourcePlus4   = 0 // registered PC + 4
	PCSourcePlus4E  = 1 // pc_plus_4_e
	PCSourceALU     = 2 // alu_result_e
	PCSourceZero    = 3 // fixed 0
	pcSourceCodeLen = 2
)

// FetchStage returns the program counter generation logic of the fetch stage
// of a pipelined RV32I core, for a PC of the given width.
//
//	Inputs: async_rst_n, pc_source_e[2], enable_fetch_h, prediction_source_d,
//	        pc_plus_4_e[width], alu_result_e[width], predicted_pc_d[width]
//	Outputs: pc_f[width], pc_plus_4_f[width]
//	Function: at each rising edge, if enable_fetch_h {
//	              pc_f = predicted_pc_d if prediction_source_d
//	                     else {pc_plus_4_f, pc_plus_4_e, alu_result_e, 0}[pc_source_e]
//	          }
//	          pc_plus_4_f = pc_f + 4
//	          async_rst_n == 0 clears pc_f immediately
//	Params: PC_WIDTH
//
func FetchStage(width int) (hwbench.NewPartFn, error) {
	if width <= 0 || width > hwbench.MaxWidth {
		return nil, errors.Wrapf(hwbench.ErrConfig, "invalid PC width %d", width)
	}
	w := "[" + strconv.Itoa(width) + "]"
	in, err := hwbench.ParseIO("async_rst_n, pc_source_e[" + strconv.Itoa(pcSourceCodeLen) + "], enable_fetch_h, prediction_source_d, " +
		"pc_plus_4_e" + w + ", alu_result_e" + w + ", predicted_pc_d" + w)
	if err != nil {
		return nil, errors.Wrap(err, "fetch stage inputs")
	}
	out, err := hwbench.ParseIO("pc_f" + w + ", pc_plus_4_f" + w)
	if err != nil {
		return nil, errors.Wrap(err, "fetch stage outputs")
	}
	sp, err := hwbench.ChipSpec("FETCH_STAGE", in, out,
		MuxN(4, width)("channels[0]=pc_plus_4_f, channels[1]=pc_plus_4_e, channels[2]=alu_result_e, channels[3]=0, "+
			"select=pc_source_e, channel_out=pc_src"),
		MuxN(2, width)("channels[0]=pc_src, channels[1]=predicted_pc_d, select=prediction_source_d, channel_out=pc_next"),
		Register(DFFAsyncRstNEn, width)("data=pc_next, async_rst_n=async_rst_n, enabler=enable_fetch_h, q=pc_f"),
		AddConst(width, 4)("a=pc_f, out=pc_plus_4_f"),
	)
	if err != nil {
		return nil, err
	}
	sp.Params = map[string]int{ParamPCWidth: width}
	return sp.NewPart, nil
}
