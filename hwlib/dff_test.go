package hwlib_test

import (
	"math/rand"
	"testing"

	hw "github.com/db47h/hwbench"
	hl "github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/hwtest"
	"github.com/google/go-cmp/cmp"
)

func TestRegister_pins(t *testing.T) {
	td := []struct {
		kind hl.RegKind
		in   []string
	}{
		{hl.DFF, []string{"data"}},
		{hl.DFFEn, []string{"data", "enabler"}},
		{hl.DFFAsyncRstN, []string{"data", "async_rst_n"}},
		{hl.DFFAsyncRstNEn, []string{"data", "async_rst_n", "enabler"}},
		{hl.DFFSyncRstN, []string{"data", "sync_rst_n"}},
		{hl.DFFSyncRstNEn, []string{"data", "sync_rst_n", "enabler"}},
	}
	for _, d := range td {
		t.Run(d.kind.String(), func(t *testing.T) {
			sp := hl.RegisterSpec(d.kind, 8)
			if diff := cmp.Diff(d.in, sp.Inputs.Names()); diff != "" {
				t.Errorf("inputs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"q"}, sp.Outputs.Names()); diff != "" {
				t.Errorf("outputs mismatch (-want +got):\n%s", diff)
			}
			if sp.Params[hl.ParamWidth] != 8 {
				t.Errorf("WIDTH = %d", sp.Params[hl.ParamWidth])
			}
			k, err := hl.ParseRegKind(d.kind.String())
			if err != nil || k != d.kind {
				t.Errorf("ParseRegKind(%q) = %v, %v", d.kind.String(), k, err)
			}
		})
	}
	if _, err := hl.ParseRegKind("latch"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRegister(t *testing.T) {
	for _, k := range hl.RegKinds() {
		k := k
		t.Run(k.String(), func(t *testing.T) {
			conns := "data=d, q=q"
			if p := k.ResetPin(); p != "" {
				conns += ", " + p + "=rst_n"
			}
			if k.Gated() {
				conns += ", enabler=en"
			}
			b := newBench(t, hl.Register(k, 8)(conns))
			rnd := rand.New(rand.NewSource(666))

			var want uint64
			for i := 0; i < 200; i++ {
				d := rnd.Uint64() & 0xff
				var rst, en uint64 = 1, 1
				if k.ResetPin() != "" {
					if rnd.Intn(4) == 0 {
						rst = 0
					}
					b.write("rst_n", rst)
				}
				if k.Gated() {
					en = uint64(rnd.Intn(2))
					b.write("en", en)
				}
				b.write("d", d)
				b.must(b.c.ReadOnly())
				if k.Async() && rst == 0 {
					want = 0
				}
				b.expect("q", want)

				b.must(b.c.NextTimeStep())
				b.must(b.c.RisingEdge())
				b.expect("q", want)
				b.must(b.c.ReadOnly())
				switch {
				case k.ResetPin() != "" && rst == 0:
					want = 0
				case en != 0:
					want = d
				}
				b.expect("q", want)

				// no update on falling edges
				b.must(b.c.FallingEdge())
				b.must(b.c.Timer(hw.Picosecond))
				b.expect("q", want)
			}
		})
	}
}

// several writes to the same input before an edge: the last one is latched.
func TestRegister_last_write_wins(t *testing.T) {
	td := []struct {
		kind   hl.RegKind
		writes [][2]uint64 // d, enabler
		want   uint64
	}{
		{hl.DFF, [][2]uint64{{1, 1}, {2, 1}}, 2},
		{hl.DFFEn, [][2]uint64{{1, 0}, {2, 1}}, 2},
		{hl.DFFEn, [][2]uint64{{1, 1}, {2, 0}}, 0},
		{hl.DFFAsyncRstNEn, [][2]uint64{{1, 0}, {2, 1}}, 2},
		{hl.DFFSyncRstNEn, [][2]uint64{{3, 1}, {1, 0}, {2, 1}}, 2},
	}
	for _, d := range td {
		t.Run(d.kind.String(), func(t *testing.T) {
			conns := "data=d, q=q"
			if p := d.kind.ResetPin(); p != "" {
				conns += ", " + p + "=rst_n"
			}
			if d.kind.Gated() {
				conns += ", enabler=en"
			}
			b := newBench(t, hl.Register(d.kind, 8)(conns))
			if d.kind.ResetPin() != "" {
				b.write("rst_n", 1)
			}
			for _, w := range d.writes {
				b.write("d", w[0])
				if d.kind.Gated() {
					b.write("en", w[1])
				}
			}
			b.cycle()
			b.expect("q", d.want)
		})
	}
}

func TestRegister_async_reset(t *testing.T) {
	b := newBench(t, hl.Register(hl.DFFAsyncRstNEn, 8)("data=d, async_rst_n=rst_n, enabler=en, q=q"))
	b.write("rst_n", 1)
	b.write("en", 1)
	b.write("d", 0x5a)
	b.cycle()
	b.expect("q", 0x5a)
	b.must(b.c.NextTimeStep())

	// reset takes effect without waiting for an edge
	b.write("rst_n", 0)
	b.must(b.c.Timer(hw.Picosecond))
	b.expect("q", 0)
	// and holds through rising edges
	b.cycle()
	b.expect("q", 0)
}

func TestRegister_sync_reset(t *testing.T) {
	b := newBench(t, hl.Register(hl.DFFSyncRstN, 8)("data=d, sync_rst_n=rst_n, q=q"))
	b.write("rst_n", 1)
	b.write("d", 0xa5)
	b.cycle()
	b.expect("q", 0xa5)
	b.must(b.c.NextTimeStep())

	b.write("rst_n", 0)
	b.must(b.c.FallingEdge())
	b.must(b.c.Timer(hw.Picosecond))
	b.expect("q", 0xa5)
	b.cycle()
	b.expect("q", 0)
}

func Test_bit_register(t *testing.T) {
	reg, err := hw.Chip("BitReg", hw.IO("data[8], enabler"), hw.IO("q[8]"),
		hl.MuxN(2, 8)("channels[0]=q, channels[1]=data, select=enabler, channel_out=muxOut"),
		hl.Register(hl.DFF, 8)("data=muxOut, q=q"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 256, hl.Register(hl.DFFEn, 8), reg)
}

func Test_sync_reset_register(t *testing.T) {
	reg, err := hw.Chip("SyncRstReg", hw.IO("data[8], sync_rst_n"), hw.IO("q[8]"),
		hl.MuxN(2, 8)("channels[0]=0, channels[1]=data, select=sync_rst_n, channel_out=muxOut"),
		hl.Register(hl.DFF, 8)("data=muxOut, q=q"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 256, hl.Register(hl.DFFSyncRstN, 8), reg)
}
