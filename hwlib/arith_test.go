package hwlib_test

import (
	"math/bits"
	"testing"
	"testing/quick"

	"github.com/db47h/hwbench/hwtest"

	hw "github.com/db47h/hwbench"
	hl "github.com/db47h/hwbench/hwlib"
)

func TestAdder(t *testing.T) {
	for _, width := range []int{8, 32, 64} {
		b := newBench(t, hl.Adder(width)("a=a, b=b, out=out, c=c"))
		m := hw.Signal{Width: width}.Mask()
		f := func(x, y uint64) bool {
			x, y = x&m, y&m
			b.write("a", x)
			b.write("b", y)
			b.must(b.c.Settle())
			sum, carry := bits.Add64(x, y, 0)
			if width < 64 {
				carry = sum >> uint(width)
				sum &= m
			}
			out, _ := b.c.Read("out")
			c, _ := b.c.Read("c")
			return out == sum && c == carry
		}
		if err := quick.Check(f, nil); err != nil {
			t.Errorf("width %d: %v", width, err)
		}
	}
}

func TestAddConst(t *testing.T) {
	inc, err := hw.Chip("myAdd4", hw.IO("a[8]"), hw.IO("out[8]"),
		hl.Adder(8)("a=a, b=4, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 64, hl.AddConst(8, 4), inc)

	b := newBench(t, hl.AddConst(4, 4)("a=a, out=out"))
	b.write("a", 0xe)
	b.must(b.c.Settle())
	b.expect("out", 0x2)
}

func TestSplitJoin(t *testing.T) {
	id, err := hw.Chip("myIdentity", hw.IO("a[8]"), hw.IO("out[8]"),
		hl.Split(8)("in=a, out[0..7]=b[0..7]"),
		hl.Join(8)("in[0..7]=b[0..7], out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 64, hl.AddConst(8, 0), id)
}

func TestConst(t *testing.T) {
	b := newBench(t, hl.Const(8, 0x5a)("out=k"))
	b.expect("k", 0x5a)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a constant wider than its output")
		}
	}()
	hl.Const(4, 16)
}
