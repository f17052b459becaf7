package hwbench_test

import (
	"fmt"

	hw "github.com/db47h/hwbench"
)

// incr is a custom incrementer.
//
type incr struct {
	In    int `hw:"in,,Width"`  // input pin "in", Width bits
	Out   int `hw:"out,,Width"` // output pin "out"
	Carry int `hw:"out,co"`     // 1 bit output, the second tag value forces the pin name to "co"
	Width int
}

// Update implements Updater.
//
func (p *incr) Update(c *hw.Circuit) {
	v := c.Get(p.In) + 1
	c.Set(p.Out, v)
	c.Set(p.Carry, v>>uint(p.Width))
}

// MakePart example with a custom incrementer
func ExampleMakePart() {
	inc4 := hw.MakePart(&incr{Width: 4})
	c, err := hw.NewCircuit(1, inc4.NewPart("in=a, out=b, co=carry"))
	if err != nil {
		panic(err)
	}
	defer c.Dispose()

	for _, a := range []uint64{1, 15} {
		if err = c.Write("a", a); err != nil {
			panic(err)
		}
		if err = c.Settle(); err != nil {
			panic(err)
		}
		b, _ := c.Read("b")
		carry, _ := c.Read("carry")
		fmt.Printf("a=%d => b=%d, carry=%d\n", a, b, carry)
	}

	// Output:
	// a=1 => b=2, carry=0
	// a=15 => b=0, carry=1
}
