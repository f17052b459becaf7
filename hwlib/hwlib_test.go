package hwlib_test

import (
	"testing"

	hw "github.com/db47h/hwbench"
)

// bench drives a circuit clocked at 500MHz.
type bench struct {
	t *testing.T
	c *hw.Circuit
}

func newBench(t *testing.T, parts ...hw.Part) *bench {
	t.Helper()
	c, err := hw.NewCircuit(1, parts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Dispose)
	if err = c.Start(2 * hw.Nanosecond); err != nil {
		t.Fatal(err)
	}
	return &bench{t, c}
}

func (b *bench) must(err error) {
	b.t.Helper()
	if err != nil {
		b.t.Fatal(err)
	}
}

func (b *bench) write(name string, v uint64) {
	b.t.Helper()
	b.must(b.c.Write(name, v))
}

func (b *bench) expect(name string, want uint64) {
	b.t.Helper()
	got, err := b.c.Read(name)
	b.must(err)
	if got != want {
		b.t.Fatalf("%s = %#x, expected %#x at %v (%v, rising edge #%d)", name, got, want, b.c.Now(), b.c.Phase(), b.c.Clock().Rises())
	}
}

// cycle waits for the next rising edge, then for the read-only phase.
func (b *bench) cycle() {
	b.t.Helper()
	b.must(b.c.RisingEdge())
	b.must(b.c.ReadOnly())
}
