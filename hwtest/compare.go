// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/hwbench"
	"github.com/google/go-cmp/cmp"
)

// connString returns a connection string that connects each pin to a wire
// with the same name prefixed by prefix.
//
func connString(b *strings.Builder, pins hwbench.Pins, prefix string) {
	for _, p := range pins {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(p.Name)
		b.WriteRune('=')
		b.WriteString(prefix)
		b.WriteString(p.Name)
	}
}

func wiring(in, out hwbench.Pins, prefix string) string {
	var b strings.Builder
	connString(&b, in, "")
	connString(&b, out, prefix)
	return b.String()
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
// Both parts are mounted side by side in a circuit and fed the same random
// inputs, starting with all zeros and all ones. Outputs are compared once the
// circuit has settled after each input change and after each rising edge.
//
func ComparePart(t *testing.T, iterations int, part1, part2 hwbench.NewPartFn) {
	t.Helper()

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))

	ps1, ps2 := part1("").PartSpec, part2("").PartSpec

	// compare specs
	if diff := cmp.Diff(ps1.Inputs, ps2.Inputs); diff != "" {
		t.Fatalf("%s and %s inputs differ (-%s +%s):\n%s", ps1.Name, ps2.Name, ps1.Name, ps2.Name, diff)
	}
	if diff := cmp.Diff(ps1.Outputs, ps2.Outputs); diff != "" {
		t.Fatalf("%s and %s outputs differ (-%s +%s):\n%s", ps1.Name, ps2.Name, ps1.Name, ps2.Name, diff)
	}

	c, err := hwbench.NewCircuit(0,
		part1(wiring(ps1.Inputs, ps1.Outputs, "p1_")),
		part2(wiring(ps2.Inputs, ps2.Outputs, "p2_")),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	inputs := make([]uint64, len(ps1.Inputs))

	errString := func(oname string, ex, got uint64) string {
		var b strings.Builder
		for i, n := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%#x", n.Name, inputs[i])
		}
		return fmt.Sprintf("\nExpected %s => %s=%#x\nGot %#x (seed %d, %v)", b.String(), oname, ex, got, seed, c.Now())
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	compare := func() {
		t.Helper()
		for _, o := range ps1.Outputs {
			v1, err := c.Read("p1_" + o.Name)
			must(err)
			v2, err := c.Read("p2_" + o.Name)
			must(err)
			if v1 != v2 {
				t.Fatal(errString(o.Name, v1, v2))
			}
		}
	}

	cycle := func(gen func(hwbench.Signal) uint64) {
		t.Helper()
		for i, in := range ps1.Inputs {
			inputs[i] = gen(in)
			must(c.Write(in.Name, inputs[i]))
		}
		must(c.ReadOnly())
		compare()
		must(c.NextTimeStep())
		must(c.RisingEdge())
		must(c.ReadOnly())
		compare()
		must(c.NextTimeStep())
	}

	start := time.Now()
	must(c.Start(2))

	// try all 0
	cycle(func(hwbench.Signal) uint64 { return 0 })
	// try all 1
	cycle(func(s hwbench.Signal) uint64 { return s.Mask() })

	for i := 0; i < iterations; i++ {
		cycle(func(s hwbench.Signal) uint64 { return rnd.Uint64() & s.Mask() })
	}

	elapsed := time.Since(start)
	ticks := c.Clock().Rises()
	t.Logf("%d components. %d evaluation passes in %v. %d clock ticks => %.2f Hz", c.Size(), c.Deltas(), elapsed, ticks, float64(ticks)/(float64(elapsed)/float64(time.Second)))
}
