package hwtest_test

import (
	"context"
	"testing"

	hw "github.com/db47h/hwbench"
	hl "github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/hwtest"
	"github.com/pkg/errors"
)

func newDriver(t *testing.T, ctx context.Context, opts ...hwtest.Option) *hwtest.Driver {
	t.Helper()
	c, err := hw.NewCircuit(1, hl.Register(hl.DFFSyncRstNEn, 8)("data=data, sync_rst_n=rst_n, enabler=en, q=q"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Dispose)
	d := hwtest.NewDriver(ctx, c, opts...)
	if err = d.Start(2 * hw.Nanosecond); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDriver_Expect(t *testing.T) {
	d := newDriver(t, context.Background())
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(d.Write("rst_n", 1))
	must(d.Write("en", 1))
	must(d.Write("data", 0x42))
	d.Step("load")
	must(d.RisingEdge())
	must(d.Expect("q", 0))
	must(d.ReadOnly())
	must(d.Expect("q", 0x42))

	err := d.Expect("q", 0x43)
	var ae *hwtest.AssertionError
	if !errors.As(err, &ae) {
		t.Fatalf("expected an assertion error, got %v", err)
	}
	if ae.Step != "load" || ae.Signal != "q" || ae.Want != 0x43 || ae.Got != 0x42 ||
		ae.Phase != hw.PhaseReadOnly || ae.Edge != 1 || ae.Time != hw.Nanosecond {
		t.Fatalf("unexpected assertion error %+v", *ae)
	}
	if err.Error() != `step load: q = 0x42, expected 0x43 (read_only, rising edge #1, 1ns)` {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if w, err := d.Width("q"); err != nil || w != 8 {
		t.Fatalf("Width(q) = %d, %v", w, err)
	}
	if m, err := d.Max("data"); err != nil || m != 0xff {
		t.Fatalf("Max(data) = %#x, %v", m, err)
	}
	if err := d.RequireParam(hl.ParamWidth, 8); err != nil {
		t.Fatal(err)
	}
	if err := d.RequireParam(hl.ParamWidth, 16); errors.Cause(err) != hw.ErrConfig {
		t.Fatalf("RequireParam mismatch: got %v", err)
	}
	if err := d.RequireParam(hl.ParamPCWidth, 32); errors.Cause(err) != hw.ErrConfig {
		t.Fatalf("RequireParam missing: got %v", err)
	}
}

func TestDriver_WaitUntil(t *testing.T) {
	d := newDriver(t, context.Background())
	if err := d.Write("rst_n", 1); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("data", 7); err != nil {
		t.Fatal(err)
	}
	// enable is low: q never loads
	if err := d.WaitUntil("q", 7, 4); errors.Cause(err) != hw.ErrTimeout {
		t.Fatalf("got %v, expected timeout", err)
	}
	if d.Edges() != 4 {
		t.Fatalf("edges = %d", d.Edges())
	}
	if err := d.NextTimeStep(); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("en", 1); err != nil {
		t.Fatal(err)
	}
	if err := d.WaitUntil("q", 7, 4); err != nil {
		t.Fatal(err)
	}
}

func TestDriver_timeouts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := newDriver(t, ctx)
	if err := d.RisingEdge(); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := d.RisingEdge(); errors.Cause(err) != hw.ErrTimeout {
		t.Fatalf("cancelled context: got %v", err)
	}

	d = newDriver(t, context.Background(), hwtest.WithTimeout(5*hw.Nanosecond))
	for i := 0; i < 2; i++ {
		if err := d.RisingEdge(); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Timer(3 * hw.Nanosecond); errors.Cause(err) != hw.ErrTimeout {
		t.Fatalf("simulated time limit: got %v", err)
	}
}

func TestDriver_protocol(t *testing.T) {
	d := newDriver(t, context.Background())
	if err := d.ReadOnly(); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("data", 1); errors.Cause(err) != hw.ErrProtocol {
		t.Fatalf("write in read-only phase: got %v", err)
	}
	if err := d.NextTimeStep(); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("data", 0x100); errors.Cause(err) != hw.ErrWidth {
		t.Fatalf("wide write: got %v", err)
	}
	if err := d.Write("q", 1); errors.Cause(err) != hw.ErrProtocol {
		t.Fatalf("driven signal write: got %v", err)
	}
	if err := d.Expect("nope", 1); errors.Cause(err) != hw.ErrProtocol {
		t.Fatalf("unknown signal: got %v", err)
	}
}
