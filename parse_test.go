package hwbench_test

import (
	"testing"

	hw "github.com/db47h/hwbench"
	"github.com/google/go-cmp/cmp"
)

func TestParseIO(t *testing.T) {
	td := []struct {
		spec string
		pins hw.Pins
		err  bool
	}{
		{"", nil, false},
		{"a", hw.Pins{{"a", 1}}, false},
		{"data[8], async_rst_n", hw.Pins{{"data", 8}, {"async_rst_n", 1}}, false},
		{"ch{3}[4], sel[2]", hw.Pins{{"ch[0]", 4}, {"ch[1]", 4}, {"ch[2]", 4}, {"sel", 2}}, false},
		{"b{2}", hw.Pins{{"b[0]", 1}, {"b[1]", 1}}, false},
		{"w[64]", hw.Pins{{"w", 64}}, false},
		{"w[65]", nil, true},
		{"w[0]", nil, true},
		{"a, a", nil, true},
		{"a{0}", nil, true},
		{"a[8", nil, true},
		{"a{2", nil, true},
		{"8a", nil, true},
		{"a[8]x", nil, true},
	}
	for _, d := range td {
		t.Run(d.spec, func(t *testing.T) {
			p, err := hw.ParseIO(d.spec)
			if d.err {
				if err == nil {
					t.Fatalf("expected error, got %v", p)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.pins, p); diff != "" {
				t.Fatalf("pins mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConnections(t *testing.T) {
	td := []struct {
		in    string
		conns []hw.Connection
		err   bool
	}{
		{"", nil, false},
		{"a=b", []hw.Connection{{"a", "b"}}, false},
		{" data = d , q=q ", []hw.Connection{{"data", "d"}, {"q", "q"}}, false},
		{"ch[0..2]=x[1..3]", []hw.Connection{{"ch[0]", "x[1]"}, {"ch[1]", "x[2]"}, {"ch[2]", "x[3]"}}, false},
		{"ch[0..1]=zero", []hw.Connection{{"ch[0]", "zero"}, {"ch[1]", "zero"}}, false},
		{"ch[0..1]=0x3", []hw.Connection{{"ch[0]", "0x3"}, {"ch[1]", "0x3"}}, false},
		{"sel=2", []hw.Connection{{"sel", "2"}}, false},
		{"ch[1]=y", []hw.Connection{{"ch[1]", "y"}}, false},
		{"ch[0..2]=x[0..1]", nil, true},
		{"ch[2..1]=x", nil, true},
		{"a", nil, true},
		{"a=", nil, true},
		{"=b", nil, true},
		{"a=0xzz", nil, true},
		{"a[x]=b", nil, true},
	}
	for _, d := range td {
		t.Run(d.in, func(t *testing.T) {
			c, err := hw.ParseConnections(d.in)
			if d.err {
				if err == nil {
					t.Fatalf("expected error, got %v", c)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.conns, c); diff != "" {
				t.Fatalf("connections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSignal_Check(t *testing.T) {
	s := hw.Signal{Name: "d", Width: 4}
	if err := s.Check(15); err != nil {
		t.Fatal(err)
	}
	if err := s.Check(16); err == nil {
		t.Fatal("expected width error")
	}
	if m := (hw.Signal{Name: "w", Width: 64}).Mask(); m != ^uint64(0) {
		t.Fatalf("mask = %#x", m)
	}
	if s.String() != "d[4]" {
		t.Fatalf("String() = %q", s.String())
	}
}
