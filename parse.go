// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pins is a list of signal declarations for the inputs or outputs of a part.
//
type Pins []Signal

// Names returns the pin names.
//
func (p Pins) Names() []string {
	n := make([]string, len(p))
	for i := range p {
		n[i] = p[i].Name
	}
	return n
}

// Lookup returns the pin with the given name.
//
func (p Pins) Lookup(name string) (Signal, bool) {
	for _, s := range p {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

// IO parses a pin specification and panics on error. It is meant for
// static part declarations. See ParseIO for the syntax.
//
func IO(spec string) Pins {
	p, err := ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseIO parses a comma separated pin specification like:
//
//	"data[8], async_rst_n, channels{4}[8]"
//
// A pin is a name, optionally followed by a bus size in braces and a bit
// width in brackets. The default width is 1. A bus declaration "ch{4}[8]"
// expands to four 8 bits pins named ch[0], ch[1], ch[2] and ch[3].
//
func ParseIO(spec string) (Pins, error) {
	var out Pins
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		name, rest := splitIdent(item)
		if name == "" {
			return nil, parseError(spec, item, "expected pin name")
		}
		count := -1
		width := 1
		if strings.HasPrefix(rest, "{") {
			i := strings.IndexByte(rest, '}')
			if i < 0 {
				return nil, parseError(spec, item, "missing closing brace")
			}
			n, err := strconv.Atoi(rest[1:i])
			if err != nil || n <= 0 {
				return nil, parseError(spec, item, "invalid bus size")
			}
			count = n
			rest = rest[i+1:]
		}
		if strings.HasPrefix(rest, "[") {
			i := strings.IndexByte(rest, ']')
			if i < 0 {
				return nil, parseError(spec, item, "missing closing bracket")
			}
			n, err := strconv.Atoi(rest[1:i])
			if err != nil || n <= 0 || n > MaxWidth {
				return nil, parseError(spec, item, "invalid signal width")
			}
			width = n
			rest = rest[i+1:]
		}
		if rest != "" {
			return nil, parseError(spec, item, "unexpected "+strconv.Quote(rest))
		}
		if count < 0 {
			out = append(out, Signal{name, width})
			continue
		}
		for i := 0; i < count; i++ {
			out = append(out, Signal{BusPinName(name, i), width})
		}
	}
	// check duplicates
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[i].Name == out[j].Name {
				return nil, errors.Errorf("in %q: duplicate pin name %s", spec, out[i].Name)
			}
		}
	}
	return out, nil
}

// BusPinName returns the name of the i-th pin in the given bus.
//
func BusPinName(bus string, i int) string {
	return bus + "[" + strconv.Itoa(i) + "]"
}

// A Connection connects a part's pin to a wire in its container. If Wire is
// a number literal, the pin is tied to that constant value.
//
type Connection struct {
	Pin  string
	Wire string
}

// ParseConnections parses a connection string like:
//
//	"data=d, q=out, channels[0..1]=bus[2..3], select=0"
//
// Ranges on both sides must have the same length, or one side must be a
// single pin: "ch[0..3]=zero" connects the four pins to the same wire.
//
func ParseConnections(c string) ([]Connection, error) {
	var out []Connection
	if strings.TrimSpace(c) == "" {
		return nil, nil
	}
	for _, item := range strings.Split(c, ",") {
		item = strings.TrimSpace(item)
		i := strings.IndexByte(item, '=')
		if i < 0 {
			return nil, parseError(c, item, "expected pin=wire")
		}
		k, v := strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
		if k == "" || v == "" {
			return nil, parseError(c, item, "invalid pin mapping")
		}
		ks, err := expandRange(k)
		if err != nil {
			return nil, errors.Wrap(err, "expand pin "+k)
		}
		if isConst(v) {
			if _, err := parseConst(v); err != nil {
				return nil, parseError(c, item, "invalid constant")
			}
			for _, k := range ks {
				out = append(out, Connection{k, v})
			}
			continue
		}
		vs, err := expandRange(v)
		if err != nil {
			return nil, errors.Wrap(err, "expand wire "+v)
		}
		switch {
		case len(ks) == len(vs):
			for i := range ks {
				out = append(out, Connection{ks[i], vs[i]})
			}
		case len(vs) == 1:
			for _, k := range ks {
				out = append(out, Connection{k, vs[0]})
			}
		default:
			return nil, errors.New("pin count mismatch in pin mapping: " + k + "=" + v)
		}
	}
	return out, nil
}

// expandRange expands "bus[0..3]" into its individual pin names. Any other
// name is returned as is.
//
func expandRange(name string) ([]string, error) {
	id, rest := splitIdent(name)
	if id == "" {
		return nil, errors.New("invalid name " + strconv.Quote(name))
	}
	if rest == "" {
		return []string{name}, nil
	}
	if rest[0] != '[' || rest[len(rest)-1] != ']' {
		return nil, errors.New("invalid index in " + strconv.Quote(name))
	}
	n := rest[1 : len(rest)-1]
	i := strings.Index(n, "..")
	if i < 0 {
		if _, err := strconv.Atoi(n); err != nil {
			return nil, errors.New("invalid index in " + strconv.Quote(name))
		}
		return []string{name}, nil
	}
	start, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, err
	}
	end, err := strconv.Atoi(n[i+2:])
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, errors.New("empty range in " + strconv.Quote(name))
	}
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(id, i))
	}
	return r, nil
}

func splitIdent(s string) (ident, rest string) {
	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || i > 0 && '0' <= c && c <= '9' {
			continue
		}
		break
	}
	return s[:i], s[i:]
}

func isConst(s string) bool {
	return s != "" && '0' <= s[0] && s[0] <= '9'
}

func parseConst(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

func parseError(in, item, msg string) error {
	return errors.Errorf("in %q at %q: %s", in, item, msg)
}
