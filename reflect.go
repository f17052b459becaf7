// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must implement.
// See MakePart.
//
type Updater interface {
	Update(*Circuit)
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// pin name can be forced by adding it in the tag: `hw:"in,pin_name"`. Pins
// are 1 bit wide unless a width is given as the third tag value, either as a
// number or as the name of an untagged int field of t: `hw:"in,,Width"`.
//
// Pin fields must be exported, of type int for pins and arrays of int for buses. When the part is
// mounted, they are set to the signal numbers to use with Circuit.Get and
// Circuit.Set. Each mounted instance starts as a copy of t.
//
func MakePart(t Updater) *PartSpec {
	v := reflect.ValueOf(t)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v = reflect.Zero(v.Type().Elem())
		} else {
			v = v.Elem()
		}
	}
	typ := v.Type()
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}

	sp := &PartSpec{Name: typ.Name()}
	fields := pinFields(v)
	for _, f := range fields {
		pins := Pins{{f.pin, f.width}}
		if f.n >= 0 {
			pins = make(Pins, f.n)
			for i := range pins {
				pins[i] = Signal{BusPinName(f.pin, i), f.width}
			}
		}
		if f.input {
			sp.Inputs = append(sp.Inputs, pins...)
		} else {
			sp.Outputs = append(sp.Outputs, pins...)
		}
	}
	sp.Mount = func(s *Socket) []Component {
		p := reflect.New(typ)
		e := p.Elem()
		e.Set(v)
		for _, f := range fields {
			fv := e.Field(f.index)
			if f.n < 0 {
				fv.SetInt(int64(s.Pin(f.pin)))
				continue
			}
			for i := 0; i < f.n; i++ {
				fv.Index(i).SetInt(int64(s.Pin(BusPinName(f.pin, i))))
			}
		}
		u := p.Interface().(Updater)
		return []Component{u.Update}
	}
	return sp
}

type pinField struct {
	index int
	pin   string
	input bool
	width int
	n     int // bus size, -1 for single pins
}

func pinFields(v reflect.Value) []pinField {
	typ := v.Type()
	var fs []pinField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		pf := pinField{index: i, pin: strings.ToLower(f.Name), width: 1, n: -1}
		tv := strings.Split(tag, ",")
		if len(tv) > 3 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		switch tv[0] {
		case "in":
			pf.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) > 1 && tv[1] != "" {
			pf.pin = tv[1]
		}
		if len(tv) > 2 {
			pf.width = tagWidth(v, tv[2])
			if pf.width <= 0 || pf.width > MaxWidth {
				panic(errors.Errorf("invalid width %d for field %q in %q", pf.width, f.Name, typ.Name()))
			}
		}
		ft := f.Type
		switch k := ft.Kind(); {
		case k == reflect.Array && ft.Elem().Kind() == reflect.Int:
			pf.n = ft.Len()
		case k == reflect.Int:
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", k, f.Name, typ.Name()))
		}
		fs = append(fs, pf)
	}
	return fs
}

func tagWidth(v reflect.Value, w string) int {
	if n, err := strconv.Atoi(w); err == nil {
		return n
	}
	f := v.FieldByName(w)
	if !f.IsValid() || f.Kind() != reflect.Int {
		panic(errors.Errorf("width field %q not found in %q", w, v.Type().Name()))
	}
	return int(f.Int())
}
