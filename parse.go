// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package prbsim

import (
	"strconv"
	"strings"

	"github.com/db47h/prbsim/internal/hdl"
	"github.com/pkg/errors"
)

// A Connection connects a part pin (PP) to a wire of its host chip (CP).
//
type Connection struct {
	PP string
	CP string
}

// BusPinName returns the name of pin i of the given bus.
//
func BusPinName(bus string, i int) string {
	return bus + "[" + strconv.Itoa(i) + "]"
}

func isBusPin(name string) bool {
	return strings.IndexByte(name, '[') >= 0
}

// ParseIOSpec parses an input or output pin specification and returns
// individual pin names, expanding bus declarations:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIOSpec(spec string) ([]string, error) {
	var out []string
	p := hdl.Parser{Input: spec}
	for {
		v, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		switch pin := v.(type) {
		case nil:
			return out, nil
		case hdl.Pin:
			out = append(out, pin.Name)
		case hdl.PinIndex:
			for i := 0; i < pin.Index; i++ {
				out = append(out, BusPinName(pin.Name, i))
			}
		default:
			return nil, errors.Errorf("in %q: invalid bus declaration for %q", spec, pinNameOf(v))
		}
	}
}

// IO is like ParseIOSpec but panics on error.
//
func IO(spec string) []string {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// In is a convenience wrapper around IO for chip inputs.
//
func In(spec string) Inputs { return IO(spec) }

// Out is a convenience wrapper around IO for chip outputs.
//
func Out(spec string) Outputs { return IO(spec) }

func pinNameOf(v interface{}) string {
	switch p := v.(type) {
	case hdl.Pin:
		return p.Name
	case hdl.PinIndex:
		return p.Name
	case hdl.PinRange:
		return p.Name
	}
	return ""
}

func expandPin(v interface{}) []string {
	switch p := v.(type) {
	case hdl.Pin:
		return []string{p.Name}
	case hdl.PinIndex:
		return []string{BusPinName(p.Name, p.Index)}
	case hdl.PinRange:
		var out []string
		if p.Start <= p.End {
			for i := p.Start; i <= p.End; i++ {
				out = append(out, BusPinName(p.Name, i))
			}
		} else {
			for i := p.Start; i >= p.End; i-- {
				out = append(out, BusPinName(p.Name, i))
			}
		}
		return out
	}
	return nil
}

// ParseConnections parses a connection string of the form:
//
//	"a=w0, b=bus[2], out[0..3]=data[4..7], c=true"
//
// Ranges on both sides must have the same width, except when the right hand
// side is a single pin, in which case all left hand side pins are connected to
// it. A bus name without index on the left hand side is resolved against the
// part's pins by PartSpec.NewPart.
//
func ParseConnections(conns string) ([]Connection, error) {
	var out []Connection
	p := hdl.Parser{Input: conns}
	for {
		v, err := p.Next(true)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return out, nil
		}
		a, ok := v.(hdl.PinAssignment)
		if !ok {
			return nil, errors.Errorf("in %q: missing assignment for pin %q", conns, pinNameOf(v))
		}
		lhs, rhs := expandPin(a.LHS), expandPin(a.RHS)
		switch {
		case len(lhs) == len(rhs):
			for i := range lhs {
				out = append(out, Connection{lhs[i], rhs[i]})
			}
		case len(rhs) == 1:
			for i := range lhs {
				out = append(out, Connection{lhs[i], rhs[0]})
			}
		default:
			return nil, errors.Errorf("in %q: pin count mismatch in %s=%s", conns, pinNameOf(a.LHS), pinNameOf(a.RHS))
		}
	}
}
