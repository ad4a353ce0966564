// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package prbsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec
	parts []Part
}

// mount mounts all sub-parts into the chip's socket. Wire names that are not
// chip pins are allocated on first use, so that every chip instance gets its
// own set of internal wires.
//
func (c *chip) mount(s *Socket) []Component {
	var updaters []Component
	for _, p := range c.parts {
		sub := newSocket(s.c)
		for _, k := range p.Inputs {
			if w, ok := p.Wires[k]; ok {
				sub.m[k] = s.PinOrNew(w)
			} else {
				// unconnected inputs are grounded.
				sub.m[k] = cstFalse
			}
		}
		for _, k := range p.Outputs {
			if w, ok := p.Wires[k]; ok {
				sub.m[k] = s.PinOrNew(w)
			} else {
				sub.m[k] = s.c.allocPin()
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", In("a, b"), Out("out"),
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a NewPartFn that can be used to compose the new part
// with others into other chips:
//
//	xnor, err := Chip("XNOR", In("a, b"), Out("out"),
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// Part inputs left unconnected are wired to False. Chip returns an error if a
// part output drives a constant, a chip input or an already driven wire, if a
// part input reads a wire that nothing drives, or if a chip output is not
// driven.
//
func Chip(name string, inputs Inputs, outputs Outputs, parts ...Part) (NewPartFn, error) {
	ins := make(map[string]bool, len(inputs))
	for _, n := range inputs {
		if n == True || n == False {
			return nil, errors.New(name + ": reserved pin name " + n)
		}
		if ins[n] {
			return nil, errors.New(name + ": duplicate input pin " + n)
		}
		ins[n] = true
	}
	outs := make(map[string]bool, len(outputs))
	for _, n := range outputs {
		if ins[n] {
			return nil, errors.New(name + ": pin " + n + " declared as both input and output")
		}
		if outs[n] {
			return nil, errors.New(name + ": duplicate output pin " + n)
		}
		outs[n] = true
	}

	drivers := make(map[string]string)
	for _, p := range parts {
		for _, o := range p.Outputs {
			w, ok := p.Wires[o]
			if !ok {
				continue
			}
			src := p.Name + "." + o + ":" + w
			switch {
			case w == True || w == False:
				return nil, errors.New(src + ": output pin connected to constant " + w + " input")
			case ins[w]:
				return nil, errors.New(src + ": chip input pin used as output")
			case drivers[w] != "":
				return nil, errors.New(src + ": output pin already used as output")
			}
			drivers[w] = src
		}
	}
	for _, p := range parts {
		for _, i := range p.Inputs {
			w, ok := p.Wires[i]
			if !ok || w == True || w == False || ins[w] || drivers[w] != "" {
				continue
			}
			return nil, errors.New(p.Name + "." + i + ": pin " + w + " not connected to any output")
		}
	}
	for _, o := range outputs {
		if drivers[o] == "" {
			return nil, errors.New(name + ": output pin " + o + " not connected to any output")
		}
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  inputs,
			Outputs: outputs,
		},
		parts: parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
