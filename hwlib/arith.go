// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	hw "github.com/db47h/prbsim"
)

var hAdder = &hw.PartSpec{
	Name:    "HalfAdder",
	Inputs:  hw.Inputs{pA, pB},
	Outputs: hw.Outputs{"s", "c"},
	Mount: func(s *hw.Socket) []hw.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []hw.Component{
			func(c *hw.Circuit) {
				va, vb := c.Get(a), c.Get(b)
				c.Set(sum, va != vb)
				c.Set(cout, va && vb)
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(c string) hw.Part {
	return hAdder.NewPart(c)
}

var adder = &hw.PartSpec{
	Name:    "FullAdder",
	Inputs:  hw.Inputs{pA, pB, "cin"},
	Outputs: hw.Outputs{"s", "cout"},
	Mount: func(s *hw.Socket) []hw.Component {
		a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
		sum, cout := s.Pin("s"), s.Pin("cout")
		return []hw.Component{
			func(c *hw.Circuit) {
				va, vb, vc := c.Get(a), c.Get(b), c.Get(cin)
				s := va != vb
				c.Set(sum, s != vc)
				c.Set(cout, s && vc || va && vb)
			}}
	}}

// FullAdder returns a 3 bit adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(c string) hw.Part {
	return adder.NewPart(c)
}

// Greater returns an unsigned comparator of the given bits size. Stochastic
// number generators use it to compare their threshold against the random value
// sampled from a PRBS.
//
// The output is the carry out of a + ^b, which is set iff a - b - 1 >= 0. The
// whole carry chain settles in a single simulation step.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out
//	Function: out = a > b
//
func Greater(bits int) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "GT" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: hw.Outputs{pOut},
		Mount: func(s *hw.Socket) []hw.Component {
			a, b, out := s.Bus(pA, bits), s.Bus(pB, bits), s.Pin(pOut)
			return []hw.Component{
				func(c *hw.Circuit) {
					cc := false
					for i := range a {
						va, vb := c.Get(a[i]), !c.Get(b[i])
						cc = va && vb || va != vb && cc
					}
					c.Set(out, cc)
				}}
		}}).NewPart
}
