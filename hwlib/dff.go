// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	hw "github.com/db47h/prbsim"
)

var dff = hw.PartSpec{
	Name:    "DFF",
	Inputs:  hw.Inputs{pIn},
	Outputs: hw.Outputs{pOut},
	Mount: func(s *hw.Socket) []hw.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		var curOut bool
		return []hw.Component{
			func(c *hw.Circuit) {
				// raising edge?
				if c.AtTick() {
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	},
}

// DFF returns a clocked data flip flop. Its initial state is 0.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) hw.Part { return dff.NewPart(w) }
