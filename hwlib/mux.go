// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	hw "github.com/db47h/prbsim"
)

// Mux returns a multiplexer. Registers use it to select their reset value.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(w string) hw.Part { return mux.NewPart(w) }

var mux = hw.PartSpec{
	Name:    "MUX",
	Inputs:  hw.Inputs{pA, pB, pSel},
	Outputs: hw.Outputs{pOut},
	Mount: func(s *hw.Socket) []hw.Component {
		a, b, sel, out := s.Pin(pA), s.Pin(pB), s.Pin(pSel), s.Pin(pOut)
		return []hw.Component{func(c *hw.Circuit) {
			if c.Get(sel) {
				c.Set(out, c.Get(b))
			} else {
				c.Set(out, c.Get(a))
			}
		}}
	},
}
