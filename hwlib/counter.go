// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"
	"strconv"

	hw "github.com/db47h/prbsim"
)

// CounterBits returns the width of the value bus of an UpCounter.
//
func CounterBits(window int) int {
	n := bits.Len(uint(window - 1))
	if n == 0 {
		n = 1
	}
	return n
}

// UpCounter returns a clocked up-counter decoder that integrates a stochastic
// bit stream over windows of the given number of cycles.
//
// The cycle following a reset is the first cycle of a window. On the first
// cycle of every window the count accumulated over the previous window is
// presented on value with valid set, and the counter restarts from 0 before
// counting that cycle's input. A 1 input with the counter at window-1 sets ovf
// for that cycle and wraps the counter to 0. Between window boundaries, value
// holds the last presented count.
//
//	Inputs: in, rst
//	Outputs: value[CounterBits(window)], valid, ovf
//
func UpCounter(window int) hw.NewPartFn {
	vb := CounterBits(window)
	return (&hw.PartSpec{
		Name:    "UPCNT" + strconv.Itoa(window),
		Inputs:  hw.Inputs{pIn, pRst},
		Outputs: append(bus(vb, "value"), "valid", "ovf"),
		Mount: func(s *hw.Socket) []hw.Component {
			in, rst := s.Pin(pIn), s.Pin(pRst)
			value, valid, ovf := s.Bus("value", vb), s.Pin("valid"), s.Pin("ovf")
			var phase, count, held int
			eval := func(bit bool) (next, emit int, boundary, o bool) {
				next = count
				boundary = phase == 0
				if boundary {
					emit, next = next, 0
				}
				if bit {
					if next == window-1 {
						next, o = 0, true
					} else {
						next++
					}
				}
				return next, emit, boundary, o
			}
			return []hw.Component{
				func(c *hw.Circuit) {
					if c.AtTick() {
						if c.Get(rst) {
							phase, count, held = 0, 0, 0
						} else {
							next, emit, boundary, _ := eval(c.Get(in))
							if boundary {
								held = emit
							}
							count = next
							phase = (phase + 1) % window
						}
					}
					_, emit, boundary, o := eval(c.Get(in))
					if !boundary {
						emit = held
					}
					SetInt64(c, value, int64(emit))
					c.Set(valid, boundary)
					c.Set(ovf, o)
				}}
		}}).NewPart
}
