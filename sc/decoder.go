// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sc

import (
	"github.com/pkg/errors"
)

// MaxWindow is the largest supported decoder window.
//
const MaxWindow = 1 << 16

// DecoderState is the state of an up-counter decoder: the index of the next
// cycle and the counter, in [0, window-1].
//
type DecoderState struct {
	Cycle int
	Count int
}

// Output is the decoder output for one cycle. Value is the count accumulated
// over the previous window and is only meaningful if Valid is set, on the first
// cycle of every window. Overflow is set on cycles where the counter wrapped.
//
type Output struct {
	Value    int
	Valid    bool
	Overflow bool
}

// CheckWindow checks that window is a supported decoder window size.
//
func CheckWindow(window int) error {
	if window < 1 || window > MaxWindow {
		return errors.Wrapf(ErrWindow, "window %d not in [1, %d]", window, MaxWindow)
	}
	return nil
}

// DecodeStep computes one cycle of an up-counter decoder:
//
//	1. on a window boundary (cycle % window == 0), the current count is emitted
//	   and the counter reset to 0;
//	2. then a 1 bit increments the counter, or wraps it to 0 and flags an
//	   overflow if it was at window-1.
//
func DecodeStep(s DecoderState, bit bool, window int) (DecoderState, Output) {
	var o Output
	if s.Cycle%window == 0 {
		o.Value, o.Valid = s.Count, true
		s.Count = 0
	}
	if bit {
		if s.Count == window-1 {
			s.Count = 0
			o.Overflow = true
		} else {
			s.Count++
		}
	}
	s.Cycle++
	return s, o
}

// Decoder wraps DecodeStep with its state.
//
type Decoder struct {
	window int
	state  DecoderState
}

// NewDecoder returns a freshly reset decoder.
//
func NewDecoder(window int) (*Decoder, error) {
	if err := CheckWindow(window); err != nil {
		return nil, err
	}
	return &Decoder{window: window}, nil
}

// Step feeds one stochastic bit to the decoder.
//
func (d *Decoder) Step(bit bool) Output {
	var o Output
	d.state, o = DecodeStep(d.state, bit, d.window)
	return o
}

// State returns the decoder state.
//
func (d *Decoder) State() DecoderState { return d.state }

// Count returns the current counter value.
//
func (d *Decoder) Count() int { return d.state.Count }

// Window returns the window size.
//
func (d *Decoder) Window() int { return d.window }

// Reset resets the decoder to cycle 0.
//
func (d *Decoder) Reset() { d.state = DecoderState{} }
