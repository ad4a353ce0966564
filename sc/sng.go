// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sc implements the stochastic computing stages of the golden model:
// stochastic number generation from a PRBS, bipolar multiplication and
// up-counter decoding.
//
// In bipolar encoding a stream whose bits are 1 with probability p represents
// the value 2p-1 in [-1, 1]. The XNOR of two independent bipolar streams
// represents the product of their values.
//
package sc

import (
	"github.com/pkg/errors"
)

// MaxBits is the widest supported SNG input.
//
const MaxBits = 16

// Configuration errors.
//
var (
	ErrThreshold = errors.New("threshold out of range")
	ErrBits      = errors.New("input bit width out of range")
	ErrWindow    = errors.New("window size out of range")
)

// CheckBits checks that bits is a supported SNG input width.
//
func CheckBits(bits int) error {
	if bits < 1 || bits > MaxBits {
		return errors.Wrapf(ErrBits, "bit width %d not in [1, %d]", bits, MaxBits)
	}
	return nil
}

// CheckThreshold checks that threshold fits in bits.
//
func CheckThreshold(bits int, threshold uint) error {
	if err := CheckBits(bits); err != nil {
		return err
	}
	if threshold > 1<<uint(bits)-1 {
		return errors.Wrapf(ErrThreshold, "threshold %d not in [0, %d]", threshold, 1<<uint(bits)-1)
	}
	return nil
}

// Rand returns the unsigned value of a window of PRBS output bits, most recent
// first: window[tt] is the bit of cycle i-tt and weighs 2^(len(window)-1-tt).
//
func Rand(window []bool) uint {
	var r uint
	for _, b := range window {
		r <<= 1
		if b {
			r |= 1
		}
	}
	return r
}

// Bit returns the stochastic bit for a window of PRBS output bits: 1 iff
// threshold > Rand(window). Equality yields 0.
//
func Bit(window []bool, threshold uint) bool {
	return threshold > Rand(window)
}

// Multiply returns the bipolar product of two stochastic bits, a XNOR b.
//
func Multiply(a, b bool) bool {
	return a == b
}

// SNG is a stochastic number generator fed one PRBS bit per clock cycle.
//
type SNG struct {
	threshold uint
	window    []bool // most recent first
	rand      uint
}

// NewSNG returns a generator for bits wide windows compared against threshold.
//
// history holds the PRBS bits of the cycles before the first one, most recent
// first (history[0] is cycle -1). Missing history bits are 0 and bits beyond
// the window are ignored. On the first call to Next, history[k] moves to
// window[k+1].
//
func NewSNG(bits int, threshold uint, history []bool) (*SNG, error) {
	if err := CheckThreshold(bits, threshold); err != nil {
		return nil, err
	}
	s := &SNG{threshold: threshold, window: make([]bool, bits)}
	copy(s.window[:len(s.window)-1], history)
	return s, nil
}

// Next shifts the PRBS bit of the current cycle into the window and returns the
// stochastic bit for that cycle.
//
func (s *SNG) Next(bit bool) bool {
	copy(s.window[1:], s.window[:len(s.window)-1])
	s.window[0] = bit
	s.rand = Rand(s.window)
	return s.threshold > s.rand
}

// Rand returns the random value computed by the last call to Next.
//
func (s *SNG) Rand() uint { return s.rand }

// Threshold returns the generator's threshold.
//
func (s *SNG) Threshold() uint { return s.threshold }

// Window returns a copy of the current window, most recent first.
//
func (s *SNG) Window() []bool {
	return append([]bool(nil), s.window...)
}
