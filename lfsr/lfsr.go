// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lfsr implements the 31-bit maximal-length Fibonacci linear-feedback
// shift register used as pseudo-random bit sequence (PRBS) generator by the
// devices under test.
//
// The register has taps at 0-indexed positions 27 and 30, giving the feedback
// polynomial x^31 + x^28 + 1. Its reciprocal x^31 + x^3 + 1 describes the same
// register read from the other end and yields the same maximal-length sequence,
// time-reversed.
//
// On every clock cycle the feedback bit state[27] ^ state[30] is shifted into
// position 0, every other bit moves up one position, and the bit now sitting in
// position 30 is the output for that cycle.
//
package lfsr

import (
	"strings"

	"github.com/pkg/errors"
)

// Register geometry. These are properties of the hardware and are not
// configurable.
//
const (
	Width  = 31
	TapA   = 27
	TapB   = 30
	Output = Width - 1

	// Period is the length of the sequence of non-zero states.
	Period = 1<<Width - 1

	mask = 1<<Width - 1
)

// Default seed positions: single generator and the two channels of the
// stochastic multiplier.
//
const (
	DefaultSeed  = 30
	DefaultSeedA = 30
	DefaultSeedB = 29
)

// Configuration errors.
//
var (
	ErrZeroState    = errors.New("all-zero LFSR state")
	ErrSeedPosition = errors.New("seed position out of range")
)

// State is the content of the shift register. Bit p of the word holds
// register p: bit 0 is the most recently shifted-in bit, bit 30 the output
// tap. Bit 31 is always 0.
//
// The zero State is absorbing and never valid.
//
type State uint32

// NewState returns the state whose register p is bit p of v. It returns
// ErrZeroState if v has no bit set within the register width.
//
func NewState(v uint32) (State, error) {
	s := State(v & mask)
	if s == 0 {
		return 0, errors.WithStack(ErrZeroState)
	}
	return s, nil
}

// Seed returns the state with exactly one register set, at the given
// position.
//
func Seed(pos int) (State, error) {
	if pos < 0 || pos >= Width {
		return 0, errors.Wrapf(ErrSeedPosition, "seed position %d not in [0, %d]", pos, Width-1)
	}
	return State(1) << uint(pos), nil
}

// Bit returns the value of register p.
//
func (s State) Bit(p int) bool {
	return s>>uint(p)&1 != 0
}

// Valid returns true if s is a reachable state.
//
func (s State) Valid() bool {
	return s != 0 && s&^mask == 0
}

// String returns the register content, position 0 first.
//
func (s State) String() string {
	var b strings.Builder
	b.Grow(Width)
	for p := 0; p < Width; p++ {
		if s.Bit(p) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Step computes one clock cycle of the register. It returns the new state and
// the output bit for that cycle, which is the new content of position 30.
//
// Step is a bijection on non-zero states. The caller is responsible for never
// passing the zero state.
//
func Step(s State) (State, bool) {
	fb := (s>>TapA ^ s>>TapB) & 1
	s = (s<<1 | fb) & mask
	return s, s>>Output&1 != 0
}

// Generator produces the output bit stream of a register. Generators are not
// safe for concurrent use.
//
type Generator struct {
	seed  State
	state State
	n     uint64
}

// NewGenerator returns a generator seeded with the given state.
//
func NewGenerator(seed State) (*Generator, error) {
	if !seed.Valid() {
		return nil, errors.WithStack(ErrZeroState)
	}
	return &Generator{seed: seed, state: seed}, nil
}

// Next advances the register by one clock cycle and returns its output bit.
//
func (g *Generator) Next() bool {
	var out bool
	g.state, out = Step(g.state)
	g.n++
	return out
}

// State returns the current register state.
//
func (g *Generator) State() State { return g.state }

// Seed returns the state the generator started from.
//
func (g *Generator) Seed() State { return g.seed }

// Cycles returns the number of calls to Next since the last reset.
//
func (g *Generator) Cycles() uint64 { return g.n }

// Reset restarts the stream from the seed.
//
func (g *Generator) Reset() {
	g.state = g.seed
	g.n = 0
}

// Bits returns the first n output bits of a register started from seed.
//
func Bits(seed State, n int) ([]bool, error) {
	g, err := NewGenerator(seed)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out, nil
}

// Tail returns the last k output bits of an n-cycle run started from seed,
// most recent first: tail[0] is the bit of cycle n-1. Bits of cycles before 0
// (k > n) are wrapped cyclically over the n-cycle run. It uses O(k) memory.
//
func Tail(seed State, n, k int) ([]bool, error) {
	if n <= 0 {
		return nil, errors.Errorf("invalid run length %d", n)
	}
	g, err := NewGenerator(seed)
	if err != nil {
		return nil, err
	}
	m := k
	if m > n {
		m = n
	}
	// ring of the last m bits
	ring := make([]bool, m)
	for i := 0; i < n; i++ {
		b := g.Next()
		if m > 0 {
			ring[i%m] = b
		}
	}
	out := make([]bool, k)
	for j := range out {
		// cycle n-1-j, wrapped over the run
		out[j] = ring[((n-1-j%n)%m+m)%m]
	}
	return out, nil
}
