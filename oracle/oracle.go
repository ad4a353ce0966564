// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package oracle produces the expected per-cycle trace of a PRBS generator or
// of a stochastic multiplier, bit exact with the hardware it models.
//
// A trace is either generated eagerly:
//
//	cfg := oracle.DefaultConfig()
//	tr, err := oracle.Generate(cfg)
//
// or walked lazily with constant memory:
//
//	seq, err := oracle.NewSequence(cfg)
//	for r, ok := seq.Next(); ok; r, ok = seq.Next() {
//		// ...
//	}
//
package oracle

import (
	"github.com/db47h/prbsim/lfsr"
	"github.com/db47h/prbsim/sc"
)

// Record is the expected state of one clock cycle.
//
// In single mode only Cycle, A and Bit are set, Bit being the raw LFSR output.
// In multiplier mode, Bit is the product stream, Value is the last count
// presented by the decoder (held between window boundaries), Valid is set on
// window boundaries and Overflow on cycles where the decoder wrapped.
//
type Record struct {
	Cycle    int
	A, B     bool // LFSR output bits
	RandA    uint
	RandB    uint
	SA, SB   bool // stochastic bits
	Bit      bool
	Value    int
	Valid    bool
	Overflow bool
}

// Trace is an ordered list of records, one per cycle starting at cycle 0.
//
type Trace []Record

// Bits returns the Bit field of all records.
//
func (t Trace) Bits() []bool {
	out := make([]bool, len(t))
	for i := range t {
		out[i] = t[i].Bit
	}
	return out
}

// Ones returns the number of records whose Bit is set.
//
func (t Trace) Ones() int {
	var n int
	for i := range t {
		if t[i].Bit {
			n++
		}
	}
	return n
}

// Values returns the values presented at window boundaries.
//
func (t Trace) Values() []int {
	var out []int
	for i := range t {
		if t[i].Valid {
			out = append(out, t[i].Value)
		}
	}
	return out
}

// Overflows returns the number of cycles with the overflow flag set.
//
func (t Trace) Overflows() int {
	var n int
	for i := range t {
		if t[i].Overflow {
			n++
		}
	}
	return n
}

// Mean returns the mean of the values presented at window boundaries, or 0 if
// there are none.
//
func (t Trace) Mean() float64 {
	vs := t.Values()
	if len(vs) == 0 {
		return 0
	}
	var sum int
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

// Generate returns the full trace for the given configuration.
//
func Generate(cfg Config) (Trace, error) {
	s, err := NewSequence(cfg)
	if err != nil {
		return nil, err
	}
	t := make(Trace, 0, s.Len())
	for r, ok := s.Next(); ok; r, ok = s.Next() {
		t = append(t, r)
	}
	return t, nil
}

// Sequence yields the records of a trace one by one. A Sequence is not safe
// for concurrent use.
//
type Sequence struct {
	cfg    Config
	ga, gb *lfsr.Generator
	ha, hb []bool // SNG history at cycle 0
	sa, sb *sc.SNG
	dec    *sc.Decoder
	held   int
	i      int
}

// NewSequence returns a sequence positioned at cycle 0.
//
func NewSequence(cfg Config) (*Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sequence{cfg: cfg}
	var err error
	if s.ga, err = newGenerator(cfg.SeedA); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeSingle {
		return s, nil
	}
	if s.gb, err = newGenerator(cfg.SeedB); err != nil {
		return nil, err
	}
	if s.ha, err = history(cfg, cfg.SeedA); err != nil {
		return nil, err
	}
	if s.hb, err = history(cfg, cfg.SeedB); err != nil {
		return nil, err
	}
	if s.dec, err = sc.NewDecoder(cfg.Window); err != nil {
		return nil, err
	}
	return s, s.resetSNG()
}

func newGenerator(pos int) (*lfsr.Generator, error) {
	seed, err := lfsr.Seed(pos)
	if err != nil {
		return nil, err
	}
	return lfsr.NewGenerator(seed)
}

// history returns the bits of cycles -1 to -(B-1), most recent first.
func history(cfg Config, pos int) ([]bool, error) {
	if cfg.History == HistoryZero || cfg.InputBits < 2 {
		return nil, nil
	}
	seed, err := lfsr.Seed(pos)
	if err != nil {
		return nil, err
	}
	return lfsr.Tail(seed, cfg.Cycles, cfg.InputBits-1)
}

func (s *Sequence) resetSNG() (err error) {
	if s.sa, err = sc.NewSNG(s.cfg.InputBits, s.cfg.ThresholdA, s.ha); err != nil {
		return err
	}
	s.sb, err = sc.NewSNG(s.cfg.InputBits, s.cfg.ThresholdB, s.hb)
	return err
}

// Config returns the sequence configuration.
//
func (s *Sequence) Config() Config { return s.cfg }

// Len returns the number of records in the sequence.
//
func (s *Sequence) Len() int { return s.cfg.Cycles }

// Cycle returns the index of the record returned by the next call to Next.
//
func (s *Sequence) Cycle() int { return s.i }

// Next returns the record of the next cycle. It returns false once all records
// have been returned.
//
func (s *Sequence) Next() (Record, bool) {
	if s.i >= s.cfg.Cycles {
		return Record{}, false
	}
	r := Record{Cycle: s.i}
	s.i++
	r.A = s.ga.Next()
	if s.cfg.Mode == ModeSingle {
		r.Bit = r.A
		return r, true
	}
	r.B = s.gb.Next()
	r.SA, r.SB = s.sa.Next(r.A), s.sb.Next(r.B)
	r.RandA, r.RandB = s.sa.Rand(), s.sb.Rand()
	r.Bit = sc.Multiply(r.SA, r.SB)
	o := s.dec.Step(r.Bit)
	if o.Valid {
		s.held = o.Value
	}
	r.Value, r.Valid, r.Overflow = s.held, o.Valid, o.Overflow
	return r, true
}

// Reset rewinds the sequence to cycle 0.
//
func (s *Sequence) Reset() {
	s.i = 0
	s.ga.Reset()
	if s.cfg.Mode == ModeSingle {
		return
	}
	s.gb.Reset()
	s.dec.Reset()
	s.held = 0
	// thresholds and bit width were validated by NewSequence.
	_ = s.resetSNG()
}
