// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package dut provides gate-level models of the devices checked against the
// golden model: a PRBS generator and a stochastic multiplier.
//
// Both devices have a synchronous active high rst input. While rst is high
// the LFSR registers load their seed. The first clock cycle after the cycle
// during which rst is released is cycle 0 of the sequence.
//
package dut

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	hw "github.com/db47h/prbsim"
	"github.com/db47h/prbsim/hwlib"
	"github.com/db47h/prbsim/lfsr"
	"github.com/db47h/prbsim/sc"
)

// register returns the wire name of LFSR register p.
func register(p int) string {
	if p == lfsr.Output {
		return "out"
	}
	return hw.BusPinName("q", p)
}

// PRBS returns a 31 bit LFSR with taps at 27 and 30, reset to seed.
//
//	Inputs: rst
//	Outputs: out
//
func PRBS(seed lfsr.State) (hw.NewPartFn, error) {
	if !seed.Valid() {
		return nil, errors.WithStack(lfsr.ErrZeroState)
	}
	parts := hw.Parts{
		hwlib.Xor("a=" + register(lfsr.TapA) + ", b=" + register(lfsr.TapB) + ", out=fb"),
	}
	for p := 0; p < lfsr.Width; p++ {
		prev := "fb"
		if p > 0 {
			prev = register(p - 1)
		}
		init := hw.False
		if seed.Bit(p) {
			init = hw.True
		}
		d := hw.BusPinName("d", p)
		parts = append(parts,
			hwlib.Mux("a="+prev+", b="+init+", sel=rst, out="+d),
			hwlib.DFF("in="+d+", out="+register(p)),
		)
	}
	return hw.Chip("PRBS"+strconv.Itoa(lfsr.Width), hw.In("rst"), hw.Out("out"), parts...)
}

// channel returns the parts of one SNG channel: a PRBS, bits-1 history
// registers cleared by rstD, and the comparator. The LFSR output bit is
// wired to the msb of the comparator's random input.
func channel(name string, seed lfsr.State, bits int) (hw.Parts, error) {
	prbs, err := PRBS(seed)
	if err != nil {
		return nil, errors.Wrapf(err, "channel %s", name)
	}
	parts := hw.Parts{prbs("rst=rst, out=" + name)}
	// h(k) holds the LFSR output of cycle i-k.
	h := func(k int) string {
		if k == 0 {
			return name
		}
		return hw.BusPinName("h"+name, k)
	}
	for k := 1; k < bits; k++ {
		d := hw.BusPinName("hd"+name, k)
		parts = append(parts,
			hwlib.Mux("a="+h(k-1)+", b=false, sel=rstD, out="+d),
			hwlib.DFF("in="+d+", out="+h(k)),
		)
	}
	var conns strings.Builder
	fmt.Fprintf(&conns, "a=t%s, out=s%s", name, name)
	for k := 0; k < bits; k++ {
		fmt.Fprintf(&conns, ", b[%d]=%s", bits-1-k, h(k))
	}
	parts = append(parts, hwlib.Greater(bits)(conns.String()))
	return parts, nil
}

// Multiplier returns a stochastic multiplier: two PRBS channels seeded with
// seedA and seedB, their stochastic number generators comparing the bits wide
// thresholds ta and tb against the last bits LFSR output bits, an XNOR gate
// and an up-counter decoder over window cycles.
//
// rst is registered once before it clears the history registers and resets
// the decoder, so that cycle 0 starts with an empty history and a fresh window.
//
//	Inputs: rst, ta[bits], tb[bits]
//	Outputs: prod, sa, sb, value[hwlib.CounterBits(window)], valid, ovf
//
func Multiplier(seedA, seedB lfsr.State, bits, window int) (hw.NewPartFn, error) {
	if err := sc.CheckBits(bits); err != nil {
		return nil, err
	}
	if err := sc.CheckWindow(window); err != nil {
		return nil, err
	}
	a, err := channel("a", seedA, bits)
	if err != nil {
		return nil, err
	}
	b, err := channel("b", seedB, bits)
	if err != nil {
		return nil, err
	}
	parts := hw.Parts{hwlib.DFF("in=rst, out=rstD")}
	parts = append(parts, a...)
	parts = append(parts, b...)
	parts = append(parts,
		hwlib.Xnor("a=sa, b=sb, out=prod"),
		hwlib.UpCounter(window)("in=prod, rst=rstD, value=value, valid=valid, ovf=ovf"),
	)
	n := strconv.Itoa(bits)
	return hw.Chip("SCMUL"+n,
		hw.In("rst, ta["+n+"], tb["+n+"]"),
		hw.Out("prod, sa, sb, value["+strconv.Itoa(hwlib.CounterBits(window))+"], valid, ovf"),
		parts...)
}
