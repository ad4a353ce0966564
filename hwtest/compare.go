// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits and a
// lock-step bench that checks a clocked device against expected samples.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	hw "github.com/db47h/prbsim"
	"github.com/db47h/prbsim/hwlib"
)

func connString(in, out []string) string {
	var b strings.Builder
	for _, l := range [][]string{in, out} {
		for _, n := range l {
			if b.Len() > 0 {
				b.WriteRune(',')
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(n)
		}
	}
	return b.String()
}

// A signal is a single pin or a bus.
type signal struct {
	name  string
	width int
	bus   bool
}

func (s signal) pin(i int) string {
	if !s.bus {
		return s.name
	}
	return hw.BusPinName(s.name, i)
}

// signals groups pin names by signal, in order of first appearance.
func signals(pins []string) []signal {
	var out []signal
	idx := make(map[string]int)
	for _, n := range pins {
		sig := signal{name: n, width: 1}
		if b := strings.IndexRune(n, '['); b >= 0 {
			i, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
			if err != nil {
				panic(err)
			}
			sig = signal{name: n[:b], width: i + 1, bus: true}
		}
		k, ok := idx[sig.name]
		if !ok {
			idx[sig.name] = len(out)
			out = append(out, sig)
			continue
		}
		if sig.width > out[k].width {
			out[k].width = sig.width
		}
	}
	return out
}

func pinList(in []string) string {
	sigs := signals(in)
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].name < sigs[j].name })
	var b strings.Builder
	for _, s := range sigs {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(s.name)
		if s.bus {
			b.WriteRune('[')
			b.WriteString(strconv.Itoa(s.width))
			b.WriteRune(']')
		}
	}
	return b.String()
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
func ComparePart(t testing.TB, tpc uint, part1 hw.NewPartFn, part2 hw.NewPartFn) {
	t.Helper()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ps1 := part1("")
	conns := connString(ps1.Inputs, ps1.Outputs)
	ps1, ps2 := part1(conns), part2(conns)

	// compare specs
	if len(ps1.Inputs) != len(ps2.Inputs) {
		t.Fatal("len(ps1.Inputs) != len(ps2.Inputs)")
	}
	if len(ps1.Outputs) != len(ps2.Outputs) {
		t.Fatal("len(ps1.Outputs) != len(ps2.Outputs)")
	}
	for i := range ps1.Inputs {
		if ps1.Inputs[i] != ps2.Inputs[i] {
			t.Fatalf("ps1.Inputs[i] = %q != ps2.Inputs[i] = %q", ps1.Inputs[i], ps2.Inputs[i])
		}
	}
	for i := range ps1.Outputs {
		if ps1.Outputs[i] != ps2.Outputs[i] {
			t.Fatalf("ps1.Outputs[i] = %q != ps2.Outputs[i] = %q", ps1.Outputs[i], ps2.Outputs[i])
		}
	}

	inputs := make([]bool, len(ps1.Inputs))
	outputs := make([][2]bool, len(ps1.Outputs))

	// build two wrappers with their own set of outputs
	parts1 := hw.Parts{ps1}
	for i, o := range ps1.Outputs {
		n := i
		parts1 = append(parts1, hwlib.Output(func(b bool) { outputs[n][0] = b })("in="+o))
	}
	parts2 := hw.Parts{ps2}
	for i, o := range ps2.Outputs {
		n := i
		parts2 = append(parts2, hwlib.Output(func(b bool) { outputs[n][1] = b })("in="+o))
	}
	var ins hw.Inputs
	if len(ps1.Inputs) > 0 {
		ins = hw.In(pinList(ps1.Inputs))
	}
	w1, err := hw.Chip("wrapper1", ins, nil, parts1...)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := hw.Chip("wrapper2", ins, nil, parts2...)
	if err != nil {
		t.Fatal(err)
	}

	var parts hw.Parts
	for i, n := range ps1.Inputs {
		k := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[k] })("out="+n))
	}
	cstr := connString(ps1.Inputs, nil)
	parts = append(parts, w1(cstr), w2(cstr))

	c, err := hw.NewCircuit(0, tpc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	errString := func(oname string, ex, got bool) string {
		var b strings.Builder
		for i, n := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(strconv.FormatBool(inputs[i]))
		}
		return fmt.Sprintf("\nExpected %s => %s=%v\nGot %v", b.String(), oname, ex, got)
	}
	check := func() {
		for o, out := range outputs {
			if out[0] != out[1] {
				t.Fatal(errString(ps1.Outputs[o], out[0], out[1]))
			}
		}
	}

	iter := len(ps1.Inputs)
	if iter > 12 {
		iter = 12
	}

	start := time.Now()

	c.Tick()
	iter = 1 << uint(iter)

	// try all 0
	c.Tock()
	c.Tick()
	check()

	// try all 1
	for in := range inputs {
		inputs[in] = true
	}
	c.Tock()
	c.Tick()
	check()

	for i := 0; i < iter; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		c.Tock()
		c.Tick()
		check()
	}

	elapsed := time.Since(start)
	ticks := c.Steps() / c.SPC()
	t.Logf("%d components. %d steps in %v. %d clock ticks => %.2f Hz", c.Size(), c.Steps(), elapsed, ticks, float64(ticks)/(float64(elapsed)/float64(time.Second)))
}
