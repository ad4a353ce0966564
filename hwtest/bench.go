// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	hw "github.com/db47h/prbsim"
	"github.com/db47h/prbsim/hwlib"
)

// Bench defaults.
//
const (
	DefaultSPC       = 8
	DefaultResetLow  = 5
	DefaultResetHigh = 5
	DefaultLatency   = 1
)

// ResetPin is the name of the device input driven by the bench reset
// sequence.
//
const ResetPin = "rst"

// A Sample maps signal names to their values. A bus is read as an unsigned
// integer, bit 0 first. Single pins read as 0 or 1.
//
type Sample map[string]int64

// An Expect function returns the expected sample for the given cycle. Only the
// signals present in the returned sample are compared.
//
type Expect func(cycle int) Sample

// Mismatch is the error returned by Bench.Run when a device output differs
// from its expected value.
//
type Mismatch struct {
	Cycle    int
	Signal   string
	Expected int64
	Actual   int64
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("cycle %d: %s = %d, expected %d", m.Cycle, m.Signal, m.Actual, m.Expected)
}

// Bench drives a clocked device in lock-step with a reference model.
//
// Run holds the ResetPin low for ResetLow cycles, high for ResetHigh cycles,
// releases it and waits Latency cycles. It then samples the device outputs at
// the end of each clock cycle and compares them with the expected values for
// that cycle.
//
type Bench struct {
	Device hw.NewPartFn
	// Inputs holds the values of device inputs other than ResetPin. Missing
	// inputs are held at 0.
	Inputs    Sample
	SPC       uint // simulation steps per clock cycle
	Workers   int
	ResetLow  int
	ResetHigh int
	Latency   int
	Log       logr.Logger
}

// NewBench returns a bench for the given device with default settings.
//
func NewBench(device hw.NewPartFn) *Bench {
	return &Bench{
		Device:    device,
		Inputs:    make(Sample),
		SPC:       DefaultSPC,
		ResetLow:  DefaultResetLow,
		ResetHigh: DefaultResetHigh,
		Latency:   DefaultLatency,
		Log:       logr.Discard(),
	}
}

type probe struct {
	signal
	bits []bool
}

func (p *probe) value() int64 {
	var v int64
	for i, b := range p.bits {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

// build wires the device to input drivers and output probes.
func (b *Bench) build(rst *bool) (*hw.Circuit, map[string]*probe, error) {
	dev := b.Device("")
	conns := connString(dev.Inputs, dev.Outputs)

	var parts hw.Parts
	hasRst := false
	known := make(map[string]bool)
	for _, s := range signals(dev.Inputs) {
		known[s.name] = true
		if s.name == ResetPin && !s.bus {
			hasRst = true
			parts = append(parts, hwlib.Input(func() bool { return *rst })("out="+ResetPin))
			continue
		}
		v := b.Inputs[s.name]
		if v>>uint(s.width) != 0 {
			return nil, nil, errors.Errorf("input %s: value %d does not fit in %d bits", s.name, v, s.width)
		}
		for i := 0; i < s.width; i++ {
			bit := v>>uint(i)&1 != 0
			parts = append(parts, hwlib.Input(func() bool { return bit })("out="+s.pin(i)))
		}
	}
	if !hasRst {
		return nil, nil, errors.Errorf("device %s has no %s input", dev.Name, ResetPin)
	}
	for k := range b.Inputs {
		if !known[k] {
			return nil, nil, errors.Errorf("device %s has no input %s", dev.Name, k)
		}
	}

	probes := make(map[string]*probe)
	for _, s := range signals(dev.Outputs) {
		p := &probe{signal: s, bits: make([]bool, s.width)}
		probes[s.name] = p
		for i := 0; i < s.width; i++ {
			n := i
			parts = append(parts, hwlib.Output(func(v bool) { p.bits[n] = v })("in="+s.pin(i)))
		}
	}

	parts = append(parts, b.Device(conns))
	c, err := hw.NewCircuit(b.Workers, b.SPC, parts...)
	if err != nil {
		return nil, nil, err
	}
	return c, probes, nil
}

// Run resets the device and compares n cycles of its outputs against expect.
// It returns a *Mismatch, wrapped with a stack trace, on the first difference.
//
func (b *Bench) Run(ctx context.Context, n int, expect Expect) error {
	var rst bool
	c, probes, err := b.build(&rst)
	if err != nil {
		return errors.Wrap(err, "failed to build bench")
	}
	defer c.Dispose()
	log := b.Log.WithValues("device", b.Device("").Name)

	cycles := func(k int) {
		for i := 0; i < k; i++ {
			c.TickTock()
		}
	}
	cycles(b.ResetLow)
	rst = true
	log.V(1).Info("reset asserted", "cycles", b.ResetHigh)
	cycles(b.ResetHigh)
	rst = false
	cycles(b.Latency)
	log.V(1).Info("reset released", "latency", b.Latency)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "cycle %d", i)
		}
		c.TickTock()
		want := expect(i)
		keys := make([]string, 0, len(want))
		for k := range want {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p, ok := probes[k]
			if !ok {
				return errors.Errorf("cycle %d: unknown output signal %s", i, k)
			}
			if got := p.value(); got != want[k] {
				m := &Mismatch{Cycle: i, Signal: k, Expected: want[k], Actual: got}
				log.V(1).Info("mismatch", "cycle", i, "signal", k, "expected", want[k], "actual", got)
				return errors.WithStack(m)
			}
		}
	}
	log.V(1).Info("run complete", "cycles", n, "steps", c.Steps())
	return nil
}
