// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package verify runs the gate-level devices of package dut against the
// reference sequences of package oracle.
//
package verify

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	hw "github.com/db47h/prbsim"
	"github.com/db47h/prbsim/dut"
	"github.com/db47h/prbsim/hwtest"
	"github.com/db47h/prbsim/lfsr"
	"github.com/db47h/prbsim/oracle"
)

// Options configures the verification bench.
//
// If Cache is not nil, reference traces are taken from it instead of being
// generated for each run.
//
type Options struct {
	SPC       uint          `yaml:"spc" json:"spc"`
	Workers   int           `yaml:"workers" json:"workers"`
	ResetLow  int           `yaml:"reset_low" json:"reset_low"`
	ResetHigh int           `yaml:"reset_high" json:"reset_high"`
	Latency   int           `yaml:"latency" json:"latency"`
	Log       logr.Logger   `yaml:"-" json:"-"`
	Cache     *oracle.Cache `yaml:"-" json:"-"`
}

// DefaultOptions returns the default bench options.
//
func DefaultOptions() Options {
	return Options{
		SPC:       hwtest.DefaultSPC,
		Workers:   1,
		ResetLow:  hwtest.DefaultResetLow,
		ResetHigh: hwtest.DefaultResetHigh,
		Latency:   hwtest.DefaultLatency,
		Log:       logr.Discard(),
	}
}

func (o *Options) bench(dev hw.NewPartFn) *hwtest.Bench {
	b := hwtest.NewBench(dev)
	b.SPC = o.SPC
	b.Workers = o.Workers
	b.ResetLow = o.ResetLow
	b.ResetHigh = o.ResetHigh
	b.Latency = o.Latency
	b.Log = o.Log
	return b
}

// reference returns the reference record of each cycle of cfg.
func (o *Options) reference(cfg oracle.Config) (func(cycle int) oracle.Record, error) {
	if o.Cache != nil {
		tr, err := o.Cache.Get(cfg)
		if err != nil {
			return nil, err
		}
		return func(cycle int) oracle.Record { return tr[cycle] }, nil
	}
	seq, err := oracle.NewSequence(cfg)
	if err != nil {
		return nil, err
	}
	return func(int) oracle.Record {
		r, _ := seq.Next()
		return r
	}, nil
}

func seeds(cfg oracle.Config) (a, b lfsr.State, err error) {
	if a, err = lfsr.Seed(cfg.SeedA); err != nil {
		return 0, 0, err
	}
	if cfg.Mode == oracle.ModeSingle {
		return a, 0, nil
	}
	b, err = lfsr.Seed(cfg.SeedB)
	return a, b, err
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// PRBS checks the single generator device against cfg.Cycles cycles of the
// reference sequence. cfg.Mode must be oracle.ModeSingle.
//
func PRBS(ctx context.Context, cfg oracle.Config, opts Options) error {
	if cfg.Mode != oracle.ModeSingle {
		return errors.Wrapf(oracle.ErrConfig, "PRBS device requires mode %s", oracle.ModeSingle)
	}
	ref, err := opts.reference(cfg)
	if err != nil {
		return err
	}
	seed, _, err := seeds(cfg)
	if err != nil {
		return err
	}
	dev, err := dut.PRBS(seed)
	if err != nil {
		return err
	}
	return opts.bench(dev).Run(ctx, cfg.Cycles, func(i int) hwtest.Sample {
		return hwtest.Sample{"out": boolInt(ref(i).Bit)}
	})
}

// Multiplier checks the stochastic multiplier device against cfg.Cycles cycles
// of the reference sequence. cfg.Mode must be oracle.ModeMultiplier.
//
// The device clears its history registers on reset, so the reference is
// always generated with oracle.HistoryZero.
//
func Multiplier(ctx context.Context, cfg oracle.Config, opts Options) error {
	if cfg.Mode != oracle.ModeMultiplier {
		return errors.Wrapf(oracle.ErrConfig, "multiplier device requires mode %s", oracle.ModeMultiplier)
	}
	if cfg.History != oracle.HistoryZero {
		opts.Log.V(1).Info("using zero history", "configured", cfg.History.String())
		cfg.History = oracle.HistoryZero
	}
	ref, err := opts.reference(cfg)
	if err != nil {
		return err
	}
	sa, sb, err := seeds(cfg)
	if err != nil {
		return err
	}
	dev, err := dut.Multiplier(sa, sb, cfg.InputBits, cfg.Window)
	if err != nil {
		return err
	}
	b := opts.bench(dev)
	b.Inputs["ta"] = int64(cfg.ThresholdA)
	b.Inputs["tb"] = int64(cfg.ThresholdB)
	return b.Run(ctx, cfg.Cycles, func(i int) hwtest.Sample {
		r := ref(i)
		s := hwtest.Sample{
			"sa":    boolInt(r.SA),
			"sb":    boolInt(r.SB),
			"prod":  boolInt(r.Bit),
			"valid": boolInt(r.Valid),
			"ovf":   boolInt(r.Overflow),
		}
		if r.Valid {
			s["value"] = int64(r.Value)
		}
		return s
	})
}

// Run checks the device matching cfg.Mode.
//
func Run(ctx context.Context, cfg oracle.Config, opts Options) error {
	log := opts.Log.WithValues("mode", cfg.Mode.String(), "cycles", cfg.Cycles)
	opts.Log = log
	var err error
	switch cfg.Mode {
	case oracle.ModeSingle:
		err = PRBS(ctx, cfg, opts)
	default:
		err = Multiplier(ctx, cfg, opts)
	}
	if err != nil {
		return err
	}
	log.Info("device matches reference")
	return nil
}

// All runs the given configurations concurrently. It returns the first error
// and cancels the remaining runs.
//
func All(ctx context.Context, cfgs []oracle.Config, opts Options) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		o := opts
		o.Log = opts.Log.WithValues("run", i)
		g.Go(func() error {
			return errors.Wrapf(Run(ctx, cfg, o), "run %d (%s)", i, cfg.Mode)
		})
	}
	return g.Wait()
}
