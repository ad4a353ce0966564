// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command prbsim prints the expected trace of a PRBS generator or stochastic
// multiplier, or checks the gate-level device models against it.
//
//	prbsim [flags] trace|verify|diff
//
// diff compares the run under both SNG history policies and prints the
// differences visible on the device pins.
//
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/pkg/errors"

	"github.com/db47h/prbsim/internal/config"
	"github.com/db47h/prbsim/oracle"
	"github.com/db47h/prbsim/verify"
)

type flags struct {
	config  string
	mode    string
	history string
	cycles  int
	seedA   int
	seedB   int
	ta, tb  uint
	bits    int
	window  int
	both    bool
	v       int
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := new(flags)
	d := oracle.DefaultConfig()
	fs.StringVar(&f.config, "config", "", "YAML or JSON run file")
	fs.StringVar(&f.mode, "mode", d.Mode.String(), "reference mode: single or multiplier")
	fs.StringVar(&f.history, "history", d.History.String(), "SNG history before cycle 0: wrap or zero")
	fs.IntVar(&f.cycles, "cycles", d.Cycles, "number of clock cycles")
	fs.IntVar(&f.seedA, "seed-a", d.SeedA, "seed position of channel A")
	fs.IntVar(&f.seedB, "seed-b", d.SeedB, "seed position of channel B")
	fs.UintVar(&f.ta, "ta", d.ThresholdA, "threshold of channel A")
	fs.UintVar(&f.tb, "tb", d.ThresholdB, "threshold of channel B")
	fs.IntVar(&f.bits, "bits", d.InputBits, "SNG input bit width")
	fs.IntVar(&f.window, "window", d.Window, "decoder window in cycles")
	fs.BoolVar(&f.both, "both", false, "verify the single and multiplier devices concurrently")
	fs.IntVar(&f.v, "v", 0, "log verbosity")
	return f, fs.Parse(args)
}

// load reads the run file, if any, and applies the flags explicitly set on
// the command line.
func load(fs *flag.FlagSet, f *flags) (*config.File, error) {
	cf := config.Default()
	if f.config != "" {
		var err error
		if cf, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}
	o := &cf.Oracle
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "mode":
			o.Mode, err = oracle.ParseMode(f.mode)
		case "history":
			o.History, err = oracle.ParseHistory(f.history)
		case "cycles":
			o.Cycles = f.cycles
		case "seed-a":
			o.SeedA = f.seedA
		case "seed-b":
			o.SeedB = f.seedB
		case "ta":
			o.ThresholdA = f.ta
		case "tb":
			o.ThresholdB = f.tb
		case "bits":
			o.InputBits = f.bits
		case "window":
			o.Window = f.window
		}
	})
	if err != nil {
		return nil, err
	}
	if err = cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func b2s(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func trace(w io.Writer, cfg oracle.Config, log logr.Logger) error {
	seq, err := oracle.NewSequence(cfg)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var ones, ovf, wovf, values, sum int
	for r, ok := seq.Next(); ok; r, ok = seq.Next() {
		if r.Bit {
			ones++
		}
		if cfg.Mode == oracle.ModeSingle {
			fmt.Fprintln(bw, b2s(r.Bit))
			continue
		}
		if r.Valid {
			fmt.Fprintf(bw, "%d %d %d\n", r.Cycle, r.Value, wovf)
			values++
			sum += r.Value
			wovf = 0
		}
		if r.Overflow {
			ovf++
			wovf++
		}
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write trace")
	}
	kv := []interface{}{"mode", cfg.Mode.String(), "cycles", cfg.Cycles, "ones", ones}
	if cfg.Mode == oracle.ModeMultiplier {
		var mean float64
		if values > 0 {
			mean = float64(sum) / float64(values)
		}
		kv = append(kv, "values", values, "mean", mean, "overflows", ovf)
	}
	log.Info("trace complete", kv...)
	return nil
}

func diff(w io.Writer, cache *oracle.Cache, cfg oracle.Config, log logr.Logger) error {
	wrap, zero := cfg, cfg
	wrap.History, zero.History = oracle.HistoryWrap, oracle.HistoryZero
	a, err := cache.Get(wrap)
	if err != nil {
		return err
	}
	b, err := cache.Get(zero)
	if err != nil {
		return err
	}
	var n int
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	d := oracle.ObservableDiff(cfg.Mode, a, b)
	if d == "" {
		log.Info("history policies agree on device outputs", "differing", n)
		return nil
	}
	_, err = io.WriteString(w, d)
	return errors.Wrap(err, "failed to write diff")
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("prbsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: prbsim [flags] trace|verify|diff")
		fs.PrintDefaults()
	}
	f, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	log := funcr.New(func(prefix, args string) {
		fmt.Fprintln(stderr, prefix, args)
	}, funcr.Options{Verbosity: f.v})
	cf, err := load(fs, f)
	if err != nil {
		return err
	}
	switch fs.Arg(0) {
	case "trace":
		return trace(stdout, cf.Oracle, log)
	case "verify":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		opts := cf.Bench
		opts.Log = log
		if !f.both {
			return verify.Run(ctx, cf.Oracle, opts)
		}
		if opts.Cache, err = oracle.NewCache(2); err != nil {
			return err
		}
		single, mul := cf.Oracle, cf.Oracle
		single.Mode, mul.Mode = oracle.ModeSingle, oracle.ModeMultiplier
		return verify.All(ctx, []oracle.Config{single, mul}, opts)
	case "diff":
		cache, err := oracle.NewCache(2)
		if err != nil {
			return err
		}
		return diff(stdout, cache, cf.Oracle, log)
	case "":
		fs.Usage()
		return errors.New("missing command")
	}
	return errors.Errorf("unknown command %q", fs.Arg(0))
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Cause(err) != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, "prbsim:", err)
		}
		os.Exit(1)
	}
}
