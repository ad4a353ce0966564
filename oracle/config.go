// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package oracle

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/db47h/prbsim/lfsr"
	"github.com/db47h/prbsim/sc"
)

// ErrConfig is the cause of all configuration errors returned by
// Config.Validate.
//
var ErrConfig = errors.New("invalid configuration")

// Mode selects what the reference sequence models.
//
type Mode int

// Supported modes.
//
const (
	// ModeSingle is a single PRBS generator. The compared signal is the raw
	// LFSR output bit.
	ModeSingle Mode = iota
	// ModeMultiplier is the two-channel stochastic multiplier followed by an
	// up-counter decoder.
	ModeMultiplier
)

var modeNames = [...]string{ModeSingle: "single", ModeMultiplier: "multiplier"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name.
//
func ParseMode(s string) (Mode, error) {
	for m, n := range modeNames {
		if n == s {
			return Mode(m), nil
		}
	}
	return 0, errors.Wrapf(ErrConfig, "unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMode(string(text))
	return err
}

// HistoryPolicy selects the value of the SNG window bits for cycles before
// the first one.
//
type HistoryPolicy int

// Supported history policies.
//
const (
	// HistoryWrap reads cycle -k as the bit of cycle N-k of the same run.
	HistoryWrap HistoryPolicy = iota
	// HistoryZero reads cycles before the run as 0, the reset state of the
	// device history registers.
	HistoryZero
)

var historyNames = [...]string{HistoryWrap: "wrap", HistoryZero: "zero"}

func (h HistoryPolicy) String() string {
	if h < 0 || int(h) >= len(historyNames) {
		return "HistoryPolicy(" + strconv.Itoa(int(h)) + ")"
	}
	return historyNames[h]
}

// ParseHistory returns the history policy with the given name.
//
func ParseHistory(s string) (HistoryPolicy, error) {
	for h, n := range historyNames {
		if n == s {
			return HistoryPolicy(h), nil
		}
	}
	return 0, errors.Wrapf(ErrConfig, "unknown history policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (h HistoryPolicy) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HistoryPolicy) UnmarshalText(text []byte) (err error) {
	*h, err = ParseHistory(string(text))
	return err
}

// Config holds the parameters of a reference run. The output of Generate is
// fully determined by a Config. Config values are comparable and can be used
// as map keys.
//
// SeedB, the thresholds, InputBits and Window are ignored in single mode.
//
type Config struct {
	Mode       Mode          `yaml:"mode" json:"mode"`
	SeedA      int           `yaml:"seed_a" json:"seed_a"` // seed position of channel A
	SeedB      int           `yaml:"seed_b" json:"seed_b"` // seed position of channel B
	ThresholdA uint          `yaml:"threshold_a" json:"threshold_a"`
	ThresholdB uint          `yaml:"threshold_b" json:"threshold_b"`
	InputBits  int           `yaml:"input_bits" json:"input_bits"`
	Window     int           `yaml:"window" json:"window"`
	Cycles     int           `yaml:"cycles" json:"cycles"`
	History    HistoryPolicy `yaml:"history" json:"history"`
}

// DefaultConfig returns the default multiplier configuration: seeds at
// positions 30 and 29, both thresholds at 8 (probability 0.5) over 4-bit
// windows, and an 8-cycle decoder window.
//
func DefaultConfig() Config {
	return Config{
		Mode:       ModeMultiplier,
		SeedA:      lfsr.DefaultSeedA,
		SeedB:      lfsr.DefaultSeedB,
		ThresholdA: 8,
		ThresholdB: 8,
		InputBits:  4,
		Window:     8,
		Cycles:     100000,
		History:    HistoryWrap,
	}
}

// DefaultSingleConfig returns the default single generator configuration.
//
func DefaultSingleConfig() Config {
	c := DefaultConfig()
	c.Mode = ModeSingle
	c.SeedA = lfsr.DefaultSeed
	c.Cycles = 10000
	return c
}

// Validate checks the configuration. All returned errors have ErrConfig as
// their cause.
//
func (c *Config) Validate() error {
	if c.Cycles <= 0 {
		return errors.Wrapf(ErrConfig, "cycles: %d is not positive", c.Cycles)
	}
	if c.History != HistoryWrap && c.History != HistoryZero {
		return errors.Wrapf(ErrConfig, "history: unknown policy %d", int(c.History))
	}
	if _, err := lfsr.Seed(c.SeedA); err != nil {
		return errors.Wrapf(ErrConfig, "seed_a: %v", err)
	}
	switch c.Mode {
	case ModeSingle:
		return nil
	case ModeMultiplier:
	default:
		return errors.Wrapf(ErrConfig, "mode: unknown mode %d", int(c.Mode))
	}
	if _, err := lfsr.Seed(c.SeedB); err != nil {
		return errors.Wrapf(ErrConfig, "seed_b: %v", err)
	}
	if err := sc.CheckBits(c.InputBits); err != nil {
		return errors.Wrapf(ErrConfig, "input_bits: %v", err)
	}
	if err := sc.CheckThreshold(c.InputBits, c.ThresholdA); err != nil {
		return errors.Wrapf(ErrConfig, "threshold_a: %v", err)
	}
	if err := sc.CheckThreshold(c.InputBits, c.ThresholdB); err != nil {
		return errors.Wrapf(ErrConfig, "threshold_b: %v", err)
	}
	if err := sc.CheckWindow(c.Window); err != nil {
		return errors.Wrapf(ErrConfig, "window: %v", err)
	}
	return nil
}
