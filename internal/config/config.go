// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads and saves run files for the prbsim command.
//
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"

	"github.com/db47h/prbsim/oracle"
	"github.com/db47h/prbsim/verify"
)

// File is a run file. Omitted fields keep their default value.
//
type File struct {
	Oracle oracle.Config  `yaml:"oracle" json:"oracle"`
	Bench  verify.Options `yaml:"bench" json:"bench"`
}

// Default returns the default run file contents.
//
func Default() *File {
	return &File{
		Oracle: oracle.DefaultConfig(),
		Bench:  verify.DefaultOptions(),
	}
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	}
	return 0, errors.Errorf("%s: unsupported file extension", path)
}

// Load reads a YAML or JSON run file, selected by the file extension, over
// the defaults and validates the result.
//
func Load(path string) (*File, error) {
	fm, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	f := Default()
	switch fm {
	case formatYAML:
		err = yaml.Unmarshal(data, f)
	case formatJSON:
		err = json.Unmarshal(data, f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if err = f.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

// Save writes f to path, in the format selected by the file extension.
//
func (f *File) Save(path string) error {
	fm, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch fm {
	case formatYAML:
		data, err = yaml.Marshal(f)
	case formatJSON:
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "failed to write config file")
}

// Validate checks the oracle configuration and the bench options.
//
func (f *File) Validate() error {
	if err := f.Oracle.Validate(); err != nil {
		return err
	}
	b := &f.Bench
	switch {
	case b.SPC < 2:
		return errors.Errorf("bench: spc %d is less than 2", b.SPC)
	case b.ResetLow < 0 || b.ResetHigh < 1:
		return errors.Errorf("bench: invalid reset sequence %d/%d", b.ResetLow, b.ResetHigh)
	case b.Latency < 0:
		return errors.Errorf("bench: negative latency %d", b.Latency)
	}
	return nil
}
