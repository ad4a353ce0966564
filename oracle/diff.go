// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package oracle

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Diff returns a human-readable report of the differences between two traces,
// or an empty string if they are equal.
//
func Diff(want, got Trace) string {
	return cmp.Diff(want, got)
}

// ObservableDiff is like Diff but only compares the fields that a device in
// the given mode exposes on its pins.
//
func ObservableDiff(mode Mode, want, got Trace) string {
	var hidden []string
	switch mode {
	case ModeSingle:
		hidden = []string{"B", "RandA", "RandB", "SA", "SB", "Value", "Valid", "Overflow"}
	default:
		hidden = []string{"A", "B", "RandA", "RandB"}
	}
	return cmp.Diff(want, got, cmpopts.IgnoreFields(Record{}, hidden...))
}
