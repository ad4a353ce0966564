// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for prbsim: logic gates,
// muxers, flip-flops, adders, the unsigned comparator used by stochastic number
// generators and the up-counter decoder.
//
package hwlib

import (
	hw "github.com/db47h/prbsim"
)

// common pin names
const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pSel = "sel"
	pOut = "out"
	pRst = "rst"
)

// make a bus name
func bus(bits int, names ...string) []string {
	b := make([]string, 0, len(names)*bits)
	for _, n := range names {
		for j := 0; j < bits; j++ {
			b = append(b, hw.BusPinName(n, j))
		}
	}
	return b
}
