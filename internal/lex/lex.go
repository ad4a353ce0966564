// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a minimal state-function based lexer.
//
package lex

import (
	"fmt"
	"io"
)

// EOF is both the rune returned by Next at end of input and the Type of the
// last item emitted by a lexer.
//
const EOF = -1

// Type is an item type. Values are defined by the client package.
//
type Type int

// Pos is a rune offset in the input.
//
type Pos int

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	if i.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%v", i.Value)
}

// Interface is implemented by lexers.
//
type Interface interface {
	Lex() Item
}

// A StateFn is a lexer state. It returns the next state, or nil to return to
// the initial state.
//
type StateFn func(l *Lexer) StateFn

// Lexer holds the lexing state.
//
type Lexer struct {
	in    []rune
	pos   int // index of the next rune
	start int // start of the current token
	items []Item
	init  StateFn
	state StateFn
}

// New returns a new lexer reading runes from r. Lexing starts in state init.
// Read errors other than io.EOF are reported as end of input.
//
func New(r io.RuneReader, init StateFn) *Lexer {
	l := &Lexer{init: init}
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			break
		}
		l.in = append(l.in, c)
	}
	return l
}

// Lex returns the next item.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
		}
		l.state = l.state(l)
	}
	it := l.items[0]
	l.items = l.items[1:]
	return it
}

// Next consumes the next rune. It returns EOF past the end of input.
//
func (l *Lexer) Next() rune {
	l.pos++
	return l.Current()
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune {
	if l.pos < 1 || l.pos > len(l.in) {
		return EOF
	}
	return l.in[l.pos-1]
}

// Backup reverts the last call to Next.
//
func (l *Lexer) Backup() {
	l.pos--
}

// AcceptWhile consumes runes for as long as f returns true.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	for f(l.Next()) {
	}
	l.Backup()
}

// Ignore drops the runes consumed since the last emitted token.
//
func (l *Lexer) Ignore() {
	l.start = l.pos
}

// Emit emits a token of type t starting at the end of the previous one.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: Pos(l.start), Value: v})
	l.start = l.pos
}
