// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a state function based lexer.
//
// A lexer is driven by state functions. Each state function reads runes with
// Next, emits items with Emit and returns the next state. A nil state returns
// the lexer to its initial state, starting a new item at the next rune.
//
package lex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// EOF is both the rune returned by Next at the end of input and the item type
// of end of input items.
//
const EOF = -1

// Type is the type of an item.
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
	switch v := i.Value.(type) {
	case string:
		return strconv.Quote(v)
	case rune:
		return strconv.QuoteRune(v)
	}
	return fmt.Sprint(i.Value)
}

// StateFn is a lexer state function.
//
type StateFn func(l *Lexer) StateFn

// Interface is implemented by lexers.
//
type Interface interface {
	// Lex returns the next item in the input stream.
	Lex() Item
}

type runePos struct {
	r   rune
	pos Pos
}

// Lexer holds the state of a lexer. Its methods are only meant to be called
// from state functions.
//
type Lexer struct {
	rr      io.RuneReader
	init    StateFn
	state   StateFn
	items   []Item
	cur     runePos
	prev    runePos
	pending *runePos
	offset  Pos
	start   Pos
}

// New returns a lexer reading from r, init being its initial state.
//
func New(r io.Reader, init StateFn) Interface {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Lexer{rr: rr, init: init, cur: runePos{EOF, 0}}
}

// Lex implements Interface.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.start = l.nextPos()
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

func (l *Lexer) nextPos() Pos {
	if l.pending != nil {
		return l.pending.pos
	}
	return l.offset
}

// Next reads the next rune. It returns EOF at the end of input or on read
// errors.
//
func (l *Lexer) Next() rune {
	var rp runePos
	if l.pending != nil {
		rp = *l.pending
		l.pending = nil
	} else {
		r, _, err := l.rr.ReadRune()
		if err != nil {
			r = EOF
		}
		rp = runePos{r, l.offset}
		if r != EOF {
			l.offset++
		}
	}
	l.prev, l.cur = l.cur, rp
	return rp.r
}

// Backup unreads the last rune read by Next. Only one rune can be unread
// between two calls to Next.
//
func (l *Lexer) Backup() {
	rp := l.cur
	l.pending = &rp
	l.cur = l.prev
}

// Current returns the last rune read by Next.
//
func (l *Lexer) Current() rune { return l.cur.r }

// AcceptWhile reads runes while f returns true. The first rejected rune is
// unread.
//
func (l *Lexer) AcceptWhile(f func(rune) bool) {
	for f(l.Next()) {
	}
	l.Backup()
}

// Emit emits an item of type t, positioned at the start of the current item.
//
func (l *Lexer) Emit(t Type, value interface{}) {
	l.items = append(l.items, Item{t, l.start, value})
}
