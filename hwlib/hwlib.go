// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides arithmetic circuits built with pipegen operators.
//
// The iterative algorithms (division, square roots) are expressed as ordinary
// graph construction: each iteration resolves one result bit and, where
// registers are inserted between iterations, the balancing done by pipegen
// operators turns the loop into a pipeline with one stage per bit.
//
package hwlib

import (
	p "github.com/db47h/pipegen"
)

// builder wraps the fallible pipegen operators and keeps the first error.
// Once an error has been recorded, every method returns its first operand so
// that graph construction can carry on with valid handles until the caller
// checks err.
//
type builder struct {
	err error
}

func (b *builder) bit(x p.Signal, i int) p.Signal {
	if b.err != nil {
		return x
	}
	r, err := p.Bit(x, i)
	if err != nil {
		b.err = err
		return x
	}
	return r
}

func (b *builder) resize(x p.Signal, bits int) p.Signal {
	if b.err != nil {
		return x
	}
	r, err := p.Resize(x, bits)
	if err != nil {
		b.err = err
		return x
	}
	return r
}

func (b *builder) sel(x, y, cond p.Signal) p.Signal {
	if b.err != nil {
		return x
	}
	r, err := p.Select(x, y, cond)
	if err != nil {
		b.err = err
		return x
	}
	return r
}

func (b *builder) constN(c *p.Component, bits int, v int64) p.Signal {
	if b.err != nil {
		return c.Const(v)
	}
	r, err := c.ConstN(bits, v)
	if err != nil {
		b.err = err
		return c.Const(v)
	}
	return r
}

// pow2 returns 2^n. Powers that do not fit in an int64 constant are built by
// shifting a one resized to the given width.
//
func (b *builder) pow2(c *p.Component, width, n int) p.Signal {
	if n < 63 {
		return c.Const(1 << uint(n))
	}
	return p.Shl(b.resize(c.Const(1), width), c.Const(int64(n)))
}
