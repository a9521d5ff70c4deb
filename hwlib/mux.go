// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	p "github.com/db47h/pipegen"
)

// Abs returns the absolute value of x interpreted as a two's complement
// number. The result is as wide as x; the magnitude of the most negative value
// is only correct when read as unsigned.
//
//	Function: out = x >= 0 ? x : -x
//
func Abs(x p.Signal) p.Signal {
	c, err := p.Owner(x)
	if err != nil {
		panic(err)
	}
	out, err := p.Select(x, p.Neg(x), p.SGe(x, c.Const(0)))
	if err != nil {
		// the condition is always 1 bit wide.
		panic(err)
	}
	return out
}

// signOf returns the sign bit of x.
//
func signOf(b *builder, x p.Signal) p.Signal {
	return b.bit(x, x.Bits()-1)
}

// negateIf returns -x if cond is set, x otherwise.
//
func negateIf(b *builder, x, cond p.Signal) p.Signal {
	return b.sel(p.Neg(x), x, cond)
}
