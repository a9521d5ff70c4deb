// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	p "github.com/db47h/pipegen"
	"github.com/pkg/errors"
)

// sqrtBits returns the width of the square root of a bits wide number, that is
// ceil(log2(ceil(sqrt(2^bits-1)))), with a minimum of 1.
//
func sqrtBits(bits int) int {
	return (bits + 1) / 2
}

// Sqrt returns an integer square root circuit.
//
//	Inputs: x, read as unsigned
//	Outputs: out, (x.Bits()+1)/2 wide
//	Function: out = floor(sqrt(x))
//
// The root is computed one bit at a time from msb to lsb: a bit is kept if
// the square of the new guess is still <= x. The square of the new guess is
// derived from the previous one with shifts and adds:
//
//	(guess + 2^bit)^2 = guess^2 + guess<<(bit+1) + 2^(2*bit)
//
// No registers are inserted; the result has the offset of x.
//
// x has no sign of its own, so it is always read as unsigned. Negative
// constants are rejected.
//
func Sqrt(x p.Signal) (p.Signal, error) {
	c, err := p.Owner(x)
	if err != nil {
		return p.Signal{}, errors.Wrap(err, "Sqrt")
	}
	if v, ok := x.Value(); ok && v < 0 {
		return p.Signal{}, p.Errorf(p.UnsupportedOperandShape, "Sqrt", "negative constant %d", v)
	}
	bits := x.Bits()
	rbits := sqrtBits(bits)

	var b builder
	guess := b.constN(c, rbits, 0)
	square := b.constN(c, bits+1, 0)
	for bit := rbits - 1; bit >= 0; bit-- {
		// guess has no bits set below bit+1 and square none below 2*bit+2, so
		// the last term can be or-ed in.
		shifted := p.Shl(b.resize(guess, bits+1), c.Const(int64(bit+1)))
		newSquare := p.Or(p.Add(square, shifted), b.pow2(c, bits+1, 2*bit))
		better := p.Le(newSquare, x)
		square = b.sel(newSquare, square, better)
		guess = b.sel(p.Or(guess, b.pow2(c, rbits, bit)), guess, better)
	}
	if b.err != nil {
		return p.Signal{}, errors.Wrap(b.err, "Sqrt")
	}
	return guess, nil
}

// SqrtRounded returns a square root circuit rounding to the nearest integer.
//
//	Inputs: x, read as unsigned
//	Outputs: out, (x.Bits()+3)/2 wide
//	Function: out = round(sqrt(x)) = (floor(sqrt(4*x)) + 1) / 2
//
func SqrtRounded(x p.Signal) (p.Signal, error) {
	if _, err := p.Owner(x); err != nil {
		return p.Signal{}, errors.Wrap(err, "SqrtRounded")
	}
	c := x.Component()
	var b builder
	scaled := p.Shl(b.resize(x, x.Bits()+2), c.Const(2))
	if b.err != nil {
		return p.Signal{}, errors.Wrap(b.err, "SqrtRounded")
	}
	root, err := Sqrt(scaled)
	if err != nil {
		return p.Signal{}, errors.Wrap(err, "SqrtRounded")
	}
	// one extra bit for the carry of the rounding increment.
	one := c.Const(1)
	r := p.Shr(p.Add(b.resize(root, root.Bits()+1), one), one)
	r = b.resize(r, root.Bits())
	if b.err != nil {
		return p.Signal{}, errors.Wrap(b.err, "SqrtRounded")
	}
	return r, nil
}
