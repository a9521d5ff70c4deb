// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	p "github.com/db47h/pipegen"
	"github.com/pkg/errors"
)

// Divide returns an unsigned restoring divider.
//
//	Inputs: dividend, divisor
//	Outputs: quotient, remainder, both max(dividend.Bits(), divisor.Bits()) wide
//	Function: quotient = dividend / divisor
//	          remainder = dividend % divisor
//
// One quotient bit is resolved per clock cycle: both results are registered
// at the end of every iteration, so their offset is the width of the result
// plus the largest offset of the operands. A zero divisor yields an all ones
// quotient and remainder == dividend.
//
func Divide(dividend, divisor p.Signal) (quotient, remainder p.Signal, err error) {
	c, err := p.Owner(dividend, divisor)
	if err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(err, "Divide")
	}
	bits := dividend.Bits()
	if divisor.Bits() > bits {
		bits = divisor.Bits()
	}

	var b builder
	if dividend.Bits() < bits {
		dividend = b.resize(dividend, bits)
	}
	one := c.Const(1)
	remainder = b.constN(c, bits, 0)
	quotient = b.constN(c, bits, 0)
	for i := 0; i < bits; i++ {
		shifted := p.Or(p.Shl(remainder, one), b.bit(dividend, bits-1-i))
		diff := p.Sub(b.resize(shifted, bits+1), divisor)
		negative := b.bit(diff, bits)
		remainder = b.sel(shifted, b.resize(diff, bits), negative)
		q := p.Shl(quotient, one)
		quotient = b.sel(q, p.Or(q, one), negative)

		quotient, remainder = p.Reg(quotient), p.Reg(remainder)
	}
	if b.err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(b.err, "Divide")
	}
	return quotient, remainder, nil
}

// Div returns the quotient of an unsigned Divide.
//
func Div(dividend, divisor p.Signal) (p.Signal, error) {
	q, _, err := Divide(dividend, divisor)
	return q, err
}

// Mod returns the remainder of an unsigned Divide.
//
func Mod(dividend, divisor p.Signal) (p.Signal, error) {
	_, r, err := Divide(dividend, divisor)
	return r, err
}

// SignedDivide returns a two's complement divider.
//
//	Inputs: dividend, divisor
//	Outputs: quotient, remainder
//	Function: quotient = dividend / divisor, rounded toward zero
//	          remainder = dividend - quotient * divisor
//
// The sign of the quotient is the xor of the operand signs and the remainder
// has the sign of the dividend, like Go's / and % operators. Dividing the most
// negative value by -1 wraps around.
//
func SignedDivide(dividend, divisor p.Signal) (quotient, remainder p.Signal, err error) {
	if _, err = p.Owner(dividend, divisor); err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(err, "SignedDivide")
	}
	var b builder
	dividendSign := signOf(&b, dividend)
	divisorSign := signOf(&b, divisor)
	if b.err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(b.err, "SignedDivide")
	}
	quotient, remainder, err = Divide(Abs(dividend), Abs(divisor))
	if err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(err, "SignedDivide")
	}
	quotient = negateIf(&b, quotient, p.Xor(dividendSign, divisorSign))
	remainder = negateIf(&b, remainder, dividendSign)
	if b.err != nil {
		return p.Signal{}, p.Signal{}, errors.Wrap(b.err, "SignedDivide")
	}
	return quotient, remainder, nil
}
