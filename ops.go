// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

// Op identifies the operator of a combinational node.
//
type Op uint8

// Operators. Signed variants render their operands with a signed
// interpretation.
//
const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpNot
	OpNeg
	OpGt
	OpGe
	OpLt
	OpLe
	OpEq
	OpNe
	OpSMul
	OpSShl
	OpSShr
	OpSGt
	OpSGe
	OpSLt
	OpSLe
	OpSelect
	OpIndex
	OpBit
	OpSlice
	OpCat
	OpResize
	OpSResize
	OpSetBits
)

var opNames = [...]string{
	OpNone:    "none",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpShl:     "shl",
	OpShr:     "shr",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpNot:     "not",
	OpNeg:     "neg",
	OpGt:      "gt",
	OpGe:      "ge",
	OpLt:      "lt",
	OpLe:      "le",
	OpEq:      "eq",
	OpNe:      "ne",
	OpSMul:    "smul",
	OpSShl:    "sshl",
	OpSShr:    "sshr",
	OpSGt:     "sgt",
	OpSGe:     "sge",
	OpSLt:     "slt",
	OpSLe:     "sle",
	OpSelect:  "select",
	OpIndex:   "index",
	OpBit:     "bit",
	OpSlice:   "slice",
	OpCat:     "cat",
	OpResize:  "resize",
	OpSResize: "sresize",
	OpSetBits: "setbits",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Owner returns the component owning all signals in ss. It fails if any of
// them is invalid or if they belong to different components.
//
func Owner(ss ...Signal) (*Component, error) {
	return owner("Owner", ss...)
}

func owner(op string, ss ...Signal) (*Component, error) {
	var c *Component
	for i, s := range ss {
		if !s.Valid() {
			return nil, newError(UnsupportedOperandShape, op, "operand %d is not a valid signal", i)
		}
		if c == nil {
			c = s.c
		} else if s.c != c {
			return nil, newError(CrossComponentReference, op, "operand %d belongs to another component", i)
		}
	}
	return c, nil
}

// combine builds a combinational node from the template t. Operands arriving
// before the latest one are delayed so that every non-constant operand has
// the same offset.
//
func combine(t node, operands ...Signal) (Signal, error) {
	c, err := owner(t.op.String(), operands...)
	if err != nil {
		return Signal{}, err
	}
	max := 0
	for _, s := range operands {
		if o := s.Offset(); o > max {
			max = o
		}
	}
	t.kind = KindCombinational
	t.offset = max
	t.srcs = make([]int, len(operands))
	for i, s := range operands {
		if d := max - s.Offset(); d > 0 && !s.IsConstant() {
			s = c.register(s, d)
		}
		t.srcs[i] = s.id
	}
	return c.add(t), nil
}

// mustCombine is combine for operators whose only failure mode is a bad
// signal handle.
//
func mustCombine(t node, operands ...Signal) Signal {
	s, err := combine(t, operands...)
	if err != nil {
		panic(err)
	}
	return s
}

func maxBits(a, b Signal) int {
	if a.Bits() > b.Bits() {
		return a.Bits()
	}
	return b.Bits()
}

func arith(op Op, a, b Signal) Signal {
	return mustCombine(node{op: op, bits: maxBits(a, b)}, a, b)
}

func compare(op Op, a, b Signal) Signal {
	return mustCombine(node{op: op, bits: 1}, a, b)
}

// Add returns a + b, max(a.Bits(), b.Bits()) wide.
//
// Like every other operator, Add panics if a and b do not belong to the same
// component.
//
func Add(a, b Signal) Signal { return arith(OpAdd, a, b) }

// Sub returns a - b.
//
func Sub(a, b Signal) Signal { return arith(OpSub, a, b) }

// Mul returns the low max(a.Bits(), b.Bits()) bits of a * b.
//
func Mul(a, b Signal) Signal { return arith(OpMul, a, b) }

// Shl returns a << b.
//
func Shl(a, b Signal) Signal { return arith(OpShl, a, b) }

// Shr returns a >> b (logical shift).
//
func Shr(a, b Signal) Signal { return arith(OpShr, a, b) }

// And returns a & b.
//
func And(a, b Signal) Signal { return arith(OpAnd, a, b) }

// Or returns a | b.
//
func Or(a, b Signal) Signal { return arith(OpOr, a, b) }

// Xor returns a ^ b.
//
func Xor(a, b Signal) Signal { return arith(OpXor, a, b) }

// Not returns ^a.
//
func Not(a Signal) Signal { return mustCombine(node{op: OpNot, bits: a.Bits()}, a) }

// Neg returns -a.
//
func Neg(a Signal) Signal { return mustCombine(node{op: OpNeg, bits: a.Bits()}, a) }

// Gt returns the 1 bit result of a > b.
//
func Gt(a, b Signal) Signal { return compare(OpGt, a, b) }

// Ge returns a >= b.
//
func Ge(a, b Signal) Signal { return compare(OpGe, a, b) }

// Lt returns a < b.
//
func Lt(a, b Signal) Signal { return compare(OpLt, a, b) }

// Le returns a <= b.
//
func Le(a, b Signal) Signal { return compare(OpLe, a, b) }

// Eq returns a == b.
//
func Eq(a, b Signal) Signal { return compare(OpEq, a, b) }

// Ne returns a != b.
//
func Ne(a, b Signal) Signal { return compare(OpNe, a, b) }

// SMul returns the signed product of a and b. See SGt about constant
// operands.
//
func SMul(a, b Signal) Signal { return arith(OpSMul, a, b) }

// SShl returns the arithmetic left shift of a by b.
//
func SShl(a, b Signal) Signal { return arith(OpSShl, a, b) }

// SShr returns the arithmetic right shift of a by b.
//
func SShr(a, b Signal) Signal { return arith(OpSShr, a, b) }

// SGt returns the signed comparison a > b.
//
// Both operands are read as two's complement numbers of their own width, so a
// positive constant needs a sign bit: compare to c.ConstN(2, 1), not
// c.Const(1), which is 1 bit wide and reads as -1. The same holds for every
// signed operator.
//
func SGt(a, b Signal) Signal { return compare(OpSGt, a, b) }

// SGe returns the signed comparison a >= b.
//
func SGe(a, b Signal) Signal { return compare(OpSGe, a, b) }

// SLt returns the signed comparison a < b.
//
func SLt(a, b Signal) Signal { return compare(OpSLt, a, b) }

// SLe returns the signed comparison a <= b.
//
func SLe(a, b Signal) Signal { return compare(OpSLe, a, b) }

// Index returns bit i of a, i being a signal. Out of range indices read as 0;
// the generated Verilog guards the bit select with a comparison of i to the
// width of a.
//
func Index(a, i Signal) Signal { return mustCombine(node{op: OpIndex, bits: 1}, a, i) }

// Cat returns the concatenation of a (high bits) and b (low bits).
//
func Cat(a, b Signal) Signal {
	return mustCombine(node{op: OpCat, bits: a.Bits() + b.Bits()}, a, b)
}

// Select returns a if cond is set, b otherwise. cond must be 1 bit wide.
//
func Select(a, b, cond Signal) (Signal, error) {
	if cond.Valid() && cond.Bits() != 1 {
		return Signal{}, newError(UnsupportedOperandShape, OpSelect.String(), "condition is %d bits wide", cond.Bits())
	}
	if !a.Valid() || !b.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, OpSelect.String(), "invalid signal")
	}
	return combine(node{op: OpSelect, bits: maxBits(a, b)}, a, b, cond)
}

// Bit returns bit i of a.
//
func Bit(a Signal, i int) (Signal, error) {
	if !a.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, OpBit.String(), "invalid signal")
	}
	if i < 0 || i >= a.Bits() {
		return Signal{}, newError(IndexOutOfRange, OpBit.String(), "bit %d of %d bits signal", i, a.Bits())
	}
	return combine(node{op: OpBit, bits: 1, hi: i, lo: i}, a)
}

// Slice returns bits hi down to lo of a, hi-lo+1 wide.
//
func Slice(a Signal, hi, lo int) (Signal, error) {
	if !a.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, OpSlice.String(), "invalid signal")
	}
	if lo < 0 || hi < lo || hi >= a.Bits() {
		return Signal{}, newError(IndexOutOfRange, OpSlice.String(), "range [%d:%d] of %d bits signal", hi, lo, a.Bits())
	}
	return combine(node{op: OpSlice, bits: hi - lo + 1, hi: hi, lo: lo}, a)
}

// Resize truncates or zero-extends a to the given width.
//
func Resize(a Signal, bits int) (Signal, error) {
	return resize(OpResize, a, bits)
}

// SResize truncates or sign-extends a to the given width.
//
func SResize(a Signal, bits int) (Signal, error) {
	return resize(OpSResize, a, bits)
}

func resize(op Op, a Signal, bits int) (Signal, error) {
	if bits <= 0 {
		return Signal{}, newError(InvalidWidth, op.String(), "width %d", bits)
	}
	if !a.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, op.String(), "invalid signal")
	}
	return combine(node{op: op, bits: bits}, a)
}

// SetBits returns a copy of a with bits hi down to lo replaced by v. v is
// resized to hi-lo+1 bits if needed.
//
func SetBits(a Signal, hi, lo int, v Signal) (Signal, error) {
	if !a.Valid() || !v.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, OpSetBits.String(), "invalid signal")
	}
	if lo < 0 || hi < lo || hi >= a.Bits() {
		return Signal{}, newError(IndexOutOfRange, OpSetBits.String(), "range [%d:%d] of %d bits signal", hi, lo, a.Bits())
	}
	if w := hi - lo + 1; v.Bits() != w {
		var err error
		if v, err = Resize(v, w); err != nil {
			return Signal{}, err
		}
	}
	return combine(node{op: OpSetBits, bits: a.Bits(), hi: hi, lo: lo}, a, v)
}

// SetBit returns a copy of a with bit i replaced by v.
//
func SetBit(a Signal, i int, v Signal) (Signal, error) {
	return SetBits(a, i, i, v)
}
