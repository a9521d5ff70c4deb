// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

import "math/bits"

// Kind is the variant of a signal node.
//
type Kind uint8

// Node kinds.
//
const (
	KindInput Kind = iota
	KindConstant
	KindRegister
	KindCombinational
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindConstant:
		return "constant"
	case KindRegister:
		return "register"
	case KindCombinational:
		return "combinational"
	}
	return "unknown"
}

// node is an entry in a component's arena. Sources always have a lower index
// than the nodes that use them.
//
type node struct {
	kind   Kind
	op     Op
	bits   int
	offset int
	srcs   []int
	name   string // input name
	value  int64  // constant value
	delay  int    // register delay
	hi, lo int    // bit select, slice and set bits
}

// A Signal is a handle to a node in a component's expression graph. Signals
// are immutable values: operators return new signals and never modify their
// operands. Two signals refer to the same node iff they are equal.
//
// The zero Signal is invalid.
//
type Signal struct {
	c  *Component
	id int
}

func (s Signal) n() *node {
	if s.c == nil {
		panic(newError(UnsupportedOperandShape, "Signal", "use of invalid signal"))
	}
	return &s.c.nodes[s.id]
}

// Valid returns true if s refers to a node.
//
func (s Signal) Valid() bool { return s.c != nil }

// Component returns the component owning s.
//
func (s Signal) Component() *Component { return s.c }

// ID returns the index of s in its component's arena.
//
func (s Signal) ID() int { return s.id }

// Bits returns the width of s.
//
func (s Signal) Bits() int { return s.n().bits }

// Offset returns the latency of s in clock cycles relative to the component's
// inputs.
//
func (s Signal) Offset() int { return s.n().offset }

// Kind returns the node variant of s.
//
func (s Signal) Kind() Kind { return s.n().kind }

// Op returns the operator of a combinational signal, OpNone otherwise.
//
func (s Signal) Op() Op { return s.n().op }

// IsConstant returns true for constant signals. Constants have an offset of 0
// and are never delayed.
//
func (s Signal) IsConstant() bool { return s.n().kind == KindConstant }

// Value returns the value of a constant signal.
//
func (s Signal) Value() (int64, bool) {
	n := s.n()
	return n.value, n.kind == KindConstant
}

// Delay returns the delay of a register, 0 for other signals.
//
func (s Signal) Delay() int { return s.n().delay }

// Sources returns the operands of s, after delay-balancing.
//
func (s Signal) Sources() []Signal {
	srcs := s.n().srcs
	r := make([]Signal, len(srcs))
	for i, id := range srcs {
		r[i] = Signal{s.c, id}
	}
	return r
}

// BitsNeeded returns the minimum width needed to represent x: the smallest n
// such that 2^n-1 >= x for x > 0, or 2^(n-1) >= -x for x < 0. BitsNeeded(0)
// is 1.
//
func BitsNeeded(x int64) int {
	switch {
	case x > 0:
		return bits.Len64(uint64(x))
	case x < 0:
		// ^x == -x-1
		return 1 + bits.Len64(uint64(^x))
	}
	return 1
}

// Register returns a signal delaying s by delay clock cycles.
//
func Register(s Signal, delay int) (Signal, error) {
	if !s.Valid() {
		return Signal{}, newError(UnsupportedOperandShape, "Register", "invalid signal")
	}
	if delay < 1 {
		return Signal{}, newError(InvalidDelay, "Register", "delay %d on %d bits signal at offset %d", delay, s.Bits(), s.Offset())
	}
	return s.c.register(s, delay), nil
}

// Reg returns s delayed by one clock cycle.
//
func Reg(s Signal) Signal {
	r, err := Register(s, 1)
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Component) register(s Signal, delay int) Signal {
	n := s.n()
	return c.add(node{
		kind:   KindRegister,
		bits:   n.bits,
		offset: n.offset + delay,
		srcs:   []int{s.id},
		delay:  delay,
	})
}
