// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"

	"github.com/db47h/pipegen"
	"github.com/pkg/errors"
)

// Simulator is an in-process Harness. It evaluates the cells of a module with
// the semantics of the generated Verilog: every wire is truncated to its width,
// operands are zero-extended unless the operator is signed, delay lines reset
// to 0.
//
// Wires are limited to 64 bits.
//
type Simulator struct{}

type simCell struct {
	*pipegen.Cell
	args []int    // indices in the values slice
	line []uint64 // delay line of registers
}

// Run implements Harness.
//
func (Simulator) Run(ctx context.Context, m *pipegen.Module, s Stimulus) (Response, error) {
	if err := s.check(m); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(m.Inputs)+len(m.Cells))
	for i, p := range m.Inputs {
		if p.Bits > 64 {
			return nil, errors.Errorf("input %s: %d bits wide", p.Name, p.Bits)
		}
		idx[p.Name] = i
	}
	cells := make([]simCell, len(m.Cells))
	base := len(m.Inputs)
	for i := range m.Cells {
		cl := &m.Cells[i]
		if cl.Bits > 64 {
			return nil, errors.Errorf("wire %s: %d bits wide", cl.Name, cl.Bits)
		}
		sc := simCell{Cell: cl, args: make([]int, len(cl.Args))}
		for j, a := range cl.Args {
			n, ok := idx[a.Name]
			if !ok {
				return nil, errors.Errorf("wire %s: unknown operand %s", cl.Name, a.Name)
			}
			sc.args[j] = n
		}
		if cl.Kind == pipegen.KindRegister {
			sc.line = make([]uint64, cl.Delay)
		}
		idx[cl.Name] = base + i
		cells[i] = sc
	}
	outs := make([]int, len(m.Outputs))
	for i, p := range m.Outputs {
		n, ok := idx[p.Driver]
		if !ok {
			return nil, errors.Errorf("output %s: unknown driver %s", p.Name, p.Driver)
		}
		outs[i] = n
	}

	n := s.Len()
	r := make(Response, len(m.Outputs))
	for _, p := range m.Outputs {
		r[p.Name] = make([]int64, 0, n)
	}
	vals := make([]uint64, base+len(cells))
	for t := 0; t < n+m.Latency; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, p := range m.Inputs {
			vals[i] = uint64(s.sample(p.Name, t)) & mask(p.Bits)
		}
		for i := range cells {
			vals[base+i] = cells[i].eval(vals)
		}
		if t >= m.Latency {
			for i, p := range m.Outputs {
				r[p.Name] = append(r[p.Name], int64(vals[outs[i]]))
			}
		}
		// clock edge
		for i := range cells {
			if l := cells[i].line; l != nil {
				copy(l[1:], l[:len(l)-1])
				l[0] = vals[cells[i].args[0]]
			}
		}
	}
	return r, nil
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

// sext sign-extends the bits wide value v.
//
func sext(v uint64, bits int) int64 {
	if bits >= 64 {
		return int64(v)
	}
	shift := uint(64 - bits)
	return int64(v<<shift) >> shift
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func shl(v, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return v << n
}

func (sc *simCell) eval(vals []uint64) uint64 {
	m := mask(sc.Bits)
	switch sc.Kind {
	case pipegen.KindConstant:
		return uint64(sc.Value) & m
	case pipegen.KindRegister:
		return sc.line[len(sc.line)-1]
	}

	var a, b uint64
	var wa, wb int
	a, wa = vals[sc.args[0]], sc.Args[0].Bits
	if len(sc.args) > 1 {
		b, wb = vals[sc.args[1]], sc.Args[1].Bits
	}
	switch sc.Op {
	case pipegen.OpAdd:
		return (a + b) & m
	case pipegen.OpSub:
		return (a - b) & m
	case pipegen.OpMul:
		return (a * b) & m
	case pipegen.OpShl:
		return shl(a, b) & m
	case pipegen.OpShr:
		if b >= 64 {
			return 0
		}
		return a >> b
	case pipegen.OpAnd:
		return a & b
	case pipegen.OpOr:
		return a | b
	case pipegen.OpXor:
		return a ^ b
	case pipegen.OpNot:
		return ^a & m
	case pipegen.OpNeg:
		return -a & m
	case pipegen.OpGt:
		return b2u(a > b)
	case pipegen.OpGe:
		return b2u(a >= b)
	case pipegen.OpLt:
		return b2u(a < b)
	case pipegen.OpLe:
		return b2u(a <= b)
	case pipegen.OpEq:
		return b2u(a == b)
	case pipegen.OpNe:
		return b2u(a != b)
	case pipegen.OpSMul:
		return uint64(sext(a, wa)*sext(b, wb)) & m
	case pipegen.OpSShl:
		return shl(uint64(sext(a, wa)), b) & m
	case pipegen.OpSShr:
		if b > 63 {
			b = 63
		}
		return uint64(sext(a, wa)>>b) & m
	case pipegen.OpSGt:
		return b2u(sext(a, wa) > sext(b, wb))
	case pipegen.OpSGe:
		return b2u(sext(a, wa) >= sext(b, wb))
	case pipegen.OpSLt:
		return b2u(sext(a, wa) < sext(b, wb))
	case pipegen.OpSLe:
		return b2u(sext(a, wa) <= sext(b, wb))
	case pipegen.OpSelect:
		if vals[sc.args[2]] != 0 {
			return a
		}
		return b
	case pipegen.OpIndex:
		if b >= uint64(wa) {
			return 0
		}
		return a >> b & 1
	case pipegen.OpBit, pipegen.OpSlice:
		return a >> uint(sc.Lo) & m
	case pipegen.OpCat:
		return (shl(a, uint64(wb)) | b) & m
	case pipegen.OpResize:
		return a & m
	case pipegen.OpSResize:
		return uint64(sext(a, wa)) & m
	case pipegen.OpSetBits:
		field := mask(sc.Hi-sc.Lo+1) << uint(sc.Lo)
		return a&^field | b<<uint(sc.Lo)&field
	}
	panic("hwtest: unsupported operator " + sc.Op.String())
}
