// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

import (
	"strconv"
	"strings"
)

// A Component collects the inputs, outputs and expression graph of a single
// synchronous module.
//
// Nodes live in the component's arena and are referenced by Signal handles;
// signals from different components cannot be mixed. A Component is not safe
// for concurrent use but independent components can be built concurrently.
//
type Component struct {
	nodes   []node
	inputs  []int
	outputs []output
	ports   map[string]struct{}
}

type output struct {
	name string
	s    Signal
}

// Port describes an input or output of a component.
//
type Port struct {
	Name   string
	Bits   int
	Offset int
	// Driver is the name of the wire or input driving an output port. It is
	// only set in elaborated modules.
	Driver string
}

// New returns a new empty component.
//
func New() *Component {
	return &Component{ports: make(map[string]struct{})}
}

func (c *Component) add(n node) Signal {
	c.nodes = append(c.nodes, n)
	return Signal{c, len(c.nodes) - 1}
}

// Len returns the number of nodes in the component's arena.
//
func (c *Component) Len() int { return len(c.nodes) }

// Input declares a new input of the given width.
//
func (c *Component) Input(name string, bits int) (Signal, error) {
	if bits <= 0 {
		return Signal{}, newError(InvalidWidth, "Input", "input %q: width %d", name, bits)
	}
	if err := c.claim("Input", name); err != nil {
		return Signal{}, err
	}
	s := c.add(node{kind: KindInput, bits: bits, name: name})
	c.inputs = append(c.inputs, s.id)
	return s, nil
}

// Const returns a constant of value v, BitsNeeded(v) wide.
//
// Positive constants get no sign bit: Const(1) is 1 bit wide and reads as -1
// in signed operators (SGt, SMul, SShr, ...). Use ConstN with one more bit
// than BitsNeeded(v) for a positive constant operand of a signed operator.
//
func (c *Component) Const(v int64) Signal {
	return c.add(node{kind: KindConstant, bits: BitsNeeded(v), value: v})
}

// ConstN returns a constant of value v with an explicit width. v must fit in
// the given number of bits.
//
func (c *Component) ConstN(bits int, v int64) (Signal, error) {
	if bits <= 0 || BitsNeeded(v) > bits {
		return Signal{}, newError(InvalidWidth, "ConstN", "value %d in %d bits", v, bits)
	}
	return c.add(node{kind: KindConstant, bits: bits, value: v}), nil
}

// Output binds the output port name to s. The port is as wide as s.
//
// Signals built in another component are reported by Elaborate.
//
func (c *Component) Output(name string, s Signal) error {
	if !s.Valid() {
		return newError(UnsupportedOperandShape, "Output", "output %q: invalid signal", name)
	}
	if err := c.claim("Output", name); err != nil {
		return err
	}
	c.outputs = append(c.outputs, output{name, s})
	return nil
}

// Inputs returns the declared inputs in declaration order.
//
func (c *Component) Inputs() []Port {
	ps := make([]Port, len(c.inputs))
	for i, id := range c.inputs {
		n := &c.nodes[id]
		ps[i] = Port{Name: n.name, Bits: n.bits}
	}
	return ps
}

// Outputs returns the declared outputs in declaration order, with the width
// and offset of their bound signal.
//
func (c *Component) Outputs() []Port {
	ps := make([]Port, len(c.outputs))
	for i, o := range c.outputs {
		ps[i] = Port{Name: o.name, Bits: o.s.Bits(), Offset: o.s.Offset()}
	}
	return ps
}

// Latency returns the end-to-end pipeline latency of the component: the
// maximum offset over all outputs.
//
func (c *Component) Latency() int {
	max := 0
	for _, o := range c.outputs {
		if off := o.s.Offset(); off > max {
			max = off
		}
	}
	return max
}

// align delays outputs so that every non-constant output has the same offset.
//
func (c *Component) align() {
	max := c.Latency()
	for i, o := range c.outputs {
		if d := max - o.s.Offset(); d > 0 && !o.s.IsConstant() {
			c.outputs[i].s = c.register(o.s, d)
		}
	}
}

func (c *Component) claim(op, name string) error {
	if err := checkName(op, name); err != nil {
		return err
	}
	if _, ok := c.ports[name]; ok {
		return newError(InvalidName, op, "port %q already declared", name)
	}
	c.ports[name] = struct{}{}
	return nil
}

// reserved identifiers. Generated wires are named s_N and register instances
// dq_s_N.
//
var reserved = map[string]struct{}{
	"clk": {}, "dq": {}, "module": {}, "endmodule": {}, "input": {}, "output": {},
	"inout": {}, "wire": {}, "reg": {}, "assign": {}, "always": {}, "begin": {},
	"end": {}, "if": {}, "else": {}, "for": {}, "integer": {}, "parameter": {},
	"initial": {}, "posedge": {}, "negedge": {}, "signed": {}, "unsigned": {},
	"localparam": {}, "generate": {}, "endgenerate": {}, "case": {}, "endcase": {},
}

func checkName(op, name string) error {
	if !isIdent(name) {
		return newError(InvalidName, op, "%q is not a valid identifier", name)
	}
	if _, ok := reserved[name]; ok {
		return newError(InvalidName, op, "%q is reserved", name)
	}
	if isGenerated(name) {
		return newError(InvalidName, op, "%q clashes with generated names", name)
	}
	return nil
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isGenerated(name string) bool {
	name = strings.TrimPrefix(name, "dq_")
	if !strings.HasPrefix(name, "s_") {
		return false
	}
	_, err := strconv.Atoi(name[2:])
	return err == nil
}
