// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

import "strconv"

// A Module is an elaborated component: output latencies are aligned and every
// node reachable from an output is named and listed exactly once.
//
type Module struct {
	Name    string
	Inputs  []Port
	Outputs []Port
	// Latency is the number of clock cycles between an input sample and the
	// matching output sample.
	Latency int
	// Cells lists the emitted nodes, sources before the cells using them.
	Cells []Cell
}

// Arg is a cell operand.
//
type Arg struct {
	Name string // wire or input port name
	Bits int
}

// A Cell is an emitted node: a wire of the given width driven by a
// constant, register or combinational operator.
//
type Cell struct {
	ID     int // node index in the component
	Name   string
	Kind   Kind
	Op     Op
	Bits   int
	Offset int
	Args   []Arg
	Value  int64 // constants
	Delay  int   // registers
	Hi, Lo int   // bit select, slice, set bits
}

// Elaborate aligns the outputs of c and returns the module netlist named name.
//
// Outputs arriving before the latest one are delayed by registers, except
// constant outputs. This rebinds the outputs of c, a second call to
// Elaborate returns the same netlist.
//
func (c *Component) Elaborate(name string) (*Module, error) {
	if err := checkName("Elaborate", name); err != nil {
		return nil, err
	}
	if _, ok := c.ports[name]; ok {
		return nil, newError(InvalidName, "Elaborate", "module name %q is also a port name", name)
	}
	if len(c.outputs) == 0 {
		return nil, newError(NoOutputs, "Elaborate", "module %q", name)
	}
	for _, o := range c.outputs {
		if o.s.c != c {
			return nil, newError(CrossComponentReference, "Elaborate", "output %q is bound to a signal of another component", o.name)
		}
	}

	c.align()

	// mark nodes reachable from outputs. Traversal state is kept here, nodes
	// are left untouched.
	seen := make([]bool, len(c.nodes))
	stack := make([]int, 0, len(c.outputs))
	for _, o := range c.outputs {
		stack = append(stack, o.s.id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, c.nodes[id].srcs...)
	}

	m := &Module{
		Name:    name,
		Inputs:  c.Inputs(),
		Latency: c.Latency(),
	}
	names := make([]string, len(c.nodes))
	for _, id := range c.inputs {
		names[id] = c.nodes[id].name
	}
	// sources always precede their users in the arena, emitting in index
	// order yields dependency order.
	for id, ok := range seen {
		n := &c.nodes[id]
		if !ok || n.kind == KindInput {
			continue
		}
		names[id] = "s_" + strconv.Itoa(len(m.Cells))
		cl := Cell{
			ID:     id,
			Name:   names[id],
			Kind:   n.kind,
			Op:     n.op,
			Bits:   n.bits,
			Offset: n.offset,
			Value:  n.value,
			Delay:  n.delay,
			Hi:     n.hi,
			Lo:     n.lo,
		}
		if len(n.srcs) > 0 {
			cl.Args = make([]Arg, len(n.srcs))
			for i, src := range n.srcs {
				cl.Args[i] = Arg{Name: names[src], Bits: c.nodes[src].bits}
			}
		}
		m.Cells = append(m.Cells, cl)
	}
	m.Outputs = make([]Port, len(c.outputs))
	for i, o := range c.outputs {
		n := o.s.n()
		m.Outputs[i] = Port{Name: o.name, Bits: n.bits, Offset: n.offset, Driver: names[o.s.id]}
	}
	return m, nil
}

// Generate elaborates c and returns the Verilog text of the resulting module.
//
func (c *Component) Generate(name string) (string, error) {
	m, err := c.Elaborate(name)
	if err != nil {
		return "", err
	}
	return m.Verilog(), nil
}
