/*
Package pipegen builds pipelined synchronous logic from expression graphs and
renders it as a Verilog module.

Circuits are described with plain Go code: inputs and constants are declared on
a Component, then combined with operator functions (Add, Shl, Select, Bit, ...)
that return new Signal handles. Every signal carries a width and an offset, the
number of clock cycles after the primary inputs at which its value is valid.

Operators keep the graph consistent by themselves: when the operands of an
operator arrive on different cycles, the early ones are delayed through
registers so that all of them are valid on the same cycle. Registers inserted
with Register or Reg break long combinational paths without changing the
meaning of an expression.

	c := pipegen.New()
	a, _ := c.Input("a", 8)
	b, _ := c.Input("b", 8)
	sum := pipegen.Add(pipegen.Reg(a), b) // b is delayed by one cycle
	c.Output("sum", sum)
	text, err := c.Generate("adder")

The hwlib package builds bit-serial arithmetic (division, square roots) on top
of these primitives and hwtest runs generated modules against sample data.
*/
package pipegen
