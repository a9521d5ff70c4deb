// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipegen

import (
	"fmt"
	"io"
	"strings"
)

// delayLine is the clocked shift register instantiated by every register.
//
const delayLine = `module dq (clk, q, d);
  input  clk;
  input  [width-1:0] d;
  output [width-1:0] q;
  parameter width=8;
  parameter depth=2;
  integer i;
  reg [width-1:0] delay_line [depth-1:0];
  always @(posedge clk) begin
    delay_line[0] <= d;
    for(i=1; i<depth; i=i+1) begin
      delay_line[i] <= delay_line[i-1];
    end
  end
  assign q = delay_line[depth-1];
endmodule

`

var templates = [...]string{
	OpAdd:     "%s + %s",
	OpSub:     "%s - %s",
	OpMul:     "%s * %s",
	OpShl:     "%s << %s",
	OpShr:     "%s >> %s",
	OpAnd:     "%s & %s",
	OpOr:      "%s | %s",
	OpXor:     "%s ^ %s",
	OpNot:     "~%s",
	OpNeg:     "-%s",
	OpGt:      "%s > %s",
	OpGe:      "%s >= %s",
	OpLt:      "%s < %s",
	OpLe:      "%s <= %s",
	OpEq:      "%s == %s",
	OpNe:      "%s != %s",
	OpSMul:    "$signed(%s) * $signed(%s)",
	OpSShl:    "$signed(%s) <<< %s",
	OpSShr:    "$signed(%s) >>> %s",
	OpSGt:     "$signed(%s) > $signed(%s)",
	OpSGe:     "$signed(%s) >= $signed(%s)",
	OpSLt:     "$signed(%s) < $signed(%s)",
	OpSLe:     "$signed(%s) <= $signed(%s)",
	OpSelect:  "%[3]s ? %[1]s : %[2]s",
	OpCat:     "{%s, %s}",
	OpResize:  "%s",
	OpSResize: "$signed(%s)",
}

// Verilog returns the Verilog text of m: the dq delay line module followed by
// the top module.
//
func (m *Module) Verilog() string {
	var b strings.Builder
	m.WriteTo(&b)
	return b.String()
}

type errWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (w *errWriter) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	n, err := fmt.Fprintf(w.w, format, args...)
	w.n += int64(n)
	w.err = err
}

// WriteTo writes the Verilog text of m to w.
//
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	ew := &errWriter{w: w}
	ew.printf("%s", delayLine)

	names := make([]string, 0, 1+len(m.Inputs)+len(m.Outputs))
	names = append(names, "clk")
	for _, p := range m.Inputs {
		names = append(names, p.Name)
	}
	for _, p := range m.Outputs {
		names = append(names, p.Name)
	}
	ew.printf("module %s(%s);\n", m.Name, strings.Join(names, ", "))
	ew.printf("  input clk;\n")
	for _, p := range m.Inputs {
		ew.printf("  input [%d:0] %s;\n", p.Bits-1, p.Name)
	}
	for _, p := range m.Outputs {
		ew.printf("  output [%d:0] %s;\n", p.Bits-1, p.Name)
	}
	for i := range m.Cells {
		ew.printf("  wire [%d:0] %s;\n", m.Cells[i].Bits-1, m.Cells[i].Name)
	}
	ew.printf("\n")
	for i := range m.Cells {
		cl := &m.Cells[i]
		if cl.Kind == KindRegister {
			ew.printf("  dq #(%d, %d) dq_%s (clk, %s, %s);\n", cl.Bits, cl.Delay, cl.Name, cl.Name, cl.Args[0].Name)
			continue
		}
		ew.printf("  assign %s = %s;\n", cl.Name, cl.expr())
	}
	for _, p := range m.Outputs {
		ew.printf("  assign %s = %s;\n", p.Name, p.Driver)
	}
	ew.printf("endmodule\n")
	return ew.n, ew.err
}

// expr returns the right hand side of a constant or combinational cell.
//
func (cl *Cell) expr() string {
	if cl.Kind == KindConstant {
		if cl.Value >= 0 {
			return fmt.Sprintf("%d'd%d", cl.Bits, cl.Value)
		}
		// the magnitude of math.MinInt64 does not fit in an int64
		return fmt.Sprintf("-%d'd%d", cl.Bits, uint64(^cl.Value)+1)
	}
	a := cl.Args
	switch cl.Op {
	case OpBit:
		return fmt.Sprintf("%s[%d]", a[0].Name, cl.Lo)
	case OpSlice:
		return fmt.Sprintf("%s[%d:%d]", a[0].Name, cl.Hi, cl.Lo)
	case OpIndex:
		return fmt.Sprintf("%s < %d ? %s[%s] : 1'b0", a[1].Name, a[0].Bits, a[0].Name, a[1].Name)
	case OpSetBits:
		parts := make([]string, 0, 3)
		if cl.Hi < cl.Bits-1 {
			parts = append(parts, fmt.Sprintf("%s[%d:%d]", a[0].Name, cl.Bits-1, cl.Hi+1))
		}
		parts = append(parts, a[1].Name)
		if cl.Lo > 0 {
			parts = append(parts, fmt.Sprintf("%s[%d:0]", a[0].Name, cl.Lo-1))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	args := make([]interface{}, len(a))
	for i := range a {
		args[i] = a[i].Name
	}
	return fmt.Sprintf(templates[cl.Op], args...)
}
