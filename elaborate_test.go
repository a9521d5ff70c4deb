package pipegen_test

import (
	"strings"
	"testing"

	p "github.com/db47h/pipegen"
	"github.com/google/go-cmp/cmp"
)

// topModule strips the dq module from a generated text.
//
func topModule(t *testing.T, text string) string {
	t.Helper()
	if !strings.HasPrefix(text, "module dq (clk, q, d);\n") {
		t.Fatalf("generated text does not start with the delay line module:\n%s", text)
	}
	i := strings.Index(text, "endmodule\n\n")
	if i < 0 {
		t.Fatalf("unterminated delay line module:\n%s", text)
	}
	return text[i+len("endmodule\n\n"):]
}

func TestVerilog(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 8)
	r := register(t, a, 2)
	if err := c.Output("z", p.Add(r, c.Const(-3))); err != nil {
		t.Fatal(err)
	}
	text, err := c.Generate("offset")
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	want := `module offset(clk, a, z);
  input clk;
  input [7:0] a;
  output [7:0] z;
  wire [7:0] s_0;
  wire [2:0] s_1;
  wire [7:0] s_2;

  dq #(8, 2) dq_s_0 (clk, s_0, a);
  assign s_1 = -3'd3;
  assign s_2 = s_0 + s_1;
  assign z = s_2;
endmodule
`
	if diff := cmp.Diff(want, topModule(t, text)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpressions(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 8)
	b := input(t, c, "b", 4)
	cond, _ := p.Bit(a, 0)
	sel, _ := p.Select(a, b, cond)
	sl, _ := p.Slice(a, 5, 2)
	sb, _ := p.SetBits(a, 4, 2, b)
	rs, _ := p.SResize(b, 8)
	outs := []struct {
		name string
		s    p.Signal
		expr string
	}{
		{"sel", sel, "s_0 ? a : b"},
		{"sl", sl, "a[5:2]"},
		{"sb", sb, "{a[7:5], s_3, a[1:0]}"},
		{"rs", rs, "$signed(b)"},
		{"sh", p.SShr(a, b), "$signed(a) >>> b"},
		{"lt", p.SLt(a, b), "$signed(a) < $signed(b)"},
		{"ix", p.Index(a, b), "b < 8 ? a[b] : 1'b0"},
		{"cc", p.Cat(a, b), "{a, b}"},
		{"nt", p.Not(a), "~a"},
	}
	for _, o := range outs {
		if err := c.Output(o.name, o.s); err != nil {
			t.Fatal(err)
		}
	}
	m, err := c.Elaborate("expr")
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	text := m.Verilog()
	for i, o := range outs {
		drv := m.Outputs[i].Driver
		line := "  assign " + drv + " = " + o.expr + ";\n"
		if !strings.Contains(text, line) {
			t.Errorf("%s: expected %q in\n%s", o.name, line, text)
		}
	}
}

func TestAlignment(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 8)
	deep := register(t, register(t, a, 2), 3)
	k := c.Const(5)
	for _, o := range []struct {
		name string
		s    p.Signal
	}{{"deep", deep}, {"pass", a}, {"five", k}} {
		if err := c.Output(o.name, o.s); err != nil {
			t.Fatal(err)
		}
	}
	m, err := c.Elaborate("align")
	if err != nil {
		t.Fatal(err)
	}
	if m.Latency != 5 {
		t.Fatalf("latency = %d, expected 5", m.Latency)
	}
	want := map[string]int{"deep": 5, "pass": 5, "five": 0}
	for _, o := range m.Outputs {
		if o.Offset != want[o.Name] {
			t.Errorf("output %s at offset %d, expected %d", o.Name, o.Offset, want[o.Name])
		}
	}
	regs := 0
	for _, cl := range m.Cells {
		if cl.Kind == p.KindRegister {
			regs++
		}
	}
	// two in the deep chain, one for pass
	if regs != 3 {
		t.Fatalf("got %d registers, expected 3", regs)
	}
	if m.Outputs[1].Driver == "a" {
		t.Fatal("input output has not been delayed")
	}
}

func TestDirectInput(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 3)
	if err := c.Output("b", a); err != nil {
		t.Fatal(err)
	}
	m, err := c.Elaborate("passthru")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Cells) != 0 || m.Outputs[0].Driver != "a" || m.Latency != 0 {
		t.Fatalf("unexpected module %+v", m)
	}
	if !strings.Contains(m.Verilog(), "  assign b = a;\n") {
		t.Fatal("missing output assignment")
	}
}

func TestSharing(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 8)
	b := input(t, c, "b", 8)
	sum := p.Add(a, b)
	if err := c.Output("x", p.Xor(sum, a)); err != nil {
		t.Fatal(err)
	}
	if err := c.Output("y", p.And(sum, b)); err != nil {
		t.Fatal(err)
	}
	// unreachable nodes are not emitted
	p.Sub(a, b)

	m, err := c.Elaborate("share")
	if err != nil {
		t.Fatal(err)
	}
	count := make(map[p.Op]int)
	seen := make(map[string]bool)
	for _, cl := range m.Cells {
		count[cl.Op]++
		if seen[cl.Name] {
			t.Fatalf("wire %s emitted twice", cl.Name)
		}
		for _, a := range cl.Args {
			if a.Name != "a" && a.Name != "b" && !seen[a.Name] {
				t.Fatalf("wire %s used by %s before being emitted", a.Name, cl.Name)
			}
		}
		seen[cl.Name] = true
	}
	if count[p.OpAdd] != 1 || count[p.OpSub] != 0 || len(m.Cells) != 3 {
		t.Fatalf("unexpected cells: %+v", m.Cells)
	}
}

func buildPipeline(t *testing.T) *p.Component {
	t.Helper()
	c := p.New()
	a := input(t, c, "a", 8)
	b := input(t, c, "b", 8)
	sel, err := p.Select(a, b, p.Gt(p.Reg(a), b))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Output("q", p.Mul(p.Reg(a), b)); err != nil {
		t.Fatal(err)
	}
	if err := c.Output("r", b); err != nil {
		t.Fatal(err)
	}
	if err := c.Output("s", register(t, sel, 2)); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestIdempotence(t *testing.T) {
	first, err := buildPipeline(t).Generate("twice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := buildPipeline(t).Generate("twice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("mismatch between components (-first +second):\n%s", diff)
	}
}

func TestIdempotence_reelaborate(t *testing.T) {
	c := buildPipeline(t)
	first, err := c.Generate("twice")
	if err != nil {
		t.Fatal(err)
	}
	n := c.Len()
	second, err := c.Generate("twice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("mismatch (-first +second):\n%s", diff)
	}
	if c.Len() != n {
		t.Fatalf("second elaboration added %d nodes", c.Len()-n)
	}
}

func TestElaborateErrors(t *testing.T) {
	c := p.New()
	if _, err := c.Elaborate("empty"); !p.IsKind(err, p.NoOutputs) {
		t.Errorf("no outputs: got %v", err)
	}

	input(t, c, "a", 8)
	other := p.New()
	x := input(t, other, "x", 8)
	if err := c.Output("z", x); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Elaborate("cross"); !p.IsKind(err, p.CrossComponentReference) {
		t.Errorf("foreign output: got %v", err)
	}

	c = p.New()
	a := input(t, c, "a", 8)
	if err := c.Output("z", a); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "9a", "z", "a", "dq", "module", "s_3", "dq_s_0", "a-b"} {
		if _, err := c.Elaborate(name); !p.IsKind(err, p.InvalidName) {
			t.Errorf("module name %q: got %v", name, err)
		}
	}
}

func TestPortErrors(t *testing.T) {
	c := p.New()
	a := input(t, c, "a", 8)
	if _, err := c.Input("a", 4); !p.IsKind(err, p.InvalidName) {
		t.Errorf("duplicate input: got %v", err)
	}
	if err := c.Output("a", a); !p.IsKind(err, p.InvalidName) {
		t.Errorf("output named after an input: got %v", err)
	}
	for _, name := range []string{"clk", "s_0", "wire", "1x", "a b"} {
		if _, err := c.Input(name, 1); !p.IsKind(err, p.InvalidName) {
			t.Errorf("input %q: got %v", name, err)
		}
	}
	if _, err := c.Input("w", 0); !p.IsKind(err, p.InvalidWidth) {
		t.Errorf("zero width input: got %v", err)
	}
	if err := c.Output("o", p.Signal{}); !p.IsKind(err, p.UnsupportedOperandShape) {
		t.Errorf("invalid output signal: got %v", err)
	}
}
