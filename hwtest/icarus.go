// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/db47h/pipegen"
	"github.com/pkg/errors"
)

// Icarus is a Harness running modules with the Icarus Verilog compiler and
// runtime.
//
// Run writes the module, a testbench and one stimulus file per input in a
// work directory, compiles them with iverilog and runs the result with vvp.
// The testbench reads one input sample per clock cycle from the stimulus
// files and writes every output value to a file in the stim directory.
//
type Icarus struct {
	// IVerilog and VVP are the paths of the tools. Defaults to "iverilog"
	// and "vvp", looked up in PATH.
	IVerilog string
	VVP      string
	// Dir is the work directory. If empty, a temporary directory is created
	// and removed once Run returns.
	Dir string
	// Debug adds a VCD dump of the testbench to the simulation, written to
	// test.vcd in the work directory.
	Debug bool
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Available returns true if the iverilog and vvp tools can be found.
//
func (ic *Icarus) Available() bool {
	for _, t := range []string{orDefault(ic.IVerilog, "iverilog"), orDefault(ic.VVP, "vvp")} {
		if _, err := exec.LookPath(t); err != nil {
			return false
		}
	}
	return true
}

// Run implements Harness.
//
func (ic *Icarus) Run(ctx context.Context, m *pipegen.Module, s Stimulus) (Response, error) {
	if err := s.check(m); err != nil {
		return nil, err
	}
	dir := ic.Dir
	if dir == "" {
		d, err := os.MkdirTemp("", "pipegen")
		if err != nil {
			return nil, errors.Wrap(err, "create work directory")
		}
		defer os.RemoveAll(d)
		dir = d
	}
	stim := filepath.Join(dir, "stim")
	if err := os.MkdirAll(stim, 0755); err != nil {
		return nil, errors.Wrap(err, "create stimulus directory")
	}

	n := s.Len()
	for _, p := range m.Inputs {
		var b bytes.Buffer
		v := s[p.Name]
		if len(v) == 0 {
			v = []int64{0}
		}
		for _, x := range v {
			fmt.Fprintf(&b, "%d\n", x)
		}
		if err := os.WriteFile(filepath.Join(stim, p.Name), b.Bytes(), 0644); err != nil {
			return nil, errors.Wrap(err, "write stimulus")
		}
	}
	src := filepath.Join(dir, m.Name+".v")
	if err := os.WriteFile(src, []byte(m.Verilog()), 0644); err != nil {
		return nil, errors.Wrap(err, "write module")
	}
	tb := filepath.Join(dir, m.Name+"_tb.v")
	if err := os.WriteFile(tb, []byte(Testbench(m, n, ic.Debug)), 0644); err != nil {
		return nil, errors.Wrap(err, "write testbench")
	}

	if err := ic.run(ctx, dir, orDefault(ic.IVerilog, "iverilog"), "-o", m.Name+"_tb", m.Name+".v", m.Name+"_tb.v"); err != nil {
		return nil, err
	}
	if err := ic.run(ctx, dir, orDefault(ic.VVP, "vvp"), m.Name+"_tb"); err != nil {
		return nil, err
	}

	r := make(Response, len(m.Outputs))
	for _, p := range m.Outputs {
		v, err := readSamples(filepath.Join(stim, p.Name), 1+m.Latency, n)
		if err != nil {
			return nil, errors.Wrapf(err, "output %s", p.Name)
		}
		r[p.Name] = v
	}
	return r, nil
}

func (ic *Icarus) run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s: %s", name, out)
	}
	return nil
}

// readSamples reads n decimal samples from the named file after skipping the
// first skip lines.
//
func readSamples(name string, skip, n int) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := make([]int64, 0, n)
	sc := bufio.NewScanner(f)
	for line := 0; sc.Scan() && len(r) < n; line++ {
		if line < skip {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(sc.Text()), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line+1)
		}
		r = append(r, int64(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(r) < n {
		return nil, errors.Errorf("got %d samples, expected %d", len(r), n)
	}
	return r, nil
}

// Testbench returns the Verilog testbench used by Icarus for a stimulus of n
// samples. The testbench module is named after m with a _tb suffix and
// expects to run in a directory containing the stim subdirectory.
//
// The simulation stops after n+Latency+1 clock cycles. The first line of every
// output file is the value displayed on the first clock edge, before any input
// sample has been read.
//
func Testbench(m *pipegen.Module, n int, debug bool) string {
	var b strings.Builder
	ports := make([]string, 0, len(m.Inputs)+len(m.Outputs))
	for _, p := range m.Inputs {
		ports = append(ports, p.Name)
	}
	for _, p := range m.Outputs {
		ports = append(ports, p.Name)
	}

	fmt.Fprintf(&b, "module %s_tb;\n", m.Name)
	b.WriteString("  reg clk;\n")
	for _, p := range m.Inputs {
		fmt.Fprintf(&b, "  reg [%d:0] %s;\n", p.Bits-1, p.Name)
	}
	for _, p := range m.Outputs {
		fmt.Fprintf(&b, "  wire [%d:0] %s;\n", p.Bits-1, p.Name)
	}
	for _, name := range ports {
		fmt.Fprintf(&b, "  integer %s_file;\n", name)
	}
	for _, name := range ports {
		fmt.Fprintf(&b, "  integer %s_count;\n", name)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s1 (%s);\n", m.Name, m.Name, strings.Join(append([]string{"clk"}, ports...), ", "))
	b.WriteString("  initial\n  begin\n")
	if debug {
		fmt.Fprintf(&b, "    $dumpfile(\"test.vcd\");\n    $dumpvars(0,%s_tb);\n", m.Name)
	}
	for _, p := range m.Outputs {
		fmt.Fprintf(&b, "    %s_file = $fopen(\"stim/%s\", \"w\");\n", p.Name, p.Name)
	}
	for _, p := range m.Inputs {
		fmt.Fprintf(&b, "    %s_file = $fopen(\"stim/%s\", \"r\");\n", p.Name, p.Name)
	}
	b.WriteString("  end\n\n")
	fmt.Fprintf(&b, "  initial\n  begin\n    #%d $finish;\n  end\n\n", 10*(n+m.Latency+1))
	b.WriteString("  initial\n  begin\n    clk <= 1'b0;\n    while (1) begin\n      #5 clk <= ~clk;\n    end\n  end\n\n")
	b.WriteString("  always @ (posedge clk)\n  begin\n")
	for _, p := range m.Outputs {
		fmt.Fprintf(&b, "    $fdisplay(%s_file, \"%%d\", %s);\n", p.Name, p.Name)
	}
	for _, p := range m.Inputs {
		fmt.Fprintf(&b, "    #0 %s_count = $fscanf(%s_file, \"%%d\\n\", %s);\n", p.Name, p.Name, p.Name)
	}
	b.WriteString("  end\n")
	b.WriteString("endmodule\n")
	return b.String()
}
