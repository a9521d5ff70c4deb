// Command pipegen generates pipelined arithmetic circuits as Verilog modules.
//
// Usage:
//
//	pipegen [flags]
//
// The generated module is written to stdout or to the file given with -o. With
// -stim, the module is also run with the given stimulus and the output samples
// are printed:
//
//	pipegen -circuit div -bits 8 -stim "a=7,9,100; b=2,4,7"
//
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/db47h/pipegen"
	"github.com/db47h/pipegen/hwlib"
	"github.com/db47h/pipegen/hwtest"
	"github.com/db47h/pipegen/internal/stim"
	"github.com/pkg/errors"
)

var circuits = map[string]func(c *pipegen.Component, bits int) error{
	"div": func(c *pipegen.Component, bits int) error {
		return divider(c, bits, hwlib.Divide)
	},
	"sdiv": func(c *pipegen.Component, bits int) error {
		return divider(c, bits, hwlib.SignedDivide)
	},
	"sqrt": func(c *pipegen.Component, bits int) error {
		return root(c, bits, hwlib.Sqrt)
	},
	"sqrtr": func(c *pipegen.Component, bits int) error {
		return root(c, bits, hwlib.SqrtRounded)
	},
}

func divider(c *pipegen.Component, bits int, div func(a, b pipegen.Signal) (pipegen.Signal, pipegen.Signal, error)) error {
	a, err := c.Input("a", bits)
	if err != nil {
		return err
	}
	b, err := c.Input("b", bits)
	if err != nil {
		return err
	}
	q, r, err := div(a, b)
	if err != nil {
		return err
	}
	if err = c.Output("quotient", q); err != nil {
		return err
	}
	return c.Output("remainder", r)
}

func root(c *pipegen.Component, bits int, sqrt func(x pipegen.Signal) (pipegen.Signal, error)) error {
	x, err := c.Input("x", bits)
	if err != nil {
		return err
	}
	// register the result to give the root its own pipeline stage.
	r, err := sqrt(pipegen.Reg(x))
	if err != nil {
		return err
	}
	return c.Output("root", pipegen.Reg(r))
}

func main() {
	var (
		circuit = flag.String("circuit", "div", "circuit to generate: div, sdiv, sqrt or sqrtr")
		bits    = flag.Int("bits", 8, "input width in bits")
		name    = flag.String("name", "", "module name (defaults to the circuit name)")
		out     = flag.String("o", "", "output file (defaults to stdout)")
		samples = flag.String("stim", "", "run the module with the given stimulus, e.g. \"a=7,9; b=2,4\"")
		harness = flag.String("harness", "sim", "harness used with -stim: sim or icarus")
		verbose = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("pipegen: ")

	build, ok := circuits[*circuit]
	if !ok {
		log.Fatalf("unknown circuit %q", *circuit)
	}
	if *name == "" {
		*name = *circuit
	}

	c := pipegen.New()
	if err := build(c, *bits); err != nil {
		log.Fatal(err)
	}
	m, err := c.Elaborate(*name)
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		log.Printf("module %s: %d nodes, %d cells, latency %d", m.Name, c.Len(), len(m.Cells), m.Latency)
	}

	if err = write(m, *out); err != nil {
		log.Fatal(err)
	}

	if *samples == "" {
		return
	}
	s, err := stim.Parse(*samples)
	if err != nil {
		log.Fatal(err)
	}
	var h hwtest.Harness
	switch *harness {
	case "sim":
		h = hwtest.Simulator{}
	case "icarus":
		h = &hwtest.Icarus{}
	default:
		log.Fatalf("unknown harness %q", *harness)
	}
	r, err := h.Run(context.Background(), m, s)
	if err != nil {
		log.Fatal(err)
	}
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(os.Stderr, "%s: %v\n", k, r[k])
	}
}

// write writes the Verilog text of m to the named file, or to stdout if name
// is empty.
//
func write(m *pipegen.Module, name string) error {
	if name == "" {
		_, err := m.WriteTo(os.Stdout)
		return errors.Wrap(err, "write module")
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err = m.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write module to %s", name)
	}
	return errors.Wrapf(f.Close(), "close %s", name)
}
