package hwtest_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	hw "github.com/db47h/pipegen"
	"github.com/db47h/pipegen/hwlib"
	"github.com/db47h/pipegen/hwtest"
	"github.com/google/go-cmp/cmp"
)

func TestIcarus(t *testing.T) {
	ic := &hwtest.Icarus{Dir: t.TempDir()}
	if !ic.Available() {
		t.Skip("iverilog or vvp not found")
	}

	c := hw.New()
	in := inputs(t, c, 8, "a", "b")
	q, r, err := hwlib.SignedDivide(in[0], in[1])
	output(t, c, "quotient", q, err)
	output(t, c, "remainder", r, nil)
	sum := hw.Add(hw.Reg(in[0]), in[1])
	output(t, c, "sum", sum, nil)
	output(t, c, "k", c.Const(-3), nil)
	// out of range indices read as 0 in both harnesses
	output(t, c, "bit", hw.Index(in[0], in[1]), nil)

	m, err := c.Elaborate("sdiv")
	if err != nil {
		t.Fatal(err)
	}
	s := hwtest.RandomStimulus(rand.New(rand.NewSource(time.Now().UnixNano())), c, 64)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	want, err := hwtest.Simulator{}.Run(ctx, m, s)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ic.Run(ctx, m, s)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-sim +icarus):\n%s", diff)
	}
}

func TestIcarus_unknownInput(t *testing.T) {
	c := hw.New()
	in := inputs(t, c, 8, "a")
	output(t, c, "z", in[0], nil)
	m, err := c.Elaborate("uut")
	if err != nil {
		t.Fatal(err)
	}
	ic := &hwtest.Icarus{Dir: t.TempDir()}
	if _, err = ic.Run(context.Background(), m, hwtest.Stimulus{"x": {1}}); err == nil {
		t.Fatal("expected error for unknown input")
	}
}
