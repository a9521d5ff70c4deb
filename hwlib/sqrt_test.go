package hwlib_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/db47h/pipegen/hwtest"

	hw "github.com/db47h/pipegen"
	hl "github.com/db47h/pipegen/hwlib"
)

func isqrt(x int64) int64 {
	var r int64
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}

func newRoot(t *testing.T, sqrt func(hw.Signal) (hw.Signal, error), bits int) *hw.Component {
	t.Helper()
	c := hw.New()
	x, err := c.Input("x", bits)
	if err != nil {
		t.Fatal(err)
	}
	r, err := sqrt(x)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err = c.Output("out", r); err != nil {
		t.Fatal(err)
	}
	return c
}

func runRoot(t *testing.T, c *hw.Component, in []int64) []int64 {
	t.Helper()
	r, err := hwtest.Run(context.Background(), hwtest.Simulator{}, c, "root", hwtest.Stimulus{"x": in})
	if err != nil {
		t.Fatal(err)
	}
	return r["out"]
}

func TestSqrt(t *testing.T) {
	in := []int64{0, 1, 2, 3, 4, 15, 16}
	want := []int64{0, 1, 1, 1, 2, 3, 4}

	c := newRoot(t, hl.Sqrt, 8)
	if l := c.Latency(); l != 0 {
		t.Fatalf("latency = %d, expected 0", l)
	}
	if w := c.Outputs()[0].Bits; w != 4 {
		t.Fatalf("root is %d bits wide, expected 4", w)
	}
	got := runRoot(t, c, in)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sqrt(%v) = %v, expected %v", in, got, want)
		}
	}

	for _, bits := range []int{1, 2, 7, 12} {
		c := newRoot(t, hl.Sqrt, bits)
		if w := c.Outputs()[0].Bits; w != (bits+1)/2 {
			t.Errorf("%d bits input: root is %d bits wide", bits, w)
		}
		hwtest.Verify(t, c, nil, func(in hwtest.Sample) hwtest.Sample {
			return hwtest.Sample{"out": isqrt(in["x"])}
		})
	}
}

func TestSqrtRounded(t *testing.T) {
	in := []int64{0, 1, 2, 3, 4, 15, 16}
	want := []int64{0, 1, 1, 2, 2, 4, 4}

	c := newRoot(t, hl.SqrtRounded, 8)
	if w := c.Outputs()[0].Bits; w != 5 {
		t.Fatalf("root is %d bits wide, expected 5", w)
	}
	got := runRoot(t, c, in)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sqrt(%v) = %v, expected %v", in, got, want)
		}
	}

	for _, bits := range []int{1, 3, 8, 11} {
		c := newRoot(t, hl.SqrtRounded, bits)
		hwtest.Verify(t, c, nil, func(in hwtest.Sample) hwtest.Sample {
			return hwtest.Sample{"out": (isqrt(4*in["x"]) + 1) / 2}
		})
	}
}

func TestSqrt_pipelined(t *testing.T) {
	c := hw.New()
	x, _ := c.Input("x", 10)
	r, err := hl.Sqrt(hw.Reg(x))
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Output("out", hw.Reg(r)); err != nil {
		t.Fatal(err)
	}
	if l := c.Latency(); l != 2 {
		t.Fatalf("latency = %d, expected 2", l)
	}
	hwtest.Verify(t, c, nil, func(in hwtest.Sample) hwtest.Sample {
		return hwtest.Sample{"out": isqrt(in["x"])}
	})
}

func TestSqrt_constant(t *testing.T) {
	c := hw.New()
	if _, err := c.Input("x", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := hl.Sqrt(c.Const(-4)); !hw.IsKind(err, hw.UnsupportedOperandShape) {
		t.Errorf("negative constant: got %v", err)
	}
	r, err := hl.Sqrt(c.Const(49))
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Output("out", r); err != nil {
		t.Fatal(err)
	}
	got := runRoot(t, c, []int64{0})
	if got[0] != 7 {
		t.Fatalf("sqrt(49) = %d", got[0])
	}
	if _, err := hl.SqrtRounded(hw.Signal{}); !hw.IsKind(err, hw.UnsupportedOperandShape) {
		t.Errorf("invalid signal: got %v", err)
	}
}

// Square roots of inputs wider than 64 bits need powers of two that do not fit
// in an int64 constant.
func TestSqrt_wide(t *testing.T) {
	c := newRoot(t, hl.Sqrt, 66)
	m, err := c.Elaborate("root")
	if err != nil {
		t.Fatal(err)
	}
	cells := make(map[string]*hw.Cell, len(m.Cells))
	for i := range m.Cells {
		cells[m.Cells[i].Name] = &m.Cells[i]
	}
	shifts := make(map[int64]bool)
	for _, cl := range m.Cells {
		for _, a := range cl.Args {
			k, ok := cells[a.Name]
			if !ok || k.Kind != hw.KindConstant {
				continue
			}
			switch cl.Op {
			case hw.OpOr:
				if k.Value <= 0 {
					t.Errorf("%s: or with constant %d", cl.Name, k.Value)
				}
			case hw.OpShl:
				shifts[k.Value] = true
			}
		}
	}
	// 2^64, the square term of bit 32, is built with a shift.
	if !shifts[64] {
		t.Error("no shift by 64")
	}
	if w := c.Outputs()[0].Bits; w != 33 {
		t.Fatalf("root is %d bits wide, expected 33", w)
	}

	c = newRoot(t, hl.Sqrt, 63)
	hwtest.Verify(t, c, nil, func(in hwtest.Sample) hwtest.Sample {
		return hwtest.Sample{"out": new(big.Int).Sqrt(big.NewInt(in["x"])).Int64()}
	})
}
