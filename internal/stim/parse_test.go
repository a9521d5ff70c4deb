package stim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	data := []struct {
		in  string
		out map[string][]int64
		err bool
	}{
		{"", map[string][]int64{}, false},
		{"a=7,9,100; b=2,4,7", map[string][]int64{"a": {7, 9, 100}, "b": {2, 4, 7}}, false},
		{" x = 0..3 , -1 ;", map[string][]int64{"x": {0, 1, 2, 3, -1}}, false},
		{"a=-2..1", map[string][]int64{"a": {-2, -1, 0, 1}}, false},
		{"a=1;a=2", nil, true},
		{"a 1", nil, true},
		{"a=", nil, true},
		{"a=3..1", nil, true},
		{"a=1 2", nil, true},
		{"1=2", nil, true},
		{"a=x", nil, true},
		{"a=0..1048576", nil, true},
		{"a=-9223372036854775808..9223372036854775807", nil, true},
		{"a=99999999999999999999", nil, true},
		{"a=1-", nil, true},
		{"a=.", nil, true},
		{"_b1=1..1", map[string][]int64{"_b1": {1}}, false},
	}
	for _, d := range data {
		t.Run(d.in, func(t *testing.T) {
			out, err := Parse(d.in)
			if d.err {
				if err == nil {
					t.Fatalf("expected error, got %v", out)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.out, out); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_position(t *testing.T) {
	_, err := Parse("a=1; b=x")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := `in "a=1; b=x" at pos 8: expected integer value, got "x"`; err.Error() != want {
		t.Fatalf("got %q, expected %q", err, want)
	}
}
