// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/db47h/pipegen"
)

// RandomStimulus returns n random samples for every input of c, each sample
// fitting the input's width.
//
func RandomStimulus(rnd *rand.Rand, c *pipegen.Component, n int) Stimulus {
	s := make(Stimulus)
	for _, p := range c.Inputs() {
		v := make([]int64, n)
		for i := range v {
			v[i] = int64(rnd.Uint64() & mask(p.Bits))
		}
		s[p.Name] = v
	}
	return s
}

// Sample is a set of named values for one clock cycle.
//
type Sample map[string]int64

func (s Sample) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", k, s[k])
	}
	return b.String()
}

// Verify runs c through the in-process Simulator and compares every output
// sample to the values returned by ref for the matching input samples.
// Outputs missing from the map returned by ref are not checked.
//
// If s is nil, 1<<12 random samples are generated.
//
func Verify(t *testing.T, c *pipegen.Component, s Stimulus, ref func(in Sample) Sample) {
	t.Helper()

	if s == nil {
		s = RandomStimulus(rand.New(rand.NewSource(time.Now().UnixNano())), c, 1<<12)
	}
	start := time.Now()
	r, err := Run(context.Background(), Simulator{}, c, "uut", s)
	if err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	widths := make(map[string]int)
	for _, p := range c.Outputs() {
		widths[p.Name] = p.Bits
	}
	for i := 0; i < s.Len(); i++ {
		in := make(Sample, len(s))
		for k := range s {
			in[k] = s.sample(k, i)
		}
		for k, want := range ref(in) {
			got, ok := r[k]
			if !ok {
				t.Fatalf("no output %q", k)
			}
			if w := int64(mask(widths[k])); got[i] != want&w {
				t.Fatalf("%s: expected %s=%d, got %d", in, k, want&w, got[i])
			}
		}
	}
	t.Logf("%d cells, latency %d. %d samples in %v", c.Len(), c.Latency(), s.Len(), elapsed)
}
