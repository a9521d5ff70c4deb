// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest runs generated modules against sample data.
//
// A Harness feeds one sample per clock cycle to every input of a module and
// captures its outputs. The first Latency samples of every output, captured
// while the pipeline fills up, are discarded so that output sample i matches
// input sample i.
//
package hwtest

import (
	"context"

	"github.com/db47h/pipegen"
	"github.com/pkg/errors"
)

// Stimulus maps input names to the sequence of samples to apply, one per
// clock cycle. Inputs hold their last sample once their sequence is
// exhausted. Missing inputs are held at 0.
//
type Stimulus map[string][]int64

// Len returns the length of the longest sequence in s.
//
func (s Stimulus) Len() int {
	n := 0
	for _, v := range s {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}

func (s Stimulus) sample(name string, t int) int64 {
	v := s[name]
	switch {
	case len(v) == 0:
		return 0
	case t < len(v):
		return v[t]
	}
	return v[len(v)-1]
}

func (s Stimulus) check(m *pipegen.Module) error {
	for name := range s {
		found := false
		for _, p := range m.Inputs {
			if p.Name == name {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("module %s has no input %q", m.Name, name)
		}
	}
	return nil
}

// Response maps output names to captured samples. Samples are the raw,
// unsigned, bit patterns of the outputs. Use ToSigned to read them as two's
// complement numbers.
//
type Response map[string][]int64

// A Harness runs a module with the given stimulus and returns Stimulus.Len()
// samples per output.
//
type Harness interface {
	Run(ctx context.Context, m *pipegen.Module, s Stimulus) (Response, error)
}

// Run elaborates c as a module named name and runs it with h.
//
func Run(ctx context.Context, h Harness, c *pipegen.Component, name string, s Stimulus) (Response, error) {
	m, err := c.Elaborate(name)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, m, s)
}

// ToSigned returns v read as a bits wide two's complement number.
//
func ToSigned(v int64, bits int) int64 {
	if bits <= 0 || bits >= 64 {
		return v
	}
	shift := uint(64 - bits)
	return v << shift >> shift
}
