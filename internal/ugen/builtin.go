package ugen

import (
	"math"

	"github.com/vk/synthgrid/internal/queue"
)

// sine renders one block of a sine wave into a private buffer.
type sine struct {
	phase float64
	incr  float64
	amp   float64
	out   []float64
}

func newSine(spec Spec) (queue.Runner, error) {
	freq, err := floatArg(spec.Args, "freq", 440)
	if err != nil {
		return nil, err
	}
	amp, err := floatArg(spec.Args, "amp", 1)
	if err != nil {
		return nil, err
	}
	return &sine{
		incr: freq / spec.SampleRate,
		amp:  amp,
		out:  make([]float64, spec.BlockSize),
	}, nil
}

func (s *sine) Run() {
	for i := range s.out {
		s.out[i] = s.amp * math.Sin(2*math.Pi*s.phase)
		s.phase += s.incr
		if s.phase >= 1 {
			s.phase -= 1
		}
	}
}

// saw renders a naive sawtooth. Aliasing is acceptable for a demo source.
type saw struct {
	phase float64
	incr  float64
	amp   float64
	out   []float64
}

func newSaw(spec Spec) (queue.Runner, error) {
	freq, err := floatArg(spec.Args, "freq", 110)
	if err != nil {
		return nil, err
	}
	amp, err := floatArg(spec.Args, "amp", 1)
	if err != nil {
		return nil, err
	}
	return &saw{
		incr: freq / spec.SampleRate,
		amp:  amp,
		out:  make([]float64, spec.BlockSize),
	}, nil
}

func (s *saw) Run() {
	for i := range s.out {
		s.out[i] = s.amp * (2*s.phase - 1)
		s.phase += s.incr
		if s.phase >= 1 {
			s.phase -= 1
		}
	}
}

// noise renders white noise from a xorshift generator, seeded per instance
// so blocks stay deterministic for a given patch.
type noise struct {
	state uint64
	amp   float64
	out   []float64
}

func newNoise(spec Spec) (queue.Runner, error) {
	amp, err := floatArg(spec.Args, "amp", 1)
	if err != nil {
		return nil, err
	}
	seed, err := floatArg(spec.Args, "seed", 1)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = 1
	}
	return &noise{state: uint64(seed), amp: amp, out: make([]float64, spec.BlockSize)}, nil
}

func (n *noise) Run() {
	for i := range n.out {
		n.state ^= n.state << 13
		n.state ^= n.state >> 7
		n.state ^= n.state << 17
		n.out[i] = n.amp * (float64(n.state>>11)/float64(1<<53)*2 - 1)
	}
}
