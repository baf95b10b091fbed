package ugen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/synthgrid/internal/queue"
)

func testSpec(args map[string]cty.Value) Spec {
	return Spec{SampleRate: 48000, BlockSize: 64, Args: args}
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	for _, name := range []string{"sine", "saw", "noise"} {
		runner, err := r.New(name, testSpec(nil))
		require.NoError(t, err, name)
		require.NotNil(t, runner, name)
		runner.Run()
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := r.New("granular", testSpec(nil))
		assert.ErrorContains(t, err, "unknown ugen type")
	})
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("x", func(Spec) (queue.Runner, error) { return nil, nil })
	r.Register("x", func(spec Spec) (queue.Runner, error) {
		called = true
		return newSine(spec)
	})
	_, err := r.New("x", testSpec(nil))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestSineOutput(t *testing.T) {
	runner, err := newSine(testSpec(map[string]cty.Value{
		"freq": cty.NumberIntVal(1000),
		"amp":  cty.NumberFloatVal(0.5),
	}))
	require.NoError(t, err)

	s := runner.(*sine)
	s.Run()
	var peak float64
	for _, v := range s.out {
		if v > peak {
			peak = v
		}
		assert.LessOrEqual(t, v, 0.5)
		assert.GreaterOrEqual(t, v, -0.5)
	}
	assert.Greater(t, peak, 0.0, "a 1kHz sine must move within one block")
}

func TestNoiseDeterministicPerSeed(t *testing.T) {
	spec := testSpec(map[string]cty.Value{"seed": cty.NumberIntVal(7)})
	r1, err := newNoise(spec)
	require.NoError(t, err)
	r2, err := newNoise(spec)
	require.NoError(t, err)

	r1.Run()
	r2.Run()
	assert.Equal(t, r1.(*noise).out, r2.(*noise).out)
}

func TestFloatArgErrors(t *testing.T) {
	_, err := newSine(testSpec(map[string]cty.Value{"freq": cty.StringVal("high")}))
	assert.ErrorContains(t, err, "expected number")
}
