package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	patchHCL := `
synth "bed" {
  ugen = "noise"
  args = { amp = 0.1 }
}

group "voices" {
  parallel = true

  synth "lo" {
    ugen = "saw"
    args = { freq = 110 }
  }
  synth "hi" {
    ugen = "sine"
    args = { freq = 220 }
  }
}
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(patchHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"--blocks", "5", "--workers", "2", "--log-level", "debug", filePath})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Run finished.")
}

func TestRunInvalidPatch(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(`synth "a" {`), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{filePath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load patch")
}

func TestRunShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}
