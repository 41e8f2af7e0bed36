package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	opts, err := loadConfig("")
	require.NoError(t, err)
	require.False(t, opts.Trace)
	require.False(t, opts.TCGen)
}

func TestLoadConfigReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trace: true\ntcgen: false\n"), 0o644))

	opts, err := loadConfig(path)
	require.NoError(t, err)
	require.True(t, opts.Trace)
	require.False(t, opts.TCGen)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
