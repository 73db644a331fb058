package configutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `json:"name"`
	Timeout string `json:"timeout"`
	Nested  struct {
		Enabled bool   `json:"enabled"`
		Value   string `json:"value"`
	} `json:"nested"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestLocalName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "config.json5", expected: "config.local.json5"},
		{name: filepath.Join("a", "b", "telemetry.json5"), expected: filepath.Join("a", "b", "telemetry.local.json5")},
		{name: "config", expected: "config.local"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, LocalName(test.name))
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.json5"), `{
		// comments are allowed
		name: "default",
		timeout: "10s",
		nested: { value: "base" },
	}`)
	write(t, filepath.Join(dir, "config.local.json5"), `{ name: "override", nested: { enabled: true } }`)

	cfg, err := ReadConfig[sample](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "override", cfg.Name)
	require.Equal(t, "10s", cfg.Timeout)
	require.True(t, cfg.Nested.Enabled)
	require.Equal(t, "base", cfg.Nested.Value)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.local.json5"), `{ name: "local" }`)

	cfg, err := ReadConfig[sample](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[sample](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.json5"), `{ name: `)

	_, err := ReadConfig[sample](filepath.Join(dir, "config.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, fs.ErrNotExist)
}
