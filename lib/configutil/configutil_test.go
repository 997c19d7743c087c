package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Account string   `toml:"account"`
	Links   []string `toml:"links"`
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	in := testConfig{
		Account: "alice",
		Links:   []string{"https://example.com/a", "https://example.com/b"},
	}
	err := WriteConfig(path, in)
	require.NoError(t, err)

	out, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	err := WriteConfig(path, testConfig{Account: "alice", Links: []string{"a"}})
	require.NoError(t, err)
	err = WriteConfig(filepath.Join(dir, "config.local.toml"), testConfig{Account: "bob"})
	require.NoError(t, err)

	out, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "bob", out.Account)
	require.Equal(t, []string{"a"}, out.Links)
}
