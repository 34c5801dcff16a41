package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azstat/report-cli/internal/config"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"validate", "show", "history", "compare", "search", "stats", "export", "serve"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], "command %s not registered", name)
	}
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "reports.db"),
	}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "bogus"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
