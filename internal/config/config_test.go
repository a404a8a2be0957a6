package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ztlctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[reweave]
min_score_threshold = 0.9
max_links_per_note = 2

[vector]
enabled = true
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Reweave.MinScoreThreshold)
	assert.Equal(t, 2, cfg.Reweave.MaxLinksPerNote)
	assert.True(t, cfg.Vector.Enabled)
	// Untouched sections still carry their built-in default.
	assert.Equal(t, Defaults().Session.DefaultBudgetTokens, cfg.Session.DefaultBudgetTokens)
}

func TestLoadEnvOverridesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ztlctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[eventbus]
workers = 2
`), 0o644))

	t.Setenv("ZTLCTL_EVENTBUS_WORKERS", "9")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.EventBus.Workers)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	content, err := WriteDefault(Defaults())
	require.NoError(t, err)
	assert.Contains(t, content, "[reweave]")
	assert.Contains(t, content, "[vector]")

	dir := t.TempDir()
	path := filepath.Join(dir, "ztlctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
