package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/pagefilter/internal/config"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagefilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
filter:
  items: ".from-file"
  sections: "article"
fetch:
  timeout: 45s
  enable_robots_check: false
log:
  level: debug
`), 0644))
	return path
}

func TestApplyConfigFile_FlagsWin(t *testing.T) {
	cfg := config.Load()
	var configPath string
	flagSet := newFlagSet(cfg, &configPath)

	path := writeConfig(t)
	require.NoError(t, flagSet.Parse([]string{
		"--config", path,
		"--items", ".from-flag",
		"--timeout", "5s",
		"--robots=true",
		"page.html",
	}))
	require.NoError(t, applyConfigFile(cfg, flagSet, configPath))

	assert.Equal(t, ".from-flag", cfg.Filter.Items)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.EnableRobotsCheck)

	// Values the command line left alone come from the file
	assert.Equal(t, "article", cfg.Filter.Sections)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"page.html"}, flagSet.Args())
}

func TestApplyConfigFile_NoFlags(t *testing.T) {
	cfg := config.Load()
	var configPath string
	flagSet := newFlagSet(cfg, &configPath)

	require.NoError(t, flagSet.Parse([]string{"-c", writeConfig(t), "page.html"}))
	require.NoError(t, applyConfigFile(cfg, flagSet, configPath))

	assert.Equal(t, ".from-file", cfg.Filter.Items)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.False(t, cfg.Fetch.EnableRobotsCheck)
}

func TestApplyConfigFile_MissingFile(t *testing.T) {
	cfg := config.Load()
	var configPath string
	flagSet := newFlagSet(cfg, &configPath)

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	require.NoError(t, flagSet.Parse([]string{"--config", missing, "--items", ".kept"}))
	assert.Error(t, applyConfigFile(cfg, flagSet, configPath))
	assert.Equal(t, ".kept", cfg.Filter.Items)
}

func TestChangedFlags(t *testing.T) {
	cfg := config.Load()
	var configPath string
	flagSet := newFlagSet(cfg, &configPath)

	require.NoError(t, flagSet.Parse([]string{"-c", "x.yaml", "--links", "a.topic", "--log-level", "warn"}))
	assert.Equal(t, map[string]string{
		"links":     "a.topic",
		"log-level": "warn",
	}, changedFlags(flagSet))
}
