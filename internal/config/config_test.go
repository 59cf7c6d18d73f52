package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NIGHTLIGHTS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "USA", cfg.Pipeline.CountryISO)
	assert.Equal(t, domain.ClusterNone, cfg.Cluster())
	assert.Equal(t, domain.NewYearMonth(2018, 1), cfg.Window())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9000\npipeline:\n  cluster_by: ticker\n")
	require.NoError(t, os.WriteFile(configPath, content, 0644))

	t.Setenv("NIGHTLIGHTS_CONFIG_FILE", configPath)
	t.Setenv("NIGHTLIGHTS_PIPELINE_CLUSTER_BY", "county")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, domain.ClusterCounty, cfg.Cluster())
}

func TestLoadRejectsInvalidCluster(t *testing.T) {
	t.Setenv("NIGHTLIGHTS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("NIGHTLIGHTS_PIPELINE_CLUSTER_BY", "state")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsBadWindowStart(t *testing.T) {
	t.Setenv("NIGHTLIGHTS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("NIGHTLIGHTS_PIPELINE_WINDOW_START", "January 2018")

	_, err := Load()
	require.Error(t, err)
}

func TestPathResolution(t *testing.T) {
	cfg := &Config{}
	cfg.Paths.DataDir = "data"
	cfg.Paths.OutputDir = "final"

	assert.Equal(t, filepath.Join("data", "raw", "x.csv"), cfg.InputPath(filepath.Join("raw", "x.csv")))
	assert.Equal(t, filepath.Join("data", "final", "panel.csv"), cfg.OutputPath("panel.csv"))
	assert.Equal(t, "/abs/panel.csv", cfg.OutputPath("/abs/panel.csv"))
}
