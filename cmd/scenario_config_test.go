package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScenarioPreset(t *testing.T) {
	cfg, err := resolveScenario("reduced-security", "")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Stations.Security.Lanes)

	_, err = resolveScenario("nope", "")
	assert.Error(t, err)
}

func TestResolveScenarioFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim_duration: 90\nseed: 5\n"), 0o644))

	cfg, err := resolveScenario("reduced-security", path)
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.SimDuration)
	assert.Equal(t, int64(5), cfg.Seed)
	// The preset is ignored entirely when a file is given.
	assert.Equal(t, 26, cfg.Stations.Security.Lanes)
}

func TestApplyOverridesSentinels(t *testing.T) {
	seed, simDuration, flightsPerDay = -1, 0, 0
	cfg, err := resolveScenario("baseline", "")
	require.NoError(t, err)
	applyOverrides(cfg)
	assert.Equal(t, int64(42), cfg.Seed, "negative seed keeps the scenario's")
	assert.Equal(t, 24*60.0, cfg.SimDuration)
	assert.Equal(t, 325, cfg.Flights.PerDay)

	seed, simDuration, flightsPerDay = 7, 120, 50
	applyOverrides(cfg)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 120.0, cfg.SimDuration)
	assert.Equal(t, 50, cfg.Flights.PerDay)

	seed, simDuration, flightsPerDay = -1, 0, 0
}
