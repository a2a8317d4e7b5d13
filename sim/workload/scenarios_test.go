package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetNamesSortedAndComplete(t *testing.T) {
	names := PresetNames()
	assert.Equal(t, []string{"baseline", "high-volume", "online-checkin-push", "reduced-security"}, names)
	for _, name := range names {
		assert.NotEmpty(t, Describe(name), "scenario %s has no description", name)
	}
}

func TestPresetsProduceValidConfigs(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		require.NoError(t, err, "preset %s", name)
		assert.NoError(t, cfg.Validate(), "preset %s fails validation", name)
	}
}

func TestPresetAppliesMutation(t *testing.T) {
	base, err := Preset("baseline")
	require.NoError(t, err)
	reduced, err := Preset("reduced-security")
	require.NoError(t, err)
	assert.Equal(t, 26, base.Stations.Security.Lanes)
	assert.Equal(t, 20, reduced.Stations.Security.Lanes)

	push, err := Preset("online-checkin-push")
	require.NoError(t, err)
	assert.Equal(t, 0.70, push.Behavior.OnlineCheckin)

	volume, err := Preset("high-volume")
	require.NoError(t, err)
	assert.Equal(t, base.Flights.PerDay*12/10, volume.Flights.PerDay)
}

func TestPresetReturnsFreshConfig(t *testing.T) {
	a, err := Preset("baseline")
	require.NoError(t, err)
	a.Stations.Security.Lanes = 1

	b, err := Preset("baseline")
	require.NoError(t, err)
	assert.Equal(t, 26, b.Stations.Security.Lanes, "presets must not share state")
}

func TestPresetUnknownName(t *testing.T) {
	_, err := Preset("rush-hour")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown scenario "rush-hour"`)
}
