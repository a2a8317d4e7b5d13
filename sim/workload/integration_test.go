package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	sim "github.com/terminal-sim/terminal-sim/sim"
)

// smallDay is a scaled-down baseline that still exercises every station.
func smallDay() *sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Flights.PerDay = 40
	cfg.Stations.Checkin.Desks = 30
	cfg.Stations.Checkin.Dedicated = map[string]int{"Iberia": 12}
	cfg.Stations.Screening.Scanners = 8
	cfg.Stations.Security.Lanes = 8
	cfg.Stations.Passport.Booths = 4
	cfg.Stations.Passport.Egates = 3
	return cfg
}

func runDay(t *testing.T, cfg *sim.Config) *sim.Snapshot {
	t.Helper()
	flights, passengers, err := Generate(cfg)
	require.NoError(t, err)
	s, err := sim.NewSimulator(cfg, flights, passengers, nil)
	require.NoError(t, err)
	snap, err := s.Run()
	require.NoError(t, err)
	require.NotNil(t, snap)
	return snap
}

func TestFullDayRunsAreByteIdentical(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day simulation")
	}
	a, err := yaml.Marshal(runDay(t, smallDay()))
	require.NoError(t, err)
	b, err := yaml.Marshal(runDay(t, smallDay()))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "identical seed and config must reproduce the snapshot byte for byte")
}

func TestFullDayDifferentSeedsDiverge(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day simulation")
	}
	a, err := yaml.Marshal(runDay(t, smallDay()))
	require.NoError(t, err)
	other := smallDay()
	other.Seed = 43
	b, err := yaml.Marshal(runDay(t, other))
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(b))
}

func TestFullDayPassengerConservation(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day simulation")
	}
	snap := runDay(t, smallDay())

	require.Positive(t, snap.Generated)
	assert.Equal(t, snap.Generated, snap.Completed+snap.Reneged+snap.InFlightAtCutoff,
		"every generated passenger ends completed, reneged, or in flight")
	assert.Equal(t, snap.Completed, snap.Boarded+snap.MissedFlights)
	assert.LessOrEqual(t, snap.Balked, snap.Reneged, "balks count within reneged")
	assert.Len(t, snap.Passengers, snap.Generated)
}

func TestFullDayCapacityBoundsHold(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day simulation")
	}
	snap := runDay(t, smallDay())

	for _, st := range snap.Stations {
		assert.GreaterOrEqual(t, st.Utilization, 0.0, "station %s", st.Station)
		assert.LessOrEqual(t, st.Utilization, 1.0, "station %s exceeds capacity", st.Station)
		for _, point := range st.BusySeries {
			assert.LessOrEqual(t, point.Value, st.Capacity,
				"station %s busy above capacity at minute %.1f", st.Station, point.Minute)
		}
	}
}

func TestFullDayBoardedNeverExceedsFlightPassengers(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day simulation")
	}
	snap := runDay(t, smallDay())
	require.NotEmpty(t, snap.Flights)
	for _, f := range snap.Flights {
		assert.LessOrEqual(t, f.Boarded, f.Passengers, "flight %s", f.ID)
		assert.LessOrEqual(t, f.Fill, 1.0, "flight %s", f.ID)
	}
}
