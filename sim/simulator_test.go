package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulatorValidation(t *testing.T) {
	valid := testFlight("IB1001", true, 100)
	tests := []struct {
		name       string
		cfg        *Config
		flights    []*Flight
		passengers []*Passenger
		want       string
	}{
		{
			name: "nil config",
			want: "config cannot be nil",
		},
		{
			name: "invalid config",
			cfg: func() *Config {
				c := DefaultConfig()
				c.SimDuration = -1
				return c
			}(),
			want: "invalid config",
		},
		{
			name:    "nil flight",
			cfg:     DefaultConfig(),
			flights: []*Flight{nil},
			want:    "flight 0 is nil",
		},
		{
			name:    "invalid flight",
			cfg:     DefaultConfig(),
			flights: []*Flight{{ID: ""}},
			want:    "flight id cannot be empty",
		},
		{
			name:    "duplicate flight id",
			cfg:     DefaultConfig(),
			flights: []*Flight{valid, testFlight("IB1001", false, 200)},
			want:    `duplicate id "IB1001"`,
		},
		{
			name:       "nil passenger",
			cfg:        DefaultConfig(),
			flights:    []*Flight{valid},
			passengers: []*Passenger{nil},
			want:       "passenger 0 is nil",
		},
		{
			name:       "invalid passenger",
			cfg:        DefaultConfig(),
			flights:    []*Flight{valid},
			passengers: []*Passenger{{ID: "", Flight: valid}},
			want:       "passenger id cannot be empty",
		},
		{
			name:       "passenger on unlisted flight",
			cfg:        DefaultConfig(),
			flights:    []*Flight{valid},
			passengers: []*Passenger{testPassenger("PAX-000001", testFlight("VY2000", true, 300), 0)},
			want:       `flight "VY2000" not in flight list`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator(tt.cfg, tt.flights, tt.passengers, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunStopsAtHorizonAndLeavesLaterEventsPending(t *testing.T) {
	s := newBareSim(10)
	insideFired, beyondFired := false, false
	s.Schedule(MinutesToTicks(5), &funcEvent{fn: func(*Simulator) { insideFired = true }})
	s.Schedule(MinutesToTicks(11), &funcEvent{fn: func(*Simulator) { beyondFired = true }})

	snap, err := s.Run()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, insideFired)
	assert.False(t, beyondFired, "event beyond the horizon must not fire")
	assert.Equal(t, 1, s.Pending(), "beyond-horizon event stays queued")
	assert.Equal(t, MinutesToTicks(10), s.Clock, "clock advances to the horizon")
	assert.Equal(t, 10.0, snap.DurationMinutes)
}

func TestRunAbortsOnScheduleIntoThePast(t *testing.T) {
	s := newBareSim(10)
	s.Schedule(MinutesToTicks(1), &funcEvent{fn: func(s *Simulator) {
		s.Schedule(0, &funcEvent{fn: func(*Simulator) {}})
	}})

	snap, err := s.Run()
	require.Error(t, err)
	assert.Nil(t, snap, "an aborted run publishes no snapshot")
	assert.Contains(t, err.Error(), "simulation aborted")
	assert.Contains(t, err.Error(), "schedule into the past")
}

func TestRunDispatchesInTimestampThenScheduleOrder(t *testing.T) {
	s := newBareSim(10)
	var order []int
	record := func(id int) Event {
		return &funcEvent{fn: func(*Simulator) { order = append(order, id) }}
	}
	s.Schedule(MinutesToTicks(2), record(3))
	s.Schedule(MinutesToTicks(1), record(1))
	s.Schedule(MinutesToTicks(2), record(4)) // same tick as 3, scheduled later
	s.Schedule(MinutesToTicks(1), record(2))

	_, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestRunClockNeverGoesBackwards(t *testing.T) {
	s := newBareSim(30)
	var clocks []int64
	for minute := 0; minute <= 20; minute += 2 {
		s.Schedule(MinutesToTicks(float64(minute)), &funcEvent{fn: func(s *Simulator) {
			clocks = append(clocks, s.Clock)
			// Same-timestamp follow-up, dispatched before later events.
			s.Schedule(s.Clock, &funcEvent{fn: func(s *Simulator) {
				clocks = append(clocks, s.Clock)
			}})
		}})
	}
	_, err := s.Run()
	require.NoError(t, err)
	for i := 1; i < len(clocks); i++ {
		assert.GreaterOrEqual(t, clocks[i], clocks[i-1], "clock regressed at dispatch %d", i)
	}
}

func TestNewSimulatorRejectsBadPatienceSpec(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Patience = DistSpec{Type: "exponential", Params: map[string]float64{"mean": -1}}
	_, err := NewSimulator(cfg, nil, nil, nil)
	require.Error(t, err)
}
