package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelOff, false},
		{"off", LevelOff, false},
		{"flights", LevelFlights, false},
		{"passengers", LevelPassengers, false},
		{"full", LevelFull, false},
		{"verbose", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNewReturnsNilForOff(t *testing.T) {
	assert.Nil(t, New(LevelOff))
	assert.Nil(t, New(""))
	assert.NotNil(t, New(LevelFull))
}

func TestNilTraceRecordsNothing(t *testing.T) {
	var tr *Trace
	tr.RecordTransition(Transition{PassengerID: "PAX-000001"})
	tr.RecordFlightPhase(FlightPhase{FlightID: "IB1001"})
	assert.Equal(t, Summary{}, Summarize(tr))
}

func TestLevelGatesRecordKinds(t *testing.T) {
	flights := New(LevelFlights)
	flights.RecordTransition(Transition{PassengerID: "PAX-000001"})
	flights.RecordFlightPhase(FlightPhase{FlightID: "IB1001", Phase: "GATE_OPEN"})
	assert.Empty(t, flights.Transitions)
	assert.Len(t, flights.Flights, 1)

	passengers := New(LevelPassengers)
	passengers.RecordTransition(Transition{PassengerID: "PAX-000001"})
	passengers.RecordFlightPhase(FlightPhase{FlightID: "IB1001"})
	assert.Len(t, passengers.Transitions, 1)
	assert.Empty(t, passengers.Flights)

	full := New(LevelFull)
	full.RecordTransition(Transition{PassengerID: "PAX-000001"})
	full.RecordFlightPhase(FlightPhase{FlightID: "IB1001"})
	assert.Len(t, full.Transitions, 1)
	assert.Len(t, full.Flights, 1)
}

func TestSummarizeGroupsAndSorts(t *testing.T) {
	tr := New(LevelFull)
	tr.RecordTransition(Transition{Station: "security", State: "QUEUED"})
	tr.RecordTransition(Transition{Station: "security", State: "QUEUED"})
	tr.RecordTransition(Transition{Station: "security", State: "IN_SERVICE"})
	tr.RecordTransition(Transition{Station: "checkin", State: "QUEUED"})
	tr.RecordFlightPhase(FlightPhase{FlightID: "IB1001", Phase: "GATE_OPEN"})

	summary := Summarize(tr)
	assert.Equal(t, 4, summary.Transitions)
	assert.Equal(t, 1, summary.FlightPhases)
	assert.Equal(t, []StationCount{
		{Station: "checkin", State: "QUEUED", Count: 1},
		{Station: "security", State: "IN_SERVICE", Count: 1},
		{Station: "security", State: "QUEUED", Count: 2},
	}, summary.ByStation)
}
