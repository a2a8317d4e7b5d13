// Package trace provides optional transition-trace recording for a
// simulation run. It stores pure data types and adds no scheduling behavior:
// the collector appends records from its observation hooks and the trace is
// read back after the run.
package trace

import "fmt"

// Level controls trace verbosity.
type Level string

const (
	// LevelOff disables tracing (zero overhead).
	LevelOff Level = "off"
	// LevelFlights captures per-flight phase records only.
	LevelFlights Level = "flights"
	// LevelPassengers captures per-passenger station transitions only.
	LevelPassengers Level = "passengers"
	// LevelFull captures both.
	LevelFull Level = "full"
)

// ParseLevel converts a level string; empty defaults to off.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "", LevelOff:
		return LevelOff, nil
	case LevelFlights, LevelPassengers, LevelFull:
		return Level(s), nil
	default:
		return LevelOff, fmt.Errorf("unknown trace level %q; valid: off, flights, passengers, full", s)
	}
}

// Transition is one passenger state change at one station.
type Transition struct {
	Clock       int64 // ticks
	PassengerID string
	FlightID    string
	Station     string
	State       string
}

// FlightPhase is one flight lifecycle milestone (gate open, gate close).
type FlightPhase struct {
	Clock    int64 // ticks
	FlightID string
	Phase    string
}

// Trace collects transition records during a run. A nil *Trace is valid and
// records nothing.
type Trace struct {
	Level       Level
	Transitions []Transition
	Flights     []FlightPhase
}

// New creates a Trace at the given level. Returns nil for LevelOff, which
// every Record method tolerates.
func New(level Level) *Trace {
	if level == LevelOff || level == "" {
		return nil
	}
	return &Trace{Level: level}
}

// RecordTransition appends a passenger transition when the level captures
// passengers.
func (t *Trace) RecordTransition(rec Transition) {
	if t == nil || (t.Level != LevelPassengers && t.Level != LevelFull) {
		return
	}
	t.Transitions = append(t.Transitions, rec)
}

// RecordFlightPhase appends a flight phase when the level captures flights.
func (t *Trace) RecordFlightPhase(rec FlightPhase) {
	if t == nil || (t.Level != LevelFlights && t.Level != LevelFull) {
		return
	}
	t.Flights = append(t.Flights, rec)
}
