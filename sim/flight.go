package sim

import "fmt"

// Flight is one scheduled departure. Immutable once generated; the engine
// reads it but never writes it.
type Flight struct {
	ID          string
	Airline     string
	Destination string
	Aircraft    string
	WideBody    bool
	Seats       int

	// ScheduledDeparture and ActualDeparture are ticks; they differ when
	// the flight is delayed.
	ScheduledDeparture int64
	ActualDeparture    int64
	Delayed            bool

	// Schengen flights are exempt from passport control.
	Schengen bool

	// Passengers is the seat-fill for this flight (load factor applied,
	// possibly overbooked).
	Passengers int
}

// Validate checks the invariants a generated flight record must satisfy.
func (f *Flight) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("flight id cannot be empty")
	}
	if f.ScheduledDeparture < 0 {
		return fmt.Errorf("flight %s scheduled departure must be nonnegative, got %d", f.ID, f.ScheduledDeparture)
	}
	if f.ActualDeparture < f.ScheduledDeparture {
		return fmt.Errorf("flight %s actual departure %d precedes scheduled %d", f.ID, f.ActualDeparture, f.ScheduledDeparture)
	}
	if f.Passengers < 0 {
		return fmt.Errorf("flight %s passenger count must be nonnegative, got %d", f.ID, f.Passengers)
	}
	return nil
}

func (f *Flight) String() string {
	status := "ON TIME"
	if f.Delayed {
		status = "DELAYED"
	}
	return fmt.Sprintf("Flight %s to %s (%s): %s", f.ID, f.Destination, f.Airline, status)
}
