package sim

import "fmt"

// Station names, in pipeline order.
const (
	StationCheckin   = "checkin"
	StationScreening = "screening"
	StationSecurity  = "security"
	StationPassport  = "passport"
	StationBoarding  = "boarding"
)

// Visit states for one passenger-station visit.
const (
	VisitArrived   = "ARRIVED"
	VisitQueued    = "QUEUED"
	VisitInService = "IN_SERVICE"
	VisitCompleted = "COMPLETED"
	VisitReneged   = "RENEGED"
	VisitBalked    = "BALKED"
	VisitJockeyed  = "JOCKEYED"
	VisitMissed    = "MISSED" // boarding only: gate closed before an agent was reached
)

// Terminal outcome of a passenger's traversal.
type Outcome string

const (
	// OutcomeInFlight marks a passenger still inside the pipeline at the
	// run horizon.
	OutcomeInFlight Outcome = "IN_FLIGHT"
	// OutcomeCompleted marks a passenger that reached the end of its
	// pipeline, whether or not it boarded.
	OutcomeCompleted Outcome = "COMPLETED"
	// OutcomeReneged marks a passenger that abandoned a queue after its
	// patience ran out.
	OutcomeReneged Outcome = "RENEGED"
	// OutcomeBalked marks a passenger that abandoned immediately on
	// arrival at a queue (zero patience). Counted under reneged in
	// aggregate statistics.
	OutcomeBalked Outcome = "BALKED"
)

// VisitRecord captures one passenger's passage through one station.
type VisitRecord struct {
	Station      string
	ArrivedAt    int64
	ServiceStart int64 // -1 until service begins
	ServiceEnd   int64 // -1 until service completes
	State        string
}

// WaitTicks returns the time spent waiting before service, or until
// abandonment for a visit that never reached service.
func (v *VisitRecord) WaitTicks(abandonedAt int64) int64 {
	if v.ServiceStart >= 0 {
		return v.ServiceStart - v.ArrivedAt
	}
	return abandonedAt - v.ArrivedAt
}

// Passenger is one traveler moving through the departure pipeline. The
// behavioral attributes are fixed at generation time; the run state is
// mutated only by the owning passenger process during event dispatch.
type Passenger struct {
	ID     string
	Flight *Flight

	// Behavioral attributes, drawn at synthesis.
	OnlineCheckin bool
	CarryOnOnly   bool
	Priority      bool
	EgateEligible bool
	Bags          int

	// ArrivalTime is the terminal-entrance time in ticks.
	ArrivalTime int64

	// Run state.
	Outcome     Outcome
	Boarded     bool
	Jockeys     int
	DoneAt      int64 // tick the passenger left the system; -1 while in flight
	Visits      []*VisitRecord
	pendingBags int
	waitingBags bool // held at screening until the last bag clears
}

// Validate checks the invariants a generated passenger record must satisfy.
// A failing record aborts simulator construction; nothing is defaulted.
func (p *Passenger) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("passenger id cannot be empty")
	}
	if p.Flight == nil {
		return fmt.Errorf("passenger %s has no flight reference", p.ID)
	}
	if p.ArrivalTime < 0 {
		return fmt.Errorf("passenger %s arrival time must be nonnegative, got %d", p.ID, p.ArrivalTime)
	}
	if p.Bags < 0 || p.Bags > 2 {
		return fmt.Errorf("passenger %s bag count must be in [0, 2], got %d", p.ID, p.Bags)
	}
	if p.CarryOnOnly && p.Bags != 0 {
		return fmt.Errorf("passenger %s is carry-on only but has %d checked bags", p.ID, p.Bags)
	}
	return nil
}

func (p *Passenger) String() string {
	return fmt.Sprintf("%s (%s)", p.ID, p.Flight.ID)
}

// beginVisit opens a visit record for a station.
func (p *Passenger) beginVisit(station string, now int64) *VisitRecord {
	v := &VisitRecord{
		Station:      station,
		ArrivedAt:    now,
		ServiceStart: -1,
		ServiceEnd:   -1,
		State:        VisitArrived,
	}
	p.Visits = append(p.Visits, v)
	return v
}

// currentVisit returns the most recent visit record, or nil.
func (p *Passenger) currentVisit() *VisitRecord {
	if len(p.Visits) == 0 {
		return nil
	}
	return p.Visits[len(p.Visits)-1]
}
