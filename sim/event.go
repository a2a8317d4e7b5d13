package sim

import "github.com/sirupsen/logrus"

// Event is a unit of simulation work. Execute runs with the clock already
// advanced to the event's timestamp; it may mutate simulation state and
// schedule further events, but must never block.
type Event interface {
	Execute(sim *Simulator)
}

// ScheduledEvent is the handle returned by Simulator.Schedule. The pair
// (timestamp, sequence) is the total dispatch order: earlier timestamps
// first, scheduling order within a timestamp. Cancel marks the entry and the
// dispatch loop skips it.
type ScheduledEvent struct {
	at       int64
	seq      uint64
	canceled bool
	event    Event
}

// Time returns the timestamp the event fires at.
func (s *ScheduledEvent) Time() int64 {
	return s.at
}

// Canceled reports whether the handle has been canceled.
func (s *ScheduledEvent) Canceled() bool {
	return s.canceled
}

// ArrivalEvent represents a passenger arriving at the terminal entrance.
type ArrivalEvent struct {
	Passenger *Passenger
}

// Execute admits the passenger into the station pipeline.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: %s at %d ticks", e.Passenger, sim.Clock)
	sim.handleArrival(e.Passenger)
}

// ServiceCompleteEvent fires when a granted ticket finishes service at its
// station.
type ServiceCompleteEvent struct {
	Ticket *Ticket
}

// Execute releases the ticket's slot and advances the owning passenger.
func (e *ServiceCompleteEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< ServiceComplete: %s at %d ticks", e.Ticket, sim.Clock)
	sim.handleServiceComplete(e.Ticket)
}

// PatienceExpiredEvent fires at a waiting ticket's patience deadline. It does
// not renege inline: it posts a RenegeCommitEvent at the same timestamp, so
// that releases already pending at this instant dispatch first and may still
// grant the waiter. Service commencement at or before the deadline counts as
// a grant.
type PatienceExpiredEvent struct {
	Ticket *Ticket
}

func (e *PatienceExpiredEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< PatienceExpired: %s at %d ticks", e.Ticket, sim.Clock)
	e.Ticket.pool.patienceExpired(e.Ticket)
}

// RenegeCommitEvent commits a renege unless the ticket was granted by an
// intervening same-timestamp release.
type RenegeCommitEvent struct {
	Ticket *Ticket
}

func (e *RenegeCommitEvent) Execute(sim *Simulator) {
	e.Ticket.pool.commitRenege(e.Ticket)
}

// BagScanCompleteEvent fires when one checked bag clears a scanner.
type BagScanCompleteEvent struct {
	Bag *BagJob
}

func (e *BagScanCompleteEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< BagScanComplete: %s at %d ticks", e.Bag, sim.Clock)
	sim.handleBagScanComplete(e.Bag)
}

// GateOpenEvent opens a flight's boarding gate and wakes the passengers
// already waiting there.
type GateOpenEvent struct {
	Gate *Gate
}

func (e *GateOpenEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< GateOpen: flight %s at %d ticks", e.Gate.Flight.ID, sim.Clock)
	sim.handleGateOpen(e.Gate)
}

// GateCloseEvent ends a flight's boarding window. Passengers still queued
// for an agent miss the flight; a scan already in progress finishes.
type GateCloseEvent struct {
	Gate *Gate
}

func (e *GateCloseEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< GateClose: flight %s at %d ticks", e.Gate.Flight.ID, sim.Clock)
	sim.handleGateClose(e.Gate)
}
