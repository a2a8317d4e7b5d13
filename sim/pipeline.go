package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Gate lifecycle states.
const (
	GatePending = "PENDING"
	GateOpen    = "OPEN"
	GateClosed  = "CLOSED"
)

// Gate is one flight's boarding gate: an agent pool plus an open/close
// window anchored on the flight's actual (delayed) departure. Passengers
// reaching a pending gate suspend until the open event; at a closed gate
// they have missed the flight.
type Gate struct {
	Flight   *Flight
	Agents   *ResourcePool
	State    string
	OpensAt  int64
	ClosesAt int64
	Boarded  int

	// Waiting holds passengers that reached the gate before it opened, in
	// arrival order.
	Waiting []*Passenger
}

// BagJob is one checked bag moving through a baggage scanner, independent of
// its owner's pipeline progress. Bags never renege.
type BagJob struct {
	Passenger *Passenger
	Index     int // 1-based within the passenger's bags
	Ticket    *Ticket
}

func (b *BagJob) String() string {
	return fmt.Sprintf("bag %d/%d of %s", b.Index, b.Passenger.Bags, b.Passenger.ID)
}

// handleArrival admits a passenger into the pipeline. Online check-in with
// carry-on only skips the check-in desks entirely.
func (s *Simulator) handleArrival(p *Passenger) {
	s.Collector.ObserveArrival(s.Clock, p)
	if p.OnlineCheckin && p.CarryOnOnly {
		s.startScreening(p)
		return
	}
	s.startCheckin(p)
}

// startCheckin routes the passenger to its airline's dedicated desk group
// when one exists, otherwise to the general desks.
func (s *Simulator) startCheckin(p *Passenger) {
	pool := s.CheckinGeneral
	if dedicated, ok := s.CheckinDedicated[p.Flight.Airline]; ok {
		pool = dedicated
	}
	visit := p.beginVisit(StationCheckin, s.Clock)
	t := &Ticket{
		Passenger: p,
		Station:   StationCheckin,
		Priority:  p.Priority,
		Visit:     visit,
	}
	perBag := MinutesToTicks(s.Config.Stations.Checkin.PerBagMinutes * float64(p.Bags))
	t.onGrant = func(t *Ticket) {
		s.Schedule(s.Clock+s.checkinService.Sample()+perBag, &ServiceCompleteEvent{Ticket: t})
	}
	t.onAbandon = func(t *Ticket, balked bool) {
		s.abandon(p, balked)
	}
	pool.Request(t, s.drawPatience())
}

// startScreening drops the passenger's checked bags on the scanner pool, one
// independent scan per bag. By default the passenger advances immediately;
// with hold_passenger the passenger waits at the station until the last bag
// clears.
func (s *Simulator) startScreening(p *Passenger) {
	if p.Bags == 0 {
		s.startSecurity(p)
		return
	}
	visit := p.beginVisit(StationScreening, s.Clock)
	p.pendingBags = p.Bags
	for i := 1; i <= p.Bags; i++ {
		bag := &BagJob{Passenger: p, Index: i}
		bag.Ticket = &Ticket{
			Passenger: p,
			Station:   StationScreening,
			Priority:  false,
		}
		bag.Ticket.onGrant = func(t *Ticket) {
			s.Schedule(s.Clock+s.bagScan.Sample(), &BagScanCompleteEvent{Bag: bag})
		}
		s.Scanners.Request(bag.Ticket, Forever)
	}
	if s.Config.Stations.Screening.HoldPassenger {
		p.waitingBags = true
		return
	}
	// Bag drop itself is instantaneous; the bags scan on their own.
	visit.ServiceStart = s.Clock
	visit.ServiceEnd = s.Clock
	visit.State = VisitCompleted
	s.startSecurity(p)
}

// handleBagScanComplete releases the scanner slot and, when the passenger is
// held at the station, resumes it after its last bag.
func (s *Simulator) handleBagScanComplete(b *BagJob) {
	b.Ticket.pool.Release(b.Ticket)
	s.Collector.ObserveServiceEnd(s.Clock, b.Ticket)
	s.Collector.ObserveBagScanned(s.Clock)
	p := b.Passenger
	p.pendingBags--
	if p.pendingBags == 0 && p.waitingBags {
		p.waitingBags = false
		visit := p.currentVisit()
		if visit != nil && visit.Station == StationScreening {
			visit.ServiceStart = visit.ArrivedAt
			visit.ServiceEnd = s.Clock
			visit.State = VisitCompleted
		}
		s.startSecurity(p)
	}
}

// startSecurity joins the parallel security lanes, subject to patience and
// jockeying.
func (s *Simulator) startSecurity(p *Passenger) {
	visit := p.beginVisit(StationSecurity, s.Clock)
	t := &Ticket{
		Passenger: p,
		Station:   StationSecurity,
		Priority:  p.Priority,
		Visit:     visit,
	}
	t.onGrant = func(t *Ticket) {
		s.Schedule(s.Clock+s.securityService.Sample(), &ServiceCompleteEvent{Ticket: t})
	}
	t.onAbandon = func(t *Ticket, balked bool) {
		s.abandon(p, balked)
	}
	s.Security.Request(t, s.drawPatience())
}

// startPassport is skipped for Schengen flights; otherwise the passenger's
// e-gate eligibility routes it to the automated gates or a manual booth.
func (s *Simulator) startPassport(p *Passenger) {
	if p.Flight.Schengen {
		s.startBoarding(p)
		return
	}
	pool, sampler := s.Booths, s.boothService
	if p.EgateEligible {
		pool, sampler = s.Egates, s.egateService
	}
	visit := p.beginVisit(StationPassport, s.Clock)
	t := &Ticket{
		Passenger: p,
		Station:   StationPassport,
		Priority:  p.Priority,
		Visit:     visit,
	}
	t.onGrant = func(t *Ticket) {
		s.Schedule(s.Clock+sampler.Sample(), &ServiceCompleteEvent{Ticket: t})
	}
	t.onAbandon = func(t *Ticket, balked bool) {
		s.abandon(p, balked)
	}
	pool.Request(t, s.drawPatience())
}

// startBoarding brings the passenger to its flight's gate.
func (s *Simulator) startBoarding(p *Passenger) {
	gate := s.gatesByFlight[p.Flight.ID]
	visit := p.beginVisit(StationBoarding, s.Clock)
	switch gate.State {
	case GatePending:
		gate.Waiting = append(gate.Waiting, p)
	case GateOpen:
		s.requestBoarding(gate, p, visit)
	case GateClosed:
		s.missFlight(p, visit)
	}
}

// requestBoarding queues the passenger for a boarding-pass scan. There is no
// reneging at the gate; the close event evicts whoever is still waiting.
func (s *Simulator) requestBoarding(g *Gate, p *Passenger, visit *VisitRecord) {
	t := &Ticket{
		Passenger: p,
		Station:   StationBoarding,
		Priority:  p.Priority,
		Visit:     visit,
	}
	t.onGrant = func(t *Ticket) {
		s.Schedule(s.Clock+s.boardingService.Sample(), &ServiceCompleteEvent{Ticket: t})
	}
	g.Agents.Request(t, Forever)
}

// handleGateOpen wakes the passengers that reached the gate early.
func (s *Simulator) handleGateOpen(g *Gate) {
	g.State = GateOpen
	s.Collector.ObserveFlightPhase(s.Clock, g.Flight, "GATE_OPEN")
	waiting := g.Waiting
	g.Waiting = nil
	for _, p := range waiting {
		s.requestBoarding(g, p, p.currentVisit())
	}
}

// handleGateClose ends the boarding window. Waiters still queued for an
// agent miss the flight; scans already in progress finish and board.
func (s *Simulator) handleGateClose(g *Gate) {
	g.State = GateClosed
	s.Collector.ObserveFlightPhase(s.Clock, g.Flight, "GATE_CLOSED")
	for _, p := range g.Waiting {
		s.missFlight(p, p.currentVisit())
	}
	g.Waiting = nil
	queued := append([]*Ticket(nil), g.Agents.queue.Items()...)
	for _, t := range queued {
		g.Agents.Withdraw(t)
		s.missFlight(t.Passenger, t.Visit)
	}
}

// missFlight completes a passenger's traversal without boarding.
func (s *Simulator) missFlight(p *Passenger, visit *VisitRecord) {
	if visit != nil {
		visit.State = VisitMissed
	}
	logrus.Debugf("<< MissedFlight: %s at %d ticks", p, s.Clock)
	p.Boarded = false
	s.complete(p)
}

// handleServiceComplete releases the slot, closes the visit, and advances
// the passenger to the next station of the pipeline.
func (s *Simulator) handleServiceComplete(t *Ticket) {
	t.pool.Release(t)
	p := t.Passenger
	if t.Visit != nil {
		t.Visit.ServiceEnd = s.Clock
		t.Visit.State = VisitCompleted
	}
	s.Collector.ObserveServiceEnd(s.Clock, t)

	switch t.Station {
	case StationCheckin:
		s.startScreening(p)
	case StationSecurity:
		s.startPassport(p)
	case StationPassport:
		s.startBoarding(p)
	case StationBoarding:
		gate := s.gatesByFlight[p.Flight.ID]
		gate.Boarded++
		p.Boarded = true
		s.complete(p)
	default:
		panic(fmt.Sprintf("service complete at unknown station %q", t.Station))
	}
}

// complete records the terminal outcome of a finished traversal.
func (s *Simulator) complete(p *Passenger) {
	p.Outcome = OutcomeCompleted
	p.DoneAt = s.Clock
	s.Collector.ObserveCompleted(s.Clock, p)
}

// abandon records a renege or balk outcome. The passenger leaves the system;
// the run continues unaffected.
func (s *Simulator) abandon(p *Passenger, balked bool) {
	if balked {
		p.Outcome = OutcomeBalked
	} else {
		p.Outcome = OutcomeReneged
	}
	p.DoneAt = s.Clock
	s.Collector.ObserveAbandoned(s.Clock, p)
}
