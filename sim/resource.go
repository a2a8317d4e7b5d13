package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ticket states.
const (
	TicketWaiting   = "WAITING"
	TicketInService = "IN_SERVICE"
	TicketDone      = "DONE"
	TicketReneged   = "RENEGED"
	TicketBalked    = "BALKED"
	TicketEvicted   = "EVICTED" // withdrawn by the station (gate close)
)

// Ticket is one pending or granted claim on a resource pool slot. The wait
// clock (EnqueuedAt) and the absolute patience deadline survive jockeying: a
// migrated ticket keeps both, so its recorded wait is continuous across the
// queue switch.
type Ticket struct {
	Passenger *Passenger
	Station   string
	Priority  bool
	State     string

	EnqueuedAt int64
	Deadline   int64 // absolute tick; Forever means the ticket never reneges
	GrantedAt  int64

	// Visit is the passenger's visit record this ticket serves, nil for
	// bag tickets.
	Visit *VisitRecord

	// onGrant runs synchronously when a slot is assigned, in the same
	// event-processing step that canceled the patience timer.
	onGrant func(*Ticket)
	// onAbandon runs when the ticket balks or reneges.
	onAbandon func(t *Ticket, balked bool)

	pool          *ResourcePool
	patienceTimer *ScheduledEvent
}

func (t *Ticket) String() string {
	if t.Passenger == nil {
		return fmt.Sprintf("ticket %s", t.Station)
	}
	return fmt.Sprintf("%s@%s", t.Passenger.ID, t.Station)
}

// WaitTicks returns the time the ticket has spent waiting as of now.
func (t *Ticket) WaitTicks(now int64) int64 {
	return now - t.EnqueuedAt
}

// ResourcePool models a fixed-size bank of interchangeable service points
// with a single wait list. All mutation happens during scheduler-driven
// event processing.
type ResourcePool struct {
	Name     string
	Capacity int

	sim   *Simulator
	busy  int
	queue TicketQueue
	stats *PoolStats

	// group links sibling single-slot pools for jockeying; nil for a
	// standalone pool.
	group *StationGroup
	index int
}

// Busy returns the number of occupied slots.
func (p *ResourcePool) Busy() int {
	return p.busy
}

// QueueLen returns the number of waiting tickets.
func (p *ResourcePool) QueueLen() int {
	return p.queue.Len()
}

// Request enqueues a claim with a relative patience budget in ticks.
//
// A non-positive patience balks immediately, even when a slot is free: the
// passenger never enters the queue. Otherwise the ticket is granted at once
// if a slot is free, or queued with a patience timer when the budget is
// finite. Grant and timer cancellation are atomic within one event step.
func (p *ResourcePool) Request(t *Ticket, patience int64) {
	now := p.sim.Clock
	t.pool = p
	t.EnqueuedAt = now
	if patience <= 0 {
		t.State = TicketBalked
		if t.Visit != nil {
			t.Visit.State = VisitBalked
		}
		logrus.Debugf("<< Balk: %s at %d ticks", t, now)
		p.sim.Collector.ObserveBalk(now, t, p.stats)
		if t.onAbandon != nil {
			t.onAbandon(t, true)
		}
		return
	}
	if patience == Forever {
		t.Deadline = Forever
	} else {
		t.Deadline = now + patience
	}
	t.State = TicketWaiting
	if p.busy < p.Capacity {
		p.grant(t)
		return
	}
	p.queue.Insert(t)
	if t.Visit != nil {
		t.Visit.State = VisitQueued
	}
	p.sim.Collector.ObserveQueued(now, t, p.stats, p.queue.Len())
	if t.Deadline != Forever {
		t.patienceTimer = p.sim.Schedule(t.Deadline, &PatienceExpiredEvent{Ticket: t})
	}
	if p.group != nil {
		p.group.rebalance()
	}
}

// Release frees the slot held by a granted ticket and hands freed capacity
// to the wait-list head(s). Several releases landing on the same timestamp
// each grant independently.
func (p *ResourcePool) Release(t *Ticket) {
	if t.State != TicketInService {
		panic(fmt.Sprintf("release: ticket %s is %s, not in service", t, t.State))
	}
	if p.busy <= 0 {
		panic(fmt.Sprintf("release: pool %s has no occupied slots", p.Name))
	}
	p.busy--
	t.State = TicketDone
	p.sim.Collector.SampleBusy(p.sim.Clock, p.stats, p.busy)
	p.grantWaiters()
	if p.group != nil {
		p.group.rebalance()
	}
}

// Withdraw removes a still-waiting ticket without recording a renege. Used
// when the station itself retires the queue (boarding gate close).
func (p *ResourcePool) Withdraw(t *Ticket) {
	if t.State != TicketWaiting {
		return
	}
	if !p.queue.Remove(t) {
		panic(fmt.Sprintf("withdraw: ticket %s not queued at pool %s", t, p.Name))
	}
	if t.patienceTimer != nil {
		p.sim.Cancel(t.patienceTimer)
		t.patienceTimer = nil
	}
	t.State = TicketEvicted
	p.sim.Collector.SampleQueue(p.sim.Clock, p.stats, p.queue.Len())
}

func (p *ResourcePool) grantWaiters() {
	for p.busy < p.Capacity {
		t := p.queue.PopFront()
		if t == nil {
			return
		}
		p.sim.Collector.SampleQueue(p.sim.Clock, p.stats, p.queue.Len())
		p.grant(t)
	}
}

// grant assigns a free slot. The patience timer is canceled in the same
// step, so a ticket can never be both granted and reneged.
func (p *ResourcePool) grant(t *Ticket) {
	if p.busy >= p.Capacity {
		panic(fmt.Sprintf("grant: pool %s has no free slot", p.Name))
	}
	now := p.sim.Clock
	p.busy++
	t.State = TicketInService
	t.GrantedAt = now
	if t.Visit != nil {
		t.Visit.ServiceStart = now
		t.Visit.State = VisitInService
	}
	if t.patienceTimer != nil {
		p.sim.Cancel(t.patienceTimer)
		t.patienceTimer = nil
	}
	logrus.Debugf("<< Grant: %s after %d ticks waiting", t, t.WaitTicks(now))
	p.sim.Collector.ObserveGrant(now, t, p.stats, p.busy)
	if t.onGrant != nil {
		t.onGrant(t)
	}
}

// patienceExpired handles the patience timer firing. The renege is not
// committed inline: a commit event is posted at the same timestamp, so any
// release already pending at this instant dispatches first and may still
// grant the waiter. Service commencement at or before the deadline therefore
// counts as a grant.
func (p *ResourcePool) patienceExpired(t *Ticket) {
	if t.State != TicketWaiting {
		return
	}
	t.patienceTimer = nil
	p.sim.Schedule(p.sim.Clock, &RenegeCommitEvent{Ticket: t})
}

// commitRenege finalizes a renege unless an intervening same-timestamp
// release granted the ticket.
func (p *ResourcePool) commitRenege(t *Ticket) {
	if t.State != TicketWaiting {
		return
	}
	if !p.queue.Remove(t) {
		panic(fmt.Sprintf("renege: ticket %s not queued at pool %s", t, p.Name))
	}
	t.State = TicketReneged
	if t.Visit != nil {
		t.Visit.State = VisitReneged
	}
	now := p.sim.Clock
	logrus.Debugf("<< Renege: %s after %d ticks waiting", t, t.WaitTicks(now))
	p.sim.Collector.ObserveRenege(now, t, p.stats, p.queue.Len())
	if t.onAbandon != nil {
		t.onAbandon(t, false)
	}
	if p.group != nil {
		p.group.rebalance()
	}
}

// StationGroup is a set of sibling pools modeling one station laid out as
// parallel queues (security lanes). Requests join the best queue at arrival;
// after every queue mutation the group rebalances by jockeying.
type StationGroup struct {
	Name      string
	Pools     []*ResourcePool
	Threshold int // jockey when longest - shortest strictly exceeds this

	sim         *Simulator
	rebalancing bool
}

// Request routes the ticket to a pool with a free slot, or failing that to
// the shortest queue. Ties resolve to the lowest pool index.
func (g *StationGroup) Request(t *Ticket, patience int64) {
	for _, p := range g.Pools {
		if p.busy < p.Capacity {
			p.Request(t, patience)
			return
		}
	}
	g.shortest().Request(t, patience)
}

// TotalQueueLen returns the waiting count summed across sibling pools.
func (g *StationGroup) TotalQueueLen() int {
	total := 0
	for _, p := range g.Pools {
		total += p.queue.Len()
	}
	return total
}

func (g *StationGroup) shortest() *ResourcePool {
	best := g.Pools[0]
	for _, p := range g.Pools[1:] {
		if p.queue.Len() < best.queue.Len() {
			best = p
		}
	}
	return best
}

func (g *StationGroup) longest() *ResourcePool {
	best := g.Pools[0]
	for _, p := range g.Pools[1:] {
		if p.queue.Len() > best.queue.Len() {
			best = p
		}
	}
	return best
}

// rebalance migrates tail tickets from the longest queue to the shortest
// while their lengths differ by strictly more than the threshold. A migrated
// ticket keeps its enqueue timestamp and absolute patience deadline, and may
// be granted immediately when the target pool has a free slot.
func (g *StationGroup) rebalance() {
	if g.rebalancing || g.Threshold < 0 || len(g.Pools) < 2 {
		return
	}
	g.rebalancing = true
	defer func() { g.rebalancing = false }()

	for {
		longest, shortest := g.longest(), g.shortest()
		if longest.queue.Len()-shortest.queue.Len() <= g.Threshold {
			return
		}
		t := longest.queue.PopBack()
		now := g.sim.Clock
		g.sim.Collector.SampleQueue(now, longest.stats, longest.queue.Len())
		t.pool = shortest
		if t.Passenger != nil {
			t.Passenger.Jockeys++
		}
		logrus.Debugf("<< Jockey: %s %s -> %s", t, longest.Name, shortest.Name)
		g.sim.Collector.ObserveJockey(now, t, longest.stats, shortest.stats)
		if shortest.busy < shortest.Capacity {
			shortest.grant(t)
			continue
		}
		shortest.queue.Insert(t)
		g.sim.Collector.SampleQueue(now, shortest.stats, shortest.queue.Len())
	}
}
