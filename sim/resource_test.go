package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ticketProbe records the grant/abandon outcome of one ticket.
type ticketProbe struct {
	ticket    *Ticket
	grantedAt int64 // -1 until granted
	abandonAt int64 // -1 until reneged or balked
	balked    bool
}

func probeRequest(s *Simulator, pool *ResourcePool, atMinutes, patienceMinutes, serviceMinutes float64, priority bool) *ticketProbe {
	probe := &ticketProbe{grantedAt: -1, abandonAt: -1}
	probe.ticket = &Ticket{Station: pool.Name, Priority: priority}
	probe.ticket.onGrant = func(t *Ticket) {
		probe.grantedAt = s.Clock
		s.Schedule(s.Clock+MinutesToTicks(serviceMinutes), &funcEvent{fn: func(s *Simulator) {
			t.pool.Release(t)
		}})
	}
	probe.ticket.onAbandon = func(t *Ticket, balked bool) {
		probe.abandonAt = s.Clock
		probe.balked = balked
	}
	patience := Forever
	if patienceMinutes >= 0 {
		patience = MinutesToTicks(patienceMinutes)
	}
	s.Schedule(MinutesToTicks(atMinutes), &funcEvent{fn: func(s *Simulator) {
		pool.Request(probe.ticket, patience)
	}})
	return probe
}

// Scenario: two desks, deterministic 2-minute service, infinite patience,
// arrivals at t = 0, 0, 1, 1, 2. Expected service starts 0, 0, 2, 2, 4 and a
// maximum queue length of 2.
func TestResourcePool_TwoServerDeterministicStarts(t *testing.T) {
	s := newBareSim(60)
	pool := addPool(s, "checkin", 2)

	arrivals := []float64{0, 0, 1, 1, 2}
	probes := make([]*ticketProbe, len(arrivals))
	for i, at := range arrivals {
		probes[i] = probeRequest(s, pool, at, -1, 2.0, false)
	}
	drain(s)

	wantStarts := []float64{0, 0, 2, 2, 4}
	for i, probe := range probes {
		require.GreaterOrEqual(t, probe.grantedAt, int64(0), "passenger %d never granted", i+1)
		assert.Equal(t, MinutesToTicks(wantStarts[i]), probe.grantedAt, "passenger %d start", i+1)
	}
	assert.Equal(t, 2, pool.stats.maxQueue, "max observed queue length")
	assert.Equal(t, 0, pool.Busy(), "all slots released")
}

// Scenario: one slot, deterministic 1-minute service, deterministic
// 3-minute patience, four simultaneous arrivals. The fourth passenger's
// service would start exactly at its patience expiry; commencement at the
// deadline counts as a grant, so it is served, not reneged.
func TestResourcePool_GrantAtDeadlineTieBreak(t *testing.T) {
	s := newBareSim(60)
	pool := addPool(s, "security", 1)

	probes := make([]*ticketProbe, 4)
	for i := range probes {
		probes[i] = probeRequest(s, pool, 0, 3.0, 1.0, false)
	}
	drain(s)

	for i, probe := range probes {
		require.GreaterOrEqual(t, probe.grantedAt, int64(0), "passenger %d never granted", i+1)
		assert.Equal(t, MinutesToTicks(float64(i)), probe.grantedAt, "passenger %d start", i+1)
		assert.Equal(t, int64(-1), probe.abandonAt, "passenger %d must not renege", i+1)
	}
	assert.Equal(t, 0, pool.stats.reneged)
}

func TestResourcePool_ZeroPatienceBalksEvenWithFreeSlot(t *testing.T) {
	s := newBareSim(60)
	pool := addPool(s, "security", 1)

	probe := probeRequest(s, pool, 0, 0, 1.0, false)
	drain(s)

	assert.Equal(t, int64(-1), probe.grantedAt, "balked ticket must not be granted")
	assert.Equal(t, int64(0), probe.abandonAt, "balk is immediate")
	assert.True(t, probe.balked)
	assert.Equal(t, 0, pool.Busy())
	assert.Equal(t, 1, pool.stats.balked)
}

func TestResourcePool_RenegeAtPatienceDeadline(t *testing.T) {
	s := newBareSim(120)
	pool := addPool(s, "security", 1)

	blocker := probeRequest(s, pool, 0, -1, 60.0, false)
	waiter := probeRequest(s, pool, 0, 5.0, 1.0, false)
	drain(s)

	assert.Equal(t, int64(0), blocker.grantedAt)
	assert.Equal(t, int64(-1), waiter.grantedAt)
	assert.Equal(t, MinutesToTicks(5), waiter.abandonAt, "renege fires at the deadline")
	assert.False(t, waiter.balked)
	assert.Equal(t, 0, pool.QueueLen())
	assert.Equal(t, 1, pool.stats.reneged)
}

func TestResourcePool_PriorityInsertsAheadOfRegularBehindPriority(t *testing.T) {
	s := newBareSim(120)
	pool := addPool(s, "checkin", 1)

	blocker := probeRequest(s, pool, 0, -1, 10.0, false)
	regular1 := probeRequest(s, pool, 1, -1, 1.0, false)
	priority1 := probeRequest(s, pool, 2, -1, 1.0, true)
	priority2 := probeRequest(s, pool, 3, -1, 1.0, true)
	regular2 := probeRequest(s, pool, 4, -1, 1.0, false)
	drain(s)

	// Service order after the blocker: priority1, priority2, regular1,
	// regular2.
	assert.Equal(t, MinutesToTicks(0), blocker.grantedAt)
	assert.Equal(t, MinutesToTicks(10), priority1.grantedAt)
	assert.Equal(t, MinutesToTicks(11), priority2.grantedAt)
	assert.Equal(t, MinutesToTicks(12), regular1.grantedAt)
	assert.Equal(t, MinutesToTicks(13), regular2.grantedAt)
}

func TestResourcePool_SimultaneousReleasesGrantMultipleWaiters(t *testing.T) {
	s := newBareSim(60)
	pool := addPool(s, "checkin", 2)

	first := probeRequest(s, pool, 0, -1, 2.0, false)
	second := probeRequest(s, pool, 0, -1, 2.0, false)
	third := probeRequest(s, pool, 1, -1, 1.0, false)
	fourth := probeRequest(s, pool, 1, -1, 1.0, false)
	drain(s)

	// Both slots free at t=2; both waiters must be granted then.
	assert.Equal(t, MinutesToTicks(0), first.grantedAt)
	assert.Equal(t, MinutesToTicks(0), second.grantedAt)
	assert.Equal(t, MinutesToTicks(2), third.grantedAt)
	assert.Equal(t, MinutesToTicks(2), fourth.grantedAt)
}

func TestResourcePool_CapacityNeverExceeded(t *testing.T) {
	s := newBareSim(60)
	pool := addPool(s, "checkin", 3)

	for i := 0; i < 12; i++ {
		probeRequest(s, pool, float64(i%4), -1, 2.5, i%3 == 0)
	}
	guard := func(s *Simulator) {
		if pool.Busy() > pool.Capacity {
			t.Fatalf("busy %d exceeds capacity %d at clock %d", pool.Busy(), pool.Capacity, s.Clock)
		}
	}
	for minute := 0; minute <= 20; minute++ {
		s.Schedule(MinutesToTicks(float64(minute)), &funcEvent{fn: guard})
	}
	drain(s)
	assert.Equal(t, 0, pool.Busy())
}

func TestStationGroup_JockeyTriggersOnlyAboveThreshold(t *testing.T) {
	s := newBareSim(120)
	g := addLaneGroup(s, "security", 2, 1)

	// Occupy both lanes with long services, then stack waiters on lane 0
	// only. Jockeying rebalances on every enqueue.
	busy0 := probeRequest(s, g.Pools[0], 0, -1, 60.0, false)
	busy1 := probeRequest(s, g.Pools[1], 0, -1, 60.0, false)
	w1 := probeRequest(s, g.Pools[0], 1, -1, 1.0, false)
	s.Until = MinutesToTicks(1)
	drain(s)

	// Difference 1 is not strictly above threshold 1: no migration.
	assert.Equal(t, 1, g.Pools[0].QueueLen())
	assert.Equal(t, 0, g.Pools[1].QueueLen())

	w2 := probeRequest(s, g.Pools[0], 2, -1, 1.0, false)
	s.Until = MinutesToTicks(2)
	drain(s)

	// Difference 2 > 1: the tail waiter migrates to the shorter lane.
	assert.Equal(t, 1, g.Pools[0].QueueLen())
	assert.Equal(t, 1, g.Pools[1].QueueLen())
	assert.Same(t, g.Pools[1], w2.ticket.pool, "tail ticket moved to the sibling")
	assert.Same(t, g.Pools[0], w1.ticket.pool, "head ticket stays")

	_ = busy0
	_ = busy1
}

func TestStationGroup_JockeyedWaitIsContinuous(t *testing.T) {
	s := newBareSim(240)
	g := addLaneGroup(s, "security", 2, 0)

	// Lane 1 blocked for 20 minutes, lane 0 for 5. The waiter enqueues on
	// lane 1 at t=2, jockeys to lane 0, and is granted at t=5. Its wait
	// must span from the original enqueue, not the migration.
	probeRequest(s, g.Pools[0], 0, -1, 5.0, false)
	probeRequest(s, g.Pools[1], 0, -1, 20.0, false)
	waiter := probeRequest(s, g.Pools[1], 2, -1, 1.0, false)
	drain(s)

	require.Equal(t, MinutesToTicks(5), waiter.grantedAt)
	assert.Equal(t, MinutesToTicks(2), waiter.ticket.EnqueuedAt, "enqueue timestamp survives migration")
	assert.Equal(t, MinutesToTicks(3), waiter.ticket.WaitTicks(waiter.grantedAt), "wait continuous across the switch")
}

func TestStationGroup_JockeyPreservesPatienceDeadline(t *testing.T) {
	s := newBareSim(240)
	g := addLaneGroup(s, "security", 2, 1)

	// Both lanes blocked past the waiter's deadline. The waiter joins lane
	// 0 behind a filler, jockeys to lane 1, and must still renege 4
	// minutes after the original enqueue.
	probeRequest(s, g.Pools[0], 0, -1, 30.0, false)
	probeRequest(s, g.Pools[1], 0, -1, 30.0, false)
	filler := probeRequest(s, g.Pools[0], 1, -1, 1.0, false)
	waiter := probeRequest(s, g.Pools[0], 2, 4.0, 1.0, false)
	drain(s)

	assert.Same(t, g.Pools[1], waiter.ticket.pool, "waiter migrated")
	assert.Equal(t, int64(-1), waiter.grantedAt)
	assert.Equal(t, MinutesToTicks(6), waiter.abandonAt, "deadline anchored at the original enqueue")
	_ = filler
}
