package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/terminal-sim/terminal-sim/sim/trace"
)

// Collector is the passive observer of the run. It samples queue lengths and
// busy-slot counts on every transition event (never on a polling interval),
// so the time-weighted averages it reports are exact. It never alters
// scheduling or routing.
type Collector struct {
	trace *trace.Trace

	stations []*StationStats
	pools    []*PoolStats

	bagsScanned int
	closed      bool
}

// StationStats accumulates live statistics for one station, aggregated
// across its pools.
type StationStats struct {
	Name     string
	Capacity int

	queueLen      int
	busy          int
	lastQueueT    int64
	lastBusyT     int64
	queueIntegral int64 // queue-length x ticks
	busyIntegral  int64 // busy-slots x ticks
	maxQueue      int

	queueSeries []SeriesPoint
	busySeries  []SeriesPoint
	waits       []float64 // minutes waited by granted tickets

	processed int
	reneged   int
	balked    int
	jockeys   int
}

// PoolStats accumulates live statistics for one pool.
type PoolStats struct {
	Station  *StationStats
	Name     string
	Capacity int

	queueLen      int
	busy          int
	lastQueueT    int64
	lastBusyT     int64
	queueIntegral int64
	busyIntegral  int64
	maxQueue      int

	processed   int
	reneged     int
	balked      int
	jockeyedIn  int
	jockeyedOut int
}

// NewCollector creates a Collector. The trace may be nil.
func NewCollector(tr *trace.Trace) *Collector {
	return &Collector{trace: tr}
}

// RegisterStation adds a station in pipeline order.
func (c *Collector) RegisterStation(name string, capacity int) *StationStats {
	st := &StationStats{Name: name, Capacity: capacity}
	c.stations = append(c.stations, st)
	return st
}

// RegisterPool adds a pool under a registered station.
func (c *Collector) RegisterPool(station *StationStats, name string, capacity int) *PoolStats {
	ps := &PoolStats{Station: station, Name: name, Capacity: capacity}
	c.pools = append(c.pools, ps)
	return ps
}

// SampleQueue records a queue-length change on a pool.
//
// The max tracks the queue-length step function over virtual time: a value
// counts once it has persisted for nonzero duration. Same-timestamp
// transients (an arrival dispatched just before the releases that drain it)
// are not observable states of the queue.
func (c *Collector) SampleQueue(now int64, ps *PoolStats, length int) {
	delta := length - ps.queueLen
	ps.queueIntegral += int64(ps.queueLen) * (now - ps.lastQueueT)
	if now > ps.lastQueueT && ps.queueLen > ps.maxQueue {
		ps.maxQueue = ps.queueLen
	}
	ps.queueLen = length
	ps.lastQueueT = now

	st := ps.Station
	st.queueIntegral += int64(st.queueLen) * (now - st.lastQueueT)
	if now > st.lastQueueT && st.queueLen > st.maxQueue {
		st.maxQueue = st.queueLen
	}
	st.queueLen += delta
	st.lastQueueT = now
	st.queueSeries = appendPoint(st.queueSeries, now, st.queueLen)
}

// SampleBusy records a busy-slot change on a pool.
func (c *Collector) SampleBusy(now int64, ps *PoolStats, busy int) {
	delta := busy - ps.busy
	ps.busyIntegral += int64(ps.busy) * (now - ps.lastBusyT)
	ps.busy = busy
	ps.lastBusyT = now

	st := ps.Station
	st.busyIntegral += int64(st.busy) * (now - st.lastBusyT)
	st.busy += delta
	st.lastBusyT = now
	st.busySeries = appendPoint(st.busySeries, now, st.busy)
}

// appendPoint collapses same-timestamp samples to the last value, keeping
// the series a function of time.
func appendPoint(series []SeriesPoint, now int64, value int) []SeriesPoint {
	minute := TicksToMinutes(now)
	if n := len(series); n > 0 && series[n-1].Minute == minute {
		series[n-1].Value = value
		return series
	}
	return append(series, SeriesPoint{Minute: minute, Value: value})
}

// ObserveArrival traces a passenger entering the terminal.
func (c *Collector) ObserveArrival(now int64, p *Passenger) {
	c.trace.RecordTransition(trace.Transition{
		Clock: now, PassengerID: p.ID, FlightID: p.Flight.ID,
		Station: "terminal", State: VisitArrived,
	})
}

// ObserveQueued records a ticket joining a wait list.
func (c *Collector) ObserveQueued(now int64, t *Ticket, ps *PoolStats, length int) {
	c.SampleQueue(now, ps, length)
	c.recordTicket(now, t, VisitQueued)
}

// ObserveGrant records a service start: the wait sample and the busy change.
func (c *Collector) ObserveGrant(now int64, t *Ticket, ps *PoolStats, busy int) {
	ps.Station.waits = append(ps.Station.waits, TicksToMinutes(t.WaitTicks(now)))
	c.SampleBusy(now, ps, busy)
	c.recordTicket(now, t, VisitInService)
}

// ObserveServiceEnd records a service completion.
func (c *Collector) ObserveServiceEnd(now int64, t *Ticket) {
	t.pool.stats.processed++
	t.pool.stats.Station.processed++
	c.recordTicket(now, t, VisitCompleted)
}

// ObserveRenege records a patience expiry committed as a renege.
func (c *Collector) ObserveRenege(now int64, t *Ticket, ps *PoolStats, length int) {
	ps.reneged++
	ps.Station.reneged++
	c.SampleQueue(now, ps, length)
	c.recordTicket(now, t, VisitReneged)
}

// ObserveBalk records an immediate abandonment (zero queue time).
func (c *Collector) ObserveBalk(now int64, t *Ticket, ps *PoolStats) {
	ps.balked++
	ps.Station.balked++
	c.recordTicket(now, t, VisitBalked)
}

// ObserveJockey records a ticket migrating between sibling queues.
func (c *Collector) ObserveJockey(now int64, t *Ticket, from, to *PoolStats) {
	from.jockeyedOut++
	to.jockeyedIn++
	from.Station.jockeys++
	c.recordTicket(now, t, VisitJockeyed)
}

// ObserveBagScanned counts one bag clearing a scanner.
func (c *Collector) ObserveBagScanned(now int64) {
	c.bagsScanned++
}

// ObserveCompleted traces a passenger finishing its traversal.
func (c *Collector) ObserveCompleted(now int64, p *Passenger) {
	c.trace.RecordTransition(trace.Transition{
		Clock: now, PassengerID: p.ID, FlightID: p.Flight.ID,
		Station: "terminal", State: VisitCompleted,
	})
}

// ObserveAbandoned traces a passenger leaving after a renege or balk.
func (c *Collector) ObserveAbandoned(now int64, p *Passenger) {
	c.trace.RecordTransition(trace.Transition{
		Clock: now, PassengerID: p.ID, FlightID: p.Flight.ID,
		Station: "terminal", State: string(p.Outcome),
	})
}

// ObserveFlightPhase traces a flight lifecycle milestone.
func (c *Collector) ObserveFlightPhase(now int64, f *Flight, phase string) {
	c.trace.RecordFlightPhase(trace.FlightPhase{Clock: now, FlightID: f.ID, Phase: phase})
}

func (c *Collector) recordTicket(now int64, t *Ticket, state string) {
	if t.Passenger == nil {
		return
	}
	c.trace.RecordTransition(trace.Transition{
		Clock: now, PassengerID: t.Passenger.ID, FlightID: t.Passenger.Flight.ID,
		Station: t.Station, State: state,
	})
}

// Trace returns the transition trace, nil when tracing is off.
func (c *Collector) Trace() *trace.Trace {
	return c.trace
}

// Finalize closes every time-weighted integral at the horizon and builds the
// immutable results snapshot.
func (c *Collector) Finalize(s *Simulator) *Snapshot {
	until := s.Clock
	for _, ps := range c.pools {
		ps.queueIntegral += int64(ps.queueLen) * (until - ps.lastQueueT)
		if until > ps.lastQueueT && ps.queueLen > ps.maxQueue {
			ps.maxQueue = ps.queueLen
		}
		ps.lastQueueT = until
		ps.busyIntegral += int64(ps.busy) * (until - ps.lastBusyT)
		ps.lastBusyT = until
	}
	for _, st := range c.stations {
		st.queueIntegral += int64(st.queueLen) * (until - st.lastQueueT)
		if until > st.lastQueueT && st.queueLen > st.maxQueue {
			st.maxQueue = st.queueLen
		}
		st.lastQueueT = until
		st.busyIntegral += int64(st.busy) * (until - st.lastBusyT)
		st.lastBusyT = until
	}

	snap := &Snapshot{
		Seed:            s.Config.Seed,
		DurationMinutes: TicksToMinutes(until),
		Generated:       len(s.Passengers),
		BagsScanned:     c.bagsScanned,
	}

	var totalTimes, waitTimes []float64
	for _, p := range s.Passengers {
		rec := buildPassengerRecord(p, until)
		snap.Passengers = append(snap.Passengers, rec)
		snap.Jockeys += p.Jockeys
		switch p.Outcome {
		case OutcomeCompleted:
			snap.Completed++
			if p.Boarded {
				snap.Boarded++
			} else {
				snap.MissedFlights++
			}
			totalTimes = append(totalTimes, rec.TotalMinutes)
			waitTimes = append(waitTimes, rec.WaitMinutes)
		case OutcomeReneged:
			snap.Reneged++
		case OutcomeBalked:
			snap.Reneged++ // balks count within reneged
			snap.Balked++
		default:
			snap.InFlightAtCutoff++
		}
	}
	snap.TotalTime = NewDistribution(totalTimes)
	snap.WaitTime = NewDistribution(waitTimes)

	poolsByStation := make(map[*StationStats][]PoolSnapshot)
	for _, ps := range c.pools {
		poolsByStation[ps.Station] = append(poolsByStation[ps.Station], PoolSnapshot{
			Name:        ps.Name,
			Capacity:    ps.Capacity,
			Processed:   ps.processed,
			Reneged:     ps.reneged,
			Balked:      ps.balked,
			JockeyedIn:  ps.jockeyedIn,
			JockeyedOut: ps.jockeyedOut,
			MaxQueueLen: ps.maxQueue,
			AvgQueueLen: timeWeighted(ps.queueIntegral, until),
			Utilization: utilization(ps.busyIntegral, ps.Capacity, until),
		})
	}
	for _, st := range c.stations {
		snap.Stations = append(snap.Stations, StationSnapshot{
			Station:     st.Name,
			Capacity:    st.Capacity,
			Processed:   st.processed,
			Reneged:     st.reneged,
			Balked:      st.balked,
			Jockeys:     st.jockeys,
			AvgQueueLen: timeWeighted(st.queueIntegral, until),
			MaxQueueLen: st.maxQueue,
			Utilization: utilization(st.busyIntegral, st.Capacity, until),
			Wait:        NewDistribution(st.waits),
			QueueSeries: st.queueSeries,
			BusySeries:  st.busySeries,
			Pools:       poolsByStation[st],
		})
	}

	for _, g := range s.Gates {
		f := g.Flight
		fill := 0.0
		if f.Passengers > 0 {
			fill = float64(g.Boarded) / float64(f.Passengers)
		}
		snap.Flights = append(snap.Flights, FlightSnapshot{
			ID:              f.ID,
			Airline:         f.Airline,
			Destination:     f.Destination,
			Schengen:        f.Schengen,
			Delayed:         f.Delayed,
			ScheduledMinute: TicksToMinutes(f.ScheduledDeparture),
			ActualMinute:    TicksToMinutes(f.ActualDeparture),
			Seats:           f.Seats,
			Passengers:      f.Passengers,
			Boarded:         g.Boarded,
			Fill:            fill,
		})
	}

	return snap
}

func buildPassengerRecord(p *Passenger, until int64) PassengerRecord {
	rec := PassengerRecord{
		ID:            p.ID,
		FlightID:      p.Flight.ID,
		Priority:      p.Priority,
		OnlineCheckin: p.OnlineCheckin,
		CarryOnOnly:   p.CarryOnOnly,
		EgateEligible: p.EgateEligible,
		Bags:          p.Bags,
		ArrivalMinute: TicksToMinutes(p.ArrivalTime),
		Outcome:       string(p.Outcome),
		Boarded:       p.Boarded,
		Jockeys:       p.Jockeys,
	}
	end := p.DoneAt
	if end < 0 {
		end = until
	}
	rec.TotalMinutes = TicksToMinutes(end - p.ArrivalTime)
	for _, v := range p.Visits {
		vs := VisitSnapshot{
			Station:       v.Station,
			ArrivedMinute: TicksToMinutes(v.ArrivedAt),
			State:         v.State,
		}
		waitEnd := end
		if v.ServiceStart >= 0 {
			waitEnd = v.ServiceStart
			if v.ServiceEnd >= 0 {
				vs.ServiceMinutes = TicksToMinutes(v.ServiceEnd - v.ServiceStart)
			}
		}
		vs.WaitMinutes = TicksToMinutes(waitEnd - v.ArrivedAt)
		rec.WaitMinutes += vs.WaitMinutes
		rec.Visits = append(rec.Visits, vs)
	}
	return rec
}

func timeWeighted(integral int64, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(integral) / float64(duration)
}

func utilization(busyIntegral int64, capacity int, duration int64) float64 {
	if duration <= 0 || capacity <= 0 {
		return 0
	}
	return float64(busyIntegral) / (float64(capacity) * float64(duration))
}

// Close releases the collector's internal references. The snapshot built by
// Finalize stays valid; the collector must not be reused.
func (c *Collector) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.stations = nil
	c.pools = nil
	c.trace = nil
}

// Distribution captures the statistical summary of a metric, in minutes.
type Distribution struct {
	Mean  float64 `yaml:"mean"`
	P50   float64 `yaml:"p50"`
	P95   float64 `yaml:"p95"`
	P99   float64 `yaml:"p99"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Count int     `yaml:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns the zero Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// SeriesPoint is one event-driven sample of a station-level time series.
type SeriesPoint struct {
	Minute float64 `yaml:"minute"`
	Value  int     `yaml:"value"`
}

// Snapshot is the immutable result of one run. It is the only output the
// engine owns; rendering and persistence belong to external consumers.
type Snapshot struct {
	Seed            int64   `yaml:"seed"`
	DurationMinutes float64 `yaml:"duration_minutes"`

	Generated        int `yaml:"generated"`
	Completed        int `yaml:"completed"`
	Reneged          int `yaml:"reneged"` // includes balked
	Balked           int `yaml:"balked"`
	InFlightAtCutoff int `yaml:"in_flight_at_cutoff"`
	Boarded          int `yaml:"boarded"`
	MissedFlights    int `yaml:"missed_flights"`
	Jockeys          int `yaml:"jockeys"`
	BagsScanned      int `yaml:"bags_scanned"`

	TotalTime Distribution `yaml:"total_time"`
	WaitTime  Distribution `yaml:"wait_time"`

	Stations   []StationSnapshot `yaml:"stations"`
	Flights    []FlightSnapshot  `yaml:"flights"`
	Passengers []PassengerRecord `yaml:"passengers"`
}

// StationSnapshot summarizes one station, with its pools broken out.
type StationSnapshot struct {
	Station     string         `yaml:"station"`
	Capacity    int            `yaml:"capacity"`
	Processed   int            `yaml:"processed"`
	Reneged     int            `yaml:"reneged"`
	Balked      int            `yaml:"balked"`
	Jockeys     int            `yaml:"jockeys"`
	AvgQueueLen float64        `yaml:"avg_queue_len"`
	MaxQueueLen int            `yaml:"max_queue_len"`
	Utilization float64        `yaml:"utilization"`
	Wait        Distribution   `yaml:"wait"`
	QueueSeries []SeriesPoint  `yaml:"queue_series"`
	BusySeries  []SeriesPoint  `yaml:"busy_series"`
	Pools       []PoolSnapshot `yaml:"pools"`
}

// PoolSnapshot summarizes one pool of a station.
type PoolSnapshot struct {
	Name        string  `yaml:"name"`
	Capacity    int     `yaml:"capacity"`
	Processed   int     `yaml:"processed"`
	Reneged     int     `yaml:"reneged"`
	Balked      int     `yaml:"balked"`
	JockeyedIn  int     `yaml:"jockeyed_in"`
	JockeyedOut int     `yaml:"jockeyed_out"`
	MaxQueueLen int     `yaml:"max_queue_len"`
	AvgQueueLen float64 `yaml:"avg_queue_len"`
	Utilization float64 `yaml:"utilization"`
}

// FlightSnapshot summarizes one flight's boarding outcome.
type FlightSnapshot struct {
	ID              string  `yaml:"id"`
	Airline         string  `yaml:"airline"`
	Destination     string  `yaml:"destination"`
	Schengen        bool    `yaml:"schengen"`
	Delayed         bool    `yaml:"delayed"`
	ScheduledMinute float64 `yaml:"scheduled_minute"`
	ActualMinute    float64 `yaml:"actual_minute"`
	Seats           int     `yaml:"seats"`
	Passengers      int     `yaml:"passengers"`
	Boarded         int     `yaml:"boarded"`
	Fill            float64 `yaml:"fill"`
}

// VisitSnapshot is one station visit in a passenger record.
type VisitSnapshot struct {
	Station        string  `yaml:"station"`
	ArrivedMinute  float64 `yaml:"arrived_minute"`
	WaitMinutes    float64 `yaml:"wait_minutes"`
	ServiceMinutes float64 `yaml:"service_minutes"`
	State          string  `yaml:"state"`
}

// PassengerRecord is one passenger's outcome in the snapshot.
type PassengerRecord struct {
	ID            string          `yaml:"id"`
	FlightID      string          `yaml:"flight_id"`
	Priority      bool            `yaml:"priority"`
	OnlineCheckin bool            `yaml:"online_checkin"`
	CarryOnOnly   bool            `yaml:"carry_on_only"`
	EgateEligible bool            `yaml:"egate_eligible"`
	Bags          int             `yaml:"bags"`
	ArrivalMinute float64         `yaml:"arrival_minute"`
	Outcome       string          `yaml:"outcome"`
	Boarded       bool            `yaml:"boarded"`
	Jockeys       int             `yaml:"jockeys"`
	TotalMinutes  float64         `yaml:"total_minutes"`
	WaitMinutes   float64         `yaml:"wait_minutes"`
	Visits        []VisitSnapshot `yaml:"visits"`
}
