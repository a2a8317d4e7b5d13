package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator owns the virtual clock, the event queue, and every station of
// the departure pipeline. All simulation state is mutated only while Run
// dispatches an event; nothing runs concurrently with clock advancement.
type Simulator struct {
	Config *Config
	RNG    *PartitionedRNG

	// Clock is the current virtual time in ticks. It only moves forward,
	// and only inside Run.
	Clock int64
	// Until is the run horizon in ticks. Events beyond it stay pending.
	Until int64

	Flights    []*Flight
	Passengers []*Passenger

	// Stations, in pipeline order.
	CheckinGeneral   *ResourcePool
	CheckinDedicated map[string]*ResourcePool // airline name -> dedicated desk group
	Scanners         *ResourcePool
	Security         *StationGroup
	Egates           *ResourcePool
	Booths           *ResourcePool
	Gates            []*Gate

	Collector *Collector

	// Service-time and patience samplers, one per subsystem stream.
	checkinService  DurationSampler
	bagScan         DurationSampler
	securityService DurationSampler
	egateService    DurationSampler
	boothService    DurationSampler
	boardingService DurationSampler
	patience        DurationSampler

	gatesByFlight map[string]*Gate
	heap          *EventHeap
	nextSeq       uint64
}

// NewSimulator validates the configuration and every flight and passenger
// record, builds the station pools and boarding gates, and schedules the
// initial events (passenger arrivals, gate openings and closings). Nothing
// is partially applied: any validation failure returns before the first
// event exists.
func NewSimulator(cfg *Config, flights []*Flight, passengers []*Passenger, collector *Collector) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	flightIDs := make(map[string]*Flight, len(flights))
	for i, f := range flights {
		if f == nil {
			return nil, fmt.Errorf("flight %d is nil", i)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("flight %d: %w", i, err)
		}
		if _, dup := flightIDs[f.ID]; dup {
			return nil, fmt.Errorf("flight %d: duplicate id %q", i, f.ID)
		}
		flightIDs[f.ID] = f
	}
	for i, p := range passengers {
		if p == nil {
			return nil, fmt.Errorf("passenger %d is nil", i)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("passenger %d: %w", i, err)
		}
		if _, ok := flightIDs[p.Flight.ID]; !ok {
			return nil, fmt.Errorf("passenger %d: flight %q not in flight list", i, p.Flight.ID)
		}
		p.Outcome = OutcomeInFlight
		p.DoneAt = -1
	}
	if collector == nil {
		collector = NewCollector(nil)
	}

	s := &Simulator{
		Config:        cfg,
		RNG:           NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Until:         MinutesToTicks(cfg.SimDuration),
		Flights:       flights,
		Passengers:    passengers,
		Collector:     collector,
		gatesByFlight: make(map[string]*Gate, len(flights)),
		heap:          NewEventHeap(),
	}

	if err := s.buildSamplers(); err != nil {
		return nil, err
	}
	s.buildStations()
	s.buildGates()

	for _, p := range passengers {
		s.Schedule(p.ArrivalTime, &ArrivalEvent{Passenger: p})
	}

	return s, nil
}

func (s *Simulator) buildSamplers() (err error) {
	cfg := s.Config
	mk := func(spec DistSpec, subsystem string) DurationSampler {
		if err != nil {
			return nil
		}
		var sampler DurationSampler
		sampler, err = NewDurationSampler(spec, s.RNG.SourceFor(subsystem))
		return sampler
	}
	s.checkinService = mk(cfg.Stations.Checkin.Service, SubsystemCheckin)
	s.bagScan = mk(cfg.Stations.Screening.ScanTime, SubsystemScreening)
	s.securityService = mk(cfg.Stations.Security.Service, SubsystemSecurity)
	s.egateService = mk(cfg.Stations.Passport.EgateService, SubsystemPassport)
	s.boothService = mk(cfg.Stations.Passport.BoothService, SubsystemPassport)
	s.boardingService = mk(cfg.Stations.Boarding.Service, SubsystemBoarding)
	if cfg.Patience.Type != "" {
		// An absent patience model means infinite patience.
		s.patience = mk(cfg.Patience, SubsystemPatience)
	}
	return err
}

func (s *Simulator) buildStations() {
	cfg := s.Config

	dedicated := cfg.Stations.Checkin.dedicatedTotal()
	general := cfg.Stations.Checkin.Desks - dedicated
	checkin := s.Collector.RegisterStation(StationCheckin, cfg.Stations.Checkin.Desks)
	s.CheckinGeneral = s.newPool(checkin, "general", general)
	s.CheckinDedicated = make(map[string]*ResourcePool, len(cfg.Stations.Checkin.Dedicated))
	for _, airline := range cfg.Stations.Checkin.dedicatedAirlines() {
		s.CheckinDedicated[airline] = s.newPool(checkin, airline, cfg.Stations.Checkin.Dedicated[airline])
	}

	screening := s.Collector.RegisterStation(StationScreening, cfg.Stations.Screening.Scanners)
	s.Scanners = s.newPool(screening, "scanners", cfg.Stations.Screening.Scanners)

	security := s.Collector.RegisterStation(StationSecurity, cfg.Stations.Security.Lanes)
	lanes := make([]*ResourcePool, cfg.Stations.Security.Lanes)
	for i := range lanes {
		lanes[i] = s.newPool(security, fmt.Sprintf("lane-%02d", i), 1)
	}
	s.Security = &StationGroup{
		Name:      StationSecurity,
		Pools:     lanes,
		Threshold: cfg.JockeyingThreshold,
		sim:       s,
	}
	for i, lane := range lanes {
		lane.group = s.Security
		lane.index = i
	}

	passport := s.Collector.RegisterStation(StationPassport, cfg.Stations.Passport.Egates+cfg.Stations.Passport.Booths)
	s.Egates = s.newPool(passport, "egates", cfg.Stations.Passport.Egates)
	s.Booths = s.newPool(passport, "booths", cfg.Stations.Passport.Booths)
}

func (s *Simulator) newPool(station *StationStats, name string, capacity int) *ResourcePool {
	p := &ResourcePool{Name: name, Capacity: capacity, sim: s}
	p.stats = s.Collector.RegisterPool(station, name, capacity)
	return p
}

func (s *Simulator) buildGates() {
	cfg := s.Config.Stations.Boarding
	boarding := s.Collector.RegisterStation(StationBoarding, cfg.AgentsPerGate*len(s.Flights))
	for _, f := range s.Flights {
		window := cfg.NarrowWindow
		if f.WideBody {
			window = cfg.WideWindow
		}
		opensAt := f.ActualDeparture - MinutesToTicks(cfg.OpenLead)
		if opensAt < 0 {
			opensAt = 0
		}
		g := &Gate{
			Flight:   f,
			State:    GatePending,
			OpensAt:  opensAt,
			ClosesAt: opensAt + MinutesToTicks(window),
		}
		g.Agents = s.newPool(boarding, "gate-"+f.ID, cfg.AgentsPerGate)
		s.Gates = append(s.Gates, g)
		s.gatesByFlight[f.ID] = g
		s.Schedule(g.OpensAt, &GateOpenEvent{Gate: g})
		s.Schedule(g.ClosesAt, &GateCloseEvent{Gate: g})
	}
}

// Schedule enqueues an event at the given tick and returns its handle.
// Scheduling into the past is an engine defect and panics; Run recovers the
// panic and surfaces it as an error.
func (s *Simulator) Schedule(at int64, e Event) *ScheduledEvent {
	if at < s.Clock {
		panic(fmt.Sprintf("schedule into the past: %d < clock %d", at, s.Clock))
	}
	s.nextSeq++
	entry := &ScheduledEvent{at: at, seq: s.nextSeq, event: e}
	s.heap.Schedule(entry)
	return entry
}

// Cancel marks a pending event canceled. Canceling an already-fired or
// already-canceled handle is a no-op.
func (s *Simulator) Cancel(h *ScheduledEvent) {
	if h == nil {
		return
	}
	h.canceled = true
}

// Pending returns the number of entries still in the event queue, canceled
// entries included.
func (s *Simulator) Pending() int {
	return s.heap.Len()
}

// Run dispatches events in (timestamp, sequence) order until the queue is
// empty or the next event lies beyond the horizon, then advances the clock
// to the horizon and finalizes the collector. A scheduling-invariant
// violation aborts the run: the error is returned and no snapshot is
// published.
func (s *Simulator) Run() (snap *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("simulation aborted: %v", r)
			s.Collector.Close()
		}
	}()

	logrus.Infof("Run start: %d flights, %d passengers, horizon %.1f min",
		len(s.Flights), len(s.Passengers), TicksToMinutes(s.Until))

	for {
		next := s.heap.Peek()
		if next == nil || next.at > s.Until {
			break
		}
		entry := s.heap.PopNext()
		if entry.canceled {
			continue
		}
		if entry.at < s.Clock {
			panic(fmt.Sprintf("clock went backwards: %d < %d", entry.at, s.Clock))
		}
		s.Clock = entry.at
		entry.event.Execute(s)
	}
	s.Clock = s.Until

	snapshot := s.Collector.Finalize(s)
	s.Collector.Close()
	logrus.Infof("Run complete: %d/%d passengers finished the pipeline",
		snapshot.Completed, snapshot.Generated)
	return snapshot, nil
}

// drawPatience samples a patience budget in ticks for one queue wait.
// A nil patience model means passengers never renege.
func (s *Simulator) drawPatience() int64 {
	if s.patience == nil {
		return Forever
	}
	return s.patience.Sample()
}
