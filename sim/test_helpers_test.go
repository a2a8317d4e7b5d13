package sim

// Shared helpers for engine tests: a bare simulator with hand-registered
// pools, driven by closure events instead of the full pipeline.

// funcEvent adapts a closure to the Event interface.
type funcEvent struct {
	fn func(*Simulator)
}

func (e *funcEvent) Execute(s *Simulator) {
	e.fn(s)
}

// newBareSim builds a simulator with no stations and no workload. Tests
// register pools and schedule events directly.
func newBareSim(untilMinutes float64) *Simulator {
	return &Simulator{
		Config:        DefaultConfig(),
		RNG:           NewPartitionedRNG(NewSimulationKey(1)),
		Until:         MinutesToTicks(untilMinutes),
		Collector:     NewCollector(nil),
		gatesByFlight: make(map[string]*Gate),
		heap:          NewEventHeap(),
	}
}

// addPool registers a standalone pool under its own station.
func addPool(s *Simulator, name string, capacity int) *ResourcePool {
	station := s.Collector.RegisterStation(name, capacity)
	return s.newPool(station, name, capacity)
}

// addLaneGroup registers a group of single-slot sibling pools.
func addLaneGroup(s *Simulator, name string, lanes, threshold int) *StationGroup {
	station := s.Collector.RegisterStation(name, lanes)
	pools := make([]*ResourcePool, lanes)
	g := &StationGroup{Name: name, Threshold: threshold, sim: s}
	for i := range pools {
		pools[i] = s.newPool(station, name, 1)
		pools[i].group = g
		pools[i].index = i
	}
	g.Pools = pools
	return g
}

// drain runs the dispatch loop without finalizing the collector, so tests
// can keep scheduling afterwards.
func drain(s *Simulator) {
	for {
		next := s.heap.Peek()
		if next == nil || next.at > s.Until {
			return
		}
		entry := s.heap.PopNext()
		if entry.canceled {
			continue
		}
		s.Clock = entry.at
		entry.event.Execute(s)
	}
}

// testFlight returns a minimal valid flight.
func testFlight(id string, schengen bool, departureMinutes float64) *Flight {
	dep := MinutesToTicks(departureMinutes)
	return &Flight{
		ID:                 id,
		Airline:            "Iberia",
		Destination:        "BCN",
		Aircraft:           "A320",
		Seats:              150,
		ScheduledDeparture: dep,
		ActualDeparture:    dep,
		Schengen:           schengen,
		Passengers:         1,
	}
}

// testPassenger returns a minimal valid passenger on the given flight.
func testPassenger(id string, f *Flight, arrivalMinutes float64) *Passenger {
	return &Passenger{
		ID:          id,
		Flight:      f,
		ArrivalTime: MinutesToTicks(arrivalMinutes),
	}
}
