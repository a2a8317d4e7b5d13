package workload

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	sim "github.com/terminal-sim/terminal-sim/sim"
)

// GeneratePassengers synthesizes the passengers of every flight: behavioral
// attributes from the configured rates, checked bags from a clamped Poisson,
// and a terminal arrival time drawn against the scheduled departure.
//
// Every produced record satisfies Passenger.Validate; the simulator
// re-checks at construction regardless.
func GeneratePassengers(cfg *sim.Config, flights []*sim.Flight, rng *sim.PartitionedRNG) ([]*sim.Passenger, error) {
	r := rng.ForSubsystem(sim.SubsystemPassengers)
	src := rng.SourceFor(sim.SubsystemPassengers)

	bags, err := sim.NewPoissonCount(cfg.Stations.Screening.BagCountMean, 2, src)
	if err != nil {
		return nil, fmt.Errorf("bag count model: %w", err)
	}
	arrival := cfg.Flights.Arrival
	early := distuv.Normal{
		Mu:    arrival.EarlyMeanMinutes,
		Sigma: math.Max(arrival.EarlyStdMinutes, 1e-9),
		Src:   src,
	}

	var passengers []*sim.Passenger
	seq := 0
	for _, f := range flights {
		for i := 0; i < f.Passengers; i++ {
			seq++
			p := &sim.Passenger{
				ID:            fmt.Sprintf("PAX-%06d", seq),
				Flight:        f,
				OnlineCheckin: r.Float64() < cfg.Behavior.OnlineCheckin,
				CarryOnOnly:   r.Float64() < cfg.Behavior.CarryOnOnly,
				Priority:      r.Float64() < cfg.Behavior.Priority,
				EgateEligible: r.Float64() < cfg.Behavior.EgateEligible,
			}
			if !p.CarryOnOnly {
				p.Bags = bags.Sample()
			}
			lead := math.Max(arrival.MinLeadMinutes, early.Rand())
			at := f.ScheduledDeparture - sim.MinutesToTicks(lead)
			if at < 0 {
				at = 0
			}
			p.ArrivalTime = at
			passengers = append(passengers, p)
		}
	}
	return passengers, nil
}

// Generate is the one-call form: flights first, then their passengers, from
// a fresh RNG keyed on the config seed. The engine derives its own streams
// from the same seed, so a run is reproducible end to end.
func Generate(cfg *sim.Config) ([]*sim.Flight, []*sim.Passenger, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	flights, err := GenerateFlights(cfg, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generating flights: %w", err)
	}
	passengers, err := GeneratePassengers(cfg, flights, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generating passengers: %w", err)
	}
	return flights, passengers, nil
}
