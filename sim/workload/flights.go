// Package workload generates the synthetic input of a run: the day's flight
// schedule and the passengers on it. Generation is fully deterministic given
// the run seed; flights and passengers draw from dedicated RNG streams, so
// neither perturbs the engine's own draws.
package workload

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	sim "github.com/terminal-sim/terminal-sim/sim"
)

// GenerateFlights builds one day's departure schedule from the configured
// hourly pattern, airline and aircraft mixes, delay model, and load factors.
func GenerateFlights(cfg *sim.Config, rng *sim.PartitionedRNG) ([]*sim.Flight, error) {
	gen := cfg.Flights
	if err := validateShares(gen); err != nil {
		return nil, err
	}
	r := rng.ForSubsystem(sim.SubsystemFlights)
	src := rng.SourceFor(sim.SubsystemFlights)

	weightSum := 0.0
	for _, w := range gen.HourlyWeights {
		weightSum += w
	}
	if weightSum <= 0 {
		return nil, fmt.Errorf("hourly_weights sum to zero")
	}
	// Normalize so the daily Poisson means total per_day.
	scale := float64(gen.PerDay) / weightSum

	delay := distuv.Gamma{Alpha: 2.0, Beta: 2.0 / math.Max(gen.AvgDelayMinutes, 1e-9), Src: src}
	loadFactor := distuv.Normal{Mu: gen.LoadFactor.Mean, Sigma: math.Max(gen.LoadFactor.StdDev, 1e-9), Src: src}

	var flights []*sim.Flight
	seq := 0
	for hour := 0; hour < 24; hour++ {
		mean := gen.HourlyWeights[hour] * scale
		if mean <= 0 {
			continue
		}
		count := int(distuv.Poisson{Lambda: mean, Src: src}.Rand())
		for i := 0; i < count; i++ {
			seq++
			airline := gen.Airlines[pickWeighted(r, airlineShares(gen.Airlines))]
			aircraft := gen.Aircraft[pickWeighted(r, aircraftShares(gen.Aircraft))]

			scheduled := sim.MinutesToTicks(float64(hour)*60 + r.Float64()*60)
			actual := scheduled
			delayed := r.Float64() < airline.DelayProb
			if delayed && gen.AvgDelayMinutes > 0 {
				actual = scheduled + sim.MinutesToTicks(delay.Rand())
			}

			lf := clamp(loadFactor.Rand(), gen.LoadFactor.Min, gen.LoadFactor.Max)
			if gen.LoadFactor.OverbookProb > 0 && r.Float64() < gen.LoadFactor.OverbookProb {
				lf = 1 + r.Float64()*(gen.LoadFactor.OverbookMax-1)
			}

			flights = append(flights, &sim.Flight{
				ID:                 fmt.Sprintf("%s%04d", airline.Code, 1000+seq),
				Airline:            airline.Name,
				Destination:        destinationFor(r, gen),
				Aircraft:           aircraft.Type,
				WideBody:           aircraft.WideBody,
				Seats:              aircraft.Seats,
				ScheduledDeparture: scheduled,
				ActualDeparture:    actual,
				Delayed:            delayed,
				Schengen:           r.Float64() < gen.SchengenRate,
				Passengers:         int(math.Round(float64(aircraft.Seats) * lf)),
			})
		}
	}
	return flights, nil
}

// destinationFor picks a representative destination code. The Schengen flag
// on the flight is drawn separately; the code is informational only.
func destinationFor(r *rand.Rand, gen sim.FlightGenConfig) string {
	destinations := []string{"BCN", "CDG", "MAD", "LIS", "FRA", "PMI", "BRU", "VIE", "AMS", "LHR", "JFK", "MEX", "EZE", "BOG"}
	return destinations[r.IntN(len(destinations))]
}

func airlineShares(mix []sim.AirlineMix) []float64 {
	shares := make([]float64, len(mix))
	for i, a := range mix {
		shares[i] = a.Share
	}
	return shares
}

func aircraftShares(mix []sim.AircraftMix) []float64 {
	shares := make([]float64, len(mix))
	for i, a := range mix {
		shares[i] = a.Share
	}
	return shares
}

// pickWeighted draws an index proportionally to shares. Shares need not sum
// to one.
func pickWeighted(r *rand.Rand, shares []float64) int {
	total := 0.0
	for _, s := range shares {
		total += s
	}
	u := r.Float64() * total
	cumulative := 0.0
	for i, s := range shares {
		cumulative += s
		if u < cumulative {
			return i
		}
	}
	return len(shares) - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func validateShares(gen sim.FlightGenConfig) error {
	if len(gen.Airlines) == 0 {
		return fmt.Errorf("at least one airline required")
	}
	if len(gen.Aircraft) == 0 {
		return fmt.Errorf("at least one aircraft type required")
	}
	return nil
}
