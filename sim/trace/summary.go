package trace

import "sort"

// StationCount is the number of recorded transitions into one state at one
// station.
type StationCount struct {
	Station string
	State   string
	Count   int
}

// Summary aggregates a trace by station and state.
type Summary struct {
	Transitions  int
	FlightPhases int
	ByStation    []StationCount // sorted by station, then state
}

// Summarize aggregates the recorded transitions. A nil trace yields an empty
// summary.
func Summarize(t *Trace) Summary {
	if t == nil {
		return Summary{}
	}
	type key struct{ station, state string }
	counts := make(map[key]int)
	for _, rec := range t.Transitions {
		counts[key{rec.Station, rec.State}]++
	}
	byStation := make([]StationCount, 0, len(counts))
	for k, n := range counts {
		byStation = append(byStation, StationCount{Station: k.station, State: k.state, Count: n})
	}
	sort.Slice(byStation, func(i, j int) bool {
		if byStation[i].Station != byStation[j].Station {
			return byStation[i].Station < byStation[j].Station
		}
		return byStation[i].State < byStation[j].State
	})
	return Summary{
		Transitions:  len(t.Transitions),
		FlightPhases: len(t.Flights),
		ByStation:    byStation,
	}
}
