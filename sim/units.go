package sim

import "math"

// Simulated time is an int64 tick count; one tick is one millisecond.
// Configuration and reporting use minutes and convert at the edges.
const TicksPerMinute int64 = 60_000

// Forever is the patience value of a ticket that never reneges.
const Forever int64 = math.MaxInt64

// MinutesToTicks converts a duration in minutes to ticks, rounding to the
// nearest tick.
func MinutesToTicks(minutes float64) int64 {
	return int64(math.Round(minutes * float64(TicksPerMinute)))
}

// TicksToMinutes converts a tick count to minutes.
func TicksToMinutes(ticks int64) float64 {
	return float64(ticks) / float64(TicksPerMinute)
}
