// Package sim provides the discrete-event simulation engine for an airport
// terminal's departure flow.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the Event interface, the ScheduledEvent handle, and the
//     concrete event types that drive the run
//   - simulator.go: the virtual clock, the dispatch loop, and run teardown
//   - resource.go: resource pools with reneging, balking, and jockeying
//
// # Architecture
//
// The engine is single-threaded and cooperative: virtual time advances only
// inside Simulator.Run, and all state mutation happens while an event is
// being dispatched. Passengers are explicit state machines (passenger.go)
// moved through the station pipeline (pipeline.go) by scheduled events and
// by grant/renege continuations on their tickets.
//
// Sub-packages:
//   - sim/workload/: synthetic flight and passenger generation, scenario presets
//   - sim/trace/: optional transition trace recording
//
// # Determinism
//
// A run is fully determined by its configuration and SimulationKey. Events
// sharing a timestamp dispatch in scheduling order, and every random draw
// comes from a per-subsystem stream of the run's PartitionedRNG (rng.go), so
// no subsystem's draws can perturb another's.
package sim
