package cmd

import (
	sim "github.com/terminal-sim/terminal-sim/sim"
	"github.com/terminal-sim/terminal-sim/sim/workload"
)

// resolveScenario picks the run configuration: a YAML file when given,
// otherwise a named preset on top of the baseline.
func resolveScenario(preset, file string) (*sim.Config, error) {
	if file != "" {
		return sim.LoadConfig(file)
	}
	return workload.Preset(preset)
}

// applyOverrides layers the run flags over the resolved scenario. Zero and
// negative sentinels keep the scenario's own values.
func applyOverrides(cfg *sim.Config) {
	if seed >= 0 {
		cfg.Seed = seed
	}
	if simDuration > 0 {
		cfg.SimDuration = simDuration
	}
	if flightsPerDay > 0 {
		cfg.Flights.PerDay = flightsPerDay
	}
}
