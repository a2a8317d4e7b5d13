package workload

import (
	"fmt"
	"sort"

	sim "github.com/terminal-sim/terminal-sim/sim"
)

// Scenario is a named preset: a description plus a mutation applied on top
// of the baseline configuration.
type Scenario struct {
	Name        string
	Description string
	Apply       func(*sim.Config)
}

var scenarios = map[string]Scenario{
	"baseline": {
		Name:        "baseline",
		Description: "default terminal configuration",
		Apply:       func(*sim.Config) {},
	},
	"online-checkin-push": {
		Name:        "online-checkin-push",
		Description: "online check-in adoption raised to 70%",
		Apply: func(cfg *sim.Config) {
			cfg.Behavior.OnlineCheckin = 0.70
		},
	},
	"reduced-security": {
		Name:        "reduced-security",
		Description: "security capacity cut to 20 lanes",
		Apply: func(cfg *sim.Config) {
			cfg.Stations.Security.Lanes = 20
		},
	},
	"high-volume": {
		Name:        "high-volume",
		Description: "flight volume up 20%",
		Apply: func(cfg *sim.Config) {
			cfg.Flights.PerDay = cfg.Flights.PerDay * 12 / 10
		},
	},
}

// Preset returns a fresh baseline config with the named scenario applied.
func Preset(name string) (*sim.Config, error) {
	s, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q; valid: %v", name, PresetNames())
	}
	cfg := sim.DefaultConfig()
	s.Apply(cfg)
	return cfg, nil
}

// PresetNames lists the registered scenario names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description of a registered scenario, or "".
func Describe(name string) string {
	return scenarios[name].Description
}
