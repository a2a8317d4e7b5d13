package sim

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is the full scenario description for one run. It is immutable for
// the run's lifetime: every station and passenger process reads it, nothing
// writes it after Validate.
type Config struct {
	// SimDuration is the run horizon in minutes.
	SimDuration float64 `yaml:"sim_duration"`
	// Seed drives every random stream of the run.
	Seed int64 `yaml:"seed"`

	Stations StationsConfig `yaml:"stations"`
	Behavior BehaviorRates  `yaml:"behavior_rates"`

	// Patience is the reneging patience model (minutes) applied at
	// check-in, security, and passport control. Empty type means
	// passengers never renege.
	Patience DistSpec `yaml:"reneging_patience_model"`

	// JockeyingThreshold is the queue-length difference that must be
	// strictly exceeded before a waiter migrates between sibling security
	// lanes. Negative disables jockeying.
	JockeyingThreshold int `yaml:"jockeying_threshold"`

	Flights FlightGenConfig `yaml:"flights"`
}

// StationsConfig groups per-station resource counts and service models.
type StationsConfig struct {
	Checkin   CheckinConfig   `yaml:"checkin"`
	Screening ScreeningConfig `yaml:"screening"`
	Security  SecurityConfig  `yaml:"security"`
	Passport  PassportConfig  `yaml:"passport"`
	Boarding  BoardingConfig  `yaml:"boarding"`
}

// CheckinConfig describes the check-in desks.
type CheckinConfig struct {
	Desks int `yaml:"desks"` // total desks, dedicated groups included
	// Dedicated reserves desk groups for named airlines; the remainder
	// forms the general group.
	Dedicated map[string]int `yaml:"dedicated"`
	Service   DistSpec       `yaml:"service_time"`
	// PerBagMinutes is added to the service draw per checked bag.
	PerBagMinutes float64 `yaml:"per_bag_minutes"`
}

func (c *CheckinConfig) dedicatedTotal() int {
	total := 0
	for _, n := range c.Dedicated {
		total += n
	}
	return total
}

// dedicatedAirlines returns the dedicated airline names in sorted order, so
// pool registration order is deterministic.
func (c *CheckinConfig) dedicatedAirlines() []string {
	names := make([]string, 0, len(c.Dedicated))
	for name := range c.Dedicated {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScreeningConfig describes the baggage scanners.
type ScreeningConfig struct {
	Scanners int      `yaml:"scanners"`
	ScanTime DistSpec `yaml:"scan_time"`
	// BagCountMean parameterizes the per-passenger Poisson checked-bag
	// draw, clamped to [0, 2].
	BagCountMean float64 `yaml:"bag_count_mean"`
	// HoldPassenger keeps the passenger at the station until its last bag
	// clears. Off by default: bags scan independently.
	HoldPassenger bool `yaml:"hold_passenger"`
}

// SecurityConfig describes the security lanes. Each lane is a single-slot
// queue; the lanes form one jockeying group.
type SecurityConfig struct {
	Lanes   int      `yaml:"lanes"`
	Service DistSpec `yaml:"service_time"`
}

// PassportConfig describes passport control: manual booths plus e-gates.
type PassportConfig struct {
	Booths       int      `yaml:"booths"`
	Egates       int      `yaml:"egates"`
	BoothService DistSpec `yaml:"booth_service_time"`
	EgateService DistSpec `yaml:"egate_service_time"`
}

// BoardingConfig describes the per-flight boarding gates.
type BoardingConfig struct {
	AgentsPerGate int      `yaml:"agents_per_gate"`
	Service       DistSpec `yaml:"service_time"`
	// OpenLead is how many minutes before the actual departure the gate
	// opens; the window lengths close it again.
	OpenLead     float64 `yaml:"open_lead"`
	WideWindow   float64 `yaml:"wide_window"`
	NarrowWindow float64 `yaml:"narrow_window"`
}

// BehaviorRates are the per-passenger attribute probabilities, each in
// [0, 1].
type BehaviorRates struct {
	OnlineCheckin float64 `yaml:"online_checkin_rate"`
	EgateEligible float64 `yaml:"egate_eligible_rate"`
	Priority      float64 `yaml:"priority_rate"`
	CarryOnOnly   float64 `yaml:"carryon_only_rate"`
}

// FlightGenConfig parameterizes synthetic flight and passenger generation.
type FlightGenConfig struct {
	PerDay int `yaml:"per_day"`
	// HourlyWeights shape the nonhomogeneous daily pattern; entry h
	// scales the Poisson mean for hour h.
	HourlyWeights []float64 `yaml:"hourly_weights"`

	Airlines []AirlineMix  `yaml:"airlines"`
	Aircraft []AircraftMix `yaml:"aircraft"`

	// AvgDelayMinutes parameterizes the gamma delay drawn for a delayed
	// flight: gamma(shape 2, scale avg/2).
	AvgDelayMinutes float64 `yaml:"avg_delay_minutes"`

	LoadFactor LoadFactorConfig `yaml:"load_factor"`

	// SchengenRate is the probability a flight departs to a Schengen
	// destination (exempt from passport control).
	SchengenRate float64 `yaml:"schengen_rate"`

	Arrival ArrivalProfile `yaml:"arrival"`
}

// AirlineMix is one airline's share of the schedule.
type AirlineMix struct {
	Name      string  `yaml:"name"`
	Code      string  `yaml:"code"`
	Share     float64 `yaml:"share"`
	DelayProb float64 `yaml:"delay_prob"`
}

// AircraftMix is one aircraft type's share of the schedule.
type AircraftMix struct {
	Type     string  `yaml:"type"`
	Share    float64 `yaml:"share"`
	Seats    int     `yaml:"seats"`
	WideBody bool    `yaml:"wide_body"`
}

// LoadFactorConfig describes the seat-fill draw.
type LoadFactorConfig struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	// OverbookProb lifts the drawn factor above 1.0, capped at
	// OverbookMax.
	OverbookProb float64 `yaml:"overbook_prob"`
	OverbookMax  float64 `yaml:"overbook_max"`
}

// ArrivalProfile describes how early passengers reach the terminal,
// relative to the scheduled departure.
type ArrivalProfile struct {
	EarlyMeanMinutes float64 `yaml:"early_mean_minutes"`
	EarlyStdMinutes  float64 `yaml:"early_std_minutes"`
	MinLeadMinutes   float64 `yaml:"min_lead_minutes"`
}

// DefaultConfig is a Madrid-Barajas-T4-sized baseline: 24h horizon, 325
// flights, dedicated Iberia check-in desks, 26 single-slot security lanes
// with jockeying, and a 60-minute deterministic patience.
func DefaultConfig() *Config {
	return &Config{
		SimDuration: 24 * 60,
		Seed:        42,
		Stations: StationsConfig{
			Checkin: CheckinConfig{
				Desks:         174,
				Dedicated:     map[string]int{"Iberia": 100},
				Service:       DistSpec{Type: "normal", Params: map[string]float64{"mean": 2.0, "std_dev": 0.5}},
				PerBagMinutes: 0.5,
			},
			Screening: ScreeningConfig{
				Scanners:     31,
				ScanTime:     DistSpec{Type: "normal", Params: map[string]float64{"mean": 8.5 / 60, "std_dev": 1.5 / 60}},
				BagCountMean: 0.8,
			},
			Security: SecurityConfig{
				Lanes:   26,
				Service: DistSpec{Type: "normal", Params: map[string]float64{"mean": 25.0 / 60, "std_dev": 5.0 / 60}},
			},
			Passport: PassportConfig{
				Booths:       15,
				Egates:       10,
				BoothService: DistSpec{Type: "normal", Params: map[string]float64{"mean": 45.0 / 60, "std_dev": 10.0 / 60}},
				EgateService: DistSpec{Type: "normal", Params: map[string]float64{"mean": 12.5 / 60, "std_dev": 2.5 / 60}},
			},
			Boarding: BoardingConfig{
				AgentsPerGate: 2,
				Service:       DistSpec{Type: "deterministic", Params: map[string]float64{"value": 6.0 / 60}},
				OpenLead:      30,
				WideWindow:    45,
				NarrowWindow:  25,
			},
		},
		Behavior: BehaviorRates{
			OnlineCheckin: 0.50,
			EgateEligible: 0.70,
			Priority:      0.15,
			CarryOnOnly:   0.45,
		},
		Patience:           DistSpec{Type: "deterministic", Params: map[string]float64{"value": 60}},
		JockeyingThreshold: 3,
		Flights: FlightGenConfig{
			PerDay: 325,
			HourlyWeights: []float64{
				0.09, 0.09, 0.09, 0.09, 0.09, 0.01, 1.09, 2.54,
				1.18, 1.36, 1.81, 1.36, 1.18, 0.45, 0.72, 2.35,
				1.99, 0.91, 0.81, 2.17, 1.18, 0.72, 0.54, 0.18,
			},
			Airlines: []AirlineMix{
				{Name: "Iberia", Code: "IB", Share: 0.40, DelayProb: 0.16},
				{Name: "Vueling", Code: "VY", Share: 0.15, DelayProb: 0.15},
				{Name: "Air Europa", Code: "UX", Share: 0.12, DelayProb: 0.21},
				{Name: "Ryanair", Code: "FR", Share: 0.18, DelayProb: 0.21},
				{Name: "British Airways", Code: "BA", Share: 0.05, DelayProb: 0.24},
				{Name: "Iberia Express", Code: "I2", Share: 0.10, DelayProb: 0.21},
			},
			Aircraft: []AircraftMix{
				{Type: "B738", Share: 0.224, Seats: 180},
				{Type: "A320", Share: 0.181, Seats: 150},
				{Type: "CRJX", Share: 0.134, Seats: 90},
				{Type: "A20N", Share: 0.130, Seats: 150},
				{Type: "A321", Share: 0.122, Seats: 200},
				{Type: "ATR", Share: 0.071, Seats: 70},
				{Type: "B38M", Share: 0.051, Seats: 170},
				{Type: "A21N", Share: 0.051, Seats: 200},
				{Type: "A319", Share: 0.024, Seats: 120},
				{Type: "B789", Share: 0.012, Seats: 290, WideBody: true},
			},
			AvgDelayMinutes: 27,
			LoadFactor: LoadFactorConfig{
				Mean:         0.92,
				StdDev:       0.05,
				Min:          0.70,
				Max:          1.00,
				OverbookProb: 0.02,
				OverbookMax:  1.10,
			},
			SchengenRate: 0.65,
			Arrival: ArrivalProfile{
				EarlyMeanMinutes: 120,
				EarlyStdMinutes:  30,
				MinLeadMinutes:   30,
			},
		},
	}
}

// LoadConfig reads and strictly parses a YAML scenario file: unrecognized
// keys (typos) are rejected. The result is validated by NewSimulator, not
// here, so callers may still apply flag overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	return cfg, nil
}

// Validate checks every recognized option. It fails on the first offending
// field and names it; a failing config is never partially applied.
func (c *Config) Validate() error {
	if c.SimDuration <= 0 {
		return fmt.Errorf("sim_duration must be positive, got %f", c.SimDuration)
	}
	if c.Stations.Checkin.Desks <= 0 {
		return fmt.Errorf("checkin desks must be positive, got %d", c.Stations.Checkin.Desks)
	}
	for airline, n := range c.Stations.Checkin.Dedicated {
		if n <= 0 {
			return fmt.Errorf("dedicated desks for %s must be positive, got %d", airline, n)
		}
	}
	if dedicated := c.Stations.Checkin.dedicatedTotal(); dedicated >= c.Stations.Checkin.Desks {
		return fmt.Errorf("dedicated desks (%d) must leave at least one general desk of %d",
			dedicated, c.Stations.Checkin.Desks)
	}
	if c.Stations.Checkin.PerBagMinutes < 0 {
		return fmt.Errorf("per_bag_minutes must be nonnegative, got %f", c.Stations.Checkin.PerBagMinutes)
	}
	if c.Stations.Screening.Scanners <= 0 {
		return fmt.Errorf("screening scanners must be positive, got %d", c.Stations.Screening.Scanners)
	}
	if c.Stations.Screening.BagCountMean <= 0 {
		return fmt.Errorf("bag_count_mean must be positive, got %f", c.Stations.Screening.BagCountMean)
	}
	if c.Stations.Security.Lanes <= 0 {
		return fmt.Errorf("security lanes must be positive, got %d", c.Stations.Security.Lanes)
	}
	if c.Stations.Passport.Booths <= 0 {
		return fmt.Errorf("passport booths must be positive, got %d", c.Stations.Passport.Booths)
	}
	if c.Stations.Passport.Egates <= 0 {
		return fmt.Errorf("passport egates must be positive, got %d", c.Stations.Passport.Egates)
	}
	if c.Stations.Boarding.AgentsPerGate <= 0 {
		return fmt.Errorf("agents_per_gate must be positive, got %d", c.Stations.Boarding.AgentsPerGate)
	}
	if c.Stations.Boarding.OpenLead < 0 {
		return fmt.Errorf("boarding open_lead must be nonnegative, got %f", c.Stations.Boarding.OpenLead)
	}
	if c.Stations.Boarding.WideWindow <= 0 || c.Stations.Boarding.NarrowWindow <= 0 {
		return fmt.Errorf("boarding windows must be positive, got wide=%f narrow=%f",
			c.Stations.Boarding.WideWindow, c.Stations.Boarding.NarrowWindow)
	}

	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"online_checkin_rate", c.Behavior.OnlineCheckin},
		{"egate_eligible_rate", c.Behavior.EgateEligible},
		{"priority_rate", c.Behavior.Priority},
		{"carryon_only_rate", c.Behavior.CarryOnOnly},
		{"schengen_rate", c.Flights.SchengenRate},
		{"overbook_prob", c.Flights.LoadFactor.OverbookProb},
	} {
		if rate.value < 0 || rate.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", rate.name, rate.value)
		}
	}

	for _, spec := range []struct {
		name string
		spec DistSpec
	}{
		{"checkin service_time", c.Stations.Checkin.Service},
		{"screening scan_time", c.Stations.Screening.ScanTime},
		{"security service_time", c.Stations.Security.Service},
		{"passport booth_service_time", c.Stations.Passport.BoothService},
		{"passport egate_service_time", c.Stations.Passport.EgateService},
		{"boarding service_time", c.Stations.Boarding.Service},
	} {
		if err := ValidateDistSpec(spec.spec); err != nil {
			return fmt.Errorf("%s: %w", spec.name, err)
		}
	}
	if c.Patience.Type != "" {
		if err := ValidateDistSpec(c.Patience); err != nil {
			return fmt.Errorf("reneging_patience_model: %w", err)
		}
	}

	return c.Flights.validate()
}

func (f *FlightGenConfig) validate() error {
	if f.PerDay <= 0 {
		return fmt.Errorf("flights per_day must be positive, got %d", f.PerDay)
	}
	if len(f.HourlyWeights) != 24 {
		return fmt.Errorf("hourly_weights must have 24 entries, got %d", len(f.HourlyWeights))
	}
	for h, w := range f.HourlyWeights {
		if w < 0 {
			return fmt.Errorf("hourly_weights[%d] must be nonnegative, got %f", h, w)
		}
	}
	if len(f.Airlines) == 0 {
		return fmt.Errorf("at least one airline required")
	}
	for i, a := range f.Airlines {
		if a.Name == "" || a.Code == "" {
			return fmt.Errorf("airline %d needs a name and code", i)
		}
		if a.Share <= 0 {
			return fmt.Errorf("airline %s share must be positive, got %f", a.Name, a.Share)
		}
		if a.DelayProb < 0 || a.DelayProb > 1 {
			return fmt.Errorf("airline %s delay_prob must be in [0, 1], got %f", a.Name, a.DelayProb)
		}
	}
	if len(f.Aircraft) == 0 {
		return fmt.Errorf("at least one aircraft type required")
	}
	for i, a := range f.Aircraft {
		if a.Type == "" {
			return fmt.Errorf("aircraft %d needs a type", i)
		}
		if a.Share <= 0 {
			return fmt.Errorf("aircraft %s share must be positive, got %f", a.Type, a.Share)
		}
		if a.Seats <= 0 {
			return fmt.Errorf("aircraft %s seats must be positive, got %d", a.Type, a.Seats)
		}
	}
	if f.AvgDelayMinutes < 0 {
		return fmt.Errorf("avg_delay_minutes must be nonnegative, got %f", f.AvgDelayMinutes)
	}
	lf := f.LoadFactor
	if lf.Mean <= 0 || lf.StdDev < 0 {
		return fmt.Errorf("load_factor mean must be positive and std_dev nonnegative, got mean=%f std_dev=%f", lf.Mean, lf.StdDev)
	}
	if lf.Min < 0 || lf.Max < lf.Min {
		return fmt.Errorf("load_factor requires 0 <= min <= max, got [%f, %f]", lf.Min, lf.Max)
	}
	if lf.OverbookMax < 1 {
		return fmt.Errorf("overbook_max must be at least 1.0, got %f", lf.OverbookMax)
	}
	if f.Arrival.EarlyMeanMinutes <= 0 || f.Arrival.EarlyStdMinutes < 0 {
		return fmt.Errorf("arrival profile requires positive early_mean_minutes and nonnegative early_std_minutes")
	}
	if f.Arrival.MinLeadMinutes < 0 {
		return fmt.Errorf("min_lead_minutes must be nonnegative, got %f", f.Arrival.MinLeadMinutes)
	}
	return nil
}
