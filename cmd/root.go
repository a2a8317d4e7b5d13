package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/terminal-sim/terminal-sim/sim"
	"github.com/terminal-sim/terminal-sim/sim/trace"
	"github.com/terminal-sim/terminal-sim/sim/workload"
)

var (
	// CLI flags for scenario selection and overrides
	scenarioName  string  // Named scenario preset
	configPath    string  // YAML scenario file (overrides the preset)
	seed          int64   // Run seed (negative keeps the scenario's seed)
	simDuration   float64 // Horizon override in minutes (0 keeps the scenario's)
	flightsPerDay int     // Flight volume override (0 keeps the scenario's)
	logLevel      string  // Log verbosity level
	traceLevel    string  // Transition trace level
	outputPath    string  // Snapshot YAML dump path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "terminal-sim",
	Short: "Discrete-event simulator for airport terminal departure flow",
}

// runCmd executes one simulation from a preset or scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one departure-flow simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveScenario(scenarioName, configPath)
		if err != nil {
			logrus.Fatalf("Resolving scenario: %v", err)
		}
		applyOverrides(cfg)

		level, err := trace.ParseLevel(traceLevel)
		if err != nil {
			logrus.Fatalf("Invalid trace level: %v", err)
		}

		snap, tr, err := runScenario(cfg, level)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printSummary(os.Stdout, snap)
		if tr != nil {
			printTraceSummary(os.Stdout, tr)
		}
		if outputPath != "" {
			if err := writeSnapshot(outputPath, snap); err != nil {
				logrus.Fatalf("Writing snapshot: %v", err)
			}
			logrus.Infof("Snapshot written to %s", outputPath)
		}
	},
}

// runScenario generates the day's workload for a config and runs it.
func runScenario(cfg *sim.Config, level trace.Level) (*sim.Snapshot, *trace.Trace, error) {
	flights, passengers, err := workload.Generate(cfg)
	if err != nil {
		return nil, nil, err
	}
	tr := trace.New(level)
	s, err := sim.NewSimulator(cfg, flights, passengers, sim.NewCollector(tr))
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.Run()
	if err != nil {
		return nil, nil, err
	}
	return snap, tr, nil
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenarioName, "scenario", "baseline", "Named scenario preset")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML scenario file (takes precedence over --scenario)")
	runCmd.Flags().Int64Var(&seed, "seed", -1, "Run seed (negative keeps the scenario's seed)")
	runCmd.Flags().Float64Var(&simDuration, "sim-duration", 0, "Simulation horizon in minutes (0 keeps the scenario's)")
	runCmd.Flags().IntVar(&flightsPerDay, "flights-per-day", 0, "Flight volume override (0 keeps the scenario's)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "off", "Transition trace level (off, flights, passengers, full)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the full results snapshot to a YAML file")

	rootCmd.AddCommand(runCmd)
}
