package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	sim "github.com/terminal-sim/terminal-sim/sim"
	"github.com/terminal-sim/terminal-sim/sim/trace"
)

// printSummary renders the run outcome as a text block. Full detail lives
// in the snapshot; this is the operator's view.
func printSummary(w io.Writer, snap *sim.Snapshot) {
	fmt.Fprintf(w, "\n=== Terminal departure flow: %.0f minutes, seed %d ===\n", snap.DurationMinutes, snap.Seed)
	fmt.Fprintf(w, "Passengers:  %d generated, %d completed (%.1f%%), %d reneged (%d balked), %d in flight at cutoff\n",
		snap.Generated, snap.Completed, percent(snap.Completed, snap.Generated),
		snap.Reneged, snap.Balked, snap.InFlightAtCutoff)
	fmt.Fprintf(w, "Boarding:    %d boarded, %d missed their flight; %d flights\n",
		snap.Boarded, snap.MissedFlights, len(snap.Flights))
	fmt.Fprintf(w, "Bags:        %d scanned\n", snap.BagsScanned)
	fmt.Fprintf(w, "Jockeys:     %d queue switches\n", snap.Jockeys)
	fmt.Fprintf(w, "Time in terminal (completed): mean %.1f min, p95 %.1f min, max %.1f min\n",
		snap.TotalTime.Mean, snap.TotalTime.P95, snap.TotalTime.Max)
	fmt.Fprintf(w, "Time waiting (completed):     mean %.1f min, p95 %.1f min, max %.1f min\n\n",
		snap.WaitTime.Mean, snap.WaitTime.P95, snap.WaitTime.Max)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "station\tcapacity\tprocessed\treneged\tavg queue\tmax queue\tavg wait (min)\tutilization")
	for _, st := range snap.Stations {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%d\t%.2f\t%.1f%%\n",
			st.Station, st.Capacity, st.Processed, st.Reneged,
			st.AvgQueueLen, st.MaxQueueLen, st.Wait.Mean, st.Utilization*100)
	}
	tw.Flush()
}

// printTraceSummary renders the transition-trace aggregation.
func printTraceSummary(w io.Writer, tr *trace.Trace) {
	summary := trace.Summarize(tr)
	fmt.Fprintf(w, "\nTrace: %d transitions, %d flight phases\n", summary.Transitions, summary.FlightPhases)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sc := range summary.ByStation {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", sc.Station, sc.State, sc.Count)
	}
	tw.Flush()
}

// writeSnapshot marshals the full snapshot to a YAML file.
func writeSnapshot(path string, snap *sim.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
