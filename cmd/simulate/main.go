// Command simulate runs cable temperature simulations from the terminal,
// without the HTTP service or the consumption ledger. Useful for sanity
// checking model parameters before deploying them.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terminal-bench/cabletherm/internal/thermal"
)

var (
	ambientTemperature float64
	windSpeed          float64
	currentIntensity   float64
	initialTemperature float64
	duration           float64
	timeStep           float64
	asJSON             bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Cable temperature simulator",
		Long: `Integrates the cable heating model over time and prints the resulting
temperature. Supports single runs, chained multi-interval runs and the
steady-state equilibrium for a given operating point.`,
	}

	rootCmd.PersistentFlags().Float64Var(&ambientTemperature, "ambient-temperature", 25, "Ambient temperature in °C")
	rootCmd.PersistentFlags().Float64Var(&windSpeed, "wind-speed", 1, "Wind speed in m/s")
	rootCmd.PersistentFlags().Float64Var(&currentIntensity, "current-intensity", 300, "Current intensity in A")
	rootCmd.PersistentFlags().Float64Var(&initialTemperature, "initial-temperature", 25, "Initial cable temperature in °C")
	rootCmd.PersistentFlags().Float64Var(&duration, "duration", 60, "Simulation duration in seconds")
	rootCmd.PersistentFlags().Float64Var(&timeStep, "time-step", 0.001, "Integration step in seconds")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(chainCmd())
	rootCmd.AddCommand(equilibriumCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func conditions() thermal.Conditions {
	return thermal.Conditions{
		AmbientTemperature: ambientTemperature,
		WindSpeed:          windSpeed,
		CurrentIntensity:   currentIntensity,
	}
}

// runCmd integrates one interval and prints the final temperature.
func runCmd() *cobra.Command {
	var withTrace bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := thermal.Integrate(initialTemperature, conditions(), duration, timeStep, withTrace)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(map[string]any{
					"final_temperature": res.FinalTemperature,
					"steps":             res.Steps,
					"temperature_trace": res.Trace,
				})
			}

			fmt.Printf("Final temperature after %gs: %.4f °C (%d steps)\n", duration, res.FinalTemperature, res.Steps)
			if withTrace {
				for _, p := range res.Trace {
					fmt.Printf("  t=%10.3fs  %.4f °C\n", p.TimeOffset, p.Temperature)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTrace, "trace", false, "Print the full temperature trajectory")
	return cmd
}

// chainCmd folds the integrator over n equal intervals, like the
// simulation_list endpoints do.
func chainCmd() *cobra.Command {
	var repetitions int

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Run a chained multi-interval simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			finals, err := thermal.Chain(initialTemperature, conditions(),
				thermal.Intervals(repetitions, duration), timeStep)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(map[string]any{"final_temperature_list": finals})
			}

			for i, temp := range finals {
				fmt.Printf("  t=%10.3fs  %.4f °C\n", float64(i+1)*duration, temp)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&repetitions, "repetitions", "n", 30, "Number of chained intervals")
	return cmd
}

// equilibriumCmd prints the steady-state temperature the cable relaxes
// toward under the given conditions.
func equilibriumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equilibrium",
		Short: "Print the steady-state temperature for the operating point",
		RunE: func(cmd *cobra.Command, args []string) error {
			eq := thermal.Equilibrium(conditions())

			if asJSON {
				return printJSON(map[string]any{"equilibrium_temperature": eq})
			}

			fmt.Printf("Equilibrium temperature: %.4f °C\n", eq)
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
