package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/led/backends"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/spf13/cobra"
)

// CreateProbeCmd creates the probe command for on-device diagnostics.
func CreateProbeCmd() *cobra.Command {
	var sysfsRoot string
	var forced string
	var verbose bool

	command := &cobra.Command{
		Use:   "probe",
		Short: "Probe for supported LED hardware",
		Long: `Tries the known sysfs LED control layouts in priority order and reports ` +
			`which backend matches this device. No pattern is applied; control files ` +
			`are opened and released again.`,
		Run: func(_ *cobra.Command, _ []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})
			logger := logging.GetLogger("probe")

			backend := led.Probe(backends.Candidates(sysfsRoot, logger), forced, logger)
			if backend == nil {
				fmt.Println("no supported LED hardware found")
				os.Exit(1)
			}
			defer backend.Close()

			fmt.Printf("backend:     %s\n", backend.Name)
			fmt.Printf("can breathe: %t\n", backend.CanBreathe)
			fmt.Printf("breath type: %s\n", backend.BreathType)
		},
	}

	command.Flags().StringVar(&sysfsRoot, "sysfs-root", backends.DefaultRoot, "Root of the sysfs LED class tree")
	command.Flags().StringVar(&forced, "backend", "", "Probe only the named backend")
	command.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each probe attempt")

	return command
}
