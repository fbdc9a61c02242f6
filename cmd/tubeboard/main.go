package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:   "tubeboard [station]",
		Short: "London Underground arrivals board for the terminal",
		Long: `tubeboard shows the next trains at a London Underground, DLR or
Overground station the way the platform dot-matrix displays do, using
live predictions from the TfL Unified API.

Features:
  - Full-screen board with the next three trains, refreshed every 30s
  - Countdowns that tick between refreshes
  - "Train approaching" alert and a blinking London clock
  - Station chosen by flag, config file, or a remote station service
  - One-shot arrivals listing with JSON output for scripting

Quick Start:
  1. Launch the board:         tubeboard "Aldgate East"
  2. Plain text board:         tubeboard "Aldgate East" --plain
  3. Check a station:          tubeboard resolve "Kings Cross"
  4. List arrivals:            tubeboard arrivals Bank --direction outbound
  5. Show configuration:       tubeboard config`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runBoard,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/tubeboard/config.yaml)")
	pf.StringP("station", "s", "", "Station name")
	pf.String("direction", "", "Direction: inbound or outbound")
	pf.String("mode", "", "Rail mode (tube, dlr, overground, elizabeth-line)")
	pf.String("source-url", "", "Read the requested station from this URL")
	pf.String("base-url", "", "TfL API base URL")
	pf.String("app-id", "", "TfL API app id")
	pf.String("app-key", "", "TfL API app key")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file")
	pf.StringVar(&a.color, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&a.noCache, "no-cache", false, "Disable the stop point cache")
	a.bindFlags(pf)

	root.Flags().BoolVar(&a.plain, "plain", false, "Render the board as plain text instead of the full-screen UI")

	root.AddCommand(a.resolveCmd())
	root.AddCommand(a.arrivalsCmd())
	root.AddCommand(a.probeCmd())
	root.AddCommand(a.configCmd())
	root.AddCommand(a.cacheCmd())

	return root
}
