package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobil-koeln/tubeboard/internal/api"
	"github.com/mobil-koeln/tubeboard/internal/arrivals"
	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/output"
)

func (a *app) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [station]",
		Short: "Resolve a station name to its stop point and lines",
		Long: `Resolve a station name the way the board does: search TfL stop
points for the configured rail mode, pick the platform-level stop of an
interchange, and list the lines it serves.

Example:
  tubeboard resolve "Aldgate East"
  tubeboard resolve "Kings Cross" --mode tube --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runResolve,
	}
	cmd.Flags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")
	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := a.load(args, true)
	if err != nil {
		return err
	}
	log, err := a.newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := a.newClient(cfg, log)
	if err != nil {
		return err
	}

	st, err := a.resolve(cmd.Context(), cfg, client, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.jsonOut {
		return writeJSON(out, st)
	}
	output.RenderStation(out, st, output.TableOptions{Colors: a.colors()})
	return nil
}

func (a *app) arrivalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrivals [station]",
		Short: "List the predicted arrivals at a station",
		Long: `List every predicted arrival at the station in the configured
direction, soonest first.

Example:
  tubeboard arrivals "Aldgate East"
  tubeboard arrivals Bank --direction outbound --watch
  tubeboard arrivals Bank --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runArrivals,
	}
	cmd.Flags().BoolVarP(&a.watch, "watch", "w", false, "Watch mode: refresh on the arrival TTL")
	cmd.Flags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")
	return cmd
}

// arrivalsJSON is the --json shape of the arrivals command
type arrivalsJSON struct {
	Station   models.Station         `json:"station"`
	FetchedAt time.Time              `json:"fetchedAt"`
	Arrivals  []models.ArrivalRecord `json:"arrivals"`
}

func (a *app) runArrivals(cmd *cobra.Command, args []string) error {
	cfg, err := a.load(args, true)
	if err != nil {
		return err
	}
	log, err := a.newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := a.newClient(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := a.resolve(ctx, cfg, client, log)
	if err != nil {
		return err
	}
	if !st.Found() {
		if a.jsonOut {
			return writeJSON(out, arrivalsJSON{Station: st, Arrivals: []models.ArrivalRecord{}})
		}
		output.RenderStation(out, st, output.TableOptions{})
		return nil
	}

	store := arrivals.NewCache(client, arrivals.WithLogger(log))
	opts := output.TableOptions{Colors: a.colors(), Location: cfg.Location()}

	fetchAndRender := func() error {
		set, err := store.Refresh(ctx, st)
		if err != nil {
			return err
		}
		if a.jsonOut {
			records := set.Records
			if records == nil {
				records = []models.ArrivalRecord{}
			}
			return writeJSON(out, arrivalsJSON{Station: st, FetchedAt: set.FetchedAt, Arrivals: records})
		}
		_, _ = fmt.Fprintf(out, "%s %s\n\n",
			opts.Colors.Header("%s (%s)", st.DisplayName(), st.Direction),
			opts.Colors.Muted("%s", st.LineIDs()),
		)
		output.RenderArrivals(out, set, time.Now(), opts)
		return nil
	}

	if a.watch {
		return runWatch(ctx, out, cfg.Refresh.ArrivalTTL, fetchAndRender)
	}
	return fetchAndRender()
}

func (a *app) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check network connectivity the way the board does at startup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(nil, false)
			if err != nil {
				return err
			}
			log, err := a.newLogger(cfg, false)
			if err != nil {
				return err
			}
			client, err := a.newClient(cfg, log)
			if err != nil {
				return err
			}

			conn := client.Probe(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Probe.URL, conn)
			if conn != api.Online {
				return errors.New("network offline")
			}
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(nil, false)
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (a *app) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the stop point cache",
	}

	sweep := func(all bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(nil, false)
			if err != nil {
				return err
			}
			fc, err := a.fileCache(cfg)
			if err != nil {
				return err
			}

			var n int
			if all {
				n, err = fc.Clear()
			} else {
				n, err = fc.Cleanup()
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries from %s\n", n, fc.Dir())
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE:  sweep(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE:  sweep(false),
	})
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
