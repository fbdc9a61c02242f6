package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/arrivals"
	"github.com/mobil-koeln/tubeboard/internal/config"
	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/output"
	"github.com/mobil-koeln/tubeboard/internal/scheduler"
	"github.com/mobil-koeln/tubeboard/internal/station"
	"github.com/mobil-koeln/tubeboard/internal/tui"
)

func (a *app) runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := a.load(args, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fullScreen := !a.plain && out == os.Stdout && output.IsTerminal(os.Stdout)

	log, err := a.newLogger(cfg, fullScreen)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := a.newClient(cfg, log)
	if err != nil {
		return err
	}

	source := station.NewSwitchableSource(a.newSource(cfg, client))
	store := arrivals.NewCache(client, arrivals.WithLogger(log))
	sched := scheduler.New(cfg.Scheduler(), client, source, a.newResolver(cfg, client, log), store,
		scheduler.WithLogger(log),
	)

	log.Info("starting board",
		zap.String("station", cfg.Station.Name),
		zap.String("direction", cfg.Station.Direction),
		zap.String("source_url", cfg.Station.SourceURL),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if fullScreen {
		return runTUI(ctx, cancel, sched, source, cfg, a.boardOptions(cfg))
	}
	return runPlain(ctx, out, sched, a.boardOptions(cfg))
}

func runTUI(ctx context.Context, cancel context.CancelFunc, sched *scheduler.Scheduler, source *station.SwitchableSource, cfg *config.Config, opts output.BoardOptions) error {
	model := tui.New(ctx, sched,
		tui.WithSwitcher(source),
		tui.WithFrameInterval(cfg.Refresh.Tick),
		tui.WithBoardOptions(opts),
	)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()

	cancel()
	sched.Wait()

	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// runPlain redraws the board in place on a terminal. Elsewhere a frame is
// only written when its content changes.
func runPlain(ctx context.Context, w io.Writer, sched *scheduler.Scheduler, opts output.BoardOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := output.SetupSignalHandler()
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	tty := w == os.Stdout && output.IsTerminal(os.Stdout)
	if tty {
		output.HideCursor(w)
		defer output.ShowCursor(w)
		output.ClearScreen(w)
	}

	last := ""
	return sched.Run(ctx, func(v models.ViewState) {
		if tty {
			output.CursorHome(w)
			output.RenderBoard(w, v, opts)
			return
		}
		if key := frameKey(v); key != last {
			last = key
			output.RenderBoard(w, v, opts)
			_, _ = fmt.Fprintln(w)
		}
	})
}

// frameKey identifies the board content apart from the clock
func frameKey(v models.ViewState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%t", v.Mode, v.StationName, v.Approaching)
	for _, row := range v.Arrivals {
		fmt.Fprintf(&b, "|%d %s %s", row.Rank, row.Destination, row.Countdown)
	}
	return b.String()
}
