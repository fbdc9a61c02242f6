package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mobil-koeln/tubeboard/internal/output"
)

// runWatch runs a continuous refresh loop for watch mode
func runWatch(ctx context.Context, w io.Writer, interval time.Duration, fetchAndRender func() error) error {
	sigChan := output.SetupSignalHandler()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Hide cursor during watch mode
	output.HideCursor(w)
	defer output.ShowCursor(w)

	for {
		output.ClearScreen(w)

		now := time.Now()
		_, _ = fmt.Fprintf(w, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
			now.Format("15:04:05"), interval)

		if err := fetchAndRender(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			return nil
		case <-sigChan:
			output.ClearScreen(w)
			_, _ = fmt.Fprintln(w, "Watch mode ended.")
			return nil
		}
	}
}
