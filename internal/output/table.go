package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

// TableOptions configures the listing output
type TableOptions struct {
	Colors   *Colors
	Location *time.Location
}

// RenderArrivals renders every record of set as a formatted table
func RenderArrivals(w io.Writer, set models.ArrivalSet, now time.Time, opts TableOptions) {
	if set.IsEmpty() {
		_, _ = fmt.Fprintln(w, "No arrivals found.")
		return
	}

	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}
	loc := opts.Location
	if loc == nil {
		loc = London()
	}

	for i, rec := range set.Records {
		// Expected time
		timeStr := rec.ExpectedArrival.In(loc).Format("15:04")

		// Countdown (fixed 8-char width, "due" below the label threshold)
		countdown := rec.Countdown(now)
		if countdown == "" {
			countdown = "due"
		}
		countdownStr := fmt.Sprintf("%8s", countdown)

		// Line (truncate/pad to 18 chars)
		line := rec.LineID
		if len(line) > 18 {
			line = line[:18]
		}
		lineStr := fmt.Sprintf("%-18s", line)

		// Destination
		dest := rec.Destination()
		if rec.ApproachingAtFetch || rec.Remaining(now) < models.StickyApproachThreshold {
			dest = c.Alert("%s", dest)
		}

		_, _ = fmt.Fprintf(w, "%s %s %s  %s  %s\n",
			c.Rank("%2d", i+1),
			c.Time("%s", timeStr),
			c.Countdown("%s", countdownStr),
			c.Line("%s", lineStr),
			dest,
		)

		if rec.PlatformName != "" {
			_, _ = fmt.Fprintf(w, "                                          %s\n", c.Platform("%s", rec.PlatformName))
		}
	}
}

// RenderStation renders a resolved station
func RenderStation(w io.Writer, st models.Station, opts TableOptions) {
	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}

	if !st.Found() {
		_, _ = fmt.Fprintf(w, "No station found for %q.\n", st.Query.Name)
		return
	}

	_, _ = fmt.Fprintln(w, c.Header("Station:"))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  %s\n", c.Line("%s", st.DisplayName()))
	_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("ID:"), st.ID)
	_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("Lines:"), strings.Join(st.Lines, ", "))
	_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("Direction:"), st.Direction)
	_, _ = fmt.Fprintf(w, "    %s tubeboard arrivals %q --direction %s\n",
		c.Muted("Use:"),
		st.Query.Name,
		st.Direction,
	)
}
