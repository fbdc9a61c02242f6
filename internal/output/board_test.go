package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/testutil"
)

var boardNow = time.Date(2024, 3, 1, 8, 4, 5, 700*int(time.Millisecond), time.UTC)

func arrivalsView(approaching bool) models.ViewState {
	return models.ViewState{
		Mode:        models.ModeArrivals,
		StationName: "Aldgate East",
		Arrivals: []models.ArrivalRow{
			{Rank: 1, Destination: "Barking", Countdown: "", Approaching: approaching},
			{Rank: 2, Destination: "Upminster", Countdown: "3 mins"},
			{Rank: 3, Destination: "Upminster", Countdown: "12 mins"},
		},
		Approaching: approaching,
		Now:         boardNow,
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want string
	}{
		{"second half shows colons", boardNow, time.UTC, "08:04:05"},
		{"first half shows spaces", boardNow.Add(-400 * time.Millisecond), time.UTC, "08 04 05"},
		{"exactly half is spaces", time.Date(2024, 3, 1, 8, 4, 5, 500*int(time.Millisecond), time.UTC), time.UTC, "08 04 05"},
		{"summer time in London", time.Date(2024, 7, 1, 12, 0, 0, 900*int(time.Millisecond), time.UTC), London(), "13:00:00"},
		{"winter time in London", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), London(), "12 00 00"},
		{"nil location keeps zone", boardNow, nil, "08:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, FormatClock(tt.t, tt.loc), tt.want)
		})
	}
}

func TestLondon(t *testing.T) {
	testutil.AssertEqual(t, London().String(), "Europe/London")
}

func TestBoardLines_Arrivals(t *testing.T) {
	lines := BoardLines(arrivalsView(false), BoardOptions{Location: time.UTC})

	testutil.AssertLen(t, lines, 5)
	for _, l := range lines {
		testutil.AssertEqual(t, utf8.RuneCountInString(l.Text), DefaultWidth)
	}

	testutil.AssertEqual(t, lines[0].Kind, LineArrival)
	testutil.AssertTrue(t, strings.HasPrefix(lines[0].Text, "1 Barking"))
	testutil.AssertTrue(t, strings.HasPrefix(lines[1].Text, "2 Upminster"))
	testutil.AssertTrue(t, strings.HasSuffix(lines[1].Text, " 3 mins"))
	testutil.AssertTrue(t, strings.HasSuffix(lines[2].Text, " 12 mins"))
	testutil.AssertEqual(t, lines[2].Row.Rank, 3)

	testutil.AssertEqual(t, lines[3].Kind, LineBlank)
	testutil.AssertEqual(t, lines[4].Kind, LineClock)
	testutil.AssertEqual(t, strings.TrimSpace(lines[4].Text), "08:04:05")
}

func TestBoardLines_Approaching(t *testing.T) {
	lines := BoardLines(arrivalsView(true), BoardOptions{Location: time.UTC})

	testutil.AssertEqual(t, lines[3].Kind, LineAlert)
	testutil.AssertEqual(t, strings.TrimSpace(lines[3].Text), MsgTrainApproaching)
}

func TestBoardLines_FewerArrivalsThanRows(t *testing.T) {
	v := arrivalsView(false)
	v.Arrivals = v.Arrivals[:1]

	lines := BoardLines(v, BoardOptions{Location: time.UTC})
	testutil.AssertLen(t, lines, 5)
	testutil.AssertEqual(t, lines[1].Kind, LineBlank)
	testutil.AssertEqual(t, lines[2].Kind, LineBlank)
}

func TestBoardLines_RowLimit(t *testing.T) {
	lines := BoardLines(arrivalsView(false), BoardOptions{Rows: 2, Location: time.UTC})

	testutil.AssertLen(t, lines, 4)
	testutil.AssertEqual(t, lines[2].Kind, LineBlank)
}

func TestBoardLines_Screens(t *testing.T) {
	tests := []struct {
		name  string
		view  models.ViewState
		first string
		extra string
	}{
		{"welcome", models.ViewState{Mode: models.ModeWelcome, StationName: "Aldgate East"}, "Welcome to Aldgate East Station", ""},
		{"welcome without station", models.ViewState{Mode: models.ModeWelcome}, "Welcome", ""},
		{"not in service", models.ViewState{Mode: models.ModeNotInService, StationName: "Nowhere"}, "Nowhere", MsgNotInService},
		{"offline", models.ViewState{Mode: models.ModeOffline}, MsgOffline, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.view.Now = boardNow
			lines := BoardLines(tt.view, BoardOptions{Location: time.UTC})

			testutil.AssertLen(t, lines, 5)
			testutil.AssertEqual(t, lines[0].Kind, LineMessage)
			testutil.AssertEqual(t, strings.TrimSpace(lines[0].Text), tt.first)
			if tt.extra != "" {
				testutil.AssertEqual(t, strings.TrimSpace(lines[1].Text), tt.extra)
			}
			testutil.AssertEqual(t, lines[4].Kind, LineClock)
		})
	}
}

func TestFormatRow_TruncatesDestination(t *testing.T) {
	row := models.ArrivalRow{Rank: 1, Destination: "Heathrow Terminals 2 & 3 via Piccadilly Circus", Countdown: "12 mins"}

	got := FormatRow(row, 30)
	testutil.AssertEqual(t, utf8.RuneCountInString(got), 30)
	testutil.AssertTrue(t, strings.HasPrefix(got, "1 Heathrow"))
	testutil.AssertTrue(t, strings.HasSuffix(got, " 12 mins"))
}

func TestRenderBoard(t *testing.T) {
	var buf bytes.Buffer
	RenderBoard(&buf, arrivalsView(true), BoardOptions{Colors: NewColors(ColorNever), Location: time.UTC})

	output := buf.String()
	testutil.AssertLen(t, strings.Split(strings.TrimRight(output, "\n"), "\n"), 5)
	testutil.AssertContains(t, output, "1 Barking")
	testutil.AssertContains(t, output, "12 mins")
	testutil.AssertContains(t, output, MsgTrainApproaching)
	testutil.AssertContains(t, output, "08:04:05")
	testutil.AssertNotContains(t, output, "\033[")
}

func TestCenterAndTruncate(t *testing.T) {
	testutil.AssertEqual(t, Center("ab", 6), "  ab  ")
	testutil.AssertEqual(t, Center("abc", 6), " abc  ")
	testutil.AssertEqual(t, Center("abcdefgh", 4), "abcd")
	testutil.AssertEqual(t, Truncate("Großbritannien", 4), "Groß")
	testutil.AssertEqual(t, Truncate("abc", 0), "")
	testutil.AssertEqual(t, WelcomeMessage("Bank"), "Welcome to Bank Station")
}
