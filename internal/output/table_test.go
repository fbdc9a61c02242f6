package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/testutil"
)

var fetchedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func sampleSet() models.ArrivalSet {
	return models.NewArrivalSet([]models.ArrivalResponse{
		{ID: "a", LineID: "district", DestinationName: "Upminster Underground Station", PlatformName: "Eastbound - Platform 2", TimeToStation: 684},
		{ID: "b", LineID: "hammersmith-city", DestinationName: "Barking Underground Station", TimeToStation: 20},
		{ID: "c", LineID: "district", DestinationName: "", Towards: "Upminster", TimeToStation: 125},
	}, fetchedAt)
}

func TestRenderArrivals_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderArrivals(&buf, models.ArrivalSet{}, fetchedAt, TableOptions{Colors: NewColors(ColorNever)})

	testutil.AssertContains(t, buf.String(), "No arrivals found")
}

func TestRenderArrivals(t *testing.T) {
	var buf bytes.Buffer
	RenderArrivals(&buf, sampleSet(), fetchedAt, TableOptions{Colors: NewColors(ColorNever), Location: time.UTC})

	output := buf.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	testutil.AssertLen(t, lines, 4)

	// sorted by time to station
	testutil.AssertContains(t, lines[0], "08:00")
	testutil.AssertContains(t, lines[0], "due")
	testutil.AssertContains(t, lines[0], "hammersmith-city")
	testutil.AssertContains(t, lines[0], "Barking")

	testutil.AssertContains(t, lines[1], "08:02")
	testutil.AssertContains(t, lines[1], "3 mins")
	testutil.AssertContains(t, lines[1], "Upminster")

	testutil.AssertContains(t, lines[2], "08:11")
	testutil.AssertContains(t, lines[2], "12 mins")
	testutil.AssertContains(t, lines[3], "Eastbound - Platform 2")

	testutil.AssertNotContains(t, output, "Underground Station")
}

func TestRenderArrivals_CountdownsFollowClock(t *testing.T) {
	var buf bytes.Buffer
	RenderArrivals(&buf, sampleSet(), fetchedAt.Add(2*time.Minute), TableOptions{Location: time.UTC})

	output := buf.String()
	testutil.AssertContains(t, output, "10 mins")
	testutil.AssertNotContains(t, output, "3 mins")
}

func TestRenderArrivals_LocalTime(t *testing.T) {
	summer := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	set := models.NewArrivalSet([]models.ArrivalResponse{{ID: "a", DestinationName: "Bank", TimeToStation: 300}}, summer)

	var buf bytes.Buffer
	RenderArrivals(&buf, set, summer, TableOptions{})

	testutil.AssertContains(t, buf.String(), "09:05")
}

func TestRenderStation(t *testing.T) {
	q := models.NewStationQuery("Aldgate East", "inbound", "T1")
	st := models.FoundStation(q, "940GZZLUADE", "Aldgate East Underground Station", []string{"district", "hammersmith-city"})

	var buf bytes.Buffer
	RenderStation(&buf, st, TableOptions{Colors: NewColors(ColorNever)})

	output := buf.String()
	testutil.AssertContains(t, output, "Station:")
	testutil.AssertContains(t, output, "  Aldgate East\n")
	testutil.AssertContains(t, output, "ID: 940GZZLUADE")
	testutil.AssertContains(t, output, "Lines: district, hammersmith-city")
	testutil.AssertContains(t, output, "Direction: inbound")
	testutil.AssertContains(t, output, `tubeboard arrivals "Aldgate East" --direction inbound`)
}

func TestRenderStation_NotFound(t *testing.T) {
	var buf bytes.Buffer
	RenderStation(&buf, models.NotFound(models.NewStationQuery("Nowhere", "inbound", "T1")), TableOptions{})

	testutil.AssertEqual(t, buf.String(), "No station found for \"Nowhere\".\n")
}
