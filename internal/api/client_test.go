package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/testutil"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, client.httpClient != nil)
	testutil.AssertEqual(t, client.baseURL, BaseURL)
	testutil.AssertEqual(t, client.attempts, 2)
	testutil.AssertEqual(t, client.probeTimeout, time.Second)
	testutil.AssertTrue(t, client.logger != nil)
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	mc := &mockCache{data: make(map[string][]byte)}
	client, err := NewClient(
		WithHTTPClient(hc),
		WithTimeout(30*time.Second),
		WithBaseURL("http://localhost:9999/"),
		WithCredentials("id", "key"),
		WithAttempts(3),
		WithAttempts(0),
		WithProbeURL("http://localhost:9999/ping"),
		WithProbeTimeout(2*time.Second),
		WithCache(mc),
		WithLogger(nil),
	)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, client.httpClient, hc)
	testutil.AssertEqual(t, client.httpClient.Timeout, 30*time.Second)
	testutil.AssertEqual(t, client.baseURL, "http://localhost:9999")
	testutil.AssertEqual(t, client.appID, "id")
	testutil.AssertEqual(t, client.appKey, "key")
	testutil.AssertEqual(t, client.attempts, 3)
	testutil.AssertEqual(t, client.probeURL, "http://localhost:9999/ping")
	testutil.AssertEqual(t, client.probeTimeout, 2*time.Second)
	testutil.AssertTrue(t, client.cache != nil)
	testutil.AssertTrue(t, client.logger != nil)
}

func TestFetchJSON_Credentials(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/", Body: `{"ok": true}`})
	defer ms.Close()

	client := newTestClient(ms.URL, WithCredentials("my-id", "my-key"))

	var out struct {
		OK bool `json:"ok"`
	}
	testutil.AssertNil(t, client.FetchJSON(context.Background(), "/Mode", nil, &out))
	testutil.AssertTrue(t, out.OK)

	q := ms.LastRequest().URL.Query()
	testutil.AssertEqual(t, q.Get("app_id"), "my-id")
	testutil.AssertEqual(t, q.Get("app_key"), "my-key")
	testutil.AssertEqual(t, ms.LastRequest().Header.Get("User-Agent"), userAgent)

	// absolute URLs are not TfL requests and get no credentials
	testutil.AssertNil(t, client.FetchJSON(context.Background(), ms.URL+"/station", nil, &out))
	testutil.AssertEqual(t, ms.LastRequest().URL.Query().Get("app_key"), "")
}

func TestFetchJSON_EmptyBody(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/", Body: "  \n"})
	defer ms.Close()

	client := newTestClient(ms.URL)

	arrivals := []models.ArrivalResponse{}
	err := client.FetchJSON(context.Background(), "/Line/district/Arrivals/940GZZLUADE", nil, &arrivals)
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, arrivals, 0)
}

func TestFetchJSON_InvalidJSON(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/", Body: "{not json"})
	defer ms.Close()

	client := newTestClient(ms.URL)

	var out map[string]any
	err := client.FetchJSON(context.Background(), "/Mode", nil, &out)
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "failed to parse")
	testutil.AssertFalse(t, errors.Is(err, ErrUpstream))
}

func TestFetchJSON_RetriesThenFails(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{
		Prefix: "/",
		Status: http.StatusInternalServerError,
		Body:   testutil.SampleErrorResponse,
	})
	defer ms.Close()

	client := newTestClient(ms.URL)

	var out any
	err := client.FetchJSON(context.Background(), "/Line/district/Arrivals/940GZZLUADE", nil, &out)
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, ErrUpstream)
	testutil.AssertErrorIs(t, err, ErrServerError)
	testutil.AssertEqual(t, ms.RequestCount(), 2)

	var ue *UpstreamError
	testutil.AssertTrue(t, errors.As(err, &ue))
	testutil.AssertEqual(t, ue.Attempts, 2)
	testutil.AssertEqual(t, ue.Endpoint, "/Line/district/Arrivals/940GZZLUADE")
}

func TestFetchJSON_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testutil.SampleArrivalsResponse))
	})
	defer ms.Close()

	client := newTestClient(ms.URL)

	arrivals, err := client.GetArrivals(context.Background(), []string{"district"}, "940GZZLUADE", models.DirectionInbound)
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, arrivals, 3)
	testutil.AssertEqual(t, ms.RequestCount(), 2)
}

func TestFetchJSON_ContextCancellation(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/", Body: "{}"})
	defer ms.Close()

	client := newTestClient(ms.URL, WithAttempts(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out any
	err := client.FetchJSON(ctx, "/Mode", nil, &out)
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, ErrTimeout)
	testutil.AssertErrorIs(t, err, ErrUpstream)
	testutil.AssertEqual(t, ms.RequestCount(), 0)
}

func TestSearchStopPoints(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/StopPoint/Search", Body: testutil.SampleSearchResponse})
	defer ms.Close()

	client := newTestClient(ms.URL)

	resp, err := client.SearchStopPoints(context.Background(), "Aldgate East", "tube")
	testutil.AssertNil(t, err)

	match, ok := resp.BestMatch()
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, match.ID, "940GZZLUADE")

	q := ms.LastRequest().URL.Query()
	testutil.AssertEqual(t, q.Get("query"), "Aldgate East")
	testutil.AssertEqual(t, q.Get("modes"), "tube")
	testutil.AssertEqual(t, q.Get("maxResults"), "1")
}

func TestSearchStopPoints_EmptyQuery(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.SearchStopPoints(context.Background(), "  ", "tube")
	var ve *ValidationError
	testutil.AssertTrue(t, errors.As(err, &ve))
	testutil.AssertEqual(t, ve.Field, "query")
}

func TestGetStopPoint(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/StopPoint/940GZZLUADE", Body: testutil.SampleStopPointResponse})
	defer ms.Close()

	client := newTestClient(ms.URL)

	sp, err := client.GetStopPoint(context.Background(), "940GZZLUADE")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, sp.StopID(), "940GZZLUADE")
	testutil.AssertLen(t, sp.LinesForMode("tube"), 2)
}

func TestGetStopPoint_NotFound(t *testing.T) {
	ms := testutil.NewRoutedServer()
	defer ms.Close()

	client := newTestClient(ms.URL)

	_, err := client.GetStopPoint(context.Background(), "940GZZLUXXX")
	testutil.AssertErrorIs(t, err, ErrNotFound)
	testutil.AssertErrorIs(t, err, ErrUpstream)
}

func TestGetArrivals(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/Line/", Body: testutil.SampleArrivalsResponse})
	defer ms.Close()

	client := newTestClient(ms.URL)

	arrivals, err := client.GetArrivals(context.Background(),
		[]string{"district", "hammersmith-city"}, "940GZZLUADE", models.DirectionOutbound)
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, arrivals, 3)

	req := ms.LastRequest()
	testutil.AssertEqual(t, req.URL.Path, "/Line/district,hammersmith-city/Arrivals/940GZZLUADE")
	testutil.AssertEqual(t, req.URL.Query().Get("direction"), "outbound")
}

func TestGetArrivals_Validation(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.GetArrivals(context.Background(), nil, "940GZZLUADE", models.DirectionInbound)
	testutil.AssertError(t, err)

	_, err = client.GetArrivals(context.Background(), []string{"district"}, "", models.DirectionInbound)
	testutil.AssertError(t, err)
}

func TestGetStationRequest(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/station", Body: testutil.SampleStationRequest})
	defer ms.Close()

	client := newTestClient("http://127.0.0.1:1")

	q, err := client.GetStationRequest(context.Background(), ms.URL+"/station")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, q.Name, "Aldgate East")
	testutil.AssertEqual(t, q.Direction, models.DirectionInbound)
	testutil.AssertEqual(t, q.RequestedOn, "2024-03-01T07:55:00Z")

	_, err = client.GetStationRequest(context.Background(), "")
	testutil.AssertError(t, err)
}

func TestClient_CacheOnlyStationMetadata(t *testing.T) {
	mc := &mockCache{data: make(map[string][]byte)}
	ms := testutil.NewRoutedServer(
		testutil.Route{Prefix: "/StopPoint/Search", Body: testutil.SampleSearchResponse},
		testutil.Route{Prefix: "/Line/", Body: testutil.SampleArrivalsResponse},
	)
	defer ms.Close()

	client := newTestClient(ms.URL, WithCache(mc), WithCredentials("id", "secret"))
	ctx := context.Background()

	for range 2 {
		_, err := client.SearchStopPoints(ctx, "Aldgate East", "tube")
		testutil.AssertNil(t, err)
		_, err = client.GetArrivals(ctx, []string{"district"}, "940GZZLUADE", models.DirectionInbound)
		testutil.AssertNil(t, err)
	}

	testutil.AssertEqual(t, ms.CountPath("/StopPoint/Search"), 1)
	testutil.AssertEqual(t, ms.CountPath("/Line/"), 2)
	testutil.AssertEqual(t, len(mc.data), 1)
	for key := range mc.data {
		testutil.AssertNotContains(t, key, "secret")
	}
}

func TestProbe(t *testing.T) {
	ms := testutil.NewRoutedServer(testutil.Route{Prefix: "/", Status: http.StatusServiceUnavailable})
	defer ms.Close()

	client := newTestClient(ms.URL, WithProbeURL(ms.URL+"/"))
	testutil.AssertEqual(t, client.Probe(context.Background()), Online)

	ms.Close()
	testutil.AssertEqual(t, client.Probe(context.Background()), Offline)
	testutil.AssertEqual(t, Offline.String(), "offline")
	testutil.AssertEqual(t, Online.String(), "online")
}

func TestProbe_Timeout(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	defer ms.Close()

	client := newTestClient(ms.URL, WithProbeURL(ms.URL), WithProbeTimeout(50*time.Millisecond))

	start := time.Now()
	testutil.AssertEqual(t, client.Probe(context.Background()), Offline)
	testutil.AssertTrue(t, time.Since(start) < 900*time.Millisecond)
}

type mockCache struct {
	data map[string][]byte
}

func (m *mockCache) Get(key string) ([]byte, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value []byte) error {
	m.data[key] = value
	return nil
}

// newTestClient returns a client pointed at baseURL
func newTestClient(baseURL string, opts ...ClientOption) *Client {
	client, _ := NewClient(append([]ClientOption{WithBaseURL(baseURL)}, opts...)...)
	return client
}
