package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer wraps httptest.Server and records the requests it receives
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewMockServer creates a new mock HTTP server
func NewMockServer(handler http.HandlerFunc) *MockServer {
	ms := &MockServer{}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.requests = append(ms.requests, r.Clone(r.Context()))
		ms.mu.Unlock()
		handler(w, r)
	}))

	return ms
}

// Route maps a path prefix to a canned status and body
type Route struct {
	Prefix string
	Status int
	Body   string
}

// NewRoutedServer serves the first route whose prefix matches the request path.
// Unmatched paths return 404.
func NewRoutedServer(routes ...Route) *MockServer {
	return NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		for _, rt := range routes {
			if strings.HasPrefix(r.URL.Path, rt.Prefix) {
				status := rt.Status
				if status == 0 {
					status = http.StatusOK
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(rt.Body))
				return
			}
		}
		http.NotFound(w, r)
	})
}

// LastRequest returns the most recent request
func (ms *MockServer) LastRequest() *http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// RequestCount returns the number of requests received
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// CountPath returns how many requests hit paths with the given prefix
func (ms *MockServer) CountPath(prefix string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, r := range ms.requests {
		if strings.HasPrefix(r.URL.Path, prefix) {
			n++
		}
	}
	return n
}

// Reset clears the request history
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
}
