// Package testutil provides testing utilities for the PokeAPI client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock PokeAPI endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPokeAPI is a configurable mock PokeAPI server for testing.
type MockPokeAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockPokeAPI creates a new mock PokeAPI server.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		// Check for custom handler, keyed by path including query string.
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		mock.mu.RLock()
		handler, exists := mock.handlers[key]
		if !exists {
			handler, exists = mock.handlers[r.URL.Path]
		}
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockPokeAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPokeAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockPokeAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPokemon configures a minimal pokemon detail response reachable by
// both name and id.
func (m *MockPokeAPI) SetPokemon(id int, name string, types ...string) {
	slots := make([]string, len(types))
	for i, t := range types {
		slots[i] = fmt.Sprintf(`{"slot":%d,"type":{"name":"%s","url":"https://pokeapi.co/api/v2/type/1/"}}`, i+1, t)
	}
	body := fmt.Sprintf(`{"id":%d,"name":"%s","height":7,"weight":69,"base_experience":64,"types":[%s]}`,
		id, name, strings.Join(slots, ","))

	resp := MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
	m.SetResponse("/pokemon/"+name, resp)
	m.SetResponse(fmt.Sprintf("/pokemon/%d", id), resp)
}

// SetListing configures a pokemon listing response for the given limit.
func (m *MockPokeAPI) SetListing(limit int, names ...string) {
	items := make([]string, len(names))
	for i, name := range names {
		items[i] = fmt.Sprintf(`{"name":"%s","url":"https://pokeapi.co/api/v2/pokemon/%d/"}`, name, i+1)
	}
	body := fmt.Sprintf(`{"count":%d,"next":null,"previous":null,"results":[%s]}`,
		len(names), strings.Join(items, ","))

	m.SetResponse(fmt.Sprintf("/pokemon?limit=%d&offset=0", limit), MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler answers unconfigured paths with a PokeAPI-style 404.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
}
