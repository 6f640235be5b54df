package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabtime/fabtime/app/timeline"
)

func newTestServer(t *testing.T, apiAccessKey string, baseURL string) http.Handler {
	t.Helper()

	// An empty config cache is enough: routes that pass the auth guard fail
	// with 404 on the unknown timeline before touching any repository.
	handler := NewHandler(timeline.NewConfigCache(t.TempDir()), nil, nil,
		timeline.NewFilterStore(), nil, nil, nil, nil, "test-agent")
	return NewServer(handler, apiAccessKey, baseURL)
}

func TestFilterMutationsRequireKeyWhenConfigured(t *testing.T) {
	router := newTestServer(t, "secret", "")

	for _, method := range []string{"PUT", "DELETE"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/timelines/history/filters", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without key: expected 401, got %d", method, w.Code)
		}

		w = httptest.NewRecorder()
		req = httptest.NewRequest(method, "/timelines/history/filters", strings.NewReader(`{}`))
		req.Header.Set("X-API-Key", "wrong")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s with wrong key: expected 401, got %d", method, w.Code)
		}
	}

	// A valid key passes the guard; the unknown timeline then 404s.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/timelines/history/filters", strings.NewReader(`{}`))
	req.Header.Set("X-API-Key", "secret")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("PUT with valid key: expected 404 for unknown timeline, got %d", w.Code)
	}

	// Reads are never guarded.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/timelines/history/filters", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET without key: expected 404 for unknown timeline, got %d", w.Code)
	}
}

func TestFilterMutationsOpenWithoutKey(t *testing.T) {
	router := newTestServer(t, "", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/timelines/history/filters", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown timeline when no key is configured, got %d", w.Code)
	}
}

func TestRootEndpointUsesBaseURL(t *testing.T) {
	router := newTestServer(t, "", "https://timelines.example.com/")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "https://timelines.example.com/timelines/") {
		t.Errorf("Expected endpoint URLs to carry the base URL, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "example.com//") {
		t.Errorf("Expected no doubled slash after the base URL, got %s", w.Body.String())
	}
}
