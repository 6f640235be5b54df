package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.Client(), "test-key", "fabtime-test")
	client.baseURL = server.URL
	return client, server
}

func TestFetchRows_ZipsHeaderAgainstRows(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected API key on request, got %q", r.URL.Query().Get("key"))
		}
		w.Write([]byte(`{"range":"Sheet1!A1:E3","values":[
			["Year","Month","Headline"],
			["1987","9","full row"],
			["1945"]
		]}`))
	})
	defer server.Close()

	rows, err := client.FetchRows(context.Background(), "sheet123")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Headline"] != "full row" || rows[0]["Year"] != "1987" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}
	// Short rows leave trailing columns absent rather than blank.
	if _, ok := rows[1]["Month"]; ok {
		t.Errorf("Expected missing cell to be absent, got %q", rows[1]["Month"])
	}
	if rows[1]["Year"] != "1945" {
		t.Errorf("Unexpected second row year: %q", rows[1]["Year"])
	}
}

func TestFetchRows_HeaderOnlySheet(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values":[["Year","Headline"]]}`))
	})
	defer server.Close()

	rows, err := client.FetchRows(context.Background(), "sheet123")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows from a header-only sheet, got %d", len(rows))
	}
}

func TestFetchRows_HTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer server.Close()

	_, err := client.FetchRows(context.Background(), "sheet123")
	if err == nil {
		t.Error("Expected an error for a non-200 response")
	}
}

func TestFetchSheetList_SkipsHeaderAndBlankRows(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values":[
			["Sheet URL"],
			["abc123"],
			[""],
			["https://docs.google.com/spreadsheets/d/def456/edit#gid=0"]
		]}`))
	})
	defer server.Close()

	ids, err := client.FetchSheetList(context.Background(), "list-sheet")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 sheet IDs, got %d: %v", len(ids), ids)
	}
	if ids[0] != "abc123" || ids[1] != "def456" {
		t.Errorf("Unexpected sheet IDs: %v", ids)
	}
}

func TestExtractSheetID(t *testing.T) {
	cases := []struct {
		value    string
		expected string
	}{
		{"abc123", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123/edit", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123?usp=sharing", "abc123"},
		{"https://example.com/not-a-sheet", ""},
	}

	for _, c := range cases {
		if got := ExtractSheetID(c.value); got != c.expected {
			t.Errorf("ExtractSheetID(%q): expected %q, got %q", c.value, c.expected, got)
		}
	}
}
