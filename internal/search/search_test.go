package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
)

func serpServer(t *testing.T, results []map[string]string, capture *http.Request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = *r
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"organic_results": results})
	}))
}

func testConfig(baseURL string) model.SearchConfig {
	return model.SearchConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		MaxResults: 10,
		MaxSites:   10,
		Country:    "in",
		Language:   "en",
		RatePerSec: 1000,
		Burst:      1000,
	}
}

func TestSerpClient_Search_RequiresAPIKey(t *testing.T) {
	cfg := testConfig("http://unused.example")
	cfg.APIKey = ""
	client := NewSerpClient(cfg, model.CacheConfig{}, zap.NewNop())

	_, err := client.Search(context.Background(), "claim", []string{"who.int"})
	if err == nil {
		t.Errorf("expected error without API key")
	}
}

func TestSerpClient_Search_EmptyAllowListShortCircuits(t *testing.T) {
	client := NewSerpClient(testConfig("http://unused.example"), model.CacheConfig{}, zap.NewNop())

	snippets, err := client.Search(context.Background(), "claim", nil)
	if err != nil || snippets != nil {
		t.Errorf("expected nil, nil for empty allow-list; got %v, %v", snippets, err)
	}
}

func TestSerpClient_Search_QueryConstruction(t *testing.T) {
	var captured http.Request
	server := serpServer(t, nil, &captured)
	defer server.Close()

	client := NewSerpClient(testConfig(server.URL), model.CacheConfig{}, zap.NewNop())
	_, err := client.Search(context.Background(), "hot water kills virus", []string{"cdc.gov", "who.int"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := captured.URL.Query()
	if q.Get("engine") != "google" {
		t.Errorf("expected engine=google, got %s", q.Get("engine"))
	}
	if q.Get("api_key") != "test-key" {
		t.Errorf("expected api key forwarded")
	}
	if q.Get("gl") != "in" || q.Get("hl") != "en" {
		t.Errorf("expected locale params, got gl=%s hl=%s", q.Get("gl"), q.Get("hl"))
	}
	query := q.Get("q")
	if !strings.Contains(query, `"hot water kills virus"`) {
		t.Errorf("expected quoted claim in query, got %q", query)
	}
	if !strings.Contains(query, "site:cdc.gov OR site:who.int") {
		t.Errorf("expected site restriction, got %q", query)
	}
}

func TestSerpClient_Search_CollectsAndDedupes(t *testing.T) {
	server := serpServer(t, []map[string]string{
		{"link": "https://www.who.int/a", "title": "WHO guidance", "snippet": "No evidence hot water kills the virus."},
		{"link": "https://www.cdc.gov/b", "title": "CDC page", "snippet": "No evidence hot water kills the virus."},
		{"link": "https://www.cdc.gov/c", "title": "CDC page 2", "snippet": "Wash hands regularly."},
		{"link": "https://random.example/d", "title": "Blog", "snippet": "Unattributed text."},
		{"link": "https://www.who.int/e", "title": "Empty", "snippet": ""},
	}, nil)
	defer server.Close()

	client := NewSerpClient(testConfig(server.URL), model.CacheConfig{}, zap.NewNop())
	snippets, err := client.Search(context.Background(), "claim", []string{"who.int", "cdc.gov"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snippets) != 3 {
		t.Fatalf("expected 3 snippets (dedup + empty dropped), got %d", len(snippets))
	}
	if snippets[0].Source != "who.int" {
		t.Errorf("expected attribution to who.int, got %s", snippets[0].Source)
	}
	if snippets[1].Source != "cdc.gov" {
		t.Errorf("expected attribution to cdc.gov, got %s", snippets[1].Source)
	}
	if snippets[2].Source != "unknown" {
		t.Errorf("off-list link should be attributed unknown, got %s", snippets[2].Source)
	}
}

func TestSerpClient_Search_CachesResponses(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"organic_results": []map[string]string{
			{"link": "https://www.who.int/a", "title": "t", "snippet": "s"},
		}})
	}))
	defer server.Close()

	client := NewSerpClient(testConfig(server.URL), model.CacheConfig{Enabled: true}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := client.Search(context.Background(), "same claim", []string{"who.int"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 upstream call for a repeated query, got %d", calls)
	}
}

func TestSerpClient_Search_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewSerpClient(testConfig(server.URL), model.CacheConfig{}, zap.NewNop())
	_, err := client.Search(context.Background(), "claim", []string{"who.int"})
	if err == nil {
		t.Errorf("expected error on upstream failure")
	}
}

func TestBuildQuery_CapsSites(t *testing.T) {
	query := buildQuery("claim", []string{"a.org", "b.org", "c.org"}, 2)
	if strings.Contains(query, "c.org") {
		t.Errorf("expected site cap to drop c.org, got %q", query)
	}
	if !strings.Contains(query, "site:a.org OR site:b.org") {
		t.Errorf("unexpected query: %q", query)
	}
}
