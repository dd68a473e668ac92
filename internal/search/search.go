// Package search implements the trusted-search collaborator: a SerpAPI-style
// JSON endpoint queried with site-restricted queries so only allow-listed
// authoritative domains can produce evidence.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/truelens/truelens/internal/model"
)

// Client retrieves evidence snippets restricted to an allow-list of domains.
type Client interface {
	Search(ctx context.Context, claimText string, allowedDomains []string) ([]model.EvidenceSnippet, error)
}

// SerpClient queries a SerpAPI-compatible endpoint. Results are cached in
// memory and calls are rate limited; the upstream quota is the scarce
// resource here, not latency.
type SerpClient struct {
	http    *http.Client
	config  model.SearchConfig
	limiter *rate.Limiter
	cache   *gocache.Cache
	log     *zap.Logger
}

// NewSerpClient creates a trusted-search client from configuration.
func NewSerpClient(cfg model.SearchConfig, cacheCfg model.CacheConfig, logger *zap.Logger) *SerpClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	ratePerSec := cfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	var c *gocache.Cache
	if cacheCfg.Enabled {
		ttl := cacheCfg.TTL
		if ttl == 0 {
			ttl = time.Hour
		}
		c = gocache.New(ttl, 10*time.Minute)
	}

	return &SerpClient{
		http:    &http.Client{Timeout: timeout},
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		cache:   c,
		log:     logger,
	}
}

type serpResponse struct {
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search runs a site-restricted query for the claim and returns evidence
// snippets deduplicated by exact snippet text.
func (c *SerpClient) Search(ctx context.Context, claimText string, allowedDomains []string) ([]model.EvidenceSnippet, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("search: API key not configured")
	}
	if len(allowedDomains) == 0 {
		return nil, nil
	}

	query := buildQuery(claimText, allowedDomains, c.config.MaxSites)

	if c.cache != nil {
		if cached, found := c.cache.Get(query); found {
			return cached.([]model.EvidenceSnippet), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search: rate limit wait: %w", err)
	}

	reqURL, err := c.requestURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	snippets := collectSnippets(parsed, allowedDomains)
	c.log.Debug("trusted search complete",
		zap.String("query", truncate(query, 100)),
		zap.Int("snippets", len(snippets)))

	if c.cache != nil {
		c.cache.SetDefault(query, snippets)
	}
	return snippets, nil
}

// buildQuery constructs the site-restricted query, capping the number of
// site: operators to keep the query string within limits.
func buildQuery(claimText string, domains []string, maxSites int) string {
	if maxSites <= 0 || maxSites > len(domains) {
		maxSites = len(domains)
	}
	ops := make([]string, 0, maxSites)
	for _, d := range domains[:maxSites] {
		ops = append(ops, "site:"+d)
	}
	return fmt.Sprintf("%q %s", claimText, strings.Join(ops, " OR "))
}

func (c *SerpClient) requestURL(query string) (string, error) {
	base := c.config.BaseURL
	if base == "" {
		base = "https://serpapi.com/search.json"
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("search: parse base URL: %w", err)
	}

	num := c.config.MaxResults
	if num == 0 {
		num = 10
	}

	q := u.Query()
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	q.Set("api_key", c.config.APIKey)
	if c.config.Country != "" {
		q.Set("gl", c.config.Country)
	}
	if c.config.Language != "" {
		q.Set("hl", c.config.Language)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// collectSnippets maps organic results to evidence snippets, attributing
// each result to the first allow-listed domain its link contains and
// deduplicating by exact snippet text.
func collectSnippets(parsed serpResponse, allowedDomains []string) []model.EvidenceSnippet {
	var snippets []model.EvidenceSnippet
	seen := make(map[string]bool)

	for _, res := range parsed.OrganicResults {
		if res.Snippet == "" || seen[res.Snippet] {
			continue
		}
		seen[res.Snippet] = true

		source := "unknown"
		for _, d := range allowedDomains {
			if strings.Contains(res.Link, d) {
				source = d
				break
			}
		}

		snippets = append(snippets, model.EvidenceSnippet{
			Source:  source,
			Title:   res.Title,
			Snippet: res.Snippet,
			Link:    res.Link,
		})
	}

	return snippets
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
