package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Corpus      CorpusConfig      `yaml:"corpus" mapstructure:"corpus"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Results     ResultsConfig     `yaml:"results" mapstructure:"results"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the extraction/verification/embedding backends.
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai or any OpenAI-compatible endpoint
	Model          string `yaml:"model" mapstructure:"model"`
	EmbeddingModel string `yaml:"embedding_model" mapstructure:"embedding_model"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the trusted-search collaborator client.
type SearchConfig struct {
	APIKey     string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout    int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxResults int     `yaml:"max_results" mapstructure:"max_results"`
	MaxSites   int     `yaml:"max_sites" mapstructure:"max_sites"` // site: operators per query
	Country    string  `yaml:"country" mapstructure:"country"`
	Language   string  `yaml:"language" mapstructure:"language"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst      int     `yaml:"burst" mapstructure:"burst"`
}

// CorpusConfig configures the known-misinformation store.
type CorpusConfig struct {
	Path                string  `yaml:"path" mapstructure:"path"` // sqlite database file
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	MatchPenalty        int     `yaml:"match_penalty" mapstructure:"match_penalty"`
}

// VerifyConfig configures the verification decision gates.
type VerifyConfig struct {
	MinTrustScore int `yaml:"min_trust_score" mapstructure:"min_trust_score"`
	MinEvidence   int `yaml:"min_evidence" mapstructure:"min_evidence"`
}

// ResultsConfig configures stage snapshot persistence.
type ResultsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP ingest surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ConcurrencyConfig controls batch processing parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls in-memory caching of search results and embeddings.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig controls the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        30,
			MaxTokens:      8192,
		},
		Search: SearchConfig{
			BaseURL:    "https://serpapi.com/search.json",
			Timeout:    20,
			MaxResults: 10,
			MaxSites:   10,
			Country:    "in",
			Language:   "en",
			RatePerSec: 1,
			Burst:      3,
		},
		Corpus: CorpusConfig{
			Path:                "truelens.db",
			SimilarityThreshold: 0.85,
			MatchPenalty:        30,
		},
		Verify: VerifyConfig{
			MinTrustScore: 40,
			MinEvidence:   2,
		},
		Results: ResultsConfig{
			Dir: "results",
		},
		Server: ServerConfig{
			Port: 8000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
