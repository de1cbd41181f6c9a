package model

import "time"

// Config holds the complete claimcheck configuration
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search       SearchConfig      `yaml:"search" mapstructure:"search"`
	Post         PostConfig        `yaml:"post" mapstructure:"post"`
	Extraction   ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Verdict      VerdictConfig     `yaml:"verdict" mapstructure:"verdict"`
	Authority    AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Metrics      MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// HTTPConfig controls evidence page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxTextChars  int           `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the memory/disk/redis cache layers
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL     time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL       time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr     []string      `yaml:"redis_addrs,omitempty" mapstructure:"redis_addrs"`
	RedisPassword string        `yaml:"-" mapstructure:"redis_password"`
}

// ConcurrencyConfig controls worker pools
type ConcurrencyConfig struct {
	Workers         int `yaml:"workers" mapstructure:"workers"`                   // Posts processed in parallel by batch
	EvidenceWorkers int `yaml:"evidence_workers" mapstructure:"evidence_workers"` // Search results gathered in parallel per claim
}

// RateLimitConfig controls per-domain request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig selects the model provider backing claim detection, NLI and sentiment
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"-" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	ClaimThreshold float64 `yaml:"claim_threshold" mapstructure:"claim_threshold"`
}

// SearchConfig controls the web search provider
type SearchConfig struct {
	APIKey       string        `yaml:"-" mapstructure:"api_key"`
	EngineID     string        `yaml:"-" mapstructure:"engine_id"`
	Endpoint     string        `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	NumResults   int           `yaml:"num_results" mapstructure:"num_results"`
	ExcludeSites []string      `yaml:"exclude_sites" mapstructure:"exclude_sites"`
	SafeSearch   string        `yaml:"safe" mapstructure:"safe"`
	Country      string        `yaml:"country" mapstructure:"country"`
	Language     string        `yaml:"language" mapstructure:"language"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// PostConfig controls the post (tweet) fetcher
type PostConfig struct {
	APIKey  string        `yaml:"-" mapstructure:"api_key"`
	APIHost string        `yaml:"api_host,omitempty" mapstructure:"api_host"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ExtractionConfig tunes claim extraction and evidence gathering in the orchestrator
type ExtractionConfig struct {
	MinScore             float64 `yaml:"min_score" mapstructure:"min_score"`
	Quantile             float64 `yaml:"quantile" mapstructure:"quantile"`
	MinEntities          int     `yaml:"min_entities" mapstructure:"min_entities"`
	RequireVerb          bool    `yaml:"require_verb" mapstructure:"require_verb"`
	Dedupe               bool    `yaml:"dedupe" mapstructure:"dedupe"`
	BandWidth            float64 `yaml:"band_width" mapstructure:"band_width"`
	HypotheticalPenalty  float64 `yaml:"hypothetical_penalty" mapstructure:"hypothetical_penalty"`
	RepeatEntityBase     float64 `yaml:"repeat_entity_base" mapstructure:"repeat_entity_base"`
	RepeatKeyphraseBase  float64 `yaml:"repeat_keyphrase_base" mapstructure:"repeat_keyphrase_base"`
	MaxEvidenceSentences int     `yaml:"max_evidence_sentences" mapstructure:"max_evidence_sentences"`
	MaxEvidenceChars     int     `yaml:"max_evidence_chars" mapstructure:"max_evidence_chars"`
}

// VerdictConfig holds the evidence aggregation thresholds
type VerdictConfig struct {
	StrongMinCount    int     `yaml:"strong_min_count" mapstructure:"strong_min_count"`
	StrongThreshold   float64 `yaml:"strong_threshold" mapstructure:"strong_threshold"`
	StrongBase        float64 `yaml:"strong_base" mapstructure:"strong_base"`
	StrongCap         float64 `yaml:"strong_cap" mapstructure:"strong_cap"`
	WeakThreshold     float64 `yaml:"weak_threshold" mapstructure:"weak_threshold"`
	WeakBase          float64 `yaml:"weak_base" mapstructure:"weak_base"`
	WeakCap           float64 `yaml:"weak_cap" mapstructure:"weak_cap"`
	UnclearConfidence float64 `yaml:"unclear_confidence" mapstructure:"unclear_confidence"`
	ReportLimit       int     `yaml:"report_limit" mapstructure:"report_limit"`
}

// AuthorityConfig classifies evidence sources into authority tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// MetricsConfig controls the optional ops server
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"` // e.g. ":9090"; empty disables
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "claimcheck/0.1 (+https://github.com/ppiankov/claimcheck)",
			MaxBodyBytes:  2_000_000,
			MaxTextChars:  20000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:         4,
			EvidenceWorkers: 6,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Timeout:        30,
			MaxTokens:      300,
			ClaimThreshold: 0.5,
		},
		Search: SearchConfig{
			NumResults: 6,
			ExcludeSites: []string{
				"x.com", "twitter.com", "nitter.net", "tweettunnel.com", "youtube.com",
				"tiktok.com", "reddit.com", "facebook.com", "instagram.com",
			},
			SafeSearch: "active",
			Country:    "us",
			Language:   "lang_en",
			CacheTTL:   6 * time.Hour,
		},
		Post: PostConfig{
			Timeout: 20 * time.Second,
		},
		Extraction: ExtractionConfig{
			MinScore:             0.03,
			Quantile:             0.7,
			MinEntities:          1,
			RequireVerb:          true,
			Dedupe:               true,
			BandWidth:            0.05,
			HypotheticalPenalty:  0.5,
			RepeatEntityBase:     0.8,
			RepeatKeyphraseBase:  0.85,
			MaxEvidenceSentences: 3,
			MaxEvidenceChars:     400,
		},
		Verdict: VerdictConfig{
			StrongMinCount:    2,
			StrongThreshold:   0.55,
			StrongBase:        0.5,
			StrongCap:         0.95,
			WeakThreshold:     0.6,
			WeakBase:          0.45,
			WeakCap:           0.9,
			UnclearConfidence: 0.4,
			ReportLimit:       5,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"who.int", "cdc.gov", "nih.gov", "europa.eu", "un.org", "doi.org",
				"politifact.com", "snopes.com", "factcheck.org", "fullfact.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
				"bbc.co.uk", "bbc.com", "nytimes.com", "theguardian.com",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
