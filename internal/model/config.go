package model

import "time"

// Config holds the complete newsgate configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Feeds       FeedsConfig       `yaml:"feeds" mapstructure:"feeds"`
	Stage1      Stage1Config      `yaml:"stage1" mapstructure:"stage1"`
	Trust       TrustConfig       `yaml:"trust" mapstructure:"trust"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Events      EventsConfig      `yaml:"events" mapstructure:"events"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures outbound page fetches (article-from-URL)
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	// AllowPrivateHosts lets article fetches reach loopback and private addresses
	AllowPrivateHosts bool   `yaml:"allow_private_hosts" mapstructure:"allow_private_hosts"`
	HTTPProxy         string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig configures the LLM gateway collaborator
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai (any OpenAI-compatible gateway), anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the news-search collaborator
type SearchConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	PageSize          int           `yaml:"page_size" mapstructure:"page_size"`
	Language          string        `yaml:"language" mapstructure:"language"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"` // 0 disables caching
}

// FeedsConfig configures RSS corroboration
type FeedsConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	URLs            []FeedSource  `yaml:"urls" mapstructure:"urls"`
	CacheTTL        time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	CacheDir        string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	RefreshSchedule string        `yaml:"refresh_schedule" mapstructure:"refresh_schedule"` // cron expression, serve mode only
	MinSimilarity   int           `yaml:"min_similarity" mapstructure:"min_similarity"`
	MaxMatches      int           `yaml:"max_matches" mapstructure:"max_matches"`
}

// FeedSource is a named wire feed
type FeedSource struct {
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// Stage1Config configures the pre-filter
type Stage1Config struct {
	Assessment bool `yaml:"assessment" mapstructure:"assessment"` // ask the LLM for an editorial read
}

// TrustConfig extends the built-in domain trust table
type TrustConfig struct {
	Domains []DomainTrustEntry `yaml:"domains,omitempty" mapstructure:"domains"`
}

// ConcurrencyConfig configures concurrent execution
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // batch workers
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ClientRPS      float64       `yaml:"client_rps" mapstructure:"client_rps"` // per client address; 0 disables
	ClientBurst    int           `yaml:"client_burst" mapstructure:"client_burst"`
}

// EventsConfig configures verdict publication
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty" mapstructure:"nats_url"` // empty disables publishing
	Subject string `yaml:"subject" mapstructure:"subject"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "newsgate/0.1 (+https://github.com/ppiankov/newsgate)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "google/gemini-2.5-flash",
			BaseURL:   "https://ai.gateway.lovable.dev/v1",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Search: SearchConfig{
			BaseURL:           "https://newsapi.org",
			PageSize:          20,
			Language:          "en",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Feeds: FeedsConfig{
			Enabled: true,
			URLs: []FeedSource{
				{Name: "Reuters RSS", URL: "https://feeds.reuters.com/reuters/topNews"},
				{Name: "Associated Press RSS", URL: "https://apnews.com/apf-topnews?format=rss"},
				{Name: "BBC RSS", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
			},
			CacheTTL:        10 * time.Minute,
			RefreshSchedule: "*/10 * * * *",
			MinSimilarity:   40,
			MaxMatches:      3,
		},
		Stage1: Stage1Config{
			Assessment: false,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RequestTimeout: 90 * time.Second,
			ClientRPS:      1,
			ClientBurst:    10,
		},
		Events: EventsConfig{
			Subject: "newsgate.verdicts",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Redacted returns a copy safe for display
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "********"
	}
	if c.Search.APIKey != "" {
		c.Search.APIKey = "********"
	}
	return c
}
