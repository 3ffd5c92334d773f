package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`
	Research struct {
		MaxIterations  int `yaml:"max_iterations"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
		HistoryDays    int `yaml:"history_days"`
	} `yaml:"research"`
	News struct {
		MaxFetched      int `yaml:"max_fetched"`
		TopSources      int `yaml:"top_sources"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
		ScraperTimeout  int `yaml:"scraper_timeout_seconds"`
	} `yaml:"news"`
	Conversation struct {
		Backend    string `yaml:"backend"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"conversation"`
	Status struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"status"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "GEMINI", "OPENAI", "NOOP":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'GEMINI', 'OPENAI', or 'NOOP'", c.LLM.Provider)
	}
	if c.Research.TimeoutSeconds <= 0 {
		return fmt.Errorf("research.timeout_seconds must be positive, got %d", c.Research.TimeoutSeconds)
	}
	switch c.Conversation.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid conversation.backend '%s': must be 'memory' or 'redis'", c.Conversation.Backend)
	}
	return nil
}

// ConversationTTL returns the conversation expiry as a duration.
func (c *Config) ConversationTTL() time.Duration {
	return time.Duration(c.Conversation.TTLMinutes) * time.Minute
}

// StatusTTL returns the status record expiry as a duration.
func (c *Config) StatusTTL() time.Duration {
	return time.Duration(c.Status.TTLMinutes) * time.Minute
}

// NewsCacheTTL returns the article cache expiry as a duration.
func (c *Config) NewsCacheTTL() time.Duration {
	return time.Duration(c.News.CacheTTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultConfig returns a usable configuration without a config file.
func DefaultConfig() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.Research.MaxIterations == 0 {
		c.Research.MaxIterations = 3
	}
	if c.Research.TimeoutSeconds == 0 {
		c.Research.TimeoutSeconds = 60
	}
	if c.Research.HistoryDays == 0 {
		c.Research.HistoryDays = 30
	}
	if c.News.MaxFetched == 0 {
		c.News.MaxFetched = 10
	}
	if c.News.TopSources == 0 {
		c.News.TopSources = 5
	}
	if c.News.CacheTTLSeconds == 0 {
		c.News.CacheTTLSeconds = 300
	}
	if c.News.ScraperTimeout == 0 {
		c.News.ScraperTimeout = 15
	}
	if c.Conversation.Backend == "" {
		c.Conversation.Backend = "memory"
	}
	if c.Conversation.TTLMinutes == 0 {
		c.Conversation.TTLMinutes = 30
	}
	if c.Status.TTLMinutes == 0 {
		c.Status.TTLMinutes = 60
	}
}
