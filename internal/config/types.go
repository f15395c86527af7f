package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Governance GovernanceConfig `yaml:"governance" mapstructure:"governance"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	API        APIConfig        `yaml:"api" mapstructure:"api"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Events     EventsConfig     `yaml:"events" mapstructure:"events"`
	Upstream   UpstreamConfig   `yaml:"upstream" mapstructure:"upstream"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// GovernanceConfig configures the governance decision policy
type GovernanceConfig struct {
	// DefaultAction applies whenever PII is detected: deny, redact, or escalate
	DefaultAction string `yaml:"default_action" mapstructure:"default_action"`
	PolicyVersion string `yaml:"policy_version" mapstructure:"policy_version"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// APIConfig configures the remote governance API client
type APIConfig struct {
	APIKey         string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries     int           `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffInitial time.Duration `yaml:"backoff_initial" mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `yaml:"backoff_max" mapstructure:"backoff_max"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// RateLimitConfig configures per-client request limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	Burst          int  `yaml:"burst" mapstructure:"burst"`
}

// UpstreamConfig configures the governed pass-through target
type UpstreamConfig struct {
	Target  string        `yaml:"target" mapstructure:"target"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EventsConfig configures the live event hub
type EventsConfig struct {
	Enabled            bool `yaml:"enabled" mapstructure:"enabled"`
	BroadcastDecisions bool `yaml:"broadcast_decisions" mapstructure:"broadcast_decisions"`
	BroadcastSystem    bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Governance: GovernanceConfig{
			DefaultAction: "redact",
			PolicyVersion: "1.0",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			BaseURL:        "https://api.govgate.dev",
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			BackoffInitial: 500 * time.Millisecond,
			BackoffMax:     10 * time.Second,
			UserAgent:      "govgate/0.1.0",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 600,
			Burst:          60,
		},
		Upstream: UpstreamConfig{
			Target:  "http://localhost:11434",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Enabled:            true,
			BroadcastDecisions: true,
			BroadcastSystem:    true,
		},
	}
}
