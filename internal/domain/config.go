package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	CIPAPI         CIPAPIConfig         `mapstructure:"cipapi"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Output         OutputConfig         `mapstructure:"output"`
}

// CIPAPIConfig represents the connection to the case service
type CIPAPIConfig struct {
	URL           string            `mapstructure:"url"`
	User          string            `mapstructure:"user"`
	Password      string            `mapstructure:"password"`
	Token         string            `mapstructure:"token"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	Retries       int               `mapstructure:"retries"`
	BackoffFactor time.Duration     `mapstructure:"backoff_factor"`
	MaxBackoff    time.Duration     `mapstructure:"max_backoff"`
	RateLimit     float64           `mapstructure:"rate_limit"` // requests per second
	RateBurst     int               `mapstructure:"rate_burst"`
	PageSize      int               `mapstructure:"page_size"`
	FixedParams   map[string]string `mapstructure:"fixed_params"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "text"
	Output string `mapstructure:"output"` // "stdout", "stderr" or a file path
}

// OutputConfig represents how commands print records
type OutputConfig struct {
	Format string `mapstructure:"format"` // "json", "yaml"
}
