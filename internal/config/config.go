package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/cipapi-client/internal/domain"
	"github.com/cipapi-client/pkg/cipapi"
	"github.com/cipapi-client/pkg/rest"
)

// legacyEnv lists the environment variables honoured besides the CIPAPI_ prefixed ones
var legacyEnv = map[string][]string{
	"cipapi.url":      {"CIPAPI_URL"},
	"cipapi.user":     {"CIPAPI_USER", "GEL_USER"},
	"cipapi.password": {"CIPAPI_PASSWORD", "GEL_PASSWORD"},
	"cipapi.token":    {"CIPAPI_TOKEN", "GEL_TOKEN"},
}

// Manager loads the configuration from a file, the environment and defaults
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. An empty configFile searches
// cipapi.yaml in the usual places.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("cipapi")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.cipapi")
	}

	v.SetEnvPrefix("CIPAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	// The file is optional; defaults and environment variables are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || m.configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("cipapi.url", "")
	v.SetDefault("cipapi.user", "")
	v.SetDefault("cipapi.password", "")
	v.SetDefault("cipapi.token", "")
	v.SetDefault("cipapi.timeout", "60s")
	v.SetDefault("cipapi.retries", 5)
	v.SetDefault("cipapi.backoff_factor", "800ms")
	v.SetDefault("cipapi.max_backoff", "30s")
	v.SetDefault("cipapi.rate_limit", 0)
	v.SetDefault("cipapi.rate_burst", 1)
	v.SetDefault("cipapi.page_size", 0)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.failure_threshold", 20)
	v.SetDefault("circuit_breaker.timeout", "30s")
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("output.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Set overrides a single key, as done for command line flags, and refreshes the config
func (m *Manager) Set(key string, value interface{}) error {
	m.v.Set(key, value)
	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	m.config = config
	return nil
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.CIPAPI.URL == "" {
		return fmt.Errorf("cipapi.url is required")
	}
	if u, err := url.Parse(config.CIPAPI.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid cipapi.url: %s", config.CIPAPI.URL)
	}
	if config.CIPAPI.Token == "" && config.CIPAPI.User == "" {
		return fmt.Errorf("either cipapi.token or cipapi.user is required")
	}
	if config.CIPAPI.Retries < -1 {
		return fmt.Errorf("invalid cipapi.retries: %d", config.CIPAPI.Retries)
	}
	if config.CIPAPI.RateLimit < 0 {
		return fmt.Errorf("invalid cipapi.rate_limit: %v", config.CIPAPI.RateLimit)
	}
	if config.CIPAPI.PageSize < 0 || config.CIPAPI.PageSize > cipapi.PageSizeMax {
		return fmt.Errorf("invalid cipapi.page_size: %d", config.CIPAPI.PageSize)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
		"error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	switch strings.ToLower(config.Output.Format) {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %s", config.Output.Format)
	}

	return nil
}

// GetClientConfig returns the configuration of the case service client
func (m *Manager) GetClientConfig() cipapi.Config {
	c := m.config.CIPAPI
	var fixed url.Values
	if len(c.FixedParams) > 0 {
		fixed = url.Values{}
		for key, value := range c.FixedParams {
			fixed.Set(key, value)
		}
	}
	cb := m.config.CircuitBreaker
	return cipapi.Config{
		Config: rest.Config{
			BaseURL:       c.URL,
			Timeout:       c.Timeout,
			Retries:       c.Retries,
			BackoffFactor: c.BackoffFactor,
			MaxBackoff:    c.MaxBackoff,
			RateLimit:     c.RateLimit,
			RateBurst:     c.RateBurst,
			FixedParams:   fixed,
			CircuitBreaker: rest.CircuitBreakerConfig{
				Enabled:          cb.Enabled,
				MaxRequests:      cb.MaxRequests,
				Interval:         cb.Interval,
				Timeout:          cb.Timeout,
				FailureThreshold: cb.FailureThreshold,
			},
		},
		Token:    c.Token,
		User:     c.User,
		Password: c.Password,
		PageSize: c.PageSize,
	}
}
