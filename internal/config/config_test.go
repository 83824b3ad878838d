package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars blanks every variable the manager reads; viper ignores empty values
func clearEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"CIPAPI_URL", "CIPAPI_USER", "CIPAPI_PASSWORD", "CIPAPI_TOKEN",
		"GEL_USER", "GEL_PASSWORD", "GEL_TOKEN",
		"CIPAPI_CIPAPI_TIMEOUT", "CIPAPI_CIPAPI_PAGE_SIZE", "CIPAPI_LOGGING_LEVEL", "CIPAPI_OUTPUT_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cipapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	clearEnvVars(t)

	m, err := NewManager("")
	require.NoError(t, err)
	cfg := m.GetConfig()

	assert.Empty(t, cfg.CIPAPI.URL)
	assert.Equal(t, 60*time.Second, cfg.CIPAPI.Timeout)
	assert.Equal(t, 5, cfg.CIPAPI.Retries)
	assert.Equal(t, 800*time.Millisecond, cfg.CIPAPI.BackoffFactor)
	assert.Equal(t, 30*time.Second, cfg.CIPAPI.MaxBackoff)
	assert.Equal(t, 1, cfg.CIPAPI.RateBurst)
	assert.Zero(t, cfg.CIPAPI.PageSize)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, uint32(20), cfg.CircuitBreaker.FailureThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "json", cfg.Output.Format)

	assert.Error(t, m.Validate(), "url is required")
}

func TestNewManager_File(t *testing.T) {
	clearEnvVars(t)
	path := writeConfig(t, `
cipapi:
  url: https://cipapi.example.org
  token: file-token
  page_size: 100
  retries: 2
  fixed_params:
    reports_v6: "true"
logging:
  level: debug
  format: json
output:
  format: yaml
`)

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	cfg := m.GetConfig()

	assert.Equal(t, "https://cipapi.example.org", cfg.CIPAPI.URL)
	assert.Equal(t, 100, cfg.CIPAPI.PageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "yaml", cfg.Output.Format)

	client := m.GetClientConfig()
	assert.Equal(t, "https://cipapi.example.org", client.BaseURL)
	assert.Equal(t, "file-token", client.Token)
	assert.Equal(t, 2, client.Retries)
	assert.Equal(t, 100, client.PageSize)
	assert.Equal(t, "true", client.FixedParams.Get("reports_v6"))
	assert.True(t, client.CircuitBreaker.Enabled)
}

func TestNewManager_MissingExplicitFile(t *testing.T) {
	clearEnvVars(t)

	_, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNewManager_LegacyEnvironment(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("CIPAPI_URL", "https://env.example.org")
	t.Setenv("GEL_USER", "gel-user")
	t.Setenv("GEL_PASSWORD", "secret")

	m, err := NewManager("")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	cfg := m.GetConfig()

	assert.Equal(t, "https://env.example.org", cfg.CIPAPI.URL)
	assert.Equal(t, "gel-user", cfg.CIPAPI.User)
	assert.Equal(t, "secret", cfg.CIPAPI.Password)
}

func TestNewManager_PrefixedEnvironmentWins(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("CIPAPI_TOKEN", "prefixed")
	t.Setenv("GEL_TOKEN", "legacy")
	t.Setenv("CIPAPI_LOGGING_LEVEL", "warn")
	t.Setenv("CIPAPI_CIPAPI_TIMEOUT", "5s")

	m, err := NewManager(writeConfig(t, "cipapi:\n  url: https://cipapi.example.org\n  token: file\n"))
	require.NoError(t, err)
	cfg := m.GetConfig()

	assert.Equal(t, "prefixed", cfg.CIPAPI.Token)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.CIPAPI.Timeout)
}

func TestManager_Set(t *testing.T) {
	clearEnvVars(t)
	m, err := NewManager(writeConfig(t, "cipapi:\n  url: https://cipapi.example.org\n  token: t\n"))
	require.NoError(t, err)

	require.NoError(t, m.Set("output.format", "yaml"))
	assert.Equal(t, "yaml", m.GetConfig().Output.Format)

	require.NoError(t, m.Reload())
	assert.Equal(t, "json", m.GetConfig().Output.Format)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid token", "cipapi:\n  url: https://x.org\n  token: t\n", false},
		{"valid user", "cipapi:\n  url: https://x.org\n  user: u\n", false},
		{"no credentials", "cipapi:\n  url: https://x.org\n", true},
		{"relative url", "cipapi:\n  url: x.org/api\n  token: t\n", true},
		{"page size too large", "cipapi:\n  url: https://x.org\n  token: t\n  page_size: 501\n", true},
		{"negative rate", "cipapi:\n  url: https://x.org\n  token: t\n  rate_limit: -1\n", true},
		{"bad log level", "cipapi:\n  url: https://x.org\n  token: t\nlogging:\n  level: loud\n", true},
		{"bad log format", "cipapi:\n  url: https://x.org\n  token: t\nlogging:\n  format: xml\n", true},
		{"bad output", "cipapi:\n  url: https://x.org\n  token: t\noutput:\n  format: csv\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			m, err := NewManager(writeConfig(t, tt.content))
			require.NoError(t, err)

			err = m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
