package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 30*time.Second, cfg.Transport.RequestTimeout)
	assert.Equal(t, 5, cfg.Transport.MaxRedirects)
	assert.Equal(t, 100, cfg.Transport.ConnectionPoolSize)

	assert.True(t, cfg.Gateway.RateLimitEnabled)
	assert.Equal(t, 100, cfg.Gateway.RateLimitMax)
	assert.Equal(t, 60*time.Second, cfg.Gateway.RateLimitWindow)
	assert.Equal(t, 10, cfg.Gateway.WrapperRateLimit)

	assert.Equal(t, "full", cfg.Extractor.Profile)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.Extractor.PythonAPIURL)

	assert.Equal(t, 5*time.Minute, cfg.Registry.TTL)
	assert.Equal(t, 60*time.Second, cfg.Registry.SweepInterval)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s

logging:
  level: "debug"
  format: "text"

extractor:
  profile: "vercel"
`
	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "vercel", cfg.Extractor.Profile)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MEDIAGATE_SERVER_PORT", "3000")
	t.Setenv("MEDIAGATE_LOGGING_LEVEL", "warn")
	t.Setenv("EXTRACTOR_PROFILE", "vercel")
	t.Setenv("RATE_LIMIT_MAX", "25")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "vercel", cfg.Extractor.Profile)
	assert.Equal(t, 25, cfg.Gateway.RateLimitMax)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 8080
extractor:
  profile: "full"
`
	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	require.NoError(t, err)

	t.Setenv("MEDIAGATE_SERVER_PORT", "9000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "full", cfg.Extractor.Profile)
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Extractor: ExtractorConfig{Profile: "full"},
		Registry:  RegistryConfig{TTL: 5 * time.Minute},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero port", 0},
		{"negative port", -1},
		{"port too high", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "invalid"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_InvalidProfile(t *testing.T) {
	cfg := validConfig()
	cfg.Extractor.Profile = "staging"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extractor.profile")
}

func TestValidate_InvalidRegistryTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Registry.TTL = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registry.ttl")
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{"localhost", "127.0.0.1", 8080, "127.0.0.1:8080"},
		{"all interfaces", "0.0.0.0", 3000, "0.0.0.0:3000"},
		{"hostname", "example.com", 443, "example.com:443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ServerConfig{Host: tt.host, Port: tt.port}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestExtractorConfig_IsVercelProfile(t *testing.T) {
	cfg := ExtractorConfig{Profile: "vercel"}
	assert.True(t, cfg.IsVercelProfile())

	cfg.Profile = "full"
	assert.False(t, cfg.IsVercelProfile())
}

func TestExtractorConfig_ServerCookie(t *testing.T) {
	cfg := ExtractorConfig{
		FacebookCookie:  "fb-cookie",
		InstagramCookie: "ig-cookie",
		TwitterCookie:   "tw-cookie",
	}

	assert.Equal(t, "fb-cookie", cfg.ServerCookie("facebook"))
	assert.Equal(t, "ig-cookie", cfg.ServerCookie("instagram"))
	assert.Equal(t, "tw-cookie", cfg.ServerCookie("twitter"))
	assert.Equal(t, "", cfg.ServerCookie("tiktok"))
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidContent := `
server:
  port: "not a number"
  invalid yaml structure
`
	err := os.WriteFile(configPath, []byte(invalidContent), 0o600)
	require.NoError(t, err)

	_, err = Load(configPath)
	assert.Error(t, err)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
