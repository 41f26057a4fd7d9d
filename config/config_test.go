package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("API_BASE_URL", "https://fit.example.com/api")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("LOCATION", "Europe/Berlin")
	t.Setenv("CACHE_SIZE_MB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "https://fit.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 32, cfg.Cache.SizeMB)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Europe/Berlin", cfg.TimeLocation().String())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FT_TEST_TOKEN", "999:xyz")

	yaml := `telegram:
  token: ${FT_TEST_TOKEN}
api:
  baseurl: http://backend:5001/api
  timeout: 3s
session:
  store: memory
location: UTC
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "999:xyz", cfg.Telegram.Token)
	assert.Equal(t, "http://backend:5001/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{Location: "UTC"}
		c.Telegram.Token = "t"
		c.API.BaseURL = "http://localhost"
		c.Session.Store = "postgres"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "no token", mutate: func(c *Config) { c.Telegram.Token = "" }, wantErr: true},
		{name: "no api", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Store = "redis" }, wantErr: true},
		{name: "bad location", mutate: func(c *Config) { c.Location = "Nowhere/City" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeLocationFallsBackToUTC(t *testing.T) {
	c := &Config{Location: "Nowhere/City"}
	assert.Equal(t, time.UTC, c.TimeLocation())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
