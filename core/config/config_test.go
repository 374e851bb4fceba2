package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() *Config {
	cfg := Default()
	cfg.LandingURL = "https://docs.example.com/readiness/index.html"
	return cfg
}

func TestDefault_IsValidOnceLandingURLSet(t *testing.T) {
	assert.ErrorIs(t, Default().Validate(), ErrMissingLandingURL)
	assert.NoError(t, valid().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"relative landing URL", func(c *Config) { c.LandingURL = "/readiness" }, ErrInvalidLandingURL},
		{"ftp landing URL", func(c *Config) { c.LandingURL = "ftp://docs.example.com/" }, ErrInvalidLandingURL},
		{"unknown format", func(c *Config) { c.Format = "docx" }, ErrUnknownFormat},
		{"unknown refresh", func(c *Config) { c.Refresh = "always" }, ErrUnknownRefresh},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"parallel refresh", func(c *Config) {
			c.Concurrency = 4
			c.Refresh = "per-module"
		}, ErrConcurrentRefresh},
		{"negative max modules", func(c *Config) { c.MaxModules = -1 }, ErrNegativeCap},
		{"negative max pages", func(c *Config) { c.Browser.MaxPages = -1 }, ErrNegativeCap},
		{"zero http timeout", func(c *Config) { c.HTTP.Timeout = 0 }, ErrInvalidTimeout},
		{"zero load timeout", func(c *Config) { c.Browser.LoadTimeout = 0 }, ErrInvalidTimeout},
		{"negative settle", func(c *Config) { c.Browser.Settle = -time.Second }, ErrInvalidStabilization},
		{"zero stable interval", func(c *Config) { c.Browser.StableInterval = 0 }, ErrInvalidStabilization},
		{"zero stable timeout", func(c *Config) { c.Browser.StableTimeout = 0 }, ErrInvalidStabilization},
		{"negative stable polls", func(c *Config) { c.Browser.StablePolls = -1 }, ErrInvalidStabilization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
landing_url: https://docs.example.com/readiness/index.html
format: json
refresh: per-module
max_modules: 40
skip_download_text: false
http:
  insecure_skip_verify: true
browser:
  settle: 750ms
  volatile_attrs: [nonce]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://docs.example.com/readiness/index.html", cfg.LandingURL)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "per-module", cfg.Refresh)
	assert.Equal(t, 40, cfg.MaxModules)
	assert.False(t, cfg.SkipDownloadText)
	assert.True(t, cfg.HTTP.InsecureSkipVerify)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Browser.Settle)
	assert.Equal(t, DefaultLoadTimeout, cfg.Browser.LoadTimeout)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"nonce"}, cfg.Browser.VolatileAttrs)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}
