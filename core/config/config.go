// Package config holds the settings of a crawl run. Values come from
// Default, overlaid by an optional YAML file and then by command line flags.
package config

import (
	"net/url"
	"time"
)

// Default configuration values.
const (
	DefaultFormat        = "markdown"
	DefaultRefresh       = "never"
	DefaultConcurrency   = 1
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultUserAgent     = "readycrawl/1.0 (+https://github.com/gaurav-prasanna/readycrawl)"
	DefaultNextPageLabel = "Next Page"
	DefaultLoadTimeout   = 60 * time.Second
	DefaultSettle        = 2 * time.Second
	DefaultMaxPages      = 50
	DefaultStablePolls   = 3
	DefaultStableEvery   = 500 * time.Millisecond
	DefaultStableTimeout = 10 * time.Second
)

// Config holds all configuration options for a crawl.
type Config struct {
	// LandingURL is the index page listing the modules.
	LandingURL string `yaml:"landing_url"`
	// Output is the report file name. Empty derives it from LandingURL.
	Output string `yaml:"output"`
	// OutputDir is where the report is written. Empty means the working directory.
	OutputDir string `yaml:"output_dir"`
	// Format is one of markdown, json or pdf.
	Format string `yaml:"format"`
	// Refresh is the landing index refresh policy: never or per-module.
	Refresh string `yaml:"refresh"`
	// Concurrency is the number of modules crawled at once.
	Concurrency int `yaml:"concurrency"`
	// MaxModules caps the modules attempted. Zero means no cap.
	MaxModules int `yaml:"max_modules"`
	// SkipDownloadText keeps the labels of other HTML/PDF links out of
	// fallback section titles.
	SkipDownloadText bool `yaml:"skip_download_text"`

	HTTP    HTTP    `yaml:"http"`
	Browser Browser `yaml:"browser"`
}

// HTTP configures plain HTTP fetches of the landing page and PDF entries.
type HTTP struct {
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"user_agent"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// Browser configures the scripted browser and pagination.
type Browser struct {
	Headless       bool          `yaml:"headless"`
	ExecPath       string        `yaml:"exec_path"`
	NextPageLabel  string        `yaml:"next_page_label"`
	LoadTimeout    time.Duration `yaml:"load_timeout"`
	Settle         time.Duration `yaml:"settle"`
	MaxPages       int           `yaml:"max_pages"`
	StablePolls    int           `yaml:"stable_polls"`
	StableInterval time.Duration `yaml:"stable_interval"`
	StableTimeout  time.Duration `yaml:"stable_timeout"`
	VolatileAttrs  []string      `yaml:"volatile_attrs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Format:           DefaultFormat,
		Refresh:          DefaultRefresh,
		Concurrency:      DefaultConcurrency,
		SkipDownloadText: true,
		HTTP: HTTP{
			Timeout:   DefaultHTTPTimeout,
			UserAgent: DefaultUserAgent,
		},
		Browser: Browser{
			Headless:       true,
			NextPageLabel:  DefaultNextPageLabel,
			LoadTimeout:    DefaultLoadTimeout,
			Settle:         DefaultSettle,
			MaxPages:       DefaultMaxPages,
			StablePolls:    DefaultStablePolls,
			StableInterval: DefaultStableEvery,
			StableTimeout:  DefaultStableTimeout,
			VolatileAttrs:  []string{"nonce", "data-timestamp", "data-request-id"},
		},
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.LandingURL == "" {
		return ErrMissingLandingURL
	}
	if u, err := url.Parse(c.LandingURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidLandingURL
	}
	switch c.Format {
	case "markdown", "md", "json", "pdf":
	default:
		return ErrUnknownFormat
	}
	if c.Refresh != "never" && c.Refresh != "per-module" {
		return ErrUnknownRefresh
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.Concurrency > 1 && c.Refresh != "never" {
		return ErrConcurrentRefresh
	}
	if c.MaxModules < 0 || c.Browser.MaxPages < 0 {
		return ErrNegativeCap
	}
	if c.HTTP.Timeout <= 0 || c.Browser.LoadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Browser.Settle < 0 || c.Browser.StableInterval <= 0 || c.Browser.StableTimeout <= 0 || c.Browser.StablePolls < 0 {
		return ErrInvalidStabilization
	}
	return nil
}
