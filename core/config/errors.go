package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrMissingLandingURL    = errors.New("missing landing URL: set landing_url or pass --url")
	ErrInvalidLandingURL    = errors.New("invalid landing URL: must be an absolute http(s) URL")
	ErrUnknownFormat        = errors.New("unknown format: must be markdown, json or pdf")
	ErrUnknownRefresh       = errors.New("unknown refresh policy: must be never or per-module")
	ErrInvalidConcurrency   = errors.New("invalid concurrency: must be at least 1")
	ErrConcurrentRefresh    = errors.New("concurrency above 1 requires refresh policy never")
	ErrNegativeCap          = errors.New("invalid cap: max_modules and max_pages must be non-negative")
	ErrInvalidTimeout       = errors.New("invalid timeout: must be positive")
	ErrInvalidStabilization = errors.New("invalid stabilization settings: interval and timeout must be positive, settle and polls non-negative")
)

// ErrConfigNotFound is returned by Load when an explicitly named file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
