// Package core defines the data model and pipeline interfaces for readycrawl.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchResult holds the raw body and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// HTML returns the body as a string.
func (r *FetchResult) HTML() string {
	return string(r.Body)
}

// Fetcher retrieves a resource over plain HTTP.
// Non-success statuses and network failures surface as *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Browser opens scripted browser sessions capable of executing page JavaScript.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is a single browser tab. It is used by one goroutine at a time.
type Session interface {
	// Navigate loads url and returns once the page reached a quiescent load state.
	Navigate(ctx context.Context, url string) error
	// HTML returns the current rendered markup of the whole page.
	HTML(ctx context.Context) (string, error)
	// NextPage activates the "Next Page" control if it is visible and enabled.
	// It reports false when there is no such control.
	NextPage(ctx context.Context) (bool, error)
	Close() error
}

// Renderer converts an assembled report into a final output format.
type Renderer interface {
	Render(report *Report) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
