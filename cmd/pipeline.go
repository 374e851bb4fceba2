package cmd

import (
	"context"

	"github.com/gaurav-prasanna/readycrawl/core/browser"
	"github.com/gaurav-prasanna/readycrawl/core/config"
	"github.com/gaurav-prasanna/readycrawl/core/fetch"
	"github.com/gaurav-prasanna/readycrawl/core/paginate"
)

func newFetcher(cfg *config.Config) *fetch.HTTPFetcher {
	return fetch.New(
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithUserAgent(cfg.HTTP.UserAgent),
		fetch.WithInsecureSkipVerify(cfg.HTTP.InsecureSkipVerify),
	)
}

// newPaginator starts a Chrome allocator and wraps it in a Paginator.
// The returned func shuts Chrome down.
func newPaginator(ctx context.Context, cfg *config.Config) (*paginate.Paginator, func()) {
	b := cfg.Browser
	chrome := browser.NewChrome(ctx,
		browser.WithHeadless(b.Headless),
		browser.WithExecPath(b.ExecPath),
		browser.WithNextPageLabel(b.NextPageLabel),
		browser.WithStabilization(b.StablePolls, b.StableInterval, b.StableTimeout),
		browser.WithLogger(logger),
	)
	pager := paginate.New(chrome,
		paginate.WithLoadTimeout(b.LoadTimeout),
		paginate.WithSettle(b.Settle),
		paginate.WithMaxPages(b.MaxPages),
		paginate.WithVolatileAttrs(b.VolatileAttrs),
		paginate.WithLogger(logger),
	)
	return pager, chrome.Close
}
