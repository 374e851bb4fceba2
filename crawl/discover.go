// Package crawl discovers the modules listed on a landing index and drives
// the per-module crawl that feeds the report.
package crawl

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/extract"
	"github.com/rs/zerolog"
)

// TileSelector matches the module links of the landing index.
const TileSelector = "h3 > a[href]"

// Discoverer reads the module tiles of a landing page.
type Discoverer struct {
	landingURL string
	fetcher    core.Fetcher
	log        zerolog.Logger
}

// NewDiscoverer creates a Discoverer for landingURL.
func NewDiscoverer(landingURL string, fetcher core.Fetcher, log zerolog.Logger) *Discoverer {
	return &Discoverer{landingURL: landingURL, fetcher: fetcher, log: log}
}

// Discover fetches the landing page and returns its tiles in document order.
// Tiles are not de-duplicated. A failed fetch returns *core.FetchError.
func (d *Discoverer) Discover(ctx context.Context) ([]core.Tile, error) {
	res, err := d.fetcher.Fetch(ctx, d.landingURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML()))
	if err != nil {
		return nil, &core.ExtractionError{URL: d.landingURL, Reason: "parsing landing page", Err: err}
	}
	base := extract.BaseURL(doc, d.landingURL)

	var tiles []core.Tile
	doc.Find(TileSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u := extract.Resolve(base, href)
		if u == "" {
			d.log.Debug().Str("href", href).Msg("skipping tile with unusable link")
			return
		}
		tiles = append(tiles, core.Tile{Name: extract.Text(s), URL: u})
	})

	d.log.Info().Str("url", d.landingURL).Int("tiles", len(tiles)).Msg("landing page discovered")
	return tiles, nil
}
