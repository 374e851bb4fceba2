package crawl

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RefreshPolicy controls whether the landing index is re-read during a crawl.
type RefreshPolicy string

const (
	// RefreshNever crawls the tiles discovered at startup.
	RefreshNever RefreshPolicy = "never"
	// RefreshPerModule re-reads the landing index after every module and
	// continues with the first tile not yet attempted.
	RefreshPerModule RefreshPolicy = "per-module"
)

// Valid reports whether p is a known policy.
func (p RefreshPolicy) Valid() bool {
	return p == RefreshNever || p == RefreshPerModule
}

// TileSource lists the modules of the landing index.
type TileSource interface {
	Discover(ctx context.Context) ([]core.Tile, error)
}

// ModuleAggregator extracts the sections and navigation of a module page.
type ModuleAggregator interface {
	Aggregate(ctx context.Context, moduleURL string) ([]core.Section, []*core.NavNode, error)
}

// Crawler walks the modules of a landing index.
type Crawler struct {
	tiles       TileSource
	modules     ModuleAggregator
	refresh     RefreshPolicy
	concurrency int
	maxModules  int
	log         zerolog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithRefresh sets the refresh policy (default RefreshNever).
func WithRefresh(p RefreshPolicy) Option {
	return func(c *Crawler) { c.refresh = p }
}

// WithConcurrency sets how many modules are crawled at once. Values above
// one require RefreshNever.
func WithConcurrency(n int) Option {
	return func(c *Crawler) { c.concurrency = n }
}

// WithMaxModules caps the modules attempted. Zero means no cap.
func WithMaxModules(n int) Option {
	return func(c *Crawler) { c.maxModules = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Crawler) { c.log = l }
}

// NewCrawler creates a Crawler.
func NewCrawler(tiles TileSource, modules ModuleAggregator, opts ...Option) *Crawler {
	c := &Crawler{
		tiles:       tiles,
		modules:     modules,
		refresh:     RefreshNever,
		concurrency: 1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a crawl, in discovery order.
type Result struct {
	// Modules holds every module crawled, including those without entries.
	Modules []core.Module
	// Failures holds the modules whose page could not be rendered.
	Failures []core.ModuleFailure
}

// Crawl discovers the modules and aggregates each of them. A failure to read
// the landing index at startup aborts the crawl; module failures are
// recorded in the result.
func (c *Crawler) Crawl(ctx context.Context) (*Result, error) {
	if !c.refresh.Valid() {
		return nil, fmt.Errorf("unknown refresh policy %q", c.refresh)
	}
	if c.concurrency > 1 && c.refresh != RefreshNever {
		return nil, fmt.Errorf("concurrency %d requires refresh policy %q", c.concurrency, RefreshNever)
	}

	tiles, err := c.tiles.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering modules: %w", err)
	}

	if c.refresh == RefreshPerModule {
		return c.crawlRefreshing(ctx, tiles)
	}

	todo := c.pending(tiles)
	if c.concurrency > 1 {
		return c.crawlParallel(ctx, todo)
	}

	res := &Result{}
	for _, tile := range todo {
		if err := c.crawlInto(ctx, tile, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// pending returns the distinct tiles to crawl, capped by maxModules.
func (c *Crawler) pending(tiles []core.Tile) []core.Tile {
	visited := NewVisited()
	var todo []core.Tile
	for _, t := range tiles {
		if c.maxModules > 0 && len(todo) >= c.maxModules {
			c.log.Warn().Int("max_modules", c.maxModules).Msg("module cap reached")
			break
		}
		if !visited.Add(t.URL) {
			c.log.Debug().Str("module", t.Name).Str("url", t.URL).Msg("skipping duplicate tile")
			continue
		}
		todo = append(todo, t)
	}
	return todo
}

func (c *Crawler) crawlRefreshing(ctx context.Context, tiles []core.Tile) (*Result, error) {
	res := &Result{}
	visited := NewVisited()
	for {
		if c.maxModules > 0 && visited.Len() >= c.maxModules {
			c.log.Warn().Int("max_modules", c.maxModules).Msg("module cap reached")
			break
		}
		tile, ok := firstUnvisited(tiles, visited)
		if !ok {
			break
		}
		visited.Add(tile.URL)

		if err := c.crawlInto(ctx, tile, res); err != nil {
			return nil, err
		}

		fresh, err := c.tiles.Discover(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Msg("refreshing module list failed, keeping previous list")
			continue
		}
		tiles = fresh
	}
	return res, nil
}

func firstUnvisited(tiles []core.Tile, visited *Visited) (core.Tile, bool) {
	for _, t := range tiles {
		if !visited.Has(t.URL) {
			return t, true
		}
	}
	return core.Tile{}, false
}

func (c *Crawler) crawlParallel(ctx context.Context, todo []core.Tile) (*Result, error) {
	type outcome struct {
		module  *core.Module
		failure *core.ModuleFailure
	}
	outcomes := make([]outcome, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, tile := range todo {
		g.Go(func() error {
			m, f, err := c.crawlModule(gctx, tile)
			if err != nil {
				return err
			}
			outcomes[i] = outcome{module: m, failure: f}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, o := range outcomes {
		if o.module != nil {
			res.Modules = append(res.Modules, *o.module)
		}
		if o.failure != nil {
			res.Failures = append(res.Failures, *o.failure)
		}
	}
	return res, nil
}

func (c *Crawler) crawlInto(ctx context.Context, tile core.Tile, res *Result) error {
	m, f, err := c.crawlModule(ctx, tile)
	if err != nil {
		return err
	}
	if m != nil {
		res.Modules = append(res.Modules, *m)
	}
	if f != nil {
		res.Failures = append(res.Failures, *f)
	}
	return nil
}

// crawlModule aggregates one module. It returns an error only when ctx is done.
func (c *Crawler) crawlModule(ctx context.Context, tile core.Tile) (*core.Module, *core.ModuleFailure, error) {
	log := c.log.With().Str("module", tile.Name).Str("url", tile.URL).Logger()
	log.Info().Msg("crawling module")

	sections, moduleNav, err := c.modules.Aggregate(ctx, tile.URL)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}
	if err != nil {
		log.Error().Err(err).Msg("module failed")
		return nil, &core.ModuleFailure{Name: tile.Name, URL: tile.URL, Error: err.Error()}, nil
	}

	m := &core.Module{Name: tile.Name, SourceURL: tile.URL, Nav: moduleNav, Sections: sections}
	log.Info().Int("sections", len(sections)).Int("entries", m.EntryCount()).Msg("module done")
	return m, nil, nil
}
