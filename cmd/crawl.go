package cmd

import (
	"fmt"
	"time"

	"github.com/gaurav-prasanna/readycrawl/core/aggregate"
	"github.com/gaurav-prasanna/readycrawl/core/config"
	"github.com/gaurav-prasanna/readycrawl/core/output"
	"github.com/gaurav-prasanna/readycrawl/core/render"
	"github.com/gaurav-prasanna/readycrawl/crawl"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl every module of a landing page into one report",
	Long: `Crawl reads the module tiles of the landing page, aggregates the HTML and
PDF entries of each module by section, and writes a single report.

Flags override the config file, which overrides the built-in defaults.

Examples:
  readycrawl crawl --url https://docs.oracle.com/en/cloud/saas/readiness/index.html
  readycrawl crawl --config readycrawl.yaml --format json --output report
  readycrawl crawl --url https://docs.example.com/ --refresh per-module --max-modules 40`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	f := crawlCmd.Flags()
	f.String("url", "", "Landing page listing the modules")
	f.StringP("output", "o", "", "Report file name (default: derived from the landing URL)")
	f.String("output-dir", "", "Output directory (default: current directory)")
	f.String("format", config.DefaultFormat, "Report format: markdown, json or pdf")
	f.String("refresh", config.DefaultRefresh, "Landing page refresh policy: never or per-module")
	f.Int("concurrency", config.DefaultConcurrency, "Modules crawled at once (requires --refresh never)")
	f.Int("max-modules", 0, "Maximum modules to crawl (0 = no limit)")
	f.Int("max-pages", config.DefaultMaxPages, "Maximum pages followed per URL (0 = no limit)")
	f.Bool("headed", false, "Show the browser window")
	f.String("chrome-path", "", "Chrome executable")
	f.Bool("insecure", false, "Skip TLS certificate verification for plain HTTP fetches")
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	str("url", &cfg.LandingURL)
	str("output", &cfg.Output)
	str("output-dir", &cfg.OutputDir)
	str("format", &cfg.Format)
	str("refresh", &cfg.Refresh)
	str("chrome-path", &cfg.Browser.ExecPath)
	num("concurrency", &cfg.Concurrency)
	num("max-modules", &cfg.MaxModules)
	num("max-pages", &cfg.Browser.MaxPages)
	if f.Changed("headed") {
		headed, _ := f.GetBool("headed")
		cfg.Browser.Headless = !headed
	}
	if f.Changed("insecure") {
		cfg.HTTP.InsecureSkipVerify, _ = f.GetBool("insecure")
	}
	return cfg, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	renderer, ok := render.ForFormat(cfg.Format)
	if !ok {
		return config.ErrUnknownFormat
	}
	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := cmd.Context()
	fetcher := newFetcher(cfg)
	pager, closeBrowser := newPaginator(ctx, cfg)
	defer closeBrowser()

	crawler := crawl.NewCrawler(
		crawl.NewDiscoverer(cfg.LandingURL, fetcher, logger),
		aggregate.New(pager, fetcher,
			aggregate.WithSkipDownloadText(cfg.SkipDownloadText),
			aggregate.WithLogger(logger),
		),
		crawl.WithRefresh(crawl.RefreshPolicy(cfg.Refresh)),
		crawl.WithConcurrency(cfg.Concurrency),
		crawl.WithMaxModules(cfg.MaxModules),
		crawl.WithLogger(logger),
	)

	start := time.Now()
	res, err := crawler.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawling %s: %w", cfg.LandingURL, err)
	}

	report := render.Assemble(cfg.LandingURL, res.Modules, res.Failures, time.Now())
	data, err := renderer.Render(report)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	path := writer.Path(cfg.Output, cfg.LandingURL, renderer.Extension())
	if err := writer.Write(path, data); err != nil {
		return err
	}

	logger.Info().
		Str("path", path).
		Int("modules", len(report.Modules)).
		Int("failures", len(report.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("report written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
