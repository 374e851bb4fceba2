// Package cmd implements the readycrawl CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

// logger is configured by the root command before any subcommand runs.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "readycrawl",
	Short: "readycrawl crawls readiness documentation into a single report",
	Long: `readycrawl discovers the modules listed on a documentation landing page,
renders every module and its HTML entries in a headless browser (following
"Next Page" pagination), extracts linked PDFs, and assembles everything into
one Markdown, JSON or PDF report.

Usage:
  readycrawl crawl --url <landing-url> [flags]
  readycrawl scrape <url> [--selector css]`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (default: ./readycrawl.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command. Interrupts cancel the running crawl.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
