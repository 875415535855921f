// Package cmd wires the harvester CLI. All extraction logic lives in the
// internal packages; commands only load config and assemble dependencies.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hydrocare/harvester/pkg/config"
)

// flagKeys maps CLI flags onto viper keys. Only flags the user actually set
// are pushed into viper, so config-file and env values keep their defaults.
var flagKeys = map[string]string{
	"base-url":       "crawl.base_url",
	"max-pages":      "crawl.max_pages",
	"delay":          "crawl.delay_seconds",
	"retries":        "crawl.retries",
	"limit":          "crawl.limit",
	"versioning":     "crawl.versioning",
	"resume":         "crawl.resume",
	"keep-html":      "crawl.keep_html",
	"csv":            "crawl.csv",
	"user-agent":     "crawl.user_agent",
	"respect-robots": "crawl.respect_robots",
	"out-dir":        "output.dir",
	"name":           "output.name",
	"metrics-addr":   "metrics.listen_addr",
}

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Change-aware harvester for hydroponics articles",
	Long: `harvester walks a paginated article listing, extracts structured
content from each detail page, and appends new or changed articles to
local JSONL and CSV files. Crawl state persists between runs, so
interrupted or repeated crawls only fetch what they have to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.InitConfig(); err != nil {
			return fmt.Errorf("init config: %w", err)
		}
		bindChangedFlags(cmd)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "listing base URL")
	pf.Int("max-pages", 0, "maximum listing pages to walk")
	pf.Float64("delay", 0, "politeness delay between requests, in seconds")
	pf.Int("retries", 0, "retry count for retryable HTTP failures")
	pf.Int("limit", 0, "stop after writing this many articles (0 = no limit)")
	pf.Bool("versioning", false, "re-fetch known URLs and version changed content")
	pf.Bool("resume", true, "load crawl state from a previous run")
	pf.Bool("keep-html", true, "keep per-section raw HTML in the output")
	pf.Bool("csv", true, "also append a flattened CSV row per article")
	pf.String("user-agent", "", "User-Agent header for all requests")
	pf.Bool("respect-robots", true, "honor robots.txt")
	pf.String("out-dir", "", "directory for output and state files")
	pf.String("name", "", "artifact name prefix")
	pf.String("metrics-addr", "", "serve /healthz and /metrics on this address")
}

// bindChangedFlags overlays explicitly set flags onto viper.
func bindChangedFlags(cmd *cobra.Command) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			viper.Set(key, f.Value.String())
		}
	})
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
