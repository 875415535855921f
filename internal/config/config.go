// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a harvest run.
// All values originate from Viper so the engine can be configured via file,
// env vars, or CLI flags.
type Config struct {
	Crawl   CrawlConfig
	HTTP    HTTPConfig
	Output  OutputConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

// CrawlConfig governs pagination, politeness and versioning behavior.
type CrawlConfig struct {
	BaseURL       string
	MaxPages      int
	DelaySeconds  float64
	Retries       int
	Limit         int
	Versioning    bool
	Resume        bool
	KeepHTML      bool
	CSV           bool
	UserAgent     string
	RespectRobots bool
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int
}

// OutputConfig sets where and under which prefix artifacts are written.
type OutputConfig struct {
	Dir  string
	Name string
}

// MetricsConfig controls the optional ops HTTP listener.
type MetricsConfig struct {
	ListenAddr string
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Crawl: CrawlConfig{
			BaseURL:       v.GetString("crawl.base_url"),
			MaxPages:      v.GetInt("crawl.max_pages"),
			DelaySeconds:  v.GetFloat64("crawl.delay_seconds"),
			Retries:       v.GetInt("crawl.retries"),
			Limit:         v.GetInt("crawl.limit"),
			Versioning:    v.GetBool("crawl.versioning"),
			Resume:        v.GetBool("crawl.resume"),
			KeepHTML:      v.GetBool("crawl.keep_html"),
			CSV:           v.GetBool("crawl.csv"),
			UserAgent:     v.GetString("crawl.user_agent"),
			RespectRobots: v.GetBool("crawl.respect_robots"),
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: v.GetInt("http.timeout_seconds"),
		},
		Output: OutputConfig{
			Dir:  v.GetString("output.dir"),
			Name: v.GetString("output.name"),
		},
		Metrics: MetricsConfig{
			ListenAddr: v.GetString("metrics.listen_addr"),
		},
		Logging: LoggingConfig{
			Development: v.GetBool("logging.development"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.BaseURL == "" {
		return fmt.Errorf("crawl.base_url must be set")
	}
	if _, err := url.ParseRequestURI(c.Crawl.BaseURL); err != nil {
		return fmt.Errorf("crawl.base_url is not a valid URL: %w", err)
	}
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be > 0")
	}
	if c.Crawl.DelaySeconds < 0 {
		return fmt.Errorf("crawl.delay_seconds must be >= 0")
	}
	if c.Crawl.Retries < 0 {
		return fmt.Errorf("crawl.retries must be >= 0")
	}
	if c.Crawl.Limit < 0 {
		return fmt.Errorf("crawl.limit must be >= 0")
	}
	if c.Crawl.UserAgent == "" {
		return fmt.Errorf("crawl.user_agent must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Output.Name == "" {
		return fmt.Errorf("output.name must be set")
	}
	return nil
}

// Delay converts the configured politeness delay into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawl.DelaySeconds * float64(time.Second))
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
