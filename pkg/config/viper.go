// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup.
func InitConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")                // Current working directory
	viper.AddConfigPath("/etc/harvester/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.harvester") // User-specific configuration

	const defaultUA = "HydroCareResearchBot/1.0 (+https://github.com/hydrocare/harvester)"
	viper.SetDefault("crawl.base_url", "https://www.croquepousse.com/hydroponie/")
	viper.SetDefault("crawl.max_pages", 40)
	viper.SetDefault("crawl.delay_seconds", 1.2)
	viper.SetDefault("crawl.retries", 3)
	viper.SetDefault("crawl.limit", 0)
	viper.SetDefault("crawl.versioning", false)
	viper.SetDefault("crawl.resume", true)
	viper.SetDefault("crawl.keep_html", true)
	viper.SetDefault("crawl.csv", true)
	viper.SetDefault("crawl.user_agent", defaultUA)
	viper.SetDefault("crawl.respect_robots", true)

	viper.SetDefault("http.timeout_seconds", 25)

	viper.SetDefault("output.dir", "data")
	viper.SetDefault("output.name", "hydro")

	viper.SetDefault("metrics.listen_addr", "")
	viper.SetDefault("logging.development", true)

	viper.SetEnvPrefix("HARVESTER") // e.g. HARVESTER_CRAWL_MAX_PAGES=3
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults and environment variables still apply.
			return nil
		}
		return err
	}
	return nil
}
