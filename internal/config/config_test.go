package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViper() *viper.Viper {
	v := viper.New()
	v.Set("crawl.base_url", "https://example.com/hydroponie/")
	v.Set("crawl.max_pages", 5)
	v.Set("crawl.delay_seconds", 1.5)
	v.Set("crawl.retries", 2)
	v.Set("crawl.user_agent", "test-agent")
	v.Set("http.timeout_seconds", 10)
	v.Set("output.dir", "data")
	v.Set("output.name", "hydro")
	return v
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(validViper())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/hydroponie/", cfg.Crawl.BaseURL)
	assert.Equal(t, 5, cfg.Crawl.MaxPages)
	assert.Equal(t, 1500*time.Millisecond, cfg.Delay())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"missing base url", "crawl.base_url", ""},
		{"malformed base url", "crawl.base_url", "not a url"},
		{"zero pages", "crawl.max_pages", 0},
		{"negative delay", "crawl.delay_seconds", -1.0},
		{"negative retries", "crawl.retries", -1},
		{"negative limit", "crawl.limit", -2},
		{"missing user agent", "crawl.user_agent", ""},
		{"zero timeout", "http.timeout_seconds", 0},
		{"missing output dir", "output.dir", ""},
		{"missing output name", "output.name", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
