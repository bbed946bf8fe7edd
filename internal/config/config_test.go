package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/01moynul/koodos-golang/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 1000, cfg.SlugMaxAttempts)
	require.Equal(t, 50, cfg.CrawlMaxPages)
	require.True(t, cfg.CrawlAutoSuggest)
	require.Equal(t, 15*time.Second, cfg.GenerationTimeout())
	require.Equal(t, 5*time.Minute, cfg.CacheTTL())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SLUG_MAX_ATTEMPTS", "25")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CRAWL_AUTO_SUGGEST", "false")
	t.Setenv("BREAKER_RESET_SECONDS", "10")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.ServerPort)
	require.Equal(t, 25, cfg.SlugMaxAttempts)
	require.Equal(t, "debug", cfg.LogLevel)
	require.False(t, cfg.CrawlAutoSuggest)
	require.Equal(t, 10*time.Second, cfg.BreakerReset())
}
