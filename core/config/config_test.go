package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/config"
)

type sampleConfig struct {
	APIURL  string        `env:"CONFIG_TEST_API_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"CONFIG_TEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET,required"`
}

// Not parallel: tests mutate the process environment and the shared cache.

func TestLoad(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	t.Setenv("CONFIG_TEST_TIMEOUT", "250ms")

	var cfg sampleConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)

	t.Setenv("CONFIG_TEST_TIMEOUT", "9s")
	var cached sampleConfig
	require.NoError(t, config.Load(&cached))
	assert.Equal(t, 250*time.Millisecond, cached.Timeout, "second load returns cached value")

	config.Reset()
	var fresh sampleConfig
	require.NoError(t, config.Load(&fresh))
	assert.Equal(t, 9*time.Second, fresh.Timeout)
}

func TestLoad_Required(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	var cfg requiredConfig
	assert.Error(t, config.Load(&cfg))
	assert.Panics(t, func() { config.MustLoad(&cfg) })

	t.Setenv("CONFIG_TEST_SECRET", "s3cret")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "s3cret", cfg.Secret)
}
