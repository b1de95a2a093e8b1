package libevents

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "", cfg.Debug)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{
		"debug": "all,session",
		"log_args": true,
		"listeners_cache_size": 16,
		"unknown": "ignored"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "all,session", cfg.Debug)
	assert.True(t, cfg.LogArgs)
	assert.Equal(t, 16, cfg.ListenersCacheSize)
	assert.Equal(t, DefaultValidationCacheSize, cfg.ValidationCacheSize)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig([]byte(`{not json`))
	assert.Error(t, err)

	_, err = LoadConfig([]byte(`{"validation_cache_size": 0}`))
	assert.ErrorContains(t, err, "validation_cache_size")

	_, err = LoadConfig([]byte(`{"listeners_cache_size": -1}`))
	assert.ErrorContains(t, err, "listeners_cache_size")
}

func TestDispatcherToleratesZeroConfig(t *testing.T) {
	d := NewEventDispatcher(NewWriterLogger(io.Discard), Config{})
	require.NoError(t, d.On(Name("evt"), noop()))
	assert.Len(t, d.Listeners(Name("evt")), 1)
}
