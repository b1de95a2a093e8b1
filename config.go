package libevents

import (
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DefaultValidationCacheSize = 4096
	DefaultListenersCacheSize  = 1024

	// DebugAll enables Listen and Fire diagnostics for every key.
	DebugAll = "all"
)

// Config holds the dispatcher settings. An empty Debug disables diagnostics.
type Config struct {
	Debug               string `koanf:"debug"`
	LogArgs             bool   `koanf:"log_args"`
	ValidationCacheSize int    `koanf:"validation_cache_size"`
	ListenersCacheSize  int    `koanf:"listeners_cache_size"`
}

func DefaultConfig() Config {
	return Config{
		ValidationCacheSize: DefaultValidationCacheSize,
		ListenersCacheSize:  DefaultListenersCacheSize,
	}
}

func (c Config) Validate() error {
	if c.ValidationCacheSize <= 0 {
		return errors.Errorf("validation_cache_size must be positive, got %d", c.ValidationCacheSize)
	}
	if c.ListenersCacheSize <= 0 {
		return errors.Errorf("listeners_cache_size must be positive, got %d", c.ListenersCacheSize)
	}
	return nil
}

// LoadConfig parses a JSON document on top of DefaultConfig.
func LoadConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(raw), json.Parser()); err != nil {
		return cfg, errors.Wrap(err, "cannot parse dispatcher config")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, errors.Wrap(err, "cannot decode dispatcher config")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
