package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/connection"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/protocol"
	"github.com/wippyai/hostbridge/scratch"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "HOSTBRIDGE_"

// Config holds bridge settings. Zero values are replaced by defaults only
// in Default; Load starts from Default and overlays the file, then the
// environment.
type Config struct {
	// Candidates maps a logical class name to fully qualified names tried
	// before the built-in ones. File only.
	Candidates map[string][]string `toml:"candidates"`
	Namespaces Namespaces          `toml:"namespaces" envPrefix:"NAMESPACE_"`
	// Version pins the host release ("1.20.4" or a protocol number);
	// empty means ask the host.
	Version string  `toml:"version" env:"VERSION"`
	Log     Log     `toml:"log" envPrefix:"LOG_"`
	Locator Locator `toml:"locator" envPrefix:"LOCATOR_"`
	Pool    Pool    `toml:"pool" envPrefix:"POOL_"`
}

// Namespaces are the package prefixes of host classes.
type Namespaces struct {
	Server string `toml:"server" env:"SERVER"`
	Netty  string `toml:"netty" env:"NETTY"`
}

// Locator tunes the connection list scan.
type Locator struct {
	ScanLimit       int `toml:"scan_limit" env:"SCAN_LIMIT"`
	FallbackOrdinal int `toml:"fallback_ordinal" env:"FALLBACK_ORDINAL"`
}

// Pool sizes the scratch buffer pool.
type Pool struct {
	InitialSize int `toml:"initial_size" env:"INITIAL_SIZE"`
	MaxRetained int `toml:"max_retained" env:"MAX_RETAINED"`
}

// Log configures the logger built by NewLogger.
type Log struct {
	Level       string `toml:"level" env:"LEVEL"`
	Development bool   `toml:"development" env:"DEVELOPMENT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Namespaces: Namespaces{
			Server: catalog.DefaultServerNamespace,
			Netty:  catalog.DefaultNettyNamespace,
		},
		Locator: Locator{
			ScanLimit:       connection.DefaultScanLimit,
			FallbackOrdinal: connection.DefaultFallbackOrdinal,
		},
		Pool: Pool{
			InitialSize: 256,
			MaxRetained: 64 << 10,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a TOML file over the defaults, applies HOSTBRIDGE_*
// environment overrides and validates the result. An empty path skips
// the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	}
	if err := FromEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv overlays HOSTBRIDGE_* environment variables onto cfg.
func FromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).Detail(format, args...).Build()
	}
	if c.Namespaces.Server == "" || c.Namespaces.Netty == "" {
		return invalid("namespaces must not be empty")
	}
	if c.Locator.ScanLimit <= 0 {
		return invalid("locator.scan_limit must be positive, got %d", c.Locator.ScanLimit)
	}
	if c.Locator.FallbackOrdinal < 0 {
		return invalid("locator.fallback_ordinal must not be negative, got %d", c.Locator.FallbackOrdinal)
	}
	if c.Pool.InitialSize <= 0 || c.Pool.MaxRetained < c.Pool.InitialSize {
		return invalid("pool sizes must satisfy 0 < initial_size <= max_retained, got %d and %d",
			c.Pool.InitialSize, c.Pool.MaxRetained)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if _, err := c.HostVersion(); err != nil {
		return err
	}
	known := catalog.ClassKeys()
	for key := range c.Candidates {
		if !slices.Contains(known, key) {
			return errors.New(errors.PhaseConfig, errors.KindNotFound).
				Symbol(key).
				Detail("unknown class in candidates").
				Build()
		}
	}
	return nil
}

// HostVersion returns the pinned host version, or the zero version when
// the host should be asked.
func (c *Config) HostVersion() (protocol.Version, error) {
	if c.Version == "" {
		return protocol.Version{}, nil
	}
	v, err := protocol.ParseVersion(c.Version)
	if err != nil {
		return protocol.Version{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "version")
	}
	return v, nil
}

// CatalogOptions returns the catalog options this configuration implies.
func (c *Config) CatalogOptions() []catalog.Option {
	opts := []catalog.Option{catalog.WithNamespaces(c.Namespaces.Server, c.Namespaces.Netty)}
	keys := make([]string, 0, len(c.Candidates))
	for k := range c.Candidates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		opts = append(opts, catalog.WithCandidates(k, c.Candidates[k]...))
	}
	return opts
}

// LocatorOptions returns the connection locator options.
func (c *Config) LocatorOptions() []connection.Option {
	return []connection.Option{
		connection.WithScanLimit(c.Locator.ScanLimit),
		connection.WithFallbackOrdinal(c.Locator.FallbackOrdinal),
	}
}

// NewPool builds a scratch pool sized by the configuration.
func (c *Config) NewPool() *scratch.Pool {
	return scratch.NewPool(c.Pool.InitialSize, c.Pool.MaxRetained)
}
