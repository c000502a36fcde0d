// Package config loads the CLI configuration from a TOML file.
//
// Example file:
//
//	[horizon]
//	url = "https://horizon-testnet.stellar.org"
//	timeout = "20s"
//	max_retries = 3
//
//	[network]
//	preset = "testnet"
//
//	[log]
//	level = "debug"
//	json = false
//
//	[builder]
//	base_fee = 100
//	timeout_seconds = 300
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
)

// Default configuration values
const (
	DefaultHorizonURL     = "https://horizon-testnet.stellar.org"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBackoff   = 1 * time.Second
	DefaultPreset         = "testnet"
	DefaultLogLevel       = "info"
	DefaultTimeoutSeconds = 300
)

// Config is the full CLI configuration.
type Config struct {
	Horizon HorizonConfig `toml:"horizon"`
	Network NetworkConfig `toml:"network"`
	Log     LogConfig     `toml:"log"`
	Builder BuilderConfig `toml:"builder"`
}

// HorizonConfig selects the Horizon server and transport behaviour.
type HorizonConfig struct {
	URL          string   `toml:"url"`
	Timeout      Duration `toml:"timeout"`
	MaxRetries   int      `toml:"max_retries"`
	RetryBackoff Duration `toml:"retry_backoff"`
}

// NetworkConfig selects the network either by preset name or by passphrase.
type NetworkConfig struct {
	Preset     string `toml:"preset"`
	Passphrase string `toml:"passphrase"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// BuilderConfig holds transaction defaults. A zero BaseFee means the fee is
// read from the latest ledger.
type BuilderConfig struct {
	BaseFee        uint32 `toml:"base_fee"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Duration is a time.Duration that decodes from strings like "20s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.NewNetworkError(errors.CONFIG_INVALID, fmt.Sprintf("failed to read config %s", path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.NewNetworkError(errors.CONFIG_INVALID, fmt.Sprintf("unknown config key %s", undecoded[0]), nil)
	}
	return finish(c)
}

// Parse is like Load but reads the TOML from data.
func Parse(data string) (*Config, error) {
	c := &Config{}
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.NewNetworkError(errors.CONFIG_INVALID, "failed to parse config", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.NewNetworkError(errors.CONFIG_INVALID, fmt.Sprintf("unknown config key %s", undecoded[0]), nil)
	}
	return finish(c)
}

func finish(c *Config) (*Config, error) {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Horizon.URL == "" {
		c.Horizon.URL = DefaultHorizonURL
	}
	if c.Horizon.Timeout.Duration == 0 {
		c.Horizon.Timeout.Duration = DefaultTimeout
	}
	if c.Horizon.MaxRetries == 0 {
		c.Horizon.MaxRetries = DefaultMaxRetries
	}
	if c.Horizon.RetryBackoff.Duration == 0 {
		c.Horizon.RetryBackoff.Duration = DefaultRetryBackoff
	}
	if c.Network.Preset == "" && c.Network.Passphrase == "" {
		c.Network.Preset = DefaultPreset
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Builder.TimeoutSeconds == 0 {
		c.Builder.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Horizon.URL == "" {
		return errors.NewNetworkError(errors.CONFIG_INVALID, "horizon.url is empty", nil)
	}
	if c.Horizon.MaxRetries < 0 {
		return errors.NewNetworkError(errors.CONFIG_INVALID, "horizon.max_retries is negative", nil)
	}
	if c.Builder.TimeoutSeconds < 0 {
		return errors.NewNetworkError(errors.CONFIG_INVALID, "builder.timeout_seconds is negative", nil)
	}
	if c.Network.Preset != "" {
		id, err := network.Preset(c.Network.Preset)
		if err != nil {
			return errors.NewNetworkError(errors.CONFIG_INVALID, fmt.Sprintf("unknown network preset %q", c.Network.Preset), err)
		}
		if c.Network.Passphrase != "" && network.ID(c.Network.Passphrase) != id {
			return errors.NewNetworkError(errors.CONFIG_INVALID, "network.preset and network.passphrase disagree", nil)
		}
	}
	return nil
}

// NetworkID returns the configured network.
func (c *Config) NetworkID() network.ID {
	if c.Network.Passphrase != "" {
		return network.ID(c.Network.Passphrase)
	}
	id, _ := network.Preset(c.Network.Preset)
	return id
}

// Timeout returns the builder's transaction validity window.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Builder.TimeoutSeconds) * time.Second
}
