package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultHorizonURL, c.Horizon.URL)
	assert.Equal(t, DefaultTimeout, c.Horizon.Timeout.Duration)
	assert.Equal(t, network.Test, c.NetworkID())
	assert.Equal(t, 5*time.Minute, c.Timeout())
	assert.Zero(t, c.Builder.BaseFee)
}

func TestParse(t *testing.T) {
	c, err := Parse(`
[horizon]
url = "https://horizon.stellar.org"
timeout = "20s"
max_retries = 5
retry_backoff = "250ms"

[network]
preset = "public"

[log]
level = "debug"
json = true

[builder]
base_fee = 200
timeout_seconds = 60
`)
	require.NoError(t, err)
	assert.Equal(t, "https://horizon.stellar.org", c.Horizon.URL)
	assert.Equal(t, 20*time.Second, c.Horizon.Timeout.Duration)
	assert.Equal(t, 5, c.Horizon.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, c.Horizon.RetryBackoff.Duration)
	assert.Equal(t, network.Public, c.NetworkID())
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Log.JSON)
	assert.Equal(t, uint32(200), c.Builder.BaseFee)
	assert.Equal(t, time.Minute, c.Timeout())
}

func TestCustomPassphrase(t *testing.T) {
	c, err := Parse(`
[network]
passphrase = "Standalone Network ; February 2017"
`)
	require.NoError(t, err)
	assert.Empty(t, c.Network.Preset)
	assert.Equal(t, network.ID("Standalone Network ; February 2017"), c.NetworkID())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[horizon\nurl = 1"},
		{"unknown key", "[horizon]\nendpoint = \"x\""},
		{"bad duration", "[horizon]\ntimeout = \"soon\""},
		{"negative retries", "[horizon]\nmax_retries = -1"},
		{"negative timeout", "[builder]\ntimeout_seconds = -5"},
		{"unknown preset", "[network]\npreset = \"moonnet\""},
		{"conflicting passphrase", "[network]\npreset = \"testnet\"\npassphrase = \"Public Global Stellar Network ; September 2015\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.Equal(t, errors.CONFIG_INVALID, errors.CodeOf(err))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stellarkit.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, DefaultHorizonURL, c.Horizon.URL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, errors.CONFIG_INVALID, errors.CodeOf(err))
}
