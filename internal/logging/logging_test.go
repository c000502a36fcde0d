package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/errors"
)

func TestConfigureLoggerText(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, ConfigureLogger(l, &buf, "WARN", false))
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("tx_hash", "abc").Warn("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "tx_hash=abc")
}

func TestConfigureLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, ConfigureLogger(l, &buf, "", true))
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	l.WithField("ledger", 7).Info("closed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "closed", entry["msg"])
	assert.Equal(t, float64(7), entry["ledger"])
}

func TestConfigureLoggerInvalidLevel(t *testing.T) {
	err := ConfigureLogger(logrus.New(), &bytes.Buffer{}, "chatty", false)
	assert.Equal(t, errors.CONFIG_INVALID, errors.CodeOf(err))
}
