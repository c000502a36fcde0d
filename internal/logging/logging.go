// Package logging configures the process-wide logrus logger for the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/marwen-abid/stellarkit-go/errors"
)

const timestampFormat = "2006-01-02T15:04:05.000"

// Configure sets the standard logger's level and format. level is a logrus
// level name such as "info" or "debug"; json selects JSON output over text.
func Configure(level string, json bool) error {
	return ConfigureLogger(logrus.StandardLogger(), os.Stderr, level, json)
}

// ConfigureLogger applies the same settings to l, writing to out.
func ConfigureLogger(l *logrus.Logger, out io.Writer, level string, json bool) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.NewNetworkError(errors.CONFIG_INVALID, "invalid log level "+level, err)
	}

	l.SetOutput(out)
	l.SetLevel(lvl)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}
	return nil
}
