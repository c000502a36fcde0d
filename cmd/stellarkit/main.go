// Command stellarkit builds, signs, submits and inspects Stellar transactions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/marwen-abid/stellarkit-go/config"
	"github.com/marwen-abid/stellarkit-go/core/net"
	"github.com/marwen-abid/stellarkit-go/horizon"
	"github.com/marwen-abid/stellarkit-go/internal/logging"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file (TOML)",
	}
	horizonFlag = &cli.StringFlag{
		Name:  "horizon",
		Usage: "Horizon server URL, overrides the config file",
	}
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "network preset (public, testnet, futurenet), overrides the config file",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (panic, fatal, error, warn, info, debug, trace)",
	}
	jsonLogFlag = &cli.BoolFlag{
		Name:  "json-log",
		Usage: "output log in json format",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "stellarkit"
	app.Usage = "build, sign and inspect Stellar transactions"
	app.Flags = []cli.Flag{configFlag, horizonFlag, networkFlag, logLevelFlag, jsonLogFlag}
	app.Commands = []*cli.Command{
		keyCommand,
		xdrCommand,
		txCommand,
		watchCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		return logging.Configure(cfg.Log.Level, cfg.Log.JSON)
	}
	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v := ctx.String(horizonFlag.Name); v != "" {
		cfg.Horizon.URL = v
	}
	if v := ctx.String(networkFlag.Name); v != "" {
		cfg.Network.Preset = v
		cfg.Network.Passphrase = ""
	}
	if v := ctx.String(logLevelFlag.Name); v != "" {
		cfg.Log.Level = v
	}
	if ctx.Bool(jsonLogFlag.Name) {
		cfg.Log.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newHorizonClient(cfg *config.Config) *horizon.Client {
	transport := net.NewClient(
		net.WithTimeout(cfg.Horizon.Timeout.Duration),
		net.WithMaxRetries(cfg.Horizon.MaxRetries),
		net.WithRetryBackoff(cfg.Horizon.RetryBackoff.Duration),
		net.WithLogger(logrus.StandardLogger()),
	)
	return horizon.NewClient(cfg.Horizon.URL, horizon.WithHTTPClient(transport))
}
