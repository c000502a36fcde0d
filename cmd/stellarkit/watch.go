package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/marwen-abid/stellarkit-go/observer"
	"github.com/marwen-abid/stellarkit-go/store/memory"
	"github.com/marwen-abid/stellarkit-go/txbuild"
)

var (
	watchAccountFlag = &cli.StringFlag{
		Name:  "account",
		Usage: "only stream transactions affecting this account (G...)",
	}
	cursorFlag = &cli.StringFlag{
		Name:  "cursor",
		Usage: `start position: "now", "" for the start of history, or a paging token`,
		Value: "now",
	}
	matchFlag = &cli.BoolFlag{
		Name:  "match",
		Usage: "report payments to --account keyed by their memo",
	}

	watchCommand = &cli.Command{
		Name:   "watch",
		Usage:  "stream transactions and payments",
		Flags:  []cli.Flag{watchAccountFlag, cursorFlag, matchFlag},
		Action: watchAction,
	}
)

func watchAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	account := ctx.String(watchAccountFlag.Name)
	cursors := memory.NewCursorStore()

	opts := []observer.ObserverOption{
		observer.WithCursor(ctx.String(cursorFlag.Name)),
		observer.WithCursorSaver(cursors.Saver("watch")),
		observer.WithLogger(logrus.StandardLogger()),
	}
	if account != "" {
		opts = append(opts, observer.WithStreamAccount(account))
	}
	obs := observer.NewHorizonObserver(cfg.Horizon.URL, opts...)

	obs.OnTransaction(func(evt observer.TransactionEvent) error {
		fmt.Fprintf(ctx.App.Writer, "tx %s ledger=%d result=%s ops=%d\n",
			evt.Hash, evt.Ledger, evt.Outcome.TransactionCode(), len(evt.Outcome.Operations))
		return nil
	})

	if ctx.Bool(matchFlag.Name) {
		if account == "" {
			return fmt.Errorf("--match requires --account")
		}
		err := observer.MatchPayments(obs, account, func(_ context.Context, key string, evt observer.PaymentEvent) error {
			fmt.Fprintf(ctx.App.Writer, "deposit memo=%s from=%s amount=%s %s\n",
				key, evt.From, txbuild.FormatAmount(evt.Amount), evt.Asset)
			return nil
		}, logrus.StandardLogger())
		if err != nil {
			return err
		}
	} else {
		obs.OnPayment(func(evt observer.PaymentEvent) error {
			fmt.Fprintf(ctx.App.Writer, "payment %s %s -> %s %s %s\n",
				evt.ID, evt.From, evt.To, txbuild.FormatAmount(evt.Amount), evt.Asset)
			return nil
		})
	}

	err = obs.Start(ctx.Context)
	if last, ok, _ := cursors.Load(context.Background(), "watch"); ok {
		logrus.WithField("cursor", last).Info("stopped")
	}
	if err == context.Canceled {
		return nil
	}
	return err
}
