package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/marwen-abid/stellarkit-go/config"
	"github.com/marwen-abid/stellarkit-go/horizon"
	"github.com/marwen-abid/stellarkit-go/signers"
	"github.com/marwen-abid/stellarkit-go/txbuild"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

var (
	secretFlag = &cli.StringFlag{
		Name:     "secret",
		Usage:    "secret seed (S...) of the source account",
		EnvVars:  []string{"STELLARKIT_SECRET"},
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "destination account (G...)",
		Required: true,
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "amount in units, e.g. 12.5",
		Required: true,
	}
	assetFlag = &cli.StringFlag{
		Name:  "asset",
		Usage: "asset to send: native or CODE:ISSUER",
		Value: "native",
	}
	memoFlag = &cli.StringFlag{
		Name:  "memo",
		Usage: "text memo",
	}
	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print the signed envelope instead of submitting it",
	}

	txCommand = &cli.Command{
		Name:  "tx",
		Usage: "build, sign and submit transactions",
		Subcommands: []*cli.Command{
			{
				Name:   "pay",
				Usage:  "send a payment",
				Flags:  []cli.Flag{secretFlag, toFlag, amountFlag, assetFlag, memoFlag, dryRunFlag},
				Action: payAction,
			},
			{
				Name:   "create-account",
				Usage:  "fund a new account",
				Flags:  []cli.Flag{secretFlag, toFlag, amountFlag, memoFlag, dryRunFlag},
				Action: createAccountAction,
			},
		},
	}
)

func parseAssetFlag(s string) (xdr.Asset, error) {
	if s == "" || s == "native" {
		return xdr.NativeAsset(), nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return xdr.Asset{}, fmt.Errorf("asset must be native or CODE:ISSUER, got %q", s)
	}
	return xdr.ParseAsset(parts[0], parts[1])
}

func payAction(ctx *cli.Context) error {
	dest, err := xdr.ParseAccountID(ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	asset, err := parseAssetFlag(ctx.String(assetFlag.Name))
	if err != nil {
		return err
	}
	amount, err := txbuild.ParseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	return runTransaction(ctx, xdr.Payment(dest, asset, amount))
}

func createAccountAction(ctx *cli.Context) error {
	dest, err := xdr.ParseAccountID(ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	amount, err := txbuild.ParseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	return runTransaction(ctx, xdr.CreateAccount(dest, amount))
}

func runTransaction(ctx *cli.Context, ops ...xdr.Operation) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	signer, err := signers.FromSecret(ctx.String(secretFlag.Name))
	if err != nil {
		return err
	}
	source, err := xdr.NewPublicKey(signer.PublicKey())
	if err != nil {
		return err
	}

	client := newHorizonClient(cfg)
	b := newBuilder(cfg, client, source, signer).AddOperations(ops...)
	if memo := ctx.String(memoFlag.Name); memo != "" {
		b.SetMemoText(memo)
	}

	if ctx.Bool(dryRunFlag.Name) {
		env, err := b.Sign(ctx.Context)
		if err != nil {
			return err
		}
		blob, err := xdr.MarshalBase64(env)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, blob)
		return nil
	}

	res, err := b.Submit(ctx.Context)
	if err != nil {
		var subErr *horizon.SubmissionError
		if stderrors.As(err, &subErr) && subErr.Result != nil {
			if perr := printJSON(ctx, newOutcomeView(txbuild.Interpret(*subErr.Result))); perr != nil {
				return perr
			}
		}
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "hash:   %s\nledger: %d\n", res.Hash, res.Ledger)
	return txbuild.Interpret(res.Result).Err()
}

func newBuilder(cfg *config.Config, client *horizon.Client, source xdr.AccountID, signer *signers.KeypairSigner) *txbuild.Builder {
	opts := []txbuild.Option{
		txbuild.WithAccountSource(client),
		txbuild.WithNetworkSource(client),
		txbuild.WithSubmitter(client),
		txbuild.WithSigners(signer),
		txbuild.WithTimeout(cfg.Timeout()),
	}
	if cfg.Builder.BaseFee > 0 {
		opts = append(opts, txbuild.WithBaseFee(cfg.Builder.BaseFee))
	}
	return txbuild.New(source, cfg.NetworkID(), opts...)
}
