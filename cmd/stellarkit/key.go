package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/marwen-abid/stellarkit-go/signers"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

var keyTypes = map[string]strkey.KeyType{
	"account": strkey.Ed25519PublicKey,
	"seed":    strkey.Ed25519SecretSeed,
	"preauth": strkey.PreAuthTx,
	"hashx":   strkey.Sha256Hash,
}

var (
	keyTypeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "key type: account, seed, preauth or hashx",
		Value: "account",
	}

	keyCommand = &cli.Command{
		Name:  "key",
		Usage: "encode, decode and generate keys",
		Subcommands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "encode 32 hex-encoded bytes as a strkey",
				ArgsUsage: "<hex>",
				Flags:     []cli.Flag{keyTypeFlag},
				Action:    keyEncode,
			},
			{
				Name:      "decode",
				Usage:     "decode a strkey into its type and hex bytes",
				ArgsUsage: "<strkey>",
				Action:    keyDecode,
			},
			{
				Name:   "generate",
				Usage:  "generate a random keypair",
				Action: keyGenerate,
			},
		},
	}
)

func keyEncode(ctx *cli.Context) error {
	arg := ctx.Args().Get(0)
	if arg == "" {
		return fmt.Errorf("empty key argument")
	}
	t, ok := keyTypes[ctx.String(keyTypeFlag.Name)]
	if !ok {
		return fmt.Errorf("unknown key type %q", ctx.String(keyTypeFlag.Name))
	}
	raw, err := hex.DecodeString(arg)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	s, err := strkey.Encode(t, raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, s)
	return nil
}

func keyDecode(ctx *cli.Context) error {
	arg := ctx.Args().Get(0)
	if arg == "" {
		return fmt.Errorf("empty key argument")
	}
	k, err := strkey.Parse(arg)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "type: %s\nhex:  %x\n", k.Type(), k.Bytes())
	return nil
}

func keyGenerate(ctx *cli.Context) error {
	s, err := signers.Random()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "address: %s\nseed:    %s\n", s.Address(), s.Seed())
	return nil
}
