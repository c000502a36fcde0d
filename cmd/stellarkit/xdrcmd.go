package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/marwen-abid/stellarkit-go/core/crypto"
	"github.com/marwen-abid/stellarkit-go/observer"
	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/txbuild"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

var (
	verifyFlag = &cli.StringSliceFlag{
		Name:  "verify",
		Usage: "account (G...) whose signature should be checked, may be repeated",
	}

	xdrCommand = &cli.Command{
		Name:  "xdr",
		Usage: "decode base64 XDR into JSON",
		Subcommands: []*cli.Command{
			{
				Name:      "envelope",
				Usage:     "decode a transaction envelope",
				ArgsUsage: "<base64>",
				Flags:     []cli.Flag{verifyFlag},
				Action:    decodeEnvelope,
			},
			{
				Name:      "result",
				Usage:     "decode and interpret a transaction result",
				ArgsUsage: "<base64>",
				Action:    decodeResult,
			},
		},
	}
)

type envelopeView struct {
	Type       string          `json:"type"`
	Hash       string          `json:"hash"`
	Source     string          `json:"source_account"`
	Fee        uint32          `json:"fee"`
	Sequence   int64           `json:"sequence"`
	MinTime    uint64          `json:"min_time,omitempty"`
	MaxTime    uint64          `json:"max_time,omitempty"`
	Memo       string          `json:"memo,omitempty"`
	Operations []operationView `json:"operations"`
	Signatures []signatureView `json:"signatures"`
	SignedBy   []string        `json:"signed_by,omitempty"`
}

type operationView struct {
	Type   string `json:"type"`
	Source string `json:"source_account,omitempty"`
}

type signatureView struct {
	Hint      string `json:"hint"`
	Signature string `json:"signature"`
}

func decodeEnvelope(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	arg := strings.TrimSpace(ctx.Args().Get(0))
	if arg == "" {
		return fmt.Errorf("empty envelope argument")
	}

	var env xdr.TransactionEnvelope
	if err := xdr.UnmarshalBase64(arg, &env); err != nil {
		return err
	}
	tx, _ := env.Transaction()
	hash, err := env.Hash(cfg.NetworkID())
	if err != nil {
		return err
	}

	view := envelopeView{
		Type:     envelopeTypeName(env.Type),
		Hash:     hash.String(),
		Source:   tx.SourceAccount.Address(),
		Fee:      tx.Fee,
		Sequence: tx.SeqNum,
		Memo:     observer.MemoKey(tx.Memo),
	}
	if tx.TimeBounds != nil {
		view.MinTime = tx.TimeBounds.MinTime
		view.MaxTime = tx.TimeBounds.MaxTime
	}
	for _, op := range tx.Operations {
		ov := operationView{Type: op.Body.Type.String()}
		if op.SourceAccount != nil {
			ov.Source = op.SourceAccount.Address()
		}
		view.Operations = append(view.Operations, ov)
	}
	for _, sig := range env.Signatures() {
		view.Signatures = append(view.Signatures, signatureView{
			Hint:      hex.EncodeToString(sig.Hint[:]),
			Signature: hex.EncodeToString(sig.Signature),
		})
	}

	if addrs := ctx.StringSlice(verifyFlag.Name); len(addrs) > 0 {
		keys := make([]strkey.StellarKey, 0, len(addrs))
		for _, a := range addrs {
			k, err := strkey.ParseAddress(a)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		signed, err := crypto.SignedBy(env, cfg.NetworkID(), keys...)
		if err != nil {
			return err
		}
		for _, k := range signed {
			view.SignedBy = append(view.SignedBy, k.String())
		}
	}

	return printJSON(ctx, view)
}

type outcomeView struct {
	FeeCharged int64        `json:"fee_charged"`
	Code       string       `json:"result_code"`
	RawCode    int32        `json:"raw_code"`
	Success    bool         `json:"success"`
	Operations []string     `json:"operations,omitempty"`
	InnerHash  string       `json:"inner_hash,omitempty"`
	Inner      *outcomeView `json:"inner,omitempty"`
}

func newOutcomeView(o txbuild.Outcome) *outcomeView {
	v := &outcomeView{
		FeeCharged: o.FeeCharged,
		Code:       o.TransactionCode(),
		RawCode:    o.RawCode,
		Success:    o.Success(),
	}
	for _, op := range o.Operations {
		v.Operations = append(v.Operations, op.Code)
	}
	if o.Inner != nil {
		v.InnerHash = o.InnerHash.String()
		v.Inner = newOutcomeView(*o.Inner)
	}
	return v
}

func decodeResult(ctx *cli.Context) error {
	arg := strings.TrimSpace(ctx.Args().Get(0))
	if arg == "" {
		return fmt.Errorf("empty result argument")
	}
	var r xdr.TransactionResult
	if err := xdr.UnmarshalBase64(arg, &r); err != nil {
		return err
	}
	return printJSON(ctx, newOutcomeView(txbuild.Interpret(r)))
}

func envelopeTypeName(t xdr.EnvelopeType) string {
	switch t {
	case xdr.EnvelopeTypeTxV0:
		return "tx_v0"
	case xdr.EnvelopeTypeTx:
		return "tx"
	case xdr.EnvelopeTypeTxFeeBump:
		return "tx_fee_bump"
	}
	return fmt.Sprintf("envelope_type_%d", int32(t))
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
