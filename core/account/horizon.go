// Package account reads account state from a Horizon server.
package account

import (
	"context"
	"fmt"

	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"
	"github.com/stellar/go/amount"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// Detailer is the subset of horizonclient.Client used by HorizonAccountFetcher.
type Detailer interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
}

// Signer is an account signer as reported by Horizon.
type Signer struct {
	Key    strkey.StellarKey
	Weight int32
}

// Thresholds are the account's operation thresholds.
type Thresholds struct {
	Low    byte
	Medium byte
	High   byte
}

// HorizonAccountFetcher implements stellarkit.AccountSource using a Horizon server.
type HorizonAccountFetcher struct {
	client Detailer
}

// NewHorizonAccountFetcher creates a fetcher backed by the given Horizon URL.
func NewHorizonAccountFetcher(horizonURL string) *HorizonAccountFetcher {
	return NewFetcher(&horizonclient.Client{HorizonURL: horizonURL})
}

// NewFetcher creates a fetcher over an existing Horizon client.
func NewFetcher(client Detailer) *HorizonAccountFetcher {
	return &HorizonAccountFetcher{client: client}
}

func (f *HorizonAccountFetcher) detail(ctx context.Context, accountID xdr.AccountID) (hProtocol.Account, error) {
	if err := ctx.Err(); err != nil {
		return hProtocol.Account{}, err
	}
	address := accountID.Address()
	acc, err := f.client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return hProtocol.Account{}, errors.NewNetworkError(
				errors.ACCOUNT_NOT_FOUND,
				fmt.Sprintf("account %s not found", address),
				err,
			).With("account", address)
		}
		return hProtocol.Account{}, errors.NewNetworkError(
			errors.NETWORK_ERROR,
			fmt.Sprintf("failed to fetch account %s", address),
			err,
		).With("account", address)
	}
	return acc, nil
}

// AccountSequence returns the account's current sequence number. The next
// transaction from this account must carry this value plus one.
func (f *HorizonAccountFetcher) AccountSequence(ctx context.Context, accountID xdr.AccountID) (int64, error) {
	acc, err := f.detail(ctx, accountID)
	if err != nil {
		return 0, err
	}
	seq, err := acc.GetSequenceNumber()
	if err != nil {
		return 0, errors.NewNetworkError(errors.NETWORK_ERROR, "invalid sequence number in account response", err)
	}
	return seq, nil
}

// Balance returns the account's balance of asset in stroops. An account that
// does not hold the asset fails with MISSING_BALANCE.
func (f *HorizonAccountFetcher) Balance(ctx context.Context, accountID xdr.AccountID, asset xdr.Asset) (int64, error) {
	acc, err := f.detail(ctx, accountID)
	if err != nil {
		return 0, err
	}
	for _, b := range acc.Balances {
		if !balanceMatches(b, asset) {
			continue
		}
		v, err := amount.ParseInt64(b.Balance)
		if err != nil {
			return 0, errors.NewNetworkError(errors.NETWORK_ERROR, fmt.Sprintf("invalid balance %q", b.Balance), err)
		}
		return v, nil
	}
	return 0, errors.NewNetworkError(
		errors.MISSING_BALANCE,
		fmt.Sprintf("account %s holds no %s", accountID.Address(), asset),
		nil,
	).With("account", accountID.Address()).With("asset", asset.String())
}

func balanceMatches(b hProtocol.Balance, asset xdr.Asset) bool {
	if asset.IsNative() {
		return b.Asset.Type == "native"
	}
	return b.Asset.Code == asset.Code() && b.Asset.Issuer == asset.Issuer.Address()
}

// Signers returns the signers and thresholds for an account.
func (f *HorizonAccountFetcher) Signers(ctx context.Context, accountID xdr.AccountID) ([]Signer, Thresholds, error) {
	acc, err := f.detail(ctx, accountID)
	if err != nil {
		return nil, Thresholds{}, err
	}

	signers := make([]Signer, 0, len(acc.Signers))
	for _, s := range acc.Signers {
		k, err := strkey.Parse(s.Key)
		if err != nil {
			// signed-payload and other newer signer kinds are not modelled
			continue
		}
		signers = append(signers, Signer{Key: k, Weight: s.Weight})
	}

	thresholds := Thresholds{
		Low:    acc.Thresholds.LowThreshold,
		Medium: acc.Thresholds.MedThreshold,
		High:   acc.Thresholds.HighThreshold,
	}
	return signers, thresholds, nil
}
