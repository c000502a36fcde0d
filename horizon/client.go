// Package horizon connects the builder to a Horizon server. A single Client
// serves as the builder's AccountSource, NetworkSource and Submitter.
//
// Queries go through horizonclient; submission is a form-encoded POST of the
// base64 envelope through core/net so that transport failures are retried and
// a rejected transaction comes back with its decoded result.
//
// Example usage:
//
//	hc := horizon.NewClient("https://horizon-testnet.stellar.org")
//	b := txbuild.New(source, network.Test,
//	    txbuild.WithAccountSource(hc),
//	    txbuild.WithNetworkSource(hc),
//	    txbuild.WithSubmitter(hc),
//	)
package horizon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"

	stellarkit "github.com/marwen-abid/stellarkit-go"
	"github.com/marwen-abid/stellarkit-go/core/account"
	"github.com/marwen-abid/stellarkit-go/core/net"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// maxResponseSize bounds the bytes read from a submission response.
const maxResponseSize = 1 << 20

// Client talks to one Horizon server.
type Client struct {
	url      string
	http     *net.Client
	horizon  *horizonclient.Client
	accounts *account.HorizonAccountFetcher
	logger   logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(c *net.Client) Option {
	return func(h *Client) {
		h.http = c
	}
}

// WithLogger sets the logger used for submission diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Client) {
		h.logger = l
	}
}

// NewClient creates a client for the Horizon server at horizonURL.
func NewClient(horizonURL string, opts ...Option) *Client {
	c := &Client{
		url:    strings.TrimRight(horizonURL, "/"),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = net.NewClient(net.WithLogger(c.logger))
	}
	c.horizon = &horizonclient.Client{
		HorizonURL: c.url + "/",
		HTTP:       c.http.HTTPClient(),
	}
	c.accounts = account.NewFetcher(c.horizon)
	return c
}

// URL returns the server base URL without a trailing slash.
func (c *Client) URL() string {
	return c.url
}

// AccountSequence returns the current sequence number of accountID.
func (c *Client) AccountSequence(ctx context.Context, accountID xdr.AccountID) (int64, error) {
	return c.accounts.AccountSequence(ctx, accountID)
}

// Balance returns the balance of asset held by accountID, in stroops.
func (c *Client) Balance(ctx context.Context, accountID xdr.AccountID, asset xdr.Asset) (int64, error) {
	return c.accounts.Balance(ctx, accountID, asset)
}

// Signers returns the signers and thresholds of accountID.
func (c *Client) Signers(ctx context.Context, accountID xdr.AccountID) ([]account.Signer, account.Thresholds, error) {
	return c.accounts.Signers(ctx, accountID)
}

// NetworkConfiguration reads fee parameters from the latest closed ledger.
// When Horizon includes the ledger header XDR, the decoded header is the
// source of truth and must agree with the JSON record.
func (c *Client) NetworkConfiguration(ctx context.Context) (stellarkit.NetworkConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return stellarkit.NetworkConfiguration{}, err
	}
	page, err := c.horizon.Ledgers(horizonclient.LedgerRequest{
		Order: horizonclient.OrderDesc,
		Limit: 1,
	})
	if err != nil {
		return stellarkit.NetworkConfiguration{}, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to fetch latest ledger", err)
	}
	if len(page.Embedded.Records) == 0 {
		return stellarkit.NetworkConfiguration{}, errors.NewNetworkError(errors.NETWORK_ERROR, "no ledgers returned", nil)
	}
	return configurationFromLedger(page.Embedded.Records[0])
}

func configurationFromLedger(l hProtocol.Ledger) (stellarkit.NetworkConfiguration, error) {
	cfg := stellarkit.NetworkConfiguration{
		LedgerSeq:    uint32(l.Sequence),
		BaseFee:      uint32(l.BaseFee),
		BaseReserve:  uint32(l.BaseReserve),
		MaxTxSetSize: uint32(l.MaxTxSetSize),
	}
	if l.HeaderXDR == "" {
		return cfg, nil
	}

	var header xdr.LedgerHeader
	if err := xdr.UnmarshalBase64(l.HeaderXDR, &header); err != nil {
		return stellarkit.NetworkConfiguration{}, errors.NewNetworkError(errors.NETWORK_ERROR, "invalid ledger header_xdr", err).
			With("ledger", l.Sequence)
	}
	if header.LedgerSeq != cfg.LedgerSeq || header.BaseFee != cfg.BaseFee {
		return stellarkit.NetworkConfiguration{}, errors.NewNetworkError(
			errors.NETWORK_ERROR,
			fmt.Sprintf("ledger %d: header disagrees with record (seq %d, base fee %d)", cfg.LedgerSeq, header.LedgerSeq, header.BaseFee),
			nil,
		)
	}
	return stellarkit.NetworkConfiguration{
		LedgerSeq:    header.LedgerSeq,
		BaseFee:      header.BaseFee,
		BaseReserve:  header.BaseReserve,
		MaxTxSetSize: header.MaxTxSetSize,
	}, nil
}

// Submit posts env to /transactions. A transaction the network rejects is
// reported as a *SubmissionError.
func (c *Client) Submit(ctx context.Context, env *xdr.TransactionEnvelope) (*stellarkit.SubmitResult, error) {
	blob, err := xdr.MarshalBase64(env)
	if err != nil {
		return nil, err
	}

	log := c.logger.WithField("url", c.url)
	resp, err := c.http.PostForm(ctx, c.url+"/transactions", url.Values{"tx": {blob}})
	if err != nil {
		return nil, err
	}
	body, err := resp.ReadBody(maxResponseSize)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		subErr := parseSubmissionError(resp.StatusCode, body)
		log.WithFields(logrus.Fields{
			"status":      resp.StatusCode,
			"result_code": subErr.ResultCodes.Transaction,
		}).Info("transaction rejected")
		return nil, subErr
	}

	var tx hProtocol.Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "invalid submission response", err)
	}
	result, err := resultFromRecord(tx)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"tx_hash": tx.Hash, "ledger": tx.Ledger}).Debug("transaction accepted")
	return result, nil
}

// Transaction fetches a transaction that has been included in a ledger.
func (c *Client) Transaction(ctx context.Context, hash string) (*stellarkit.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := c.horizon.TransactionDetail(hash)
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, errors.NewNetworkError(errors.NETWORK_ERROR, fmt.Sprintf("transaction %s not found", hash), err).
				With("tx_hash", hash)
		}
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to fetch transaction", err).With("tx_hash", hash)
	}
	return resultFromRecord(tx)
}

func resultFromRecord(tx hProtocol.Transaction) (*stellarkit.SubmitResult, error) {
	out := &stellarkit.SubmitResult{Hash: tx.Hash, Ledger: tx.Ledger}
	if err := xdr.UnmarshalBase64(tx.ResultXdr, &out.Result); err != nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "invalid result_xdr", err).With("tx_hash", tx.Hash)
	}
	if tx.ResultMetaXdr != "" {
		meta, err := base64.StdEncoding.DecodeString(tx.ResultMetaXdr)
		if err != nil {
			return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "invalid result_meta_xdr", err).With("tx_hash", tx.Hash)
		}
		out.ResultMeta = meta
	}
	return out, nil
}

// Compile-time interface checks
var (
	_ stellarkit.AccountSource = (*Client)(nil)
	_ stellarkit.NetworkSource = (*Client)(nil)
	_ stellarkit.Submitter     = (*Client)(nil)
)
