// Package stellarkit is a client for the Stellar network's wire protocol.
//
// The subpackages build, sign and decode transactions without depending on any
// particular transport: xdr holds the binary codec and the ledger data model,
// strkey the checksummed key text format, txbuild the transaction builder and
// result interpreter. horizon and observer connect those pieces to a Horizon
// server.
//
// This package defines the boundary interfaces the builder consumes. Callers
// supply a Signer per signing key and, unless they set sequence and fee
// explicitly, an AccountSource and a NetworkSource.
package stellarkit

import (
	"context"

	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// Signer is the minimal signing capability. The library never holds private
// key material itself; it hands the 32-byte transaction hash to Sign and
// attaches the returned 64-byte signature.
type Signer interface {
	// PublicKey returns the ed25519 public key of this signer.
	PublicKey() strkey.StellarKey

	// Sign signs message and returns the raw signature.
	Sign(message []byte) ([]byte, error)
}

// AccountSource resolves the current sequence number of an account.
type AccountSource interface {
	AccountSequence(ctx context.Context, accountID xdr.AccountID) (int64, error)
}

// NetworkSource reports fee parameters derived from the latest closed ledger.
type NetworkSource interface {
	NetworkConfiguration(ctx context.Context) (NetworkConfiguration, error)
}

// Submitter hands a signed envelope to the network.
type Submitter interface {
	Submit(ctx context.Context, env *xdr.TransactionEnvelope) (*SubmitResult, error)
}

// NetworkConfiguration is a read-only snapshot of ledger-wide parameters.
type NetworkConfiguration struct {
	// LedgerSeq is the ledger the snapshot was taken from.
	LedgerSeq uint32
	// BaseFee is the per-operation fee in stroops.
	BaseFee uint32
	// BaseReserve is the per-entry reserve in stroops.
	BaseReserve uint32
	// MaxTxSetSize is the maximum number of transactions per ledger.
	MaxTxSetSize uint32
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	Hash   string
	Ledger int32
	Result xdr.TransactionResult
	// ResultMeta is the undecoded result_meta_xdr, when the server returned it.
	ResultMeta []byte
}

// CursorStore persists stream positions so a watcher can resume after a
// restart.
type CursorStore interface {
	// Save records cursor as the latest position of the named stream.
	Save(ctx context.Context, stream, cursor string) error

	// Load returns the latest cursor of the named stream. ok is false when
	// nothing has been saved.
	Load(ctx context.Context, stream string) (cursor string, ok bool, err error)
}
