// Package observer watches the Stellar network for transactions and the
// payments they carry.
//
// Each streamed transaction is decoded locally: the envelope and result XDR go
// through the xdr codec, and payment events are derived from the payment and
// create-account operations of successful transactions. The observer keeps a
// cursor for resumability and reconnects with exponential backoff when the
// stream fails.
//
// Example usage:
//
//	obs := observer.NewHorizonObserver(
//	    "https://horizon.stellar.org",
//	    observer.WithCursor("now"),
//	    observer.WithCursorSaver(cursors.Saver("payments")),
//	)
//
//	obs.OnPayment(func(evt observer.PaymentEvent) error {
//	    log.Printf("%s sent %d stroops of %s to %s", evt.From, evt.Amount, evt.Asset, evt.To)
//	    return nil
//	}, observer.WithAsset("USDC:GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"))
//
//	if err := obs.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package observer

import (
	"context"

	"github.com/marwen-abid/stellarkit-go/txbuild"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// TransactionEvent is a transaction streamed from Horizon and decoded.
type TransactionEvent struct {
	Hash   string
	Ledger int32
	// Cursor is the paging token of this transaction.
	Cursor string

	Envelope xdr.TransactionEnvelope
	Result   xdr.TransactionResult
	Outcome  txbuild.Outcome
	// Partial is set when the envelope could only be read by the reference
	// decoder. Envelope is then zero; Result, Outcome and Payments are set.
	Partial bool
	// ResultMeta is the undecoded result_meta_xdr.
	ResultMeta []byte

	// Payments are the value transfers this transaction applied, in operation order.
	Payments []PaymentEvent
}

// PaymentEvent is a payment or account funding derived from a transaction.
type PaymentEvent struct {
	// ID identifies the operation as "<tx hash>-<operation index>".
	ID string

	// From is the account that sent the funds (G... address).
	From string

	// To is the account that received the funds (G... address).
	To string

	// Asset is "native" or "CODE:ISSUER".
	Asset string

	// Amount is the transferred amount in stroops.
	Amount int64

	Memo xdr.Memo

	// Cursor is the paging token of the containing transaction.
	Cursor string

	TransactionHash string
}

// TransactionHandler processes a decoded transaction.
// If the handler returns an error, the error is logged but streaming continues.
type TransactionHandler func(TransactionEvent) error

// PaymentHandler processes a PaymentEvent.
// If the handler returns an error, the error is logged but streaming continues.
type PaymentHandler func(PaymentEvent) error

// PaymentFilter reports whether a PaymentEvent should reach a handler.
type PaymentFilter func(PaymentEvent) bool

type handlerEntry struct {
	handler PaymentHandler
	filters []PaymentFilter
}

// Observer streams events and dispatches them to registered handlers.
type Observer interface {
	// OnTransaction registers a handler called once per streamed transaction.
	OnTransaction(handler TransactionHandler)

	// OnPayment registers a handler for payment events with optional filters.
	// Filters are ANDed together.
	OnPayment(handler PaymentHandler, filters ...PaymentFilter)

	// Start streams until the context is cancelled, Stop is called or the
	// stream ends. It reconnects with exponential backoff on stream failures.
	Start(ctx context.Context) error

	// Stop stops streaming. It's safe to call Stop multiple times.
	Stop() error
}

// WithAsset matches payments of one asset: "native" or "CODE:ISSUER".
func WithAsset(asset string) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.Asset == asset
	}
}

// WithMinAmount matches payments of at least minStroops.
func WithMinAmount(minStroops int64) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.Amount >= minStroops
	}
}

// WithAccount matches payments sent to or from accountID.
func WithAccount(accountID string) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.From == accountID || evt.To == accountID
	}
}

// WithDestination matches payments sent to accountID.
func WithDestination(accountID string) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.To == accountID
	}
}

// WithSource matches payments sent from accountID.
func WithSource(accountID string) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.From == accountID
	}
}

// WithMemoText matches payments whose memo is the given text.
func WithMemoText(text string) PaymentFilter {
	return func(evt PaymentEvent) bool {
		return evt.Memo.Type == xdr.MemoTypeText && evt.Memo.Text == text
	}
}
