package observer

import (
	"context"
	"encoding"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"
	goxdr "github.com/stellar/go/xdr"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/txbuild"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// TransactionStreamer is the subset of horizonclient.Client the observer uses.
type TransactionStreamer interface {
	StreamTransactions(ctx context.Context, request horizonclient.TransactionRequest, handler horizonclient.TransactionHandler) error
}

// HorizonObserver implements Observer by streaming transactions from Horizon.
type HorizonObserver struct {
	client      TransactionStreamer
	account     string
	handlers    []handlerEntry
	txHandlers  []TransactionHandler
	cursor      string
	cursorSaver func(string) error
	logger      logrus.FieldLogger

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// ObserverOption configures a HorizonObserver.
type ObserverOption func(*HorizonObserver)

// WithCursor sets the starting cursor. "now" streams only transactions
// closed from here on, "" streams from the start of history, and any other
// value resumes after that paging token.
func WithCursor(cursor string) ObserverOption {
	return func(h *HorizonObserver) {
		h.cursor = cursor
	}
}

// WithCursorSaver sets a callback called after each transaction is processed
// with its paging token.
func WithCursorSaver(saver func(string) error) ObserverOption {
	return func(h *HorizonObserver) {
		h.cursorSaver = saver
	}
}

// WithReconnectBackoff sets the initial and maximum backoff durations for reconnection.
// Default is 1s initial, 60s max with exponential growth.
func WithReconnectBackoff(initial, max time.Duration) ObserverOption {
	return func(h *HorizonObserver) {
		h.initialBackoff = initial
		h.maxBackoff = max
	}
}

// WithStreamAccount limits the stream to transactions affecting accountID.
func WithStreamAccount(accountID string) ObserverOption {
	return func(h *HorizonObserver) {
		h.account = accountID
	}
}

// WithStreamer replaces the Horizon client used for streaming.
func WithStreamer(s TransactionStreamer) ObserverOption {
	return func(h *HorizonObserver) {
		h.client = s
	}
}

// WithLogger sets the logger for stream and handler diagnostics.
func WithLogger(l logrus.FieldLogger) ObserverOption {
	return func(h *HorizonObserver) {
		h.logger = l
	}
}

// NewHorizonObserver creates an observer that streams from horizonURL.
// The default cursor is "now".
func NewHorizonObserver(horizonURL string, opts ...ObserverOption) *HorizonObserver {
	obs := &HorizonObserver{
		client:         &horizonclient.Client{HorizonURL: horizonURL},
		cursor:         "now",
		logger:         logrus.StandardLogger(),
		initialBackoff: 1 * time.Second,
		maxBackoff:     60 * time.Second,
		stopChan:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(obs)
	}

	return obs
}

// OnTransaction registers a handler for every decoded transaction.
func (h *HorizonObserver) OnTransaction(handler TransactionHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.txHandlers = append(h.txHandlers, handler)
}

// OnPayment registers a handler for payment events with optional filters.
func (h *HorizonObserver) OnPayment(handler PaymentHandler, filters ...PaymentFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers = append(h.handlers, handlerEntry{
		handler: handler,
		filters: filters,
	})
}

// Cursor returns the paging token of the last processed transaction, or the
// starting cursor if none has been processed.
func (h *HorizonObserver) Cursor() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

// Start streams transactions from Horizon. It blocks until the context is
// cancelled, Stop is called or the stream ends cleanly, and reconnects with
// exponential backoff on stream failures.
func (h *HorizonObserver) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return errors.NewObserverError(errors.STREAM_ERROR, "observer already running", nil)
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	// Stop cancels the in-flight stream as well
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-h.stopChan:
			cancel()
		case <-streamCtx.Done():
		}
	}()

	backoff := h.initialBackoff
	attempt := 0

	for {
		select {
		case <-h.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		request := horizonclient.TransactionRequest{
			ForAccount: h.account,
			Cursor:     h.Cursor(),
			Order:      horizonclient.OrderAsc,
		}

		err := h.client.StreamTransactions(streamCtx, request, func(tx hProtocol.Transaction) {
			backoff = h.initialBackoff
			attempt = 0
			h.handleRecord(tx)
		})

		if err == nil {
			return nil
		}

		select {
		case <-h.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h.logger.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"cursor":  h.Cursor(),
			"backoff": backoff,
		}).Warn("observer: stream error, reconnecting")

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
		case <-h.stopChan:
			t.Stop()
			return nil
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}

		attempt++
		backoff = backoff * 2
		if backoff > h.maxBackoff {
			backoff = h.maxBackoff
		}
	}
}

// Stop stops streaming. It's safe to call Stop multiple times.
func (h *HorizonObserver) Stop() error {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	return nil
}

// handleRecord decodes one streamed record, dispatches it and advances the
// cursor. Records that fail to decode are logged and skipped.
func (h *HorizonObserver) handleRecord(tx hProtocol.Transaction) {
	log := h.logger.WithFields(logrus.Fields{"tx_hash": tx.Hash, "cursor": tx.PT})

	evt, err := DecodeTransaction(tx)
	if err != nil {
		log.WithError(err).Warn("observer: skipping undecodable transaction")
	} else {
		h.dispatch(evt, log)
	}

	h.mu.Lock()
	h.cursor = tx.PT
	h.mu.Unlock()

	if h.cursorSaver != nil {
		if err := h.cursorSaver(tx.PT); err != nil {
			log.WithError(errors.NewObserverError(errors.CURSOR_SAVE_FAILED, "failed to save cursor", err)).
				Error("observer: cursor not saved")
		}
	}
}

func (h *HorizonObserver) dispatch(evt TransactionEvent, log logrus.FieldLogger) {
	h.mu.RLock()
	txHandlers := h.txHandlers
	handlers := h.handlers
	h.mu.RUnlock()

	for _, handler := range txHandlers {
		if err := handler(evt); err != nil {
			log.WithError(err).Error("observer: transaction handler error")
		}
	}

	for _, p := range evt.Payments {
		for _, entry := range handlers {
			if !matches(p, entry.filters) {
				continue
			}
			if err := entry.handler(p); err != nil {
				log.WithError(err).WithField("payment", p.ID).Error("observer: payment handler error")
			}
		}
	}
}

func matches(evt PaymentEvent, filters []PaymentFilter) bool {
	for _, filter := range filters {
		if !filter(evt) {
			return false
		}
	}
	return true
}

// DecodeTransaction decodes a Horizon transaction record into a TransactionEvent.
//
// Envelopes using features the xdr package does not model (Soroban
// operations, revoke-sponsorship, V2 preconditions) are decoded through the
// reference stellar/go codec instead: the event is then Partial, Envelope is
// left zero and Payments are still derived.
func DecodeTransaction(tx hProtocol.Transaction) (TransactionEvent, error) {
	evt := TransactionEvent{
		Hash:   tx.Hash,
		Ledger: tx.Ledger,
		Cursor: tx.PT,
	}
	var body xdr.Transaction
	if err := xdr.UnmarshalBase64(tx.EnvelopeXdr, &evt.Envelope); err != nil {
		partial, refErr := referenceTransaction(tx.EnvelopeXdr)
		if refErr != nil {
			return TransactionEvent{}, errors.NewObserverError(errors.STREAM_ERROR, "invalid envelope_xdr", err)
		}
		evt.Envelope = xdr.TransactionEnvelope{}
		evt.Partial = true
		body = partial
	} else if t, ok := evt.Envelope.Transaction(); ok {
		body = t
	}
	if err := xdr.UnmarshalBase64(tx.ResultXdr, &evt.Result); err != nil {
		return TransactionEvent{}, errors.NewObserverError(errors.STREAM_ERROR, "invalid result_xdr", err)
	}
	if tx.ResultMetaXdr != "" {
		meta, err := base64.StdEncoding.DecodeString(tx.ResultMetaXdr)
		if err != nil {
			return TransactionEvent{}, errors.NewObserverError(errors.STREAM_ERROR, "invalid result_meta_xdr", err)
		}
		evt.ResultMeta = meta
	}
	evt.Outcome = txbuild.Interpret(evt.Result)
	if evt.Outcome.Success() {
		evt.Payments = payments(evt, body)
	}
	return evt, nil
}

// referenceTransaction decodes an envelope with the stellar/go codec and
// carries over what payment derivation needs: the source account, the memo
// and the payment and create-account operations. Other operations keep only
// their type so operation indexes stay aligned.
func referenceTransaction(envelope string) (xdr.Transaction, error) {
	var env goxdr.TransactionEnvelope
	if err := goxdr.SafeUnmarshalBase64(envelope, &env); err != nil {
		return xdr.Transaction{}, err
	}

	var tx xdr.Transaction
	if err := recode(env.SourceAccount(), &tx.SourceAccount); err != nil {
		return xdr.Transaction{}, err
	}
	// a memo the codec rejects, such as non UTF-8 text, is dropped
	if err := recode(env.Memo(), &tx.Memo); err != nil {
		tx.Memo = xdr.MemoNone()
	}
	for _, op := range env.Operations() {
		var own xdr.Operation
		switch op.Body.Type {
		case goxdr.OperationTypePayment, goxdr.OperationTypeCreateAccount:
			if err := recode(op, &own); err != nil {
				return xdr.Transaction{}, err
			}
		default:
			own.Body.Type = xdr.OperationType(op.Body.Type)
		}
		tx.Operations = append(tx.Operations, own)
	}
	return tx, nil
}

func recode(v encoding.BinaryMarshaler, dst xdr.Decodable) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return xdr.Unmarshal(b, dst)
}

// payments derives payment events from the payment and create-account
// operations of tx.
func payments(evt TransactionEvent, tx xdr.Transaction) []PaymentEvent {
	var out []PaymentEvent
	for i, op := range tx.Operations {
		from := tx.SourceAccount.AccountID().Address()
		if op.SourceAccount != nil {
			from = op.SourceAccount.AccountID().Address()
		}
		p := PaymentEvent{
			ID:              fmt.Sprintf("%s-%d", evt.Hash, i),
			From:            from,
			Memo:            tx.Memo,
			Cursor:          evt.Cursor,
			TransactionHash: evt.Hash,
		}

		switch {
		case op.Body.Type == xdr.OperationTypePayment && op.Body.PaymentOp != nil:
			body := op.Body.PaymentOp
			p.To = body.Destination.AccountID().Address()
			p.Asset = body.Asset.String()
			p.Amount = body.Amount
		case op.Body.Type == xdr.OperationTypeCreateAccount && op.Body.CreateAccountOp != nil:
			body := op.Body.CreateAccountOp
			p.To = body.Destination.Address()
			p.Asset = xdr.NativeAsset().String()
			p.Amount = body.StartingBalance
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

// Compile-time interface check
var _ Observer = (*HorizonObserver)(nil)
