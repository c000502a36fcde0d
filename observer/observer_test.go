package observer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"
	goxdr "github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

var (
	alice = xdr.PublicKey{Ed25519: xdr.Uint256{1}}
	bob   = xdr.PublicKey{Ed25519: xdr.Uint256{2}}
	carol = xdr.PublicKey{Ed25519: xdr.Uint256{3}}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeStreamer replays batches of records. Each call to StreamTransactions
// consumes one batch; a batch with err set fails after its records.
type fakeStreamer struct {
	mu       sync.Mutex
	batches  []batch
	requests []horizonclient.TransactionRequest
}

type batch struct {
	records []hProtocol.Transaction
	err     error
}

func (f *fakeStreamer) StreamTransactions(ctx context.Context, req horizonclient.TransactionRequest, handler horizonclient.TransactionHandler) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	if len(f.batches) == 0 {
		f.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	f.mu.Unlock()

	for _, r := range b.records {
		handler(r)
	}
	return b.err
}

func record(t *testing.T, pt string, code xdr.TransactionResultCode, memo xdr.Memo, ops ...xdr.Operation) hProtocol.Transaction {
	t.Helper()
	tx := xdr.Transaction{
		SourceAccount: alice.ToMuxedAccount(),
		Fee:           100,
		SeqNum:        1,
		Memo:          memo,
		Operations:    ops,
	}
	env := xdr.NewEnvelope(tx)
	envXDR, err := xdr.MarshalBase64(env)
	require.NoError(t, err)
	hash, err := env.Hash(network.Test)
	require.NoError(t, err)

	results := make([]xdr.OperationResult, len(ops))
	for i, op := range ops {
		tr := &xdr.OperationResultTr{Type: op.Body.Type}
		if op.Body.Type == xdr.OperationTypeManageBuyOffer {
			tr.ManageOffer = &xdr.ManageOfferSuccessResult{Effect: xdr.ManageOfferDeleted}
		}
		results[i] = xdr.OperationResult{Code: xdr.OpInner, Tr: tr}
	}
	resXDR, err := xdr.MarshalBase64(xdr.TransactionResult{
		FeeCharged: 100,
		Result:     xdr.TransactionResultResult{Code: code, Results: results},
	})
	require.NoError(t, err)

	return hProtocol.Transaction{
		PT:          pt,
		Hash:        hash.String(),
		Ledger:      10,
		EnvelopeXdr: envXDR,
		ResultXdr:   resXDR,
	}
}

func mustMemo(t *testing.T, text string) xdr.Memo {
	t.Helper()
	m, err := xdr.MemoText(text)
	require.NoError(t, err)
	return m
}

func TestDecodeTransaction(t *testing.T) {
	usd, err := xdr.NewAsset("USD", carol)
	require.NoError(t, err)

	rec := record(t, "100", xdr.TxSuccess, mustMemo(t, "order-7"),
		xdr.Payment(bob, usd, 50_0000000),
		xdr.BumpSequence(9),
		xdr.CreateAccount(carol, 2_0000000).WithSource(bob.ToMuxedAccount()),
	)
	rec.ResultMetaXdr = "AAAAAg=="

	evt, err := DecodeTransaction(rec)
	require.NoError(t, err)
	assert.Equal(t, "100", evt.Cursor)
	assert.True(t, evt.Outcome.Success())
	assert.Equal(t, []byte{0, 0, 0, 2}, evt.ResultMeta)

	require.Len(t, evt.Payments, 2)
	p := evt.Payments[0]
	assert.Equal(t, rec.Hash+"-0", p.ID)
	assert.Equal(t, alice.Address(), p.From)
	assert.Equal(t, bob.Address(), p.To)
	assert.Equal(t, "USD:"+carol.Address(), p.Asset)
	assert.Equal(t, int64(50_0000000), p.Amount)
	assert.Equal(t, "order-7", p.Memo.Text)

	funding := evt.Payments[1]
	assert.Equal(t, rec.Hash+"-2", funding.ID)
	assert.Equal(t, bob.Address(), funding.From)
	assert.Equal(t, "native", funding.Asset)
}

func TestDecodeFailedTransactionHasNoPayments(t *testing.T) {
	rec := record(t, "101", xdr.TxFailed, xdr.MemoNone(), xdr.Payment(bob, xdr.NativeAsset(), 1))
	evt, err := DecodeTransaction(rec)
	require.NoError(t, err)
	assert.False(t, evt.Outcome.Success())
	assert.Empty(t, evt.Payments)
}

func TestDecodeTransactionRejectsBadXDR(t *testing.T) {
	rec := record(t, "1", xdr.TxSuccess, xdr.MemoNone(), xdr.Inflation())
	rec.EnvelopeXdr = "AAAA"
	_, err := DecodeTransaction(rec)
	assert.Equal(t, skerrors.STREAM_ERROR, skerrors.CodeOf(err))
	assert.True(t, errors.Is(err, skerrors.ErrPrematureEndOfData))
}

func TestDecodeKeepsPaymentsBesideOfferOperations(t *testing.T) {
	usd, err := xdr.NewAsset("USD", carol)
	require.NoError(t, err)

	rec := record(t, "102", xdr.TxSuccess, xdr.MemoNone(),
		xdr.ManageBuyOffer(xdr.NativeAsset(), usd, 10, xdr.Price{N: 1, D: 1}, 4),
		xdr.Payment(bob, xdr.NativeAsset(), 7),
	)
	evt, err := DecodeTransaction(rec)
	require.NoError(t, err)
	assert.False(t, evt.Partial)
	require.Len(t, evt.Payments, 1)
	assert.Equal(t, rec.Hash+"-1", evt.Payments[0].ID)
	assert.Equal(t, int64(7), evt.Payments[0].Amount)
}

func TestDecodeFallsBackForUnmodelledEnvelopes(t *testing.T) {
	payment := goxdr.Operation{Body: goxdr.OperationBody{
		Type: goxdr.OperationTypePayment,
		PaymentOp: &goxdr.PaymentOp{
			Destination: goxdr.MustMuxedAddress(bob.Address()),
			Asset:       goxdr.MustNewNativeAsset(),
			Amount:      25,
		},
	}}
	revoke := goxdr.Operation{Body: goxdr.OperationBody{
		Type: goxdr.OperationTypeRevokeSponsorship,
		RevokeSponsorshipOp: &goxdr.RevokeSponsorshipOp{
			Type: goxdr.RevokeSponsorshipTypeRevokeSponsorshipLedgerEntry,
			LedgerKey: &goxdr.LedgerKey{
				Type:    goxdr.LedgerEntryTypeAccount,
				Account: &goxdr.LedgerKeyAccount{AccountId: goxdr.MustAddress(carol.Address())},
			},
		},
	}}
	minSeq := goxdr.SequenceNumber(1)
	env := goxdr.TransactionEnvelope{
		Type: goxdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &goxdr.TransactionV1Envelope{Tx: goxdr.Transaction{
			SourceAccount: goxdr.MustMuxedAddress(alice.Address()),
			Fee:           200,
			SeqNum:        2,
			Cond: goxdr.Preconditions{
				Type: goxdr.PreconditionTypePrecondV2,
				V2:   &goxdr.PreconditionsV2{MinSeqNum: &minSeq},
			},
			Memo:       goxdr.MemoText("inv-3"),
			Operations: []goxdr.Operation{revoke, payment},
		}},
	}
	envXDR, err := goxdr.MarshalBase64(env)
	require.NoError(t, err)

	var own xdr.TransactionEnvelope
	require.Error(t, xdr.UnmarshalBase64(envXDR, &own))

	resXDR, err := xdr.MarshalBase64(xdr.TransactionResult{
		FeeCharged: 200,
		Result: xdr.TransactionResultResult{Code: xdr.TxSuccess, Results: []xdr.OperationResult{
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeRevokeSponsorship}},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypePayment}},
		}},
	})
	require.NoError(t, err)

	evt, err := DecodeTransaction(hProtocol.Transaction{PT: "103", Hash: "abc", EnvelopeXdr: envXDR, ResultXdr: resXDR})
	require.NoError(t, err)
	assert.True(t, evt.Partial)
	assert.True(t, evt.Outcome.Success())
	require.Len(t, evt.Payments, 1)
	p := evt.Payments[0]
	assert.Equal(t, "abc-1", p.ID)
	assert.Equal(t, alice.Address(), p.From)
	assert.Equal(t, bob.Address(), p.To)
	assert.Equal(t, "native", p.Asset)
	assert.Equal(t, int64(25), p.Amount)
	assert.Equal(t, "inv-3", p.Memo.Text)
}

func TestFilters(t *testing.T) {
	evt := PaymentEvent{From: alice.Address(), To: bob.Address(), Asset: "native", Amount: 100, Memo: mustMemo(t, "x")}

	assert.True(t, matches(evt, nil))
	assert.True(t, matches(evt, []PaymentFilter{WithAsset("native"), WithMinAmount(100)}))
	assert.False(t, matches(evt, []PaymentFilter{WithAsset("native"), WithMinAmount(101)}))
	assert.True(t, WithAccount(alice.Address())(evt))
	assert.True(t, WithAccount(bob.Address())(evt))
	assert.False(t, WithAccount(carol.Address())(evt))
	assert.True(t, WithDestination(bob.Address())(evt))
	assert.False(t, WithDestination(alice.Address())(evt))
	assert.True(t, WithSource(alice.Address())(evt))
	assert.True(t, WithMemoText("x")(evt))
	assert.False(t, WithMemoText("y")(evt))
}

func TestStartDispatchesAndAdvancesCursor(t *testing.T) {
	streamer := &fakeStreamer{batches: []batch{
		{records: []hProtocol.Transaction{
			record(t, "200", xdr.TxSuccess, xdr.MemoNone(), xdr.Payment(bob, xdr.NativeAsset(), 5)),
			record(t, "201", xdr.TxSuccess, xdr.MemoNone(), xdr.Payment(carol, xdr.NativeAsset(), 7)),
		}},
	}}

	var saved []string
	obs := NewHorizonObserver("http://unused",
		WithStreamer(streamer),
		WithStreamAccount(alice.Address()),
		WithCursor("150"),
		WithCursorSaver(func(c string) error {
			saved = append(saved, c)
			return errors.New("disk full")
		}),
		WithLogger(quietLogger()),
	)

	var txs []string
	var toBob []int64
	obs.OnTransaction(func(evt TransactionEvent) error {
		txs = append(txs, evt.Cursor)
		return errors.New("ignored")
	})
	obs.OnPayment(func(evt PaymentEvent) error {
		toBob = append(toBob, evt.Amount)
		return nil
	}, WithDestination(bob.Address()))

	require.NoError(t, obs.Start(context.Background()))
	assert.Equal(t, []string{"200", "201"}, txs)
	assert.Equal(t, []int64{5}, toBob)
	assert.Equal(t, []string{"200", "201"}, saved)
	assert.Equal(t, "201", obs.Cursor())

	require.Len(t, streamer.requests, 1)
	assert.Equal(t, "150", streamer.requests[0].Cursor)
	assert.Equal(t, alice.Address(), streamer.requests[0].ForAccount)
}

func TestStartReconnectsFromCursor(t *testing.T) {
	streamer := &fakeStreamer{batches: []batch{
		{records: []hProtocol.Transaction{record(t, "300", xdr.TxSuccess, xdr.MemoNone(), xdr.Inflation())}, err: errors.New("connection reset")},
		{err: errors.New("connection refused")},
		{records: []hProtocol.Transaction{record(t, "301", xdr.TxSuccess, xdr.MemoNone(), xdr.Inflation())}},
	}}
	obs := NewHorizonObserver("http://unused",
		WithStreamer(streamer),
		WithReconnectBackoff(time.Millisecond, 4*time.Millisecond),
		WithLogger(quietLogger()),
	)

	require.NoError(t, obs.Start(context.Background()))
	require.Len(t, streamer.requests, 3)
	assert.Equal(t, "now", streamer.requests[0].Cursor)
	assert.Equal(t, "300", streamer.requests[1].Cursor)
	assert.Equal(t, "300", streamer.requests[2].Cursor)
	assert.Equal(t, "301", obs.Cursor())
}

func TestStopEndsStream(t *testing.T) {
	obs := NewHorizonObserver("http://unused", WithStreamer(&fakeStreamer{}), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- obs.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		obs.mu.RLock()
		defer obs.mu.RUnlock()
		return obs.running
	}, time.Second, time.Millisecond)

	err := obs.Start(context.Background())
	assert.Equal(t, skerrors.STREAM_ERROR, skerrors.CodeOf(err))

	require.NoError(t, obs.Stop())
	require.NoError(t, obs.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("observer did not stop")
	}
}

func TestContextCancelEndsStream(t *testing.T) {
	obs := NewHorizonObserver("http://unused", WithStreamer(&fakeStreamer{}), WithLogger(quietLogger()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, obs.Start(ctx), context.DeadlineExceeded)
}
