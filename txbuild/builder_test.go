package txbuild

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stellarkit "github.com/marwen-abid/stellarkit-go"
	"github.com/marwen-abid/stellarkit-go/core/crypto"
	skerrors "github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/signers"
	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

type fakeAccounts struct {
	seq   int64
	err   error
	calls int
}

func (f *fakeAccounts) AccountSequence(ctx context.Context, id xdr.AccountID) (int64, error) {
	f.calls++
	return f.seq, f.err
}

type fakeNetwork struct {
	baseFee uint32
	calls   int
}

func (f *fakeNetwork) NetworkConfiguration(ctx context.Context) (stellarkit.NetworkConfiguration, error) {
	f.calls++
	return stellarkit.NetworkConfiguration{LedgerSeq: 10, BaseFee: f.baseFee, BaseReserve: 5000000}, nil
}

type fakeSubmitter struct {
	submitted []xdr.TransactionEnvelope
	err       error
	noResult  bool
}

func (f *fakeSubmitter) Submit(ctx context.Context, env *xdr.TransactionEnvelope) (*stellarkit.SubmitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, env.Clone())
	if f.noResult {
		return nil, nil
	}
	return &stellarkit.SubmitResult{
		Hash:   "abc",
		Ledger: 11,
		Result: xdr.TransactionResult{FeeCharged: 100, Result: xdr.TransactionResultResult{Code: xdr.TxSuccess}},
	}, nil
}

type failingSigner struct {
	key strkey.StellarKey
}

func (s failingSigner) PublicKey() strkey.StellarKey { return s.key }

func (s failingSigner) Sign([]byte) ([]byte, error) { return nil, errors.New("hsm offline") }

func newSigner(t *testing.T) *signers.KeypairSigner {
	t.Helper()
	s, err := signers.Random()
	require.NoError(t, err)
	return s
}

func accountOf(t *testing.T, s stellarkit.Signer) xdr.AccountID {
	t.Helper()
	id, err := xdr.NewPublicKey(s.PublicKey())
	require.NoError(t, err)
	return id
}

func TestBuildSignAndDecode(t *testing.T) {
	signer := newSigner(t)
	source := accountOf(t, signer)
	dest := accountOf(t, newSigner(t))

	b := New(source, network.Test).
		SetSequence(5).
		SetFee(100).
		AddOperation(xdr.CreateAccount(dest, 10_0000000))

	env, err := b.Sign(context.Background(), signer)
	require.NoError(t, err)
	assert.Equal(t, StageSigned, b.Stage())

	blob, err := xdr.MarshalBase64(env)
	require.NoError(t, err)

	var decoded xdr.TransactionEnvelope
	require.NoError(t, xdr.UnmarshalBase64(blob, &decoded))
	tx, ok := decoded.Transaction()
	require.True(t, ok)
	assert.Equal(t, int64(5), tx.SeqNum)
	assert.Equal(t, uint32(100), tx.Fee)
	assert.Equal(t, source.Address(), tx.SourceAccount.Address())
	require.Len(t, tx.Operations, 1)
	assert.Equal(t, xdr.OperationTypeCreateAccount, tx.Operations[0].Body.Type)

	require.Len(t, decoded.Signatures(), 1)
	signed, err := crypto.SignedBy(decoded, network.Test, signer.PublicKey())
	require.NoError(t, err)
	assert.Len(t, signed, 1)

	// the same signature does not verify on another network
	signed, err = crypto.SignedBy(decoded, network.Public, signer.PublicKey())
	require.NoError(t, err)
	assert.Empty(t, signed)
}

func TestResolvesSequenceAndFee(t *testing.T) {
	signer := newSigner(t)
	accounts := &fakeAccounts{seq: 41}
	fees := &fakeNetwork{baseFee: 200}
	dest := accountOf(t, newSigner(t))

	b := New(accountOf(t, signer), network.Test,
		WithAccountSource(accounts),
		WithNetworkSource(fees),
	).AddOperations(
		xdr.Payment(dest, xdr.NativeAsset(), 1),
		xdr.Payment(dest, xdr.NativeAsset(), 2),
		xdr.Payment(dest, xdr.NativeAsset(), 3),
	)

	tx, err := b.Transaction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), tx.SeqNum)
	assert.Equal(t, uint32(600), tx.Fee)
	assert.Equal(t, StageFeeResolved, b.Stage())

	// resolving again does not hit the sources
	_, err = b.Transaction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, accounts.calls)
	assert.Equal(t, 1, fees.calls)
}

func TestBaseFeeOptionSkipsLookup(t *testing.T) {
	fees := &fakeNetwork{baseFee: 999}
	b := New(accountOf(t, newSigner(t)), network.Test, WithBaseFee(150), WithNetworkSource(fees)).
		SetSequence(1).
		AddOperation(xdr.BumpSequence(10)).
		AddOperation(xdr.Inflation()).
		AddOperations(xdr.ManageData("a", nil), xdr.BumpSequence(20))

	tx, err := b.Transaction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(600), tx.Fee)
	assert.Zero(t, fees.calls)

	require.Len(t, tx.Operations, 4)
	assert.Equal(t, []xdr.OperationType{
		xdr.OperationTypeBumpSequence,
		xdr.OperationTypeInflation,
		xdr.OperationTypeManageData,
		xdr.OperationTypeBumpSequence,
	}, []xdr.OperationType{
		tx.Operations[0].Body.Type,
		tx.Operations[1].Body.Type,
		tx.Operations[2].Body.Type,
		tx.Operations[3].Body.Type,
	})
	assert.Equal(t, int64(10), tx.Operations[0].Body.BumpSequenceOp.BumpTo)
	assert.Equal(t, int64(20), tx.Operations[3].Body.BumpSequenceOp.BumpTo)
}

func TestOperationCountLimits(t *testing.T) {
	source := accountOf(t, newSigner(t))

	_, err := New(source, network.Test).SetSequence(1).SetFee(100).Transaction(context.Background())
	assert.Equal(t, skerrors.NO_OPERATIONS, skerrors.CodeOf(err))

	b := New(source, network.Test).SetSequence(1).SetFee(100)
	for i := 0; i <= MaxOperations; i++ {
		b.AddOperation(xdr.Inflation())
	}
	_, err = b.Transaction(context.Background())
	assert.Equal(t, skerrors.TOO_MANY_OPERATIONS, skerrors.CodeOf(err))
	assert.Equal(t, StageDraft, b.Stage())
}

func TestMissingSources(t *testing.T) {
	source := accountOf(t, newSigner(t))

	_, err := New(source, network.Test).SetFee(100).AddOperation(xdr.Inflation()).Transaction(context.Background())
	assert.Equal(t, skerrors.NETWORK_REQUIRED, skerrors.CodeOf(err))

	_, err = New(source, network.Test).SetSequence(1).AddOperation(xdr.Inflation()).Transaction(context.Background())
	assert.Equal(t, skerrors.NETWORK_REQUIRED, skerrors.CodeOf(err))

	_, err = New(source, "").SetSequence(1).SetFee(100).AddOperation(xdr.Inflation()).Transaction(context.Background())
	assert.Equal(t, skerrors.NETWORK_REQUIRED, skerrors.CodeOf(err))
}

func TestAccountSourceErrorStopsBuild(t *testing.T) {
	notFound := skerrors.NewNetworkError(skerrors.ACCOUNT_NOT_FOUND, "account not found", nil)
	b := New(accountOf(t, newSigner(t)), network.Test,
		WithAccountSource(&fakeAccounts{err: notFound}),
		WithBaseFee(100),
	).AddOperation(xdr.Inflation())

	_, err := b.Transaction(context.Background())
	assert.Equal(t, skerrors.ACCOUNT_NOT_FOUND, skerrors.CodeOf(err))
	assert.Equal(t, StageDraft, b.Stage())
}

func TestMutatorsFreezeAfterDraft(t *testing.T) {
	b := New(accountOf(t, newSigner(t)), network.Test).
		SetSequence(1).
		SetFee(100).
		AddOperation(xdr.Inflation())

	_, err := b.Transaction(context.Background())
	require.NoError(t, err)

	b.SetMemoText("late")
	assert.Equal(t, skerrors.BUILDER_STAGE, skerrors.CodeOf(b.Err()))

	_, err = b.Transaction(context.Background())
	assert.Equal(t, skerrors.BUILDER_STAGE, skerrors.CodeOf(err))
	_, err = b.Envelope(context.Background())
	assert.Equal(t, skerrors.BUILDER_STAGE, skerrors.CodeOf(err))
	_, err = b.Hash(context.Background())
	assert.Equal(t, skerrors.BUILDER_STAGE, skerrors.CodeOf(err))
	assert.Equal(t, StageFeeResolved, b.Stage())
}

func TestLatchedErrorAfterDraftBlocksSigning(t *testing.T) {
	signer := newSigner(t)
	sub := &fakeSubmitter{}
	b := New(accountOf(t, signer), network.Test, WithSigners(signer), WithSubmitter(sub)).
		SetSequence(1).
		SetFee(100).
		AddOperation(xdr.Inflation())

	_, err := b.Transaction(context.Background())
	require.NoError(t, err)

	b.SetMemoText(strings.Repeat("x", 29))
	_, err = b.Sign(context.Background())
	assert.True(t, errors.Is(err, skerrors.ErrMemoTooLong))

	_, err = b.Submit(context.Background())
	assert.True(t, errors.Is(err, skerrors.ErrMemoTooLong))
	assert.Empty(t, sub.submitted)
	assert.Equal(t, StageFeeResolved, b.Stage())
	assert.Empty(t, b.env.Signatures())
}

func TestLatchedMutatorError(t *testing.T) {
	b := New(accountOf(t, newSigner(t)), network.Test).
		SetSequence(1).
		SetFee(100).
		SetMemoText(strings.Repeat("x", 29)).
		AddOperation(xdr.Inflation())

	_, err := b.Envelope(context.Background())
	assert.True(t, errors.Is(err, skerrors.ErrMemoTooLong))
	assert.Equal(t, StageDraft, b.Stage())
}

func TestTimeBounds(t *testing.T) {
	now := time.Unix(1700000000, 0)
	source := accountOf(t, newSigner(t))

	tx, err := New(source, network.Test, WithTimeout(5*time.Minute), WithClock(func() time.Time { return now })).
		SetSequence(1).SetFee(100).
		SetLowerBound(now.Add(-time.Minute)).
		AddOperation(xdr.Inflation()).
		Transaction(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx.TimeBounds)
	assert.Equal(t, uint64(now.Add(-time.Minute).Unix()), tx.TimeBounds.MinTime)
	assert.Equal(t, uint64(now.Add(5*time.Minute).Unix()), tx.TimeBounds.MaxTime)

	tx, err = New(source, network.Test, WithTimeout(time.Minute)).
		SetSequence(1).SetFee(100).
		SetTimeBounds(10, 20).
		AddOperation(xdr.Inflation()).
		Transaction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, xdr.TimeBounds{MinTime: 10, MaxTime: 20}, *tx.TimeBounds)

	tx, err = New(source, network.Test).
		SetSequence(1).SetFee(100).
		AddOperation(xdr.Inflation()).
		Transaction(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tx.TimeBounds)
}

func TestSignerFailures(t *testing.T) {
	good := newSigner(t)
	source := accountOf(t, good)
	build := func() *Builder {
		return New(source, network.Test).SetSequence(1).SetFee(100).AddOperation(xdr.Inflation())
	}

	_, err := build().Sign(context.Background())
	assert.True(t, errors.Is(err, skerrors.ErrMissingSignClosure))

	_, err = build().Sign(context.Background(), good, nil)
	assert.True(t, errors.Is(err, skerrors.ErrMissingSignClosure))

	b := build()
	_, err = b.Sign(context.Background(), good, failingSigner{key: newSigner(t).PublicKey()})
	assert.True(t, errors.Is(err, skerrors.ErrSigningFailed))
	assert.Contains(t, err.Error(), "hsm offline")
	assert.Equal(t, StageEnveloped, b.Stage())

	env, err := b.Envelope(context.Background())
	require.NoError(t, err)
	assert.Empty(t, env.Signatures())
}

func TestSignAccumulates(t *testing.T) {
	first, second := newSigner(t), newSigner(t)
	b := New(accountOf(t, first), network.Test).SetSequence(1).SetFee(100).AddOperation(xdr.Inflation())

	_, err := b.Sign(context.Background(), first)
	require.NoError(t, err)
	env, err := b.Sign(context.Background(), first, second)
	require.NoError(t, err)
	assert.Len(t, env.Signatures(), 2)
}

func TestCallbackSigner(t *testing.T) {
	kp := newSigner(t)
	remote, err := signers.FromCallback(kp.Address(), kp.Sign)
	require.NoError(t, err)

	b := New(accountOf(t, kp), network.Test).SetSequence(1).SetFee(100).AddOperation(xdr.Inflation())
	env, err := b.Sign(context.Background(), remote)
	require.NoError(t, err)

	signed, err := crypto.SignedBy(env, network.Test, kp.PublicKey())
	require.NoError(t, err)
	assert.Len(t, signed, 1)
}

func TestSubmit(t *testing.T) {
	signer := newSigner(t)
	sub := &fakeSubmitter{}
	b := New(accountOf(t, signer), network.Test,
		WithAccountSource(&fakeAccounts{seq: 7}),
		WithBaseFee(100),
		WithSigners(signer),
		WithSubmitter(sub),
	).AddOperation(xdr.BumpSequence(100))

	res, err := b.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(11), res.Ledger)
	assert.Equal(t, StageSubmitted, b.Stage())
	require.Len(t, sub.submitted, 1)
	assert.Len(t, sub.submitted[0].Signatures(), 1)
	assert.NoError(t, Interpret(res.Result).Err())

	// resubmission sends the same envelope
	_, err = b.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, sub.submitted, 2)
	assert.Equal(t, sub.submitted[0], sub.submitted[1])
}

func TestSubmitFailureKeepsSignedStage(t *testing.T) {
	signer := newSigner(t)
	rejected := skerrors.NewNetworkError(skerrors.SUBMISSION_REJECTED, "tx_bad_seq", nil)
	b := New(accountOf(t, signer), network.Test,
		WithSigners(signer),
		WithSubmitter(&fakeSubmitter{err: rejected}),
	).SetSequence(1).SetFee(100).AddOperation(xdr.Inflation())

	_, err := b.Submit(context.Background())
	assert.True(t, errors.Is(err, skerrors.ErrSubmissionRejected))
	assert.Equal(t, StageSigned, b.Stage())

	_, err = New(accountOf(t, signer), network.Test).Submit(context.Background())
	assert.Equal(t, skerrors.NETWORK_REQUIRED, skerrors.CodeOf(err))
}

func TestSubmitWithoutResult(t *testing.T) {
	signer := newSigner(t)
	b := New(accountOf(t, signer), network.Test,
		WithSigners(signer),
		WithSubmitter(&fakeSubmitter{noResult: true}),
	).SetSequence(1).SetFee(100).AddOperation(xdr.Inflation())

	res, err := b.Submit(context.Background())
	assert.Nil(t, res)
	assert.Equal(t, skerrors.NETWORK_ERROR, skerrors.CodeOf(err))
	assert.Equal(t, StageSigned, b.Stage())
}

func TestHashMatchesEnvelope(t *testing.T) {
	b := New(accountOf(t, newSigner(t)), network.Test).SetSequence(3).SetFee(100).AddOperation(xdr.Inflation())
	h, err := b.Hash(context.Background())
	require.NoError(t, err)

	env, err := b.Envelope(context.Background())
	require.NoError(t, err)
	want, err := env.Hash(network.Test)
	require.NoError(t, err)
	assert.Equal(t, want, h)
}
