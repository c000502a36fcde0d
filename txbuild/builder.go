// Package txbuild assembles, signs and submits Stellar transactions.
//
// A Builder moves through a fixed sequence of stages:
//
//	draft -> sequenced -> fee_resolved -> enveloped -> signed -> submitted
//
// Mutators (SetMemo, SetFee, AddOperation, ...) are only valid in the draft
// stage and return the builder for chaining. A mutator that fails latches its
// error; the next terminal call (Transaction, Envelope, Sign, Submit) returns
// it. Network lookups for the sequence number and the base fee happen before
// signing, and signing happens before submission; a failure at any stage stops
// the chain without sending anything.
//
// Example usage:
//
//	b := txbuild.New(source, network.Test,
//	    txbuild.WithAccountSource(client),
//	    txbuild.WithNetworkSource(client),
//	    txbuild.WithSubmitter(client),
//	    txbuild.WithSigners(signer),
//	)
//	res, err := b.SetMemoText("invoice 42").
//	    AddOperation(xdr.Payment(dest, xdr.NativeAsset(), 10_0000000)).
//	    Submit(ctx)
package txbuild

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	stellarkit "github.com/marwen-abid/stellarkit-go"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// MaxOperations is the most operations one transaction may carry.
const MaxOperations = 100

// Builder assembles a single transaction. It is not safe for concurrent use;
// prepare concurrent transactions with independent builders.
type Builder struct {
	source  xdr.MuxedAccount
	network network.ID

	accounts  stellarkit.AccountSource
	fees      stellarkit.NetworkSource
	submitter stellarkit.Submitter
	signers   []stellarkit.Signer
	baseFee   uint32
	timeout   time.Duration
	now       func() time.Time
	logger    logrus.FieldLogger

	stage      Stage
	err        error
	memo       xdr.Memo
	fee        *uint32
	seq        *int64
	timeBounds *xdr.TimeBounds
	ops        []xdr.Operation

	tx  xdr.Transaction
	env xdr.TransactionEnvelope
}

// Option configures a Builder.
type Option func(*Builder)

// WithAccountSource sets where the sequence number is fetched from when no
// explicit sequence is set.
func WithAccountSource(s stellarkit.AccountSource) Option {
	return func(b *Builder) {
		b.accounts = s
	}
}

// WithNetworkSource sets where the base fee is fetched from when neither an
// explicit fee nor WithBaseFee is set.
func WithNetworkSource(s stellarkit.NetworkSource) Option {
	return func(b *Builder) {
		b.fees = s
	}
}

// WithSubmitter sets the transport used by Submit.
func WithSubmitter(s stellarkit.Submitter) Option {
	return func(b *Builder) {
		b.submitter = s
	}
}

// WithSigners sets the designated signers used when Sign is called without arguments.
func WithSigners(signers ...stellarkit.Signer) Option {
	return func(b *Builder) {
		b.signers = signers
	}
}

// WithBaseFee fixes the per-operation base fee in stroops, skipping the
// network lookup.
func WithBaseFee(fee uint32) Option {
	return func(b *Builder) {
		b.baseFee = fee
	}
}

// WithTimeout sets the upper time bound to now+d when no explicit upper bound
// is set. Zero (the default) leaves the transaction unbounded.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) {
		b.timeout = d
	}
}

// WithClock overrides the clock used by WithTimeout.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLogger sets the logger. Default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// New returns a draft builder for a transaction sourced from source on the
// network identified by id.
func New(source xdr.AccountID, id network.ID, opts ...Option) *Builder {
	b := &Builder{
		source:  source.ToMuxedAccount(),
		network: id,
		now:     time.Now,
		logger:  logrus.StandardLogger(),
		stage:   StageDraft,
		memo:    xdr.MemoNone(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if id == "" {
		b.latch(errors.NewModelError(errors.NETWORK_REQUIRED, "network passphrase is empty", nil))
	}
	return b
}

// Stage returns the current lifecycle stage.
func (b *Builder) Stage() Stage { return b.stage }

// Err returns the first latched mutator error, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) latch(err error) {
	if b.err == nil {
		b.err = err
	}
}

// mutable latches a stage error unless the builder is still a draft.
func (b *Builder) mutable(what string) bool {
	if b.stage != StageDraft {
		b.latch(errors.NewModelError(
			errors.BUILDER_STAGE,
			fmt.Sprintf("cannot %s in stage %s", what, b.stage),
			nil,
		))
		return false
	}
	return true
}

// SetMemo replaces the memo.
func (b *Builder) SetMemo(m xdr.Memo) *Builder {
	if b.mutable("set memo") {
		b.memo = m
	}
	return b
}

// SetMemoText sets a text memo. Text longer than 28 bytes latches MEMO_TOO_LONG.
func (b *Builder) SetMemoText(text string) *Builder {
	m, err := xdr.MemoText(text)
	if err != nil {
		b.latch(err)
		return b
	}
	return b.SetMemo(m)
}

// SetMemoID sets an id memo.
func (b *Builder) SetMemoID(id uint64) *Builder {
	return b.SetMemo(xdr.MemoID(id))
}

// SetMemoHash sets a hash memo. More than 32 bytes latches MEMO_TOO_LONG.
func (b *Builder) SetMemoHash(hash []byte) *Builder {
	m, err := xdr.MemoHash(hash)
	if err != nil {
		b.latch(err)
		return b
	}
	return b.SetMemo(m)
}

// SetFee overrides the total fee in stroops.
func (b *Builder) SetFee(fee uint32) *Builder {
	if b.mutable("set fee") {
		b.fee = &fee
	}
	return b
}

// SetSequence sets the exact sequence number the transaction carries. When it
// is not set the builder uses the account's current sequence plus one.
func (b *Builder) SetSequence(seq int64) *Builder {
	if b.mutable("set sequence") {
		b.seq = &seq
	}
	return b
}

// SetTimeBounds restricts validity to [minTime, maxTime] Unix seconds.
// maxTime 0 means no upper bound.
func (b *Builder) SetTimeBounds(minTime, maxTime uint64) *Builder {
	if b.mutable("set time bounds") {
		b.timeBounds = &xdr.TimeBounds{MinTime: minTime, MaxTime: maxTime}
	}
	return b
}

// SetLowerBound sets the earliest valid close time.
func (b *Builder) SetLowerBound(t time.Time) *Builder {
	if b.mutable("set lower bound") {
		if b.timeBounds == nil {
			b.timeBounds = &xdr.TimeBounds{}
		}
		b.timeBounds.MinTime = uint64(t.Unix())
	}
	return b
}

// SetUpperBound sets the latest valid close time.
func (b *Builder) SetUpperBound(t time.Time) *Builder {
	if b.mutable("set upper bound") {
		if b.timeBounds == nil {
			b.timeBounds = &xdr.TimeBounds{}
		}
		b.timeBounds.MaxTime = uint64(t.Unix())
	}
	return b
}

// AddOperation appends op. Operations execute in the order added.
func (b *Builder) AddOperation(op xdr.Operation) *Builder {
	return b.AddOperations(op)
}

// AddOperations appends ops in order.
func (b *Builder) AddOperations(ops ...xdr.Operation) *Builder {
	if b.mutable("add operations") {
		b.ops = append(b.ops, ops...)
	}
	return b
}

func (b *Builder) advance(to Stage) error {
	if err := ValidateTransition(b.stage, to); err != nil {
		return err
	}
	b.stage = to
	return nil
}

// resolveSequence moves draft to sequenced.
func (b *Builder) resolveSequence(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return errors.NewModelError(errors.NO_OPERATIONS, "transaction has no operations", nil)
	}
	if len(b.ops) > MaxOperations {
		return errors.NewModelError(errors.TOO_MANY_OPERATIONS, fmt.Sprintf("transaction has %d operations, max %d", len(b.ops), MaxOperations), nil)
	}

	seq := int64(0)
	switch {
	case b.seq != nil:
		seq = *b.seq
	case b.accounts != nil:
		current, err := b.accounts.AccountSequence(ctx, b.source.AccountID())
		if err != nil {
			return err
		}
		seq = current + 1
	default:
		return errors.NewModelError(errors.NETWORK_REQUIRED, "no sequence set and no account source configured", nil)
	}

	if err := b.advance(StageSequenced); err != nil {
		return err
	}
	b.tx.SourceAccount = b.source
	b.tx.SeqNum = seq
	return nil
}

// resolveFee moves sequenced to fee_resolved and freezes the transaction.
func (b *Builder) resolveFee(ctx context.Context) error {
	fee := uint32(0)
	if b.fee != nil {
		fee = *b.fee
	} else {
		base := b.baseFee
		if base == 0 {
			if b.fees == nil {
				return errors.NewModelError(errors.NETWORK_REQUIRED, "no fee set and no network source configured", nil)
			}
			cfg, err := b.fees.NetworkConfiguration(ctx)
			if err != nil {
				return err
			}
			base = cfg.BaseFee
		}
		total := uint64(base) * uint64(len(b.ops))
		if total > math.MaxUint32 {
			return errors.NewModelError(errors.INVALID_AMOUNT, fmt.Sprintf("fee %d overflows uint32", total), nil)
		}
		fee = uint32(total)
	}

	if err := b.advance(StageFeeResolved); err != nil {
		return err
	}

	tb := b.timeBounds
	if b.timeout > 0 && (tb == nil || tb.MaxTime == 0) {
		bounded := xdr.TimeBounds{MaxTime: uint64(b.now().Add(b.timeout).Unix())}
		if tb != nil {
			bounded.MinTime = tb.MinTime
		}
		tb = &bounded
	}

	b.tx.Fee = fee
	b.tx.TimeBounds = tb
	b.tx.Memo = b.memo
	b.tx.Operations = append([]xdr.Operation(nil), b.ops...)
	return nil
}

// Transaction resolves the sequence number and fee and returns the final
// transaction. It may be called again once resolved.
func (b *Builder) Transaction(ctx context.Context) (xdr.Transaction, error) {
	if b.err != nil {
		return xdr.Transaction{}, b.err
	}
	if b.stage == StageDraft {
		if err := b.resolveSequence(ctx); err != nil {
			return xdr.Transaction{}, err
		}
	}
	if b.stage == StageSequenced {
		if err := b.resolveFee(ctx); err != nil {
			return xdr.Transaction{}, err
		}
	}
	return b.tx, nil
}

// Envelope returns the transaction wrapped in an envelope. Before signing the
// envelope has no signatures.
func (b *Builder) Envelope(ctx context.Context) (xdr.TransactionEnvelope, error) {
	if _, err := b.Transaction(ctx); err != nil {
		return xdr.TransactionEnvelope{}, err
	}
	if b.stage == StageFeeResolved {
		if err := b.advance(StageEnveloped); err != nil {
			return xdr.TransactionEnvelope{}, err
		}
		b.env = xdr.NewEnvelope(b.tx)
	}
	return b.env.Clone(), nil
}

// Hash returns the network-qualified hash of the transaction.
func (b *Builder) Hash(ctx context.Context) (xdr.Hash, error) {
	tx, err := b.Transaction(ctx)
	if err != nil {
		return xdr.Hash{}, err
	}
	return tx.Hash(b.network)
}

// Sign signs the transaction hash with each signer, or with the designated
// signers when none are given, and returns the signed envelope.
//
// A nil signer fails with MISSING_SIGN_CLOSURE and a signer error with
// SIGNING_FAILED. In both cases no signature from this call is attached.
// Identical signatures are attached once.
func (b *Builder) Sign(ctx context.Context, signers ...stellarkit.Signer) (xdr.TransactionEnvelope, error) {
	if _, err := b.Envelope(ctx); err != nil {
		return xdr.TransactionEnvelope{}, err
	}
	if len(signers) == 0 {
		signers = b.signers
	}
	if len(signers) == 0 {
		return xdr.TransactionEnvelope{}, errors.NewSigningError(errors.MISSING_SIGN_CLOSURE, "no signers designated", nil)
	}

	hash, err := b.tx.Hash(b.network)
	if err != nil {
		return xdr.TransactionEnvelope{}, err
	}

	signed := b.env.Clone()
	for i, s := range signers {
		if s == nil {
			return xdr.TransactionEnvelope{}, errors.NewSigningError(
				errors.MISSING_SIGN_CLOSURE,
				fmt.Sprintf("signer %d has no signing capability", i),
				nil,
			).With("index", i)
		}
		sig, err := s.Sign(hash[:])
		if err != nil {
			return xdr.TransactionEnvelope{}, errors.NewSigningError(
				errors.SIGNING_FAILED,
				fmt.Sprintf("signer %s failed", s.PublicKey()),
				err,
			).With("signer", s.PublicKey().String())
		}
		signed.AddSignature(xdr.NewDecoratedSignature(s.PublicKey(), sig))
	}

	if err := b.advance(StageSigned); err != nil {
		return xdr.TransactionEnvelope{}, err
	}
	b.env = signed
	return b.env.Clone(), nil
}

// Submit signs with the designated signers if the envelope is not signed yet,
// then hands it to the submitter. A signed envelope may be resubmitted.
func (b *Builder) Submit(ctx context.Context) (*stellarkit.SubmitResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.submitter == nil {
		return nil, errors.NewModelError(errors.NETWORK_REQUIRED, "no submitter configured", nil)
	}
	if b.stage != StageSigned && b.stage != StageSubmitted {
		if _, err := b.Sign(ctx); err != nil {
			return nil, err
		}
	}

	env := b.env.Clone()
	hash, err := env.Hash(b.network)
	if err != nil {
		return nil, err
	}
	log := b.logger.WithFields(logrus.Fields{
		"account": b.source.Address(),
		"tx_hash": hash.String(),
		"seq":     b.tx.SeqNum,
	})
	log.Debug("submitting transaction")

	res, err := b.submitter.Submit(ctx, &env)
	if err != nil {
		log.WithError(err).Warn("transaction submission failed")
		return nil, err
	}
	if res == nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "submitter returned no result", nil).
			With("tx_hash", hash.String())
	}
	if err := b.advance(StageSubmitted); err != nil {
		return nil, err
	}
	log.WithField("ledger", res.Ledger).Info("transaction submitted")
	return res, nil
}
