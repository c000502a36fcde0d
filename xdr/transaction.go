package xdr

import (
	"bytes"
)

// EnvelopeType discriminates envelopes and tagged signing payloads.
type EnvelopeType int32

const (
	EnvelopeTypeTxV0      EnvelopeType = 0
	EnvelopeTypeSCP       EnvelopeType = 1
	EnvelopeTypeTx        EnvelopeType = 2
	EnvelopeTypeAuth      EnvelopeType = 3
	EnvelopeTypeSCPValue  EnvelopeType = 4
	EnvelopeTypeTxFeeBump EnvelopeType = 5
	EnvelopeTypeOpID      EnvelopeType = 6
)

// PreconditionType discriminates transaction preconditions.
type PreconditionType int32

const (
	PreconditionNone PreconditionType = 0
	PreconditionTime PreconditionType = 1
	PreconditionV2   PreconditionType = 2
)

// TimeBounds restricts the ledger close times (Unix seconds) in which a
// transaction is valid. MaxTime == 0 means no upper bound.
type TimeBounds struct {
	MinTime uint64
	MaxTime uint64
}

func (t TimeBounds) EncodeTo(e *Encoder) error {
	e.EncodeUint64(t.MinTime)
	e.EncodeUint64(t.MaxTime)
	return nil
}

func (t *TimeBounds) DecodeFrom(d *Decoder) (err error) {
	if t.MinTime, err = d.DecodeUint64(); err != nil {
		return field(err, "TimeBounds", "minTime")
	}
	t.MaxTime, err = d.DecodeUint64()
	return field(err, "TimeBounds", "maxTime")
}

// Transaction is the current (v1) transaction body.
//
// TimeBounds is written as the Preconditions union: nil is PRECOND_NONE and a
// value is PRECOND_TIME, which is byte-identical to the legacy optional
// time-bounds field. The trailing extension is always 0.
type Transaction struct {
	SourceAccount MuxedAccount
	Fee           uint32
	SeqNum        int64
	TimeBounds    *TimeBounds
	Memo          Memo
	Operations    []Operation
}

func (t Transaction) EncodeTo(e *Encoder) error {
	if err := t.SourceAccount.EncodeTo(e); err != nil {
		return field(err, "Transaction", "sourceAccount")
	}
	e.EncodeUint32(t.Fee)
	e.EncodeInt64(t.SeqNum)
	if t.TimeBounds == nil {
		e.EncodeInt32(int32(PreconditionNone))
	} else {
		e.EncodeInt32(int32(PreconditionTime))
		t.TimeBounds.EncodeTo(e)
	}
	if err := t.Memo.EncodeTo(e); err != nil {
		return field(err, "Transaction", "memo")
	}
	if err := EncodeArrayMax(e, t.Operations, maxOperations); err != nil {
		return field(err, "Transaction", "operations")
	}
	e.EncodeInt32(0)
	return nil
}

func (t *Transaction) DecodeFrom(d *Decoder) (err error) {
	if err = t.SourceAccount.DecodeFrom(d); err != nil {
		return field(err, "Transaction", "sourceAccount")
	}
	if t.Fee, err = d.DecodeUint32(); err != nil {
		return field(err, "Transaction", "fee")
	}
	if t.SeqNum, err = d.DecodeInt64(); err != nil {
		return field(err, "Transaction", "seqNum")
	}
	if t.TimeBounds, err = decodePreconditions(d); err != nil {
		return field(err, "Transaction", "cond")
	}
	if err = t.Memo.DecodeFrom(d); err != nil {
		return field(err, "Transaction", "memo")
	}
	if t.Operations, err = DecodeArrayMax[Operation](d, maxOperations); err != nil {
		return field(err, "Transaction", "operations")
	}
	return field(decodeEmptyExt(d, "Transaction.ext"), "Transaction", "ext")
}

func decodePreconditions(d *Decoder) (*TimeBounds, error) {
	t, err := d.DecodeInt32()
	if err != nil {
		return nil, err
	}
	switch PreconditionType(t) {
	case PreconditionNone:
		return nil, nil
	case PreconditionTime:
		tb := new(TimeBounds)
		if err := tb.DecodeFrom(d); err != nil {
			return nil, err
		}
		return tb, nil
	}
	return nil, unknownVariant("Preconditions", t)
}

// decodeEmptyExt reads an extension union that only defines arm 0.
func decodeEmptyExt(d *Decoder, union string) error {
	v, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	if v != 0 {
		return unknownVariant(union, v)
	}
	return nil
}

// TransactionV0 is the pre-protocol-13 transaction body whose source is a raw
// ed25519 key.
type TransactionV0 struct {
	SourceAccountEd25519 Uint256
	Fee                  uint32
	SeqNum               int64
	TimeBounds           *TimeBounds
	Memo                 Memo
	Operations           []Operation
}

// ToTransaction converts t to the equivalent v1 body. Both encode to the same
// signing payload.
func (t TransactionV0) ToTransaction() Transaction {
	return Transaction{
		SourceAccount: MuxedAccount{Type: CryptoKeyTypeEd25519, Ed25519: t.SourceAccountEd25519},
		Fee:           t.Fee,
		SeqNum:        t.SeqNum,
		TimeBounds:    t.TimeBounds,
		Memo:          t.Memo,
		Operations:    t.Operations,
	}
}

func (t TransactionV0) EncodeTo(e *Encoder) error {
	t.SourceAccountEd25519.EncodeTo(e)
	e.EncodeUint32(t.Fee)
	e.EncodeInt64(t.SeqNum)
	EncodeOptional(e, t.TimeBounds)
	if err := t.Memo.EncodeTo(e); err != nil {
		return field(err, "TransactionV0", "memo")
	}
	if err := EncodeArrayMax(e, t.Operations, maxOperations); err != nil {
		return field(err, "TransactionV0", "operations")
	}
	e.EncodeInt32(0)
	return nil
}

func (t *TransactionV0) DecodeFrom(d *Decoder) (err error) {
	if err = t.SourceAccountEd25519.DecodeFrom(d); err != nil {
		return field(err, "TransactionV0", "sourceAccountEd25519")
	}
	if t.Fee, err = d.DecodeUint32(); err != nil {
		return field(err, "TransactionV0", "fee")
	}
	if t.SeqNum, err = d.DecodeInt64(); err != nil {
		return field(err, "TransactionV0", "seqNum")
	}
	if t.TimeBounds, err = DecodeOptional[TimeBounds](d); err != nil {
		return field(err, "TransactionV0", "timeBounds")
	}
	if err = t.Memo.DecodeFrom(d); err != nil {
		return field(err, "TransactionV0", "memo")
	}
	if t.Operations, err = DecodeArrayMax[Operation](d, maxOperations); err != nil {
		return field(err, "TransactionV0", "operations")
	}
	return field(decodeEmptyExt(d, "TransactionV0.ext"), "TransactionV0", "ext")
}

// FeeBumpTransaction pays the fee of an inner v1 transaction on behalf of FeeSource.
type FeeBumpTransaction struct {
	FeeSource MuxedAccount
	Fee       int64
	InnerTx   TransactionV1Envelope
}

func (t FeeBumpTransaction) EncodeTo(e *Encoder) error {
	if err := t.FeeSource.EncodeTo(e); err != nil {
		return field(err, "FeeBumpTransaction", "feeSource")
	}
	e.EncodeInt64(t.Fee)
	e.EncodeInt32(int32(EnvelopeTypeTx))
	if err := t.InnerTx.EncodeTo(e); err != nil {
		return field(err, "FeeBumpTransaction", "innerTx")
	}
	e.EncodeInt32(0)
	return nil
}

func (t *FeeBumpTransaction) DecodeFrom(d *Decoder) (err error) {
	if err = t.FeeSource.DecodeFrom(d); err != nil {
		return field(err, "FeeBumpTransaction", "feeSource")
	}
	if t.Fee, err = d.DecodeInt64(); err != nil {
		return field(err, "FeeBumpTransaction", "fee")
	}
	inner, err := d.DecodeInt32()
	if err != nil {
		return field(err, "FeeBumpTransaction", "innerTx")
	}
	if EnvelopeType(inner) != EnvelopeTypeTx {
		return field(unknownVariant("FeeBumpTransaction.innerTx", inner), "FeeBumpTransaction", "innerTx")
	}
	if err = t.InnerTx.DecodeFrom(d); err != nil {
		return field(err, "FeeBumpTransaction", "innerTx")
	}
	return field(decodeEmptyExt(d, "FeeBumpTransaction.ext"), "FeeBumpTransaction", "ext")
}

// DecoratedSignature is a signature together with the hint identifying its key.
type DecoratedSignature struct {
	Hint      SignatureHint
	Signature []byte
}

// Equal reports whether s and o carry the same hint and signature bytes.
func (s DecoratedSignature) Equal(o DecoratedSignature) bool {
	return s.Hint == o.Hint && bytes.Equal(s.Signature, o.Signature)
}

func (s DecoratedSignature) EncodeTo(e *Encoder) error {
	s.Hint.EncodeTo(e)
	return field(e.EncodeOpaqueMax(s.Signature, maxSignatureSize), "DecoratedSignature", "signature")
}

func (s *DecoratedSignature) DecodeFrom(d *Decoder) (err error) {
	if err = s.Hint.DecodeFrom(d); err != nil {
		return field(err, "DecoratedSignature", "hint")
	}
	s.Signature, err = d.DecodeOpaqueMax(maxSignatureSize)
	return field(err, "DecoratedSignature", "signature")
}

// addSignature appends sig unless an identical entry exists.
func addSignature(list []DecoratedSignature, sig DecoratedSignature) ([]DecoratedSignature, bool) {
	for _, s := range list {
		if s.Equal(sig) {
			return list, false
		}
	}
	return append(list, sig), true
}

// TransactionV1Envelope is a v1 transaction and its signatures.
type TransactionV1Envelope struct {
	Tx         Transaction
	Signatures []DecoratedSignature
}

func (e TransactionV1Envelope) EncodeTo(enc *Encoder) error {
	if err := e.Tx.EncodeTo(enc); err != nil {
		return field(err, "TransactionV1Envelope", "tx")
	}
	return field(EncodeArrayMax(enc, e.Signatures, maxSignatures), "TransactionV1Envelope", "signatures")
}

func (e *TransactionV1Envelope) DecodeFrom(d *Decoder) (err error) {
	if err = e.Tx.DecodeFrom(d); err != nil {
		return field(err, "TransactionV1Envelope", "tx")
	}
	e.Signatures, err = DecodeArrayMax[DecoratedSignature](d, maxSignatures)
	return field(err, "TransactionV1Envelope", "signatures")
}

// TransactionV0Envelope is a legacy transaction and its signatures.
type TransactionV0Envelope struct {
	Tx         TransactionV0
	Signatures []DecoratedSignature
}

func (e TransactionV0Envelope) EncodeTo(enc *Encoder) error {
	if err := e.Tx.EncodeTo(enc); err != nil {
		return field(err, "TransactionV0Envelope", "tx")
	}
	return field(EncodeArrayMax(enc, e.Signatures, maxSignatures), "TransactionV0Envelope", "signatures")
}

func (e *TransactionV0Envelope) DecodeFrom(d *Decoder) (err error) {
	if err = e.Tx.DecodeFrom(d); err != nil {
		return field(err, "TransactionV0Envelope", "tx")
	}
	e.Signatures, err = DecodeArrayMax[DecoratedSignature](d, maxSignatures)
	return field(err, "TransactionV0Envelope", "signatures")
}

// FeeBumpTransactionEnvelope is a fee-bump transaction and the fee source's signatures.
type FeeBumpTransactionEnvelope struct {
	Tx         FeeBumpTransaction
	Signatures []DecoratedSignature
}

func (e FeeBumpTransactionEnvelope) EncodeTo(enc *Encoder) error {
	if err := e.Tx.EncodeTo(enc); err != nil {
		return field(err, "FeeBumpTransactionEnvelope", "tx")
	}
	return field(EncodeArrayMax(enc, e.Signatures, maxSignatures), "FeeBumpTransactionEnvelope", "signatures")
}

func (e *FeeBumpTransactionEnvelope) DecodeFrom(d *Decoder) (err error) {
	if err = e.Tx.DecodeFrom(d); err != nil {
		return field(err, "FeeBumpTransactionEnvelope", "tx")
	}
	e.Signatures, err = DecodeArrayMax[DecoratedSignature](d, maxSignatures)
	return field(err, "FeeBumpTransactionEnvelope", "signatures")
}

// TransactionEnvelope is the unit submitted to the network. Exactly one of
// V0, V1 and FeeBump is set, matching Type.
type TransactionEnvelope struct {
	Type    EnvelopeType
	V0      *TransactionV0Envelope
	V1      *TransactionV1Envelope
	FeeBump *FeeBumpTransactionEnvelope
}

// NewEnvelope wraps tx in an unsigned v1 envelope.
func NewEnvelope(tx Transaction) TransactionEnvelope {
	return TransactionEnvelope{
		Type: EnvelopeTypeTx,
		V1:   &TransactionV1Envelope{Tx: tx},
	}
}

// Transaction returns the v1 view of the enveloped transaction. Legacy
// envelopes are converted; for fee-bump envelopes the inner transaction is
// returned.
func (e TransactionEnvelope) Transaction() (Transaction, bool) {
	switch e.Type {
	case EnvelopeTypeTx:
		if e.V1 != nil {
			return e.V1.Tx, true
		}
	case EnvelopeTypeTxV0:
		if e.V0 != nil {
			return e.V0.Tx.ToTransaction(), true
		}
	case EnvelopeTypeTxFeeBump:
		if e.FeeBump != nil {
			return e.FeeBump.Tx.InnerTx.Tx, true
		}
	}
	return Transaction{}, false
}

// Signatures returns the outer signature list.
func (e TransactionEnvelope) Signatures() []DecoratedSignature {
	switch e.Type {
	case EnvelopeTypeTx:
		if e.V1 != nil {
			return e.V1.Signatures
		}
	case EnvelopeTypeTxV0:
		if e.V0 != nil {
			return e.V0.Signatures
		}
	case EnvelopeTypeTxFeeBump:
		if e.FeeBump != nil {
			return e.FeeBump.Signatures
		}
	}
	return nil
}

// AddSignature appends sig to the outer signature list unless an entry with
// the same hint and bytes is already present. It reports whether sig was added.
func (e *TransactionEnvelope) AddSignature(sig DecoratedSignature) bool {
	var added bool
	switch {
	case e.Type == EnvelopeTypeTx && e.V1 != nil:
		e.V1.Signatures, added = addSignature(e.V1.Signatures, sig)
	case e.Type == EnvelopeTypeTxV0 && e.V0 != nil:
		e.V0.Signatures, added = addSignature(e.V0.Signatures, sig)
	case e.Type == EnvelopeTypeTxFeeBump && e.FeeBump != nil:
		e.FeeBump.Signatures, added = addSignature(e.FeeBump.Signatures, sig)
	}
	return added
}

// Clone returns a deep copy of the signature lists so callers can sign a copy
// without touching e.
func (e TransactionEnvelope) Clone() TransactionEnvelope {
	out := TransactionEnvelope{Type: e.Type}
	if e.V1 != nil {
		v := *e.V1
		v.Signatures = append([]DecoratedSignature(nil), e.V1.Signatures...)
		out.V1 = &v
	}
	if e.V0 != nil {
		v := *e.V0
		v.Signatures = append([]DecoratedSignature(nil), e.V0.Signatures...)
		out.V0 = &v
	}
	if e.FeeBump != nil {
		v := *e.FeeBump
		v.Signatures = append([]DecoratedSignature(nil), e.FeeBump.Signatures...)
		out.FeeBump = &v
	}
	return out
}

func (e TransactionEnvelope) EncodeTo(enc *Encoder) error {
	switch e.Type {
	case EnvelopeTypeTxV0:
		if e.V0 == nil {
			return missingPayload("TransactionEnvelope", int32(e.Type))
		}
		enc.EncodeInt32(int32(e.Type))
		return e.V0.EncodeTo(enc)
	case EnvelopeTypeTx:
		if e.V1 == nil {
			return missingPayload("TransactionEnvelope", int32(e.Type))
		}
		enc.EncodeInt32(int32(e.Type))
		return e.V1.EncodeTo(enc)
	case EnvelopeTypeTxFeeBump:
		if e.FeeBump == nil {
			return missingPayload("TransactionEnvelope", int32(e.Type))
		}
		enc.EncodeInt32(int32(e.Type))
		return e.FeeBump.EncodeTo(enc)
	}
	return unknownVariant("TransactionEnvelope", int32(e.Type))
}

func (e *TransactionEnvelope) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*e = TransactionEnvelope{Type: EnvelopeType(t)}
	switch e.Type {
	case EnvelopeTypeTxV0:
		e.V0 = new(TransactionV0Envelope)
		return e.V0.DecodeFrom(d)
	case EnvelopeTypeTx:
		e.V1 = new(TransactionV1Envelope)
		return e.V1.DecodeFrom(d)
	case EnvelopeTypeTxFeeBump:
		e.FeeBump = new(FeeBumpTransactionEnvelope)
		return e.FeeBump.DecodeFrom(d)
	}
	return unknownVariant("TransactionEnvelope", t)
}
