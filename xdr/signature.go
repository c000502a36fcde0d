package xdr

import (
	"crypto/sha256"

	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

// TaggedTransaction is the transaction arm of a signing payload. Only
// EnvelopeTypeTx and EnvelopeTypeTxFeeBump are signable.
type TaggedTransaction struct {
	Type    EnvelopeType
	Tx      *Transaction
	FeeBump *FeeBumpTransaction
}

func (t TaggedTransaction) EncodeTo(e *Encoder) error {
	switch {
	case t.Type == EnvelopeTypeTx && t.Tx != nil:
		e.EncodeInt32(int32(t.Type))
		return t.Tx.EncodeTo(e)
	case t.Type == EnvelopeTypeTxFeeBump && t.FeeBump != nil:
		e.EncodeInt32(int32(t.Type))
		return t.FeeBump.EncodeTo(e)
	}
	return unknownVariant("TaggedTransaction", int32(t.Type))
}

func (t *TaggedTransaction) DecodeFrom(d *Decoder) error {
	v, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*t = TaggedTransaction{Type: EnvelopeType(v)}
	switch t.Type {
	case EnvelopeTypeTx:
		t.Tx = new(Transaction)
		return t.Tx.DecodeFrom(d)
	case EnvelopeTypeTxFeeBump:
		t.FeeBump = new(FeeBumpTransaction)
		return t.FeeBump.DecodeFrom(d)
	}
	return unknownVariant("TaggedTransaction", v)
}

// TransactionSignaturePayload is the structure whose hash every signer signs.
type TransactionSignaturePayload struct {
	NetworkID         Hash
	TaggedTransaction TaggedTransaction
}

func (p TransactionSignaturePayload) EncodeTo(e *Encoder) error {
	p.NetworkID.EncodeTo(e)
	return field(p.TaggedTransaction.EncodeTo(e), "TransactionSignaturePayload", "taggedTransaction")
}

func (p *TransactionSignaturePayload) DecodeFrom(d *Decoder) error {
	if err := p.NetworkID.DecodeFrom(d); err != nil {
		return field(err, "TransactionSignaturePayload", "networkId")
	}
	return field(p.TaggedTransaction.DecodeFrom(d), "TransactionSignaturePayload", "taggedTransaction")
}

// SignaturePayload binds tx to the network identified by id.
func SignaturePayload(tx Transaction, id network.ID) TransactionSignaturePayload {
	return TransactionSignaturePayload{
		NetworkID:         Hash(id.Hash()),
		TaggedTransaction: TaggedTransaction{Type: EnvelopeTypeTx, Tx: &tx},
	}
}

// Hash returns SHA-256 of the encoded payload.
func (p TransactionSignaturePayload) Hash() (Hash, error) {
	b, err := Marshal(p)
	if err != nil {
		return Hash{}, err
	}
	return sha256.Sum256(b), nil
}

// Hash returns the network-qualified transaction hash that signers sign.
func (t Transaction) Hash(id network.ID) (Hash, error) {
	return SignaturePayload(t, id).Hash()
}

// Hash returns the network-qualified hash of the fee-bump transaction.
func (t FeeBumpTransaction) Hash(id network.ID) (Hash, error) {
	return TransactionSignaturePayload{
		NetworkID:         Hash(id.Hash()),
		TaggedTransaction: TaggedTransaction{Type: EnvelopeTypeTxFeeBump, FeeBump: &t},
	}.Hash()
}

// Hash returns the hash of the envelope's outer transaction. Legacy envelopes
// hash as their v1 equivalent.
func (e TransactionEnvelope) Hash(id network.ID) (Hash, error) {
	switch {
	case e.Type == EnvelopeTypeTxFeeBump && e.FeeBump != nil:
		return e.FeeBump.Tx.Hash(id)
	case e.Type == EnvelopeTypeTx && e.V1 != nil:
		return e.V1.Tx.Hash(id)
	case e.Type == EnvelopeTypeTxV0 && e.V0 != nil:
		return e.V0.Tx.ToTransaction().Hash(id)
	}
	return Hash{}, unknownVariant("TransactionEnvelope", int32(e.Type))
}

// HintFor returns the signature hint of key: its last four raw bytes.
func HintFor(key strkey.StellarKey) SignatureHint {
	return SignatureHint(key.Hint())
}

// NewDecoratedSignature pairs sig with the hint of the key that produced it.
func NewDecoratedSignature(key strkey.StellarKey, sig []byte) DecoratedSignature {
	return DecoratedSignature{Hint: HintFor(key), Signature: append([]byte(nil), sig...)}
}
