package xdr

import (
	"fmt"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

// CryptoKeyType is the discriminant shared by key-bearing unions.
type CryptoKeyType int32

const (
	CryptoKeyTypeEd25519              CryptoKeyType = 0
	CryptoKeyTypePreAuthTx            CryptoKeyType = 1
	CryptoKeyTypeHashX                CryptoKeyType = 2
	CryptoKeyTypeEd25519SignedPayload CryptoKeyType = 3
	CryptoKeyTypeMuxedEd25519         CryptoKeyType = 0x100
)

// PublicKey is the PublicKey union. Only the ed25519 arm exists on the wire.
type PublicKey struct {
	Ed25519 Uint256
}

// AccountID identifies a ledger account.
type AccountID = PublicKey

// NewPublicKey converts an ed25519 public StellarKey into its wire form.
func NewPublicKey(k strkey.StellarKey) (PublicKey, error) {
	if k.Type() != strkey.Ed25519PublicKey {
		return PublicKey{}, skerrors.NewKeyError(
			skerrors.UNKNOWN_KEY_TYPE,
			fmt.Sprintf("expected ed25519 public key, got %s", k.Type()),
			nil,
		)
	}
	return PublicKey{Ed25519: Uint256(k.Raw())}, nil
}

// ParseAccountID decodes a G... address.
func ParseAccountID(address string) (AccountID, error) {
	k, err := strkey.ParseAddress(address)
	if err != nil {
		return AccountID{}, err
	}
	return PublicKey{Ed25519: Uint256(k.Raw())}, nil
}

// MustAccountID is like ParseAccountID but panics on error.
func MustAccountID(address string) AccountID {
	id, err := ParseAccountID(address)
	if err != nil {
		panic(err)
	}
	return id
}

// StellarKey returns the typed key.
func (p PublicKey) StellarKey() strkey.StellarKey {
	return strkey.FromRaw(p.Ed25519, strkey.Ed25519PublicKey)
}

// Address returns the G... text form.
func (p PublicKey) Address() string {
	return p.StellarKey().String()
}

func (p PublicKey) String() string { return p.Address() }

// ToMuxedAccount wraps p in an unmultiplexed MuxedAccount.
func (p PublicKey) ToMuxedAccount() MuxedAccount {
	return MuxedAccount{Type: CryptoKeyTypeEd25519, Ed25519: p.Ed25519}
}

func (p PublicKey) EncodeTo(e *Encoder) error {
	e.EncodeInt32(int32(CryptoKeyTypeEd25519))
	return p.Ed25519.EncodeTo(e)
}

func (p *PublicKey) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	if CryptoKeyType(t) != CryptoKeyTypeEd25519 {
		return unknownVariant("PublicKey", t)
	}
	return p.Ed25519.DecodeFrom(d)
}

// MuxedAccount is an account optionally multiplexed by a 64-bit id.
// ID is meaningful only when Type is CryptoKeyTypeMuxedEd25519.
type MuxedAccount struct {
	Type    CryptoKeyType
	ID      uint64
	Ed25519 Uint256
}

// ParseMuxedAccount decodes a G... address into an unmultiplexed MuxedAccount.
func ParseMuxedAccount(address string) (MuxedAccount, error) {
	id, err := ParseAccountID(address)
	if err != nil {
		return MuxedAccount{}, err
	}
	return id.ToMuxedAccount(), nil
}

// AccountID returns the underlying account, dropping any multiplexing id.
func (m MuxedAccount) AccountID() AccountID {
	return PublicKey{Ed25519: m.Ed25519}
}

// Address returns the G... address of the underlying account.
func (m MuxedAccount) Address() string {
	return m.AccountID().Address()
}

func (m MuxedAccount) EncodeTo(e *Encoder) error {
	switch m.Type {
	case CryptoKeyTypeEd25519:
		e.EncodeInt32(int32(m.Type))
		return m.Ed25519.EncodeTo(e)
	case CryptoKeyTypeMuxedEd25519:
		e.EncodeInt32(int32(m.Type))
		e.EncodeUint64(m.ID)
		return m.Ed25519.EncodeTo(e)
	}
	return unknownVariant("MuxedAccount", int32(m.Type))
}

func (m *MuxedAccount) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	m.Type = CryptoKeyType(t)
	switch m.Type {
	case CryptoKeyTypeEd25519:
		m.ID = 0
		return m.Ed25519.DecodeFrom(d)
	case CryptoKeyTypeMuxedEd25519:
		if m.ID, err = d.DecodeUint64(); err != nil {
			return err
		}
		return m.Ed25519.DecodeFrom(d)
	}
	return unknownVariant("MuxedAccount", t)
}

// SignerKey identifies an additional account signer.
type SignerKey struct {
	Type CryptoKeyType
	Key  Uint256
}

// NewSignerKey converts a G..., T... or X... key into a SignerKey.
func NewSignerKey(k strkey.StellarKey) (SignerKey, error) {
	var t CryptoKeyType
	switch k.Type() {
	case strkey.Ed25519PublicKey:
		t = CryptoKeyTypeEd25519
	case strkey.PreAuthTx:
		t = CryptoKeyTypePreAuthTx
	case strkey.Sha256Hash:
		t = CryptoKeyTypeHashX
	default:
		return SignerKey{}, skerrors.NewKeyError(
			skerrors.UNKNOWN_KEY_TYPE,
			fmt.Sprintf("%s cannot be an account signer", k.Type()),
			nil,
		)
	}
	return SignerKey{Type: t, Key: Uint256(k.Raw())}, nil
}

// StellarKey returns the text-encodable form of the signer key.
func (s SignerKey) StellarKey() strkey.StellarKey {
	switch s.Type {
	case CryptoKeyTypePreAuthTx:
		return strkey.FromRaw(s.Key, strkey.PreAuthTx)
	case CryptoKeyTypeHashX:
		return strkey.FromRaw(s.Key, strkey.Sha256Hash)
	}
	return strkey.FromRaw(s.Key, strkey.Ed25519PublicKey)
}

func (s SignerKey) EncodeTo(e *Encoder) error {
	switch s.Type {
	case CryptoKeyTypeEd25519, CryptoKeyTypePreAuthTx, CryptoKeyTypeHashX:
		e.EncodeInt32(int32(s.Type))
		return s.Key.EncodeTo(e)
	}
	return unknownVariant("SignerKey", int32(s.Type))
}

func (s *SignerKey) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	s.Type = CryptoKeyType(t)
	switch s.Type {
	case CryptoKeyTypeEd25519, CryptoKeyTypePreAuthTx, CryptoKeyTypeHashX:
		return s.Key.DecodeFrom(d)
	}
	return unknownVariant("SignerKey", t)
}

// Signer is a signer key with its weight, as set by SetOptions.
type Signer struct {
	Key    SignerKey
	Weight uint32
}

func (s Signer) EncodeTo(e *Encoder) error {
	if err := s.Key.EncodeTo(e); err != nil {
		return field(err, "Signer", "key")
	}
	e.EncodeUint32(s.Weight)
	return nil
}

func (s *Signer) DecodeFrom(d *Decoder) error {
	if err := s.Key.DecodeFrom(d); err != nil {
		return field(err, "Signer", "key")
	}
	w, err := d.DecodeUint32()
	s.Weight = w
	return field(err, "Signer", "weight")
}
