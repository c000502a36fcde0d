package strkey

import (
	"fmt"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// StellarKey is a typed raw key. It is immutable once constructed.
type StellarKey struct {
	typ KeyType
	key [KeyLength]byte
}

// New builds a StellarKey from raw bytes. key must be exactly 32 bytes.
func New(key []byte, t KeyType) (StellarKey, error) {
	if !t.Valid() {
		return StellarKey{}, skerrors.NewKeyError(skerrors.UNKNOWN_KEY_TYPE, fmt.Sprintf("unknown key type %d", byte(t)), nil)
	}
	if len(key) != KeyLength {
		return StellarKey{}, skerrors.NewKeyError(skerrors.INVALID_LENGTH, fmt.Sprintf("key must be %d bytes, got %d", KeyLength, len(key)), nil)
	}
	k := StellarKey{typ: t}
	copy(k.key[:], key)
	return k, nil
}

// FromRaw builds a StellarKey from a fixed-size array.
func FromRaw(key [KeyLength]byte, t KeyType) StellarKey {
	return StellarKey{typ: t, key: key}
}

// Parse decodes the text form of a key.
func Parse(s string) (StellarKey, error) {
	t, key, err := Decode(s)
	if err != nil {
		return StellarKey{}, err
	}
	return StellarKey{typ: t, key: key}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) StellarKey {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// ParseAddress decodes s and requires it to be an ed25519 public key (G...).
func ParseAddress(s string) (StellarKey, error) {
	key, err := DecodeAs(Ed25519PublicKey, s)
	if err != nil {
		return StellarKey{}, err
	}
	return StellarKey{typ: Ed25519PublicKey, key: key}, nil
}

// Type returns the key type.
func (k StellarKey) Type() KeyType { return k.typ }

// Raw returns a copy of the raw key bytes.
func (k StellarKey) Raw() [KeyLength]byte { return k.key }

// Bytes returns the raw key bytes as a fresh slice.
func (k StellarKey) Bytes() []byte {
	b := make([]byte, KeyLength)
	copy(b, k.key[:])
	return b
}

// IsZero reports whether k is the zero value (no type assigned).
func (k StellarKey) IsZero() bool { return k.typ == 0 }

// Hint returns the last 4 bytes of the raw key, used to tag decorated signatures.
func (k StellarKey) Hint() [4]byte {
	var h [4]byte
	copy(h[:], k.key[KeyLength-4:])
	return h
}

// String returns the checksummed text form.
func (k StellarKey) String() string {
	if !k.typ.Valid() {
		return ""
	}
	return MustEncode(k.typ, k.key[:])
}

// Equal reports whether two keys have the same type and bytes.
func (k StellarKey) Equal(other StellarKey) bool {
	return k.typ == other.typ && k.key == other.key
}

// MarshalText implements encoding.TextMarshaler.
func (k StellarKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StellarKey) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
