package xdr

import (
	"encoding/hex"
	"fmt"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// Opaque4 is a 4-byte fixed opaque value (signature hints, 4-character asset codes).
type Opaque4 [4]byte

// Opaque12 is a 12-byte fixed opaque value (12-character asset codes).
type Opaque12 [12]byte

// Opaque32 is a 32-byte fixed opaque value (hashes, public keys, seeds).
type Opaque32 [32]byte

type (
	Hash          = Opaque32
	Uint256       = Opaque32
	SignatureHint = Opaque4
	AssetCode4    = Opaque4
	AssetCode12   = Opaque12
)

func fixedLengthError(want, got int) error {
	return skerrors.NewCodecError(
		skerrors.INVALID_LENGTH,
		fmt.Sprintf("expected %d bytes, got %d", want, got),
		nil,
	)
}

// NewOpaque4 copies b into an Opaque4. len(b) must be exactly 4.
func NewOpaque4(b []byte) (Opaque4, error) {
	var o Opaque4
	if len(b) != len(o) {
		return o, fixedLengthError(len(o), len(b))
	}
	copy(o[:], b)
	return o, nil
}

// NewOpaque12 copies b into an Opaque12. len(b) must be exactly 12.
func NewOpaque12(b []byte) (Opaque12, error) {
	var o Opaque12
	if len(b) != len(o) {
		return o, fixedLengthError(len(o), len(b))
	}
	copy(o[:], b)
	return o, nil
}

// NewOpaque32 copies b into an Opaque32. len(b) must be exactly 32.
func NewOpaque32(b []byte) (Opaque32, error) {
	var o Opaque32
	if len(b) != len(o) {
		return o, fixedLengthError(len(o), len(b))
	}
	copy(o[:], b)
	return o, nil
}

// PadOpaque4 builds an Opaque4 from an arbitrary sequence: shorter input is
// zero-padded on the right, longer input is truncated. Never use this on
// untrusted wire or user data where a size mismatch must be an error.
func PadOpaque4(b []byte) Opaque4 {
	var o Opaque4
	copy(o[:], b)
	return o
}

// PadOpaque12 is the 12-byte counterpart of PadOpaque4.
func PadOpaque12(b []byte) Opaque12 {
	var o Opaque12
	copy(o[:], b)
	return o
}

// PadOpaque32 is the 32-byte counterpart of PadOpaque4.
func PadOpaque32(b []byte) Opaque32 {
	var o Opaque32
	copy(o[:], b)
	return o
}

func (o Opaque4) EncodeTo(e *Encoder) error {
	e.EncodeFixedOpaque(o[:])
	return nil
}

func (o *Opaque4) DecodeFrom(d *Decoder) error {
	b, err := d.DecodeFixedOpaque(len(o))
	if err != nil {
		return err
	}
	copy(o[:], b)
	return nil
}

func (o Opaque4) String() string { return hex.EncodeToString(o[:]) }

func (o Opaque12) EncodeTo(e *Encoder) error {
	e.EncodeFixedOpaque(o[:])
	return nil
}

func (o *Opaque12) DecodeFrom(d *Decoder) error {
	b, err := d.DecodeFixedOpaque(len(o))
	if err != nil {
		return err
	}
	copy(o[:], b)
	return nil
}

func (o Opaque12) String() string { return hex.EncodeToString(o[:]) }

func (o Opaque32) EncodeTo(e *Encoder) error {
	e.EncodeFixedOpaque(o[:])
	return nil
}

func (o *Opaque32) DecodeFrom(d *Decoder) error {
	b, err := d.DecodeFixedOpaque(len(o))
	if err != nil {
		return err
	}
	copy(o[:], b)
	return nil
}

func (o Opaque32) String() string { return hex.EncodeToString(o[:]) }

// Uint32 and String are wire wrappers for primitives that appear as optionals
// or array elements.
type Uint32 uint32

func (v Uint32) EncodeTo(e *Encoder) error {
	e.EncodeUint32(uint32(v))
	return nil
}

func (v *Uint32) DecodeFrom(d *Decoder) error {
	u, err := d.DecodeUint32()
	*v = Uint32(u)
	return err
}

// Opaque is a variable-length byte blob.
type Opaque []byte

func (v Opaque) EncodeTo(e *Encoder) error {
	return e.EncodeOpaque(v)
}

func (v *Opaque) DecodeFrom(d *Decoder) error {
	b, err := d.DecodeOpaque()
	*v = b
	return err
}

// String is a UTF-8 string on the wire.
type String string

func (v String) EncodeTo(e *Encoder) error {
	return e.EncodeString(string(v))
}

func (v *String) DecodeFrom(d *Decoder) error {
	s, err := d.DecodeString()
	*v = String(s)
	return err
}
