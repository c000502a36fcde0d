// Package strkey converts between raw 32-byte Stellar keys and their
// checksummed text form.
//
// The text form of a key is base32(type ‖ key ‖ crc16(type ‖ key)) without
// padding, always 56 characters long and decoding to exactly 35 bytes. The
// CRC16 is the XModem variant, appended little-endian.
//
// This package is the only place where human-facing account identifiers are
// turned into raw key bytes, so decoding is strict: the decoded length, the
// checksum, the type byte and the canonical re-encoding are all verified.
package strkey

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"

	"github.com/sigurn/crc16"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// KeyType is the version byte that prefixes an encoded key. Its value is
// chosen so the first base32 character of the text form is mnemonic.
type KeyType byte

const (
	Ed25519PublicKey  KeyType = 6 << 3  // G
	Ed25519SecretSeed KeyType = 18 << 3 // S
	PreAuthTx         KeyType = 19 << 3 // T
	Sha256Hash        KeyType = 23 << 3 // X
)

const (
	// KeyLength is the size of a raw key.
	KeyLength = 32
	// EncodedLength is the number of characters in a text-form key.
	EncodedLength = 56

	decodedLength = 1 + KeyLength + 2
)

var (
	encoding = base32.StdEncoding.WithPadding(base32.NoPadding)
	xmodem   = crc16.MakeTable(crc16.CRC16_XMODEM)
)

// checksum returns the little-endian CRC16-XModem of b.
func checksum(b []byte) []byte {
	return binary.LittleEndian.AppendUint16(nil, crc16.Checksum(b, xmodem))
}

// Valid reports whether t is one of the known key types.
func (t KeyType) Valid() bool {
	switch t {
	case Ed25519PublicKey, Ed25519SecretSeed, PreAuthTx, Sha256Hash:
		return true
	}
	return false
}

func (t KeyType) String() string {
	switch t {
	case Ed25519PublicKey:
		return "ed25519PublicKey"
	case Ed25519SecretSeed:
		return "ed25519SecretSeed"
	case PreAuthTx:
		return "preAuthTx"
	case Sha256Hash:
		return "sha256Hash"
	}
	return fmt.Sprintf("KeyType(%d)", byte(t))
}

// Encode returns the text form of key tagged with t. key must be exactly 32 bytes.
func Encode(t KeyType, key []byte) (string, error) {
	if !t.Valid() {
		return "", skerrors.NewKeyError(skerrors.UNKNOWN_KEY_TYPE, fmt.Sprintf("unknown key type %d", byte(t)), nil)
	}
	if len(key) != KeyLength {
		return "", skerrors.NewKeyError(skerrors.INVALID_LENGTH, fmt.Sprintf("key must be %d bytes, got %d", KeyLength, len(key)), nil)
	}

	payload := make([]byte, 0, decodedLength)
	payload = append(payload, byte(t))
	payload = append(payload, key...)
	payload = append(payload, checksum(payload)...)

	return encoding.EncodeToString(payload), nil
}

// MustEncode is like Encode but panics on error. It is intended for
// constants and tests.
func MustEncode(t KeyType, key []byte) string {
	s, err := Encode(t, key)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode parses a text-form key and returns its type and raw bytes.
func Decode(s string) (KeyType, [KeyLength]byte, error) {
	var key [KeyLength]byte

	raw, err := encoding.DecodeString(s)
	if err != nil {
		return 0, key, skerrors.NewKeyError(skerrors.INVALID_ENCODING, "invalid base32", err)
	}
	if len(raw) != decodedLength {
		return 0, key, skerrors.NewKeyError(
			skerrors.INVALID_ENCODING,
			fmt.Sprintf("decoded key must be %d bytes, got %d", decodedLength, len(raw)),
			nil,
		)
	}
	// reject alternate spellings that decode to the same bytes
	if encoding.EncodeToString(raw) != s {
		return 0, key, skerrors.NewKeyError(skerrors.INVALID_ENCODING, "non-canonical base32", nil)
	}

	body, sum := raw[:1+KeyLength], raw[1+KeyLength:]
	if want := checksum(body); sum[0] != want[0] || sum[1] != want[1] {
		return 0, key, skerrors.NewKeyError(
			skerrors.CHECKSUM_MISMATCH,
			fmt.Sprintf("checksum mismatch: have %x, want %x", sum, want),
			nil,
		)
	}

	t := KeyType(body[0])
	if !t.Valid() {
		return 0, key, skerrors.NewKeyError(skerrors.UNKNOWN_KEY_TYPE, fmt.Sprintf("unknown key type %d", body[0]), nil)
	}

	copy(key[:], body[1:])
	return t, key, nil
}

// DecodeAs parses s and requires its type to be expected.
func DecodeAs(expected KeyType, s string) ([KeyLength]byte, error) {
	t, key, err := Decode(s)
	if err != nil {
		return key, err
	}
	if t != expected {
		return [KeyLength]byte{}, skerrors.NewKeyError(
			skerrors.UNKNOWN_KEY_TYPE,
			fmt.Sprintf("expected %s, got %s", expected, t),
			nil,
		)
	}
	return key, nil
}

// IsValid reports whether s is a well-formed key of type t.
func IsValid(t KeyType, s string) bool {
	_, err := DecodeAs(t, s)
	return err == nil
}
