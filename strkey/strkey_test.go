package strkey

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	gostrkey "github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

const zeroAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"

func TestEncodeZeroKey(t *testing.T) {
	s, err := Encode(Ed25519PublicKey, make([]byte, KeyLength))
	require.NoError(t, err)
	assert.Equal(t, zeroAccount, s)
	assert.Len(t, s, EncodedLength)
}

func TestRoundTripAllTypes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, KeyLength)
	prefixes := map[KeyType]byte{
		Ed25519PublicKey:  'G',
		Ed25519SecretSeed: 'S',
		PreAuthTx:         'T',
		Sha256Hash:        'X',
	}
	for typ, prefix := range prefixes {
		t.Run(typ.String(), func(t *testing.T) {
			s, err := Encode(typ, raw)
			require.NoError(t, err)
			assert.Equal(t, prefix, s[0])

			// deterministic
			again, err := Encode(typ, raw)
			require.NoError(t, err)
			assert.Equal(t, s, again)

			gotType, key, err := Decode(s)
			require.NoError(t, err)
			assert.Equal(t, typ, gotType)
			assert.Equal(t, raw, key[:])
		})
	}
}

func TestMatchesReferenceImplementation(t *testing.T) {
	for i := 0; i < 16; i++ {
		kp, err := keypair.Random()
		require.NoError(t, err)

		raw, err := gostrkey.Decode(gostrkey.VersionByteAccountID, kp.Address())
		require.NoError(t, err)

		s, err := Encode(Ed25519PublicKey, raw)
		require.NoError(t, err)
		assert.Equal(t, kp.Address(), s)

		seedRaw, err := gostrkey.Decode(gostrkey.VersionByteSeed, kp.Seed())
		require.NoError(t, err)
		seed, err := Encode(Ed25519SecretSeed, seedRaw)
		require.NoError(t, err)
		assert.Equal(t, kp.Seed(), seed)
	}
}

func TestDecodeRejects(t *testing.T) {
	valid := MustEncode(Ed25519PublicKey, bytes.Repeat([]byte{1}, KeyLength))

	corrupted := []byte(valid)
	if corrupted[10] == 'A' {
		corrupted[10] = 'B'
	} else {
		corrupted[10] = 'A'
	}

	unknownType := make([]byte, 0, decodedLength)
	unknownType = append(unknownType, 1)
	unknownType = append(unknownType, make([]byte, KeyLength)...)
	unknownType = append(unknownType, crcFor(unknownType)...)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", skerrors.ErrInvalidEncoding},
		{"truncated", valid[:55], skerrors.ErrInvalidEncoding},
		{"too long", valid + "AAAA", skerrors.ErrInvalidEncoding},
		{"not base32", "G1" + valid[2:], skerrors.ErrInvalidEncoding},
		{"lowercase", string(bytes.ToLower([]byte(valid))), skerrors.ErrInvalidEncoding},
		{"checksum", string(corrupted), skerrors.ErrChecksumMismatch},
		{"unknown type", encoding.EncodeToString(unknownType), skerrors.ErrUnknownKeyType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEncodeRejects(t *testing.T) {
	_, err := Encode(Ed25519PublicKey, make([]byte, 31))
	assert.True(t, errors.Is(err, skerrors.ErrInvalidLength))

	_, err = Encode(KeyType(1), make([]byte, KeyLength))
	assert.True(t, errors.Is(err, skerrors.ErrUnknownKeyType))
}

func TestDecodeAs(t *testing.T) {
	_, err := DecodeAs(Ed25519SecretSeed, zeroAccount)
	assert.True(t, errors.Is(err, skerrors.ErrUnknownKeyType))
	assert.True(t, IsValid(Ed25519PublicKey, zeroAccount))
	assert.False(t, IsValid(PreAuthTx, zeroAccount))
}

func TestStellarKey(t *testing.T) {
	raw := make([]byte, KeyLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	k, err := New(raw, Ed25519PublicKey)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{28, 29, 30, 31}, k.Hint())
	assert.Equal(t, raw, k.Bytes())

	parsed, err := ParseAddress(k.String())
	require.NoError(t, err)
	assert.True(t, k.Equal(parsed))

	text, err := k.MarshalText()
	require.NoError(t, err)
	var back StellarKey
	require.NoError(t, back.UnmarshalText(text))
	assert.True(t, k.Equal(back))

	_, err = New(raw[:31], Ed25519PublicKey)
	assert.True(t, errors.Is(err, skerrors.ErrInvalidLength))
	assert.True(t, StellarKey{}.IsZero())
}

func crcFor(b []byte) []byte {
	return checksum(b)
}

func TestChecksumXModem(t *testing.T) {
	// published check value for CRC-16/XMODEM, 0x31c3
	assert.Equal(t, []byte{0xc3, 0x31}, checksum([]byte("123456789")))
}
