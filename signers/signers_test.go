package signers

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

func TestFromSecret(t *testing.T) {
	kp, err := keypair.Random()
	require.NoError(t, err)

	s, err := FromSecret(kp.Seed())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), s.Address())
	assert.Equal(t, kp.Address(), s.PublicKey().String())
	assert.Equal(t, strkey.Ed25519PublicKey, s.PublicKey().Type())
	assert.Equal(t, kp.Seed(), s.Seed())

	msg := []byte("transaction hash bytes")
	sig, err := s.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, ed25519.SignatureSize)
	assert.NoError(t, kp.Verify(msg, sig))

	_, err = FromSecret(kp.Address())
	assert.Equal(t, skerrors.INVALID_ENCODING, skerrors.CodeOf(err))
}

func TestRandomSignersDiffer(t *testing.T) {
	a, err := Random()
	require.NoError(t, err)
	b, err := Random()
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), b.Address())
}

func TestFromCallback(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	var seen []byte
	s, err := FromCallback(kp.Address(), func(msg []byte) ([]byte, error) {
		seen = msg
		return kp.Sign(msg)
	})
	require.NoError(t, err)
	assert.True(t, kp.PublicKey().Equal(s.PublicKey()))

	sig, err := s.Sign([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, sig, 64)
	assert.Equal(t, []byte{1, 2, 3}, seen)
}

func TestFromCallbackRejects(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	_, err = FromCallback(kp.Address(), nil)
	assert.True(t, errors.Is(err, skerrors.ErrMissingSignClosure))

	_, err = FromCallback(kp.Seed(), func([]byte) ([]byte, error) { return nil, nil })
	assert.Error(t, err)

	short, err := FromCallback(kp.Address(), func([]byte) ([]byte, error) { return make([]byte, 32), nil })
	require.NoError(t, err)
	_, err = short.Sign([]byte{1})
	assert.True(t, errors.Is(err, skerrors.ErrSigningFailed))

	boom := errors.New("remote signer unavailable")
	failing, err := FromCallback(kp.Address(), func([]byte) ([]byte, error) { return nil, boom })
	require.NoError(t, err)
	_, err = failing.Sign([]byte{1})
	assert.ErrorIs(t, err, boom)
}
