package signers

import (
	"fmt"

	stellarkit "github.com/marwen-abid/stellarkit-go"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

// SignFunc signs a 32-byte transaction hash and returns the raw ed25519 signature.
type SignFunc func(message []byte) ([]byte, error)

// callbackSigner wraps a custom signing function for external signing services.
type callbackSigner struct {
	publicKey strkey.StellarKey
	signFunc  SignFunc
}

// FromCallback creates a signer from a public key (G...) and an arbitrary
// signing function. Signatures that are not 64 bytes long are rejected.
func FromCallback(publicKey string, signFunc SignFunc) (stellarkit.Signer, error) {
	pub, err := strkey.ParseAddress(publicKey)
	if err != nil {
		return nil, err
	}
	if signFunc == nil {
		return nil, errors.NewSigningError(errors.MISSING_SIGN_CLOSURE, "sign function is nil", nil)
	}
	return &callbackSigner{publicKey: pub, signFunc: signFunc}, nil
}

func (s *callbackSigner) PublicKey() strkey.StellarKey {
	return s.publicKey
}

func (s *callbackSigner) Sign(message []byte) ([]byte, error) {
	sig, err := s.signFunc(message)
	if err != nil {
		return nil, err
	}
	if len(sig) != 64 {
		return nil, errors.NewSigningError(errors.SIGNING_FAILED, fmt.Sprintf("signature is %d bytes, want 64", len(sig)), nil)
	}
	return sig, nil
}
