package signers

import (
	"github.com/stellar/go/keypair"

	stellarkit "github.com/marwen-abid/stellarkit-go"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/strkey"
)

// KeypairSigner signs with an in-memory ed25519 keypair.
type KeypairSigner struct {
	kp  *keypair.Full
	pub strkey.StellarKey
}

// FromSecret creates a signer from a Stellar secret seed (S...).
func FromSecret(secret string) (*KeypairSigner, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, errors.NewKeyError(errors.INVALID_ENCODING, "invalid secret seed", err)
	}
	return fromFull(kp)
}

// Random creates a signer for a freshly generated keypair.
func Random() (*KeypairSigner, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, errors.NewKeyError(errors.INVALID_ENCODING, "failed to generate keypair", err)
	}
	return fromFull(kp)
}

func fromFull(kp *keypair.Full) (*KeypairSigner, error) {
	pub, err := strkey.ParseAddress(kp.Address())
	if err != nil {
		return nil, err
	}
	return &KeypairSigner{kp: kp, pub: pub}, nil
}

// PublicKey returns the account key of this signer.
func (s *KeypairSigner) PublicKey() strkey.StellarKey {
	return s.pub
}

// Address returns the G... form of the public key.
func (s *KeypairSigner) Address() string {
	return s.kp.Address()
}

// Seed returns the S... secret seed.
func (s *KeypairSigner) Seed() string {
	return s.kp.Seed()
}

// Sign signs message with the private key.
func (s *KeypairSigner) Sign(message []byte) ([]byte, error) {
	return s.kp.Sign(message)
}

var _ stellarkit.Signer = (*KeypairSigner)(nil)
