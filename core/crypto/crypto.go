// Package crypto verifies transaction signatures.
package crypto

import (
	"github.com/stellar/go/keypair"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// VerifySignature reports whether signature is a valid ed25519 signature of
// message by key. key must be an account key (G...).
func VerifySignature(key strkey.StellarKey, message, signature []byte) (bool, error) {
	if key.Type() != strkey.Ed25519PublicKey {
		return false, errors.NewKeyError(errors.UNKNOWN_KEY_TYPE, "signatures are only verified for account keys", nil).
			With("type", key.Type().String())
	}
	kp, err := keypair.ParseAddress(key.String())
	if err != nil {
		return false, errors.NewKeyError(errors.INVALID_ENCODING, "failed to parse public key", err)
	}
	return kp.Verify(message, signature) == nil, nil
}

// VerifyDecorated reports whether sig is key's signature of hash. A hint
// that does not belong to key never verifies.
func VerifyDecorated(key strkey.StellarKey, hash xdr.Hash, sig xdr.DecoratedSignature) (bool, error) {
	if sig.Hint != xdr.HintFor(key) {
		return false, nil
	}
	return VerifySignature(key, hash[:], sig.Signature)
}

// SignedBy returns the keys among candidates that have a valid signature on
// env for the given network, in candidate order.
func SignedBy(env xdr.TransactionEnvelope, id network.ID, candidates ...strkey.StellarKey) ([]strkey.StellarKey, error) {
	hash, err := env.Hash(id)
	if err != nil {
		return nil, err
	}

	var out []strkey.StellarKey
	for _, key := range candidates {
		for _, sig := range env.Signatures() {
			ok, err := VerifyDecorated(key, hash, sig)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, key)
				break
			}
		}
	}
	return out, nil
}
