// Package network identifies the Stellar network a transaction is bound to.
//
// A network is identified by its passphrase. The SHA-256 of the passphrase
// prefixes every signing payload, so a transaction signed for one network can
// never be replayed on another.
package network

import (
	"crypto/sha256"
	"fmt"

	"github.com/stellar/go/network"

	"github.com/marwen-abid/stellarkit-go/errors"
)

// ID is a network passphrase. Two IDs are equal when their strings are equal.
type ID string

const (
	// Public is the Stellar public network.
	Public ID = network.PublicNetworkPassphrase
	// Test is the Stellar test network.
	Test ID = network.TestNetworkPassphrase
	// Futurenet is the Stellar future network used for protocol previews.
	Futurenet ID = network.FutureNetworkPassphrase
)

var presets = map[string]ID{
	"public":    Public,
	"pubnet":    Public,
	"mainnet":   Public,
	"test":      Test,
	"testnet":   Test,
	"futurenet": Futurenet,
}

// Preset returns the network registered under name (e.g. "public", "testnet").
func Preset(name string) (ID, error) {
	id, ok := presets[name]
	if !ok {
		return "", errors.NewModelError(errors.NETWORK_REQUIRED, fmt.Sprintf("unknown network preset %q", name), nil).
			With("preset", name)
	}
	return id, nil
}

// Hash returns SHA-256(passphrase), the value that seeds signing payloads.
func (id ID) Hash() [32]byte {
	return sha256.Sum256([]byte(id))
}

// Passphrase returns the raw passphrase.
func (id ID) Passphrase() string { return string(id) }

func (id ID) String() string { return string(id) }
