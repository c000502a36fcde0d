package network

import (
	"testing"

	gonetwork "github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/errors"
)

func TestHashMatchesReferenceImplementation(t *testing.T) {
	for _, id := range []ID{Public, Test, Futurenet, "Standalone Network ; February 2017"} {
		assert.Equal(t, gonetwork.ID(id.Passphrase()), id.Hash(), id.String())
	}
}

func TestPreset(t *testing.T) {
	id, err := Preset("testnet")
	require.NoError(t, err)
	assert.Equal(t, Test, id)

	id, err = Preset("public")
	require.NoError(t, err)
	assert.Equal(t, Public, id)

	_, err = Preset("moonnet")
	assert.Equal(t, errors.NETWORK_REQUIRED, errors.CodeOf(err))
}

func TestDistinctNetworksHashDifferently(t *testing.T) {
	assert.NotEqual(t, Public.Hash(), Test.Hash())
}
