package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

func TestSecretBox_SealOpen(t *testing.T) {
	box := secretBox{key: testKey}

	sealed, err := box.seal("AIzaSecret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "AIzaSecret")

	// Fresh nonce per seal.
	again, err := box.seal("AIzaSecret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)

	plain, err := box.open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSecret", plain)
}

func TestSecretBox_WrongKey(t *testing.T) {
	sealed, err := secretBox{key: testKey}.seal("AIzaSecret")
	require.NoError(t, err)

	other := secretBox{key: []byte("fedcba9876543210fedcba9876543210")}
	_, err = other.open(sealed)
	assert.Error(t, err)
}

func TestSecretBox_NoKey(t *testing.T) {
	box := secretBox{}
	assert.False(t, box.enabled())

	_, err := box.seal("x")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = box.open("eA==")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestSecretBox_TruncatedCiphertext(t *testing.T) {
	_, err := secretBox{key: testKey}.open("AAAA")
	assert.Error(t, err)
}
