package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	store := NewSecretStore("passphrase", salt)

	ciphertext, err := store.Encrypt("my-api-key")
	require.NoError(t, err)
	assert.NotEqual(t, "my-api-key", ciphertext)
	assert.True(t, IsEncrypted(ciphertext))

	plaintext, err := store.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "my-api-key", plaintext)
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	store := NewSecretStore("passphrase", salt)

	a, err := store.Encrypt("value")
	require.NoError(t, err)
	b, err := store.Encrypt("value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per encryption")
}

func TestDecrypt_PlaintextPassthrough(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	store := NewSecretStore("passphrase", salt)

	// Values stored before encryption was enabled come back unchanged.
	plaintext, err := store.Decrypt("legacy-plain-key")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain-key", plaintext)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	store := NewSecretStore("passphrase", salt)
	ciphertext, err := store.Encrypt("value")
	require.NoError(t, err)

	other := NewSecretStore("different", salt)
	_, err = other.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecrypt_CorruptCiphertext(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	store := NewSecretStore("passphrase", salt)

	_, err = store.Decrypt(EncryptedPrefix + "not!base64!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestGenerateSalt_Unique(t *testing.T) {
	a, err := GenerateSalt()
	require.NoError(t, err)
	b, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}
