package credential

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := NewCipher("test-master-secret")
	require.NoError(t, err)

	cases := []string{
		"sk-abc123",
		"a",
		"key-with-||-delimiter-||-chars",
		"unicode-ключ-密钥-🔑",
		"  leading and trailing spaces  ",
		string(make([]byte, 1024)),
	}

	for _, plaintext := range cases {
		sealed, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		got, err := cipher.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	cipher, err := NewCipher("test-master-secret")
	require.NoError(t, err)

	a, err := cipher.Encrypt("same-plaintext")
	require.NoError(t, err)
	b, err := cipher.Encrypt("same-plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptFailsClosedOnCorruption(t *testing.T) {
	cipher, err := NewCipher("test-master-secret")
	require.NoError(t, err)

	sealed, err := cipher.Encrypt("sk-very-secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)

	// Flipping any single byte - nonce, ciphertext or tag - must fail, never
	// return altered plaintext silently.
	for i := range raw {
		corrupted := make([]byte, len(raw))
		copy(corrupted, raw)
		corrupted[i] ^= 0xFF

		_, err := cipher.Decrypt(base64.StdEncoding.EncodeToString(corrupted))
		require.ErrorIs(t, err, ErrCorruptCiphertext, "byte %d flip must fail closed", i)
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	cipher, err := NewCipher("test-master-secret")
	require.NoError(t, err)

	for _, input := range []string{
		"",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("short")),
	} {
		_, err := cipher.Decrypt(input)
		assert.ErrorIs(t, err, ErrCorruptCiphertext, "input %q", input)
	}
}

func TestDifferentSecretsCannotDecrypt(t *testing.T) {
	a, err := NewCipher("secret-a")
	require.NoError(t, err)
	b, err := NewCipher("secret-b")
	require.NoError(t, err)

	sealed, err := a.Encrypt("sk-abc123")
	require.NoError(t, err)

	_, err = b.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrCorruptCiphertext)
}

func TestEmptyMasterSecretRejected(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
