package usecases

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encryptOpenSSL produces what CryptoJS.AES.encrypt(plaintext, passphrase).toString() returns.
func encryptOpenSSL(t *testing.T, plaintext, passphrase string) string {
	t.Helper()

	salt := make([]byte, openSSLSaltLen)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	key, iv := evpBytesToKey([]byte(passphrase), salt, keyLength, aes.BlockSize)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	padding := aes.BlockSize - len(plaintext)%aes.BlockSize
	data := append([]byte(plaintext), bytes.Repeat([]byte{byte(padding)}, padding)...)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(data, data)

	raw := append([]byte(openSSLMagic), salt...)
	raw = append(raw, data...)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSeedCipherRoundTrip(t *testing.T) {
	c := NewSeedCipher([]byte("secret"), "", testScryptN)

	first, err := c.Encrypt(testMnemonic)
	require.NoError(t, err)
	second, err := c.Encrypt(testMnemonic)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, envelopePrefix))
	assert.NotEqual(t, first, second, "salt and nonce are random")
	assert.NotContains(t, first, "abandon")

	plaintext, err := c.Decrypt(first)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)
}

func TestSeedCipherRejectsForeignCiphertext(t *testing.T) {
	c := NewSeedCipher([]byte("secret"), "", testScryptN)
	other := NewSeedCipher([]byte("another install"), "", testScryptN)

	sealed, err := other.Encrypt(testMnemonic)
	require.NoError(t, err)

	_, err = c.Decrypt(sealed)
	require.ErrorIs(t, err, ErrDecryptionFailure)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, envelopePrefix))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = other.Decrypt(envelopePrefix + base64.StdEncoding.EncodeToString(raw))
	require.ErrorIs(t, err, ErrDecryptionFailure, "tampered envelope")

	for _, garbage := range []string{"", "not base64 at all!", envelopePrefix + "AAAA", "U2FsdGVkX1+garbage"} {
		_, err = c.Decrypt(garbage)
		assert.ErrorIs(t, err, ErrDecryptionFailure, garbage)
	}
}

func TestSeedCipherLegacyFormats(t *testing.T) {
	c := NewSeedCipher([]byte("secret"), "", testScryptN)

	plaintext, err := c.Decrypt(legacyPrefix + base64.StdEncoding.EncodeToString([]byte(testMnemonic)))
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)

	cryptoJS := encryptOpenSSL(t, testMnemonic, LegacyPassphrase)
	require.True(t, strings.HasPrefix(cryptoJS, "U2FsdGVkX1"))

	plaintext, err = c.Decrypt(cryptoJS)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)

	_, err = NewSeedCipher([]byte("secret"), "other passphrase", testScryptN).Decrypt(cryptoJS)
	assert.ErrorIs(t, err, ErrDecryptionFailure)
}
