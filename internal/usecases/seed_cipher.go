package usecases

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

const (
	envelopePrefix = "gcm1:"
	legacyPrefix   = "enc_"
	openSSLMagic   = "Salted__"

	// LegacyPassphrase is the key older clients used with CryptoJS AES.
	LegacyPassphrase = "botly-secure-key-v1"

	DefaultScryptN = 1 << 15
	scryptR        = 8
	scryptP        = 1
	keyLength      = 32
	saltLength     = 16
	openSSLSaltLen = 8
)

// SeedCipher encrypts mnemonics for storage.
//
// New records are sealed with AES-256-GCM under a key derived with scrypt from
// the install secret and a random salt: "gcm1:" + base64(salt | nonce | sealed).
// Records written by older clients are still readable: CryptoJS passphrase
// AES ("U2FsdGVkX1..." base64 of an OpenSSL salted blob) and "enc_" + base64.
type SeedCipher struct {
	secret           []byte
	legacyPassphrase string
	scryptN          int
}

func NewSeedCipher(secret []byte, legacyPassphrase string, scryptN int) *SeedCipher {
	if scryptN <= 1 {
		scryptN = DefaultScryptN
	}
	if legacyPassphrase == "" {
		legacyPassphrase = LegacyPassphrase
	}
	return &SeedCipher{
		secret:           bytes.Clone(secret),
		legacyPassphrase: legacyPassphrase,
		scryptN:          scryptN,
	}
}

func (c *SeedCipher) deriveKey(salt []byte) ([]byte, error) {
	key, err := scrypt.Key(c.secret, salt, c.scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext into a "gcm1:" envelope.
func (c *SeedCipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := c.deriveKey(salt)
	if err != nil {
		return "", err
	}
	defer clear(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, []byte(plaintext), []byte(envelopePrefix))

	return envelopePrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens any supported ciphertext format. Failures wrap ErrDecryptionFailure.
func (c *SeedCipher) Decrypt(ciphertext string) (string, error) {
	var (
		plaintext []byte
		err       error
	)

	switch {
	case ciphertext == "":
		err = errors.New("empty ciphertext")
	case strings.HasPrefix(ciphertext, envelopePrefix):
		plaintext, err = c.openEnvelope(strings.TrimPrefix(ciphertext, envelopePrefix))
	case strings.HasPrefix(ciphertext, legacyPrefix):
		plaintext, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, legacyPrefix))
	default:
		plaintext, err = decryptOpenSSL(ciphertext, c.legacyPassphrase)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailure, err)
	}
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid utf-8", ErrDecryptionFailure)
	}
	return string(plaintext), nil
}

func (c *SeedCipher) openEnvelope(encoded string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if len(blob) < saltLength {
		return nil, errors.New("envelope too short")
	}

	salt := blob[:saltLength]
	key, err := c.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	rest := blob[saltLength:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, errors.New("envelope too short")
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, []byte(envelopePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to open envelope: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// decryptOpenSSL opens the "Salted__" format CryptoJS.AES.encrypt produces for
// passphrase keys: EVP_BytesToKey with MD5, AES-256-CBC, PKCS#7 padding.
func decryptOpenSSL(encoded, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < len(openSSLMagic)+openSSLSaltLen || string(raw[:len(openSSLMagic)]) != openSSLMagic {
		return nil, errors.New("unknown ciphertext format")
	}

	salt := raw[len(openSSLMagic) : len(openSSLMagic)+openSSLSaltLen]
	data := raw[len(openSSLMagic)+openSSLSaltLen:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not a whole number of blocks")
	}

	key, iv := evpBytesToKey([]byte(passphrase), salt, keyLength, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, data)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) ([]byte, []byte) {
	var derived, prev []byte
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("bad padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("bad padding")
		}
	}
	return data[:len(data)-padding], nil
}
