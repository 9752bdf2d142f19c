package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const gcmNonceSize = 12

var (
	// ErrKeyUnwrap indicates a wrapped key failed authentication: the
	// ciphertext was tampered with or the wrong wrapping key was supplied.
	ErrKeyUnwrap = errors.New("key unwrap failed")
	// ErrDecryption indicates a personal-data field failed authentication
	// during decryption.
	ErrDecryption = errors.New("field decryption failed")
	// ErrKeyStorage indicates the master key file could not be read or
	// written. A missing or corrupt master key invalidates the whole
	// hierarchy, so callers must not retry automatically.
	ErrKeyStorage = errors.New("key storage failure")
)

// GenerateKey returns a fresh cryptographically random symmetric key of size
// bytes. Size must be a valid AES key length (16, 24, or 32).
func GenerateKey(size int) ([]byte, error) {
	switch size {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key size %d", size)
	}

	key := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Wrap encrypts payloadKey under wrappingKey with AES-GCM. The returned
// ciphertext carries its own nonce and authentication tag.
func Wrap(payloadKey, wrappingKey []byte) ([]byte, error) {
	return seal(payloadKey, wrappingKey)
}

// Unwrap reverses Wrap. Tampered ciphertext or a wrong wrapping key fails
// with ErrKeyUnwrap.
func Unwrap(ciphertext, wrappingKey []byte) ([]byte, error) {
	key, err := open(ciphertext, wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
	}
	return key, nil
}

// EncryptField encrypts a personal-data field under key using the same
// AES-GCM scheme as Wrap.
func EncryptField(plaintext, key []byte) ([]byte, error) {
	return seal(plaintext, key)
}

// DecryptField reverses EncryptField. Tampered ciphertext or a wrong key
// fails with ErrDecryption.
func DecryptField(ciphertext, key []byte) ([]byte, error) {
	plaintext, err := open(ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return plaintext, nil
}

func seal(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// nonce || sealed payload: the ciphertext is self-contained.
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(ciphertext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcmNonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcmNonceSize], ciphertext[gcmNonceSize:]
	return aesgcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
