package keyring

import (
	"bytes"
	"errors"
	"testing"
)

func mustKey(t *testing.T) []byte {
	t.Helper()

	key, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}
	return key
}

func TestGenerateKeySizes(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		key, err := GenerateKey(size)
		if err != nil {
			t.Fatalf("GenerateKey(%d) error: %v", size, err)
		}
		if len(key) != size {
			t.Fatalf("GenerateKey(%d) returned %d bytes", size, len(key))
		}
	}

	if _, err := GenerateKey(17); err == nil {
		t.Fatal("expected invalid key size error")
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	master := mustKey(t)
	userKey := mustKey(t)

	wrapped, err := Wrap(userKey, master)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if bytes.Contains(wrapped, userKey) {
		t.Fatal("wrapped key must not contain the clear user key")
	}

	unwrapped, err := Unwrap(wrapped, master)
	if err != nil {
		t.Fatalf("Unwrap error: %v", err)
	}
	if !bytes.Equal(unwrapped, userKey) {
		t.Fatal("unwrap must return the exact original key bytes")
	}
}

func TestUnwrapTamperedCiphertext(t *testing.T) {
	master := mustKey(t)
	userKey := mustKey(t)

	wrapped, err := Wrap(userKey, master)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}

	wrapped[len(wrapped)-1] ^= 0x01

	if _, err := Unwrap(wrapped, master); !errors.Is(err, ErrKeyUnwrap) {
		t.Fatalf("expected ErrKeyUnwrap, got %v", err)
	}
}

func TestUnwrapWrongKey(t *testing.T) {
	master := mustKey(t)
	other := mustKey(t)
	userKey := mustKey(t)

	wrapped, err := Wrap(userKey, master)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}

	if _, err := Unwrap(wrapped, other); !errors.Is(err, ErrKeyUnwrap) {
		t.Fatalf("expected ErrKeyUnwrap, got %v", err)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	key := mustKey(t)

	ciphertext, err := EncryptField([]byte("bob@x.com"), key)
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}

	plaintext, err := DecryptField(ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptField error: %v", err)
	}
	if string(plaintext) != "bob@x.com" {
		t.Fatalf("unexpected plaintext: %q", plaintext)
	}
}

func TestDecryptFieldFailsClosed(t *testing.T) {
	key := mustKey(t)

	ciphertext, err := EncryptField([]byte("bob@x.com"), key)
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}

	ciphertext[gcmNonceSize] ^= 0x01
	if _, err := DecryptField(ciphertext, key); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}

	if _, err := DecryptField([]byte("short"), key); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption for truncated ciphertext, got %v", err)
	}
}

func TestEncryptFieldFreshNonce(t *testing.T) {
	key := mustKey(t)

	first, err := EncryptField([]byte("same input"), key)
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}
	second, err := EncryptField([]byte("same input"), key)
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Fatal("expected distinct ciphertexts for repeated encryption")
	}
}
