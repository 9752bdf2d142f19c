package password

import (
	"testing"
)

func secureConfig() Config {
	return Config{
		Iterations:   10000,
		KeyLength:    32,
		MinLength:    8,
		SpecialChars: "!@#$%^&*()-_+=",
	}
}

func TestHashDeterministic(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	salt := hasher.GenerateSalt()
	first := hasher.Hash("P@ssw0rd-Ascii", salt)
	second := hasher.Hash("P@ssw0rd-Ascii", salt)

	if first != second {
		t.Fatalf("expected identical digests, got %s and %s", first, second)
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	salt := hasher.GenerateSalt()
	digest := hasher.Hash("P@ssw0rd-Ascii", salt)

	if !hasher.Verify(digest, salt, "P@ssw0rd-Ascii") {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	salt := hasher.GenerateSalt()
	digest := hasher.Hash("correct-password", salt)

	if hasher.Verify(digest, salt, "wrong-password") {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifySingleCharacterChange(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	salt := hasher.GenerateSalt()
	digest := hasher.Hash("Aa1!aaaa", salt)

	if hasher.Verify(digest, salt, "Aa1!aaab") {
		t.Fatal("expected single-character change to fail verification")
	}
}

func TestDifferentSaltsDifferentDigests(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	saltA := hasher.GenerateSalt()
	saltB := hasher.GenerateSalt()
	if saltA == saltB {
		t.Fatal("expected unique salts")
	}

	if hasher.Hash("Aa1!aaaa", saltA) == hasher.Hash("Aa1!aaaa", saltB) {
		t.Fatal("expected different digests under different salts")
	}
}

func TestVerifyRejectsMalformedDigest(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if hasher.Verify("not-hex", hasher.GenerateSalt(), "Aa1!aaaa") {
		t.Fatal("expected malformed stored digest to fail verification")
	}
}

func TestValidateStrength(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "Aa1!aaaa", true},
		{"too short", "Aa1!aaa", false},
		{"multibyte runes do not pad the length", "Aa1!éé", false},
		{"multibyte at minimum length", "Aa1!éééé", true},
		{"missing digit", "Aa!!aaaa", false},
		{"missing lowercase", "AA1!AAAA", false},
		{"missing uppercase", "aa1!aaaa", false},
		{"missing special", "Aa1aaaaa", false},
		{"special not in set", "Aa1?aaaa", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasher.ValidateStrength(tc.password); got != tc.want {
				t.Fatalf("ValidateStrength(%q) = %v, want %v", tc.password, got, tc.want)
			}
		})
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low iterations", Config{Iterations: 100, KeyLength: 32, MinLength: 8}},
		{"short key", Config{Iterations: 10000, KeyLength: 8, MinLength: 8}},
		{"short minimum", Config{Iterations: 10000, KeyLength: 32, MinLength: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHasher(tc.cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}
