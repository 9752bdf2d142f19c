package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 10000
	minKeyLength  = 16
	minPassLength = 8

	defaultSpecialChars = "!@#$%^&*()-_+="
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations   int
	KeyLength    int
	MinLength    int
	SpecialChars string
}

// Hasher defines a public type used by authcore APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.SpecialChars == "" {
		cfg.SpecialChars = defaultSpecialChars
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Hasher{config: cfg}, nil
}

// GenerateSalt returns a fresh globally unique salt as a hex string. Salts are
// collision-avoidance tokens, not secrets.
func (h *Hasher) GenerateSalt() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Hash computes the deterministic digest of (salt, password). Identical inputs
// always yield identical output.
func (h *Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.config.Iterations, h.config.KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Verify reports whether candidate hashes to storedDigest under salt. The
// digest comparison is constant time.
func (h *Hasher) Verify(storedDigest, salt, candidate string) bool {
	stored, err := hex.DecodeString(storedDigest)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(candidate), []byte(salt), h.config.Iterations, h.config.KeyLength, sha256.New)

	return subtle.ConstantTimeCompare(computed, stored) == 1
}

// ValidateStrength reports whether password satisfies the strength policy:
// minimum length, at least one digit, one lowercase, one uppercase, and one
// character from the configured special set.
func (h *Hasher) ValidateStrength(password string) bool {
	// Minimum length counts characters, not bytes.
	if utf8.RuneCountInString(password) < h.config.MinLength {
		return false
	}

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	special := make(map[rune]struct{}, len(h.config.SpecialChars))
	for _, r := range h.config.SpecialChars {
		special[r] = struct{}{}
	}

	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
		if _, ok := special[r]; ok {
			hasSpecial = true
		}
	}

	return hasDigit && hasLower && hasUpper && hasSpecial
}

func validateConfig(cfg Config) error {
	if cfg.Iterations < minIterations {
		return errors.New("password iterations must be >= 10000")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	if cfg.MinLength < minPassLength {
		return errors.New("password min length must be >= 8")
	}

	return nil
}
