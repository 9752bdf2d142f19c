package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Password PasswordConfig
	Keys     KeysConfig
	Lockout  LockoutConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Iterations   int
	KeyLength    int
	MinLength    int
	SpecialChars string
}

/*
====================================
KEYS CONFIG
====================================
*/

// KeysConfig defines a public type used by authcore APIs.
//
// KeysConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type KeysConfig struct {
	MasterKeyPath string
	KeySize       int
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authcore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Threshold   int
	CodeDigits  int
	CodeTTL     time.Duration // 0 = pending codes never expire
	RedisPrefix string
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig defines a public type used by authcore APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultRole string
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration used by New. Callers may
// adjust individual fields and pass the result to WithConfig.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Iterations:   210000,
			KeyLength:    32,
			MinLength:    8,
			SpecialChars: "!@#$%^&*()-_+=",
		},
		Keys: KeysConfig{
			MasterKeyPath: "master.key",
			KeySize:       32,
		},
		Lockout: LockoutConfig{
			Threshold:   3,
			CodeDigits:  6,
			CodeTTL:     0,
			RedisPrefix: "aclk",
		},
		Account: AccountConfig{
			DefaultRole: "customer",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; copy is sufficient.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Password
	if c.Password.Iterations < 10000 {
		return errors.New("Password Iterations must be >= 10000")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 8 {
		return errors.New("Password MinLength must be >= 8")
	}
	if c.Password.SpecialChars == "" {
		return errors.New("Password SpecialChars must not be empty")
	}

	// Keys
	if c.Keys.MasterKeyPath == "" {
		return errors.New("Keys MasterKeyPath must not be empty")
	}
	if c.Keys.KeySize != 16 && c.Keys.KeySize != 24 && c.Keys.KeySize != 32 {
		return errors.New("Keys KeySize must be 16, 24, or 32")
	}

	// Lockout
	if c.Lockout.Threshold < 1 {
		return errors.New("Lockout Threshold must be >= 1")
	}
	if c.Lockout.CodeDigits < 6 || c.Lockout.CodeDigits > 10 {
		return errors.New("Lockout CodeDigits must be between 6 and 10")
	}
	if c.Lockout.CodeTTL < 0 {
		return errors.New("Lockout CodeTTL must be >= 0")
	}
	if c.Lockout.RedisPrefix == "" {
		return errors.New("Lockout RedisPrefix must not be empty")
	}

	// Account
	if c.Account.DefaultRole == "" {
		return errors.New("Account DefaultRole must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
