package authcore

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/techcart/authcore/credstore"
	"github.com/techcart/authcore/internal"
	"github.com/techcart/authcore/keyring"
	"github.com/techcart/authcore/password"
)

// Matches local@domain.tld shaped addresses. Deliverability is the
// notifier's problem, not ours.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// Service defines a public type used by authcore APIs.
//
// Service instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Service struct {
	config   Config
	store    credstore.Store
	lockouts failedAttemptStore
	notifier Notifier
	hasher   *password.Hasher
	keys     *keyring.Manager
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Service) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// Register creates a credential record and returns its non-sensitive
// projection. The clear password and the user data key never leave this call.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (UserInfo, error) {
	if s == nil || s.store == nil {
		return UserInfo{}, ErrServiceNotReady
	}

	// Duplicate usernames outrank validation errors. The store's Add is
	// still the authoritative check under concurrent registration.
	if _, err := s.store.Get(ctx, req.Username); err == nil {
		s.metricInc(MetricRegisterDuplicate)
		s.emitAudit(ctx, auditEventRegisterDuplicate, false, req.Username, ErrDuplicateUser, nil)
		return UserInfo{}, ErrDuplicateUser
	} else if !errors.Is(err, credstore.ErrNotFound) {
		return UserInfo{}, err
	}

	if !emailPattern.MatchString(req.Email) {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, ErrInvalidEmail, nil)
		return UserInfo{}, ErrInvalidEmail
	}
	if !s.hasher.ValidateStrength(req.Password) {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, ErrWeakPassword, nil)
		return UserInfo{}, ErrWeakPassword
	}

	role := req.Role
	if role == "" {
		role = s.config.Account.DefaultRole
	}

	salt := s.hasher.GenerateSalt()
	digest := s.hasher.Hash(req.Password, salt)

	masterKey, err := s.keys.MasterKey()
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, nil)
		return UserInfo{}, err
	}
	userKey, err := keyring.GenerateKey(s.config.Keys.KeySize)
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, nil)
		return UserInfo{}, err
	}
	encryptedEmail, err := keyring.EncryptField([]byte(req.Email), userKey)
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, nil)
		return UserInfo{}, err
	}
	wrappedKey, err := keyring.Wrap(userKey, masterKey)
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, nil)
		return UserInfo{}, err
	}

	record := &credstore.Record{
		Username:       req.Username,
		PasswordHash:   digest,
		Salt:           salt,
		Role:           role,
		EncryptedEmail: encryptedEmail,
		WrappedUserKey: wrappedKey,
		CreatedAt:      time.Now().Unix(),
	}

	if err := s.store.Add(ctx, record); err != nil {
		if errors.Is(err, credstore.ErrDuplicateUser) {
			s.metricInc(MetricRegisterDuplicate)
			s.emitAudit(ctx, auditEventRegisterDuplicate, false, req.Username, ErrDuplicateUser, nil)
			return UserInfo{}, ErrDuplicateUser
		}
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, req.Username, err, nil)
		return UserInfo{}, err
	}

	s.metricInc(MetricRegisterSuccess)
	s.emitAudit(ctx, auditEventRegisterSuccess, true, req.Username, nil, func() map[string]string {
		return map[string]string{"role": role}
	})
	return UserInfo{
		Username:  record.Username,
		Role:      record.Role,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Authenticate(ctx context.Context, username, pass string) error {
	return s.authenticate(ctx, username, pass, "", false)
}

// AuthenticateWithCode verifies password and the pending security code for a
// locked account. On an unlocked account the code is ignored and the call
// behaves like Authenticate.
//
// AuthenticateWithCode may return an error when input validation, dependency calls, or security checks fail.
// AuthenticateWithCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) AuthenticateWithCode(ctx context.Context, username, pass, code string) error {
	return s.authenticate(ctx, username, pass, code, true)
}

func (s *Service) authenticate(ctx context.Context, username, pass, code string, haveCode bool) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}

	start := time.Now()
	defer func() {
		if s.metrics.LatencyEnabled() {
			s.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}
	}()

	record, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			s.metricInc(MetricAuthFailure)
			s.emitAudit(ctx, auditEventAuthFailure, false, username, ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return err
	}

	lock, err := s.lockouts.Get(ctx, username)
	if err != nil {
		return err
	}

	if lock.locked() {
		return s.authenticateLocked(ctx, record, lock, pass, code, haveCode)
	}

	if s.hasher.Verify(record.PasswordHash, record.Salt, pass) {
		if lock != nil {
			// Consecutive failure counting resets on any success.
			if err := s.lockouts.Reset(ctx, username); err != nil {
				log.Printf("authcore: failed-attempt reset for %s: %v", username, err)
			}
		}
		s.metricInc(MetricAuthSuccess)
		s.emitAudit(ctx, auditEventAuthSuccess, true, username, nil, nil)
		return nil
	}

	updated, didLock, err := s.lockouts.RecordFailure(
		ctx,
		username,
		s.config.Lockout.Threshold,
		s.config.Lockout.CodeTTL,
		func() (string, error) {
			return internal.NewSecurityCode(s.config.Lockout.CodeDigits)
		},
	)
	if err != nil {
		return err
	}

	if didLock {
		s.metricInc(MetricAccountLocked)
		s.emitAudit(ctx, auditEventAccountLocked, false, username, ErrAccountLocked, func() map[string]string {
			return map[string]string{"state": StateLocked.String()}
		})
		s.deliverCode(ctx, record, updated.Code)
		return ErrAccountLocked
	}

	s.metricInc(MetricAuthFailure)
	s.emitAudit(ctx, auditEventAuthFailure, false, username, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"state": StateFlagged.String()}
	})
	return ErrInvalidCredentials
}

func (s *Service) authenticateLocked(
	ctx context.Context,
	record *credstore.Record,
	lock *lockoutRecord,
	pass, code string,
	haveCode bool,
) error {
	username := record.Username

	// No attempt counting past this point; the account already holds its
	// one outstanding code and a wrong guess must not mint another.
	if !haveCode {
		s.metricInc(MetricAuthFailure)
		s.emitAudit(ctx, auditEventAuthFailure, false, username, ErrAccountLocked, nil)
		return ErrAccountLocked
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(lock.Code)) != 1 {
		s.metricInc(MetricCodeRejected)
		s.emitAudit(ctx, auditEventCodeRejected, false, username, ErrTwoFactorCodeInvalid, nil)
		return ErrTwoFactorCodeInvalid
	}

	if !s.hasher.Verify(record.PasswordHash, record.Salt, pass) {
		s.metricInc(MetricAuthFailure)
		s.emitAudit(ctx, auditEventAuthFailure, false, username, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if err := s.lockouts.Reset(ctx, username); err != nil {
		return err
	}

	s.metricInc(MetricCodeAccepted)
	s.metricInc(MetricAuthSuccess)
	s.emitAudit(ctx, auditEventCodeAccepted, true, username, nil, nil)
	s.emitAudit(ctx, auditEventAuthSuccess, true, username, nil, nil)
	return nil
}

// deliverCode routes the security code to the account's decrypted email.
// Delivery is best effort: a failure is logged and audited but never unlocks
// the account or aborts the lockout.
func (s *Service) deliverCode(ctx context.Context, record *credstore.Record, code string) {
	email, err := s.decryptEmail(record)
	if err != nil {
		log.Printf("authcore: code delivery address for %s unavailable: %v", record.Username, err)
		s.emitAudit(ctx, auditEventCodeDelivered, false, record.Username, err, nil)
		return
	}

	if err := s.notifier.Deliver(ctx, email, code); err != nil {
		log.Printf("authcore: code delivery for %s failed: %v", record.Username, err)
		s.emitAudit(ctx, auditEventCodeDelivered, false, record.Username, err, nil)
		return
	}

	s.metricInc(MetricCodeDelivered)
	s.emitAudit(ctx, auditEventCodeDelivered, true, record.Username, nil, nil)
}

// Email decrypts and returns the account's email address. The clear address
// exists only in the returned value, never in the store.
//
// Email may return an error when input validation, dependency calls, or security checks fail.
// Email does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Email(ctx context.Context, username string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrServiceNotReady
	}

	record, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	email, err := s.decryptEmail(record)
	if err != nil {
		s.emitAudit(ctx, auditEventEmailAccess, false, username, err, nil)
		return "", err
	}

	s.emitAudit(ctx, auditEventEmailAccess, true, username, nil, nil)
	return email, nil
}

func (s *Service) decryptEmail(record *credstore.Record) (string, error) {
	masterKey, err := s.keys.MasterKey()
	if err != nil {
		return "", err
	}

	userKey, err := keyring.Unwrap(record.WrappedUserKey, masterKey)
	if err != nil {
		s.metricInc(MetricKeyUnwrapFailure)
		return "", err
	}

	email, err := keyring.DecryptField(record.EncryptedEmail, userKey)
	if err != nil {
		s.metricInc(MetricKeyUnwrapFailure)
		return "", err
	}
	return string(email), nil
}

// User returns the non-sensitive projection of a credential record.
//
// User may return an error when input validation, dependency calls, or security checks fail.
// User does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) User(ctx context.Context, username string) (UserInfo, error) {
	if s == nil || s.store == nil {
		return UserInfo{}, ErrServiceNotReady
	}

	record, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return UserInfo{}, ErrUserNotFound
		}
		return UserInfo{}, err
	}

	return UserInfo{
		Username:  record.Username,
		Role:      record.Role,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Status returns the lockout position of a username. Unknown usernames
// report StateActive; Status does not leak account existence.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Status(ctx context.Context, username string) (AccountStatus, error) {
	if s == nil || s.lockouts == nil {
		return AccountStatus{}, ErrServiceNotReady
	}

	lock, err := s.lockouts.Get(ctx, username)
	if err != nil {
		return AccountStatus{}, err
	}

	switch {
	case lock.locked():
		return AccountStatus{State: StateLocked, FailedAttempts: int(lock.Attempts)}, nil
	case lock != nil && lock.Attempts > 0:
		return AccountStatus{State: StateFlagged, FailedAttempts: int(lock.Attempts)}, nil
	default:
		return AccountStatus{State: StateActive}, nil
	}
}
