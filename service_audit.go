package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/techcart/authcore/credstore"
	"github.com/techcart/authcore/keyring"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterFailure   = "register_failure"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventAuthSuccess       = "auth_success"
	auditEventAuthFailure       = "auth_failure"
	auditEventAccountLocked     = "account_locked"
	auditEventCodeDelivered     = "code_delivered"
	auditEventCodeAccepted      = "code_accepted"
	auditEventCodeRejected      = "code_rejected"
	auditEventEmailAccess       = "email_access"
)

// AuditErrorCode defines a public type used by authcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidEmail       AuditErrorCode = "invalid_email"
	auditErrWeakPassword       AuditErrorCode = "weak_password"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrCodeInvalid        AuditErrorCode = "code_invalid"
	auditErrKeyStorage         AuditErrorCode = "key_storage"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (s *Service) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidEmail):
		return auditErrInvalidEmail
	case errors.Is(err, ErrWeakPassword):
		return auditErrWeakPassword
	case errors.Is(err, ErrDuplicateUser):
		return auditErrDuplicate
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrTwoFactorCodeInvalid):
		return auditErrCodeInvalid
	case errors.Is(err, keyring.ErrKeyStorage),
		errors.Is(err, keyring.ErrKeyUnwrap),
		errors.Is(err, keyring.ErrDecryption):
		return auditErrKeyStorage
	case errors.Is(err, ErrLockoutUnavailable),
		errors.Is(err, credstore.ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
