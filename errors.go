package authcore

import "errors"

var (
	// ErrInvalidEmail is returned by Register when the email fails the
	// local@domain.tld shape check.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned by Register when the password fails the
	// strength policy.
	ErrWeakPassword = errors.New("password does not meet strength requirements")
	// ErrDuplicateUser is returned by Register when the username already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned by Authenticate for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Authenticate on a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned by Authenticate when the account is locked
	// and no matching second-factor code was supplied.
	ErrAccountLocked = errors.New("account locked, second-factor code required")
	// ErrTwoFactorCodeInvalid is returned when a supplied second-factor code
	// does not match the outstanding code.
	ErrTwoFactorCodeInvalid = errors.New("invalid second-factor code")
	// ErrLockoutUnavailable indicates the lockout state backend is unreachable.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
	// ErrServiceNotReady indicates the Service was not initialized through
	// Builder.Build.
	ErrServiceNotReady = errors.New("service not initialized")
)
