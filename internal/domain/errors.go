package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrProviderNotFound = fmt.Errorf("provider not found")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrLedgerWrite      = fmt.Errorf("ledger write failed")

	// Resilience errors. ErrAuthInvalid is permanent (401/403); ErrRateLimit
	// and ErrProviderError are transient and eligible for retry. A call that
	// exhausts its retry budget surfaces as ErrProviderError wrapping the
	// last underlying failure.
	ErrAuthInvalid   = fmt.Errorf("authentication failed")
	ErrRateLimit     = fmt.Errorf("rate limit exceeded")
	ErrProviderError = fmt.Errorf("provider error")

	// ErrSecretResolve means the secrets layer itself failed. A missing
	// secret is not an error; resolvers return an empty value for those.
	ErrSecretResolve = fmt.Errorf("secret resolution failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Pipeline.Run")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may
// succeed on retry. Authentication failures and cancellations never are.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthInvalid) || errors.Is(err, ErrSecretResolve) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code.
const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeLedgerWrite      ErrorCode = "LEDGER_WRITE"
	CodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeProviderError    ErrorCode = "PROVIDER_ERROR"
	CodeSecretResolve    ErrorCode = "SECRET_RESOLVE"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidInput:     CodeInvalidInput,
	ErrProviderNotFound: CodeProviderNotFound,
	ErrConfigLoad:       CodeConfigLoad,
	ErrLedgerWrite:      CodeLedgerWrite,
	ErrAuthInvalid:      CodeAuthInvalid,
	ErrRateLimit:        CodeRateLimit,
	ErrProviderError:    CodeProviderError,
	ErrSecretResolve:    CodeSecretResolve,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
