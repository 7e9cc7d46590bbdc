package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found
// (e.g. no quote for a symbol, no FX rate for a pair).
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks or that
// a provider payload could not be parsed into a canonical shape.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAuth indicates bad credentials or an expired/rejected provider token.
var ErrAuth = errors.New("authentication failed")

// ErrRateLimit indicates that a provider signalled throttling.
var ErrRateLimit = errors.New("rate limit exceeded")

// ErrTransient indicates a network failure or a provider-side 5xx.
var ErrTransient = errors.New("transient provider error")

// Kind classifies an error into one of the sync error categories. Callers
// branch on Kind, never on message text.
type Kind string

const (
	KindNone       Kind = ""
	KindAuth       Kind = "AUTH"
	KindRateLimit  Kind = "RATE_LIMIT"
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION"
	KindTransient  Kind = "TRANSIENT"
)

func (k Kind) sentinel() error {
	switch k {
	case KindAuth:
		return ErrAuth
	case KindRateLimit:
		return ErrRateLimit
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindTransient:
		return ErrTransient
	default:
		return nil
	}
}

// ProviderError is a typed error raised by a source client. It carries the
// provider's own message and the HTTP status (0 for logical errors embedded
// in 200 bodies).
type ProviderError struct {
	Source     string
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Source, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Unwrap maps the error back to its kind sentinel so ProviderError
// participates in errors.Is chains.
func (e *ProviderError) Unwrap() error {
	return e.Kind.sentinel()
}

// NewProviderError builds a ProviderError with an explicit kind.
func NewProviderError(source string, kind Kind, statusCode int, message string) *ProviderError {
	return &ProviderError{Source: source, Kind: kind, StatusCode: statusCode, Message: message}
}

// FromStatusCode derives the error kind from an HTTP status code.
func FromStatusCode(source string, statusCode int, message string) *ProviderError {
	var kind Kind
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = KindAuth
	case statusCode == http.StatusTooManyRequests:
		kind = KindRateLimit
	case statusCode == http.StatusNotFound:
		kind = KindNotFound
	case statusCode >= 400 && statusCode < 500:
		kind = KindValidation
	default:
		kind = KindTransient
	}
	return &ProviderError{Source: source, Kind: kind, StatusCode: statusCode, Message: message}
}

// KindOf reports the kind of err, unwrapping as needed. Unknown errors
// classify as transient so that a source step fails safe.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrRateLimit):
		return KindRateLimit
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindTransient
	}
}
