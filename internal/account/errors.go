package account

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates an authentication failure (rejected credentials or code)
	ErrTypeAuth
	// ErrTypeAPI indicates the service answered with a non-success envelope code
	ErrTypeAPI
	// ErrTypeParse indicates a parsing error (malformed JSON, unexpected payload)
	ErrTypeParse
	// ErrTypeRateLimited indicates the local code-request limiter refused the call
	ErrTypeRateLimited
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeAPI:
		return "API Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeRateLimited:
		return "Rate Limited"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ServiceError represents an error that occurred while talking to the
// account service.
type ServiceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	APICode    int       // Service envelope code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// classifyNetworkError analyzes a transport error and returns a more
// specific ServiceError.
func classifyNetworkError(message string, err error) *ServiceError {
	if os.IsTimeout(err) {
		return &ServiceError{
			Type:      ErrTypeTimeout,
			Message:   message,
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ServiceError{
			Type:      ErrTypeNetwork,
			Message:   fmt.Sprintf("%s: DNS resolution failed for %s", message, dnsErr.Name),
			Err:       err,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &ServiceError{
			Type:      ErrTypeNetwork,
			Message:   message + ": connection refused",
			Err:       err,
			Retryable: true,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return classifyNetworkError(message, urlErr.Err)
	}

	return &ServiceError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *ServiceError {
	if classified := classifyNetworkError(message, err); classified != nil {
		return classified
	}
	return &ServiceError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Retryable:  false,
	}
}

// NewAPIError creates an error for a non-success service envelope.
// Envelope codes in the 5xx range are treated as retryable.
func NewAPIError(apiCode int, message string) *ServiceError {
	return &ServiceError{
		Type:      ErrTypeAPI,
		Message:   message,
		APICode:   apiCode,
		Retryable: apiCode >= 500,
	}
}

// NewHTTPError creates an error for an unexpected HTTP status code
func NewHTTPError(statusCode int, message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeAPI,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *ServiceError {
	return &ServiceError{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewRateLimitedError creates an error for a refused code request
func NewRateLimitedError(message string) *ServiceError {
	return &ServiceError{
		Type:      ErrTypeRateLimited,
		Message:   message,
		Retryable: false,
	}
}

// IsNetworkError checks if an error is a network error (including timeouts)
func IsNetworkError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrTypeNetwork || svcErr.Type == ErrTypeTimeout
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrTypeAuth
	}
	return false
}

// IsRateLimited checks if an error came from the local code-request limiter
func IsRateLimited(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrTypeRateLimited
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch svcErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The account service did not respond in time.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • The service may be under load - wait a minute and retry",
		}, "\n")

	case ErrTypeNetwork:
		return strings.Join([]string{
			"Could not reach the account service.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • Verify no firewall or proxy is blocking HTTPS traffic",
		}, "\n")

	case ErrTypeAuth:
		return strings.Join([]string{
			"The account service rejected the request.",
			"Troubleshooting:",
			"  • Verify the email address is registered with the app",
			"  • Request a fresh verification code - codes expire quickly",
			"  • Make sure the code was typed exactly as received",
		}, "\n")

	case ErrTypeRateLimited:
		return "A verification code was requested too recently. Wait before requesting another."

	case ErrTypeAPI:
		return fmt.Sprintf("The account service returned an error (code %d). Wait a moment and retry.", svcErr.APICode)

	case ErrTypeParse:
		return "Failed to parse the service response. The API may have changed - check for an updated release."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
