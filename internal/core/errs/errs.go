// Package errs normalizes provider, wallet and codec failures into a single
// error shape with a stable Kind.
//
// Adapter boundaries call Normalize exactly once per failing operation.
// Everything below the boundary wraps with fmt.Errorf and %w as usual.
package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies a normalized failure.
type Kind string

const (
	KindMalformedIdentifier     Kind = "MalformedIdentifier"
	KindUnsupportedNetwork      Kind = "UnsupportedNetwork"
	KindInvalidReference        Kind = "InvalidReference"
	KindInvalidDerivationParams Kind = "InvalidDerivationParams"
	KindProviderUnavailable     Kind = "ProviderUnavailable"
	KindAccountNotFound         Kind = "AccountNotFound"
	KindFeeDataUnavailable      Kind = "FeeDataUnavailable"
	KindGasEstimationFailed     Kind = "GasEstimationFailed"
	KindWalletUnavailable       Kind = "WalletUnavailable"
	KindUserRejected            Kind = "UserRejected"
	KindSigningFailed           Kind = "SigningFailed"
	KindBroadcastFailed         Kind = "BroadcastFailed"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrMalformedIdentifier     = &Error{Kind: KindMalformedIdentifier}
	ErrUnsupportedNetwork      = &Error{Kind: KindUnsupportedNetwork}
	ErrInvalidReference        = &Error{Kind: KindInvalidReference}
	ErrInvalidDerivationParams = &Error{Kind: KindInvalidDerivationParams}
	ErrProviderUnavailable     = &Error{Kind: KindProviderUnavailable}
	ErrAccountNotFound         = &Error{Kind: KindAccountNotFound}
	ErrFeeDataUnavailable      = &Error{Kind: KindFeeDataUnavailable}
	ErrGasEstimationFailed     = &Error{Kind: KindGasEstimationFailed}
	ErrWalletUnavailable       = &Error{Kind: KindWalletUnavailable}
	ErrUserRejected            = &Error{Kind: KindUserRejected}
	ErrSigningFailed           = &Error{Kind: KindSigningFailed}
	ErrBroadcastFailed         = &Error{Kind: KindBroadcastFailed}
)

// Error is the normalized failure returned by every public adapter operation.
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a normalized error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or "" when err was never normalized.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Normalize funnels err into an *Error.
//
// An err that already carries a Kind keeps it, only the missing Op is filled
// in. Otherwise the kind is inferred from well known transport and wallet
// failures, falling back to fallback.
func Normalize(op string, fallback Kind, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Op != "" {
			return e
		}
		return &Error{Kind: e.Kind, Op: op, Message: e.Message}
	}

	return &Error{Kind: classify(err, fallback), Op: op, Message: rootMessage(err)}
}

func classify(err error, fallback Kind) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindProviderUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindProviderUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range rejectionPatterns {
		if strings.Contains(msg, pattern) {
			return KindUserRejected
		}
	}
	for _, pattern := range transportPatterns {
		if strings.Contains(msg, pattern) {
			return KindProviderUnavailable
		}
	}

	return fallback
}

var rejectionPatterns = []string{
	"action cancelled",
	"rejected by user",
	"user rejected",
	"denied by user",
	"cancelled on device",
}

var transportPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"eof",
	"websocket: close",
	"i/o timeout",
	"http 5",
}

// rootMessage drops wrapping prefixes so provider specific chains do not leak.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
