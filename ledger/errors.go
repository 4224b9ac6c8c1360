package ledger

import (
	"errors"
	"fmt"

	"github.com/yourusername/insure-dao/models"
)

// Failure kinds. Every rejected write wraps exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrPolicyViolation = errors.New("policy violation")
	ErrSimulated       = errors.New("simulated failure")
)

// ErrNetwork is returned by reads when the flaky-network toggle fires.
var ErrNetwork = errors.New("network error")

// TxError is a caller-visible rejection. Its message is what ends up in
// TxResult.Error.
type TxError struct {
	Kind error
	Msg  string
}

func (e *TxError) Error() string { return e.Msg }

func (e *TxError) Unwrap() error { return e.Kind }

func notFound(format string, a ...any) error {
	return &TxError{Kind: ErrNotFound, Msg: fmt.Sprintf(format, a...)}
}

func unauthorized(format string, a ...any) error {
	return &TxError{Kind: ErrUnauthorized, Msg: fmt.Sprintf(format, a...)}
}

func violation(format string, a ...any) error {
	return &TxError{Kind: ErrPolicyViolation, Msg: fmt.Sprintf(format, a...)}
}

func simulated(format string, a ...any) error {
	return &TxError{Kind: ErrSimulated, Msg: fmt.Sprintf(format, a...)}
}

var errNoWallet = unauthorized("No wallet connected")

// CodeOf maps an error to the result code reported to callers.
func CodeOf(err error) models.ErrorCode {
	switch {
	case errors.Is(err, ErrNotFound):
		return models.CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return models.CodeUnauthorized
	case errors.Is(err, ErrPolicyViolation):
		return models.CodePolicyViolation
	case errors.Is(err, ErrSimulated):
		return models.CodeSimulatedFailure
	}
	return ""
}
