package service

import (
	"errors"
	"fmt"

	"fleet-service/internal/repository"
	"fleet-service/internal/rules"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")

	// ErrInvalidInput marks malformed or out-of-range arguments. It is a kind of ErrValidation.
	ErrInvalidInput = fmt.Errorf("invalid input: %w", ErrValidation)
)

// RuleError carries the machine-readable reason behind a rejected operation.
type RuleError struct {
	Kind   error
	Reason rules.Reason
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Reason, e.Detail)
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func reject(kind error, outcome rules.Outcome) error {
	return &RuleError{Kind: kind, Reason: outcome.Reason, Detail: outcome.Detail}
}

func invalidInput(format string, args ...interface{}) error {
	return &RuleError{Kind: ErrInvalidInput, Reason: rules.ReasonInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason code of err, if it has one.
func ReasonOf(err error) rules.Reason {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Reason
	}
	return ""
}

// translateStoreError maps repository failures onto the service taxonomy.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return &RuleError{Kind: ErrConflict, Reason: rules.ReasonConcurrentUpdate, Detail: err.Error()}
	case errors.Is(err, repository.ErrReferenced):
		return &RuleError{Kind: ErrConflict, Reason: rules.ReasonHasReferences, Detail: err.Error()}
	case errors.Is(err, repository.ErrDuplicateKey):
		return &RuleError{Kind: ErrDuplicateKey, Reason: rules.ReasonDuplicateKey, Detail: err.Error()}
	default:
		return err
	}
}
