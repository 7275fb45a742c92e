package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classifying model failures with errors.Is.
var (
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrUnknownIdentifier   = errors.New("unknown identifier")
	ErrValidation          = errors.New("validation failed")
)

// IdentifierError reports a registry failure for a single identifier.
type IdentifierError struct {
	Kind error // ErrDuplicateIdentifier, ErrUnknownIdentifier or ErrValidation
	ID   string
	Msg  string
}

func (e *IdentifierError) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s %q", e.Kind.Error(), e.ID)
	if e.Msg != "" {
		base += ": " + e.Msg
	}
	return base
}

func (e *IdentifierError) Unwrap() error { return e.Kind }

func duplicatef(id, format string, args ...any) error {
	return &IdentifierError{Kind: ErrDuplicateIdentifier, ID: id, Msg: fmt.Sprintf(format, args...)}
}

func unknownf(id, format string, args ...any) error {
	return &IdentifierError{Kind: ErrUnknownIdentifier, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// ValidationError lists the structural issues that block serialization.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
