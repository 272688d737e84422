package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScalarEncoding signals a malformed literal (e.g. hex without the 0x prefix).
	ErrInvalidScalarEncoding = errors.New("invalid scalar encoding")
	// ErrUnknownSymbolicName signals a symbolic name outside its vocabulary.
	ErrUnknownSymbolicName = errors.New("unknown symbolic name")
	// ErrUnknownEnumCode signals an integer code outside its vocabulary.
	ErrUnknownEnumCode = errors.New("unknown enum code")
	// ErrMissingRequiredField signals a stored record without a declared field.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidRequest signals a caller error in filter, sort or pagination input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownNetwork signals a network that is not configured.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrDataIntegrity signals stored data that cannot be materialized.
	ErrDataIntegrity = errors.New("data integrity violation")
	// ErrStoreUnavailable signals a store connectivity or timeout failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ScalarEncodingError wraps ErrInvalidScalarEncoding with the offending kind and reason.
type ScalarEncodingError struct {
	Kind   string
	Reason string
}

func (e *ScalarEncodingError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidScalarEncoding.Error(), e.Kind, e.Reason)
}

func (e *ScalarEncodingError) Unwrap() error { return ErrInvalidScalarEncoding }

// NewScalarEncoding creates a scalar encoding error.
func NewScalarEncoding(kind, reason string) error {
	return &ScalarEncodingError{Kind: kind, Reason: reason}
}

// UnknownSymbolError wraps ErrUnknownSymbolicName with the vocabulary and name.
type UnknownSymbolError struct {
	Vocabulary string
	Name       string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("%s: %q in %s", ErrUnknownSymbolicName.Error(), e.Name, e.Vocabulary)
}

func (e *UnknownSymbolError) Unwrap() error { return ErrUnknownSymbolicName }

// UnknownCodeError wraps ErrUnknownEnumCode with the vocabulary and code.
type UnknownCodeError struct {
	Vocabulary string
	Code       string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("%s: %s in %s", ErrUnknownEnumCode.Error(), e.Code, e.Vocabulary)
}

func (e *UnknownCodeError) Unwrap() error { return ErrUnknownEnumCode }

// MissingFieldError wraps ErrMissingRequiredField with the entity and field names.
type MissingFieldError struct {
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s", ErrMissingRequiredField.Error(), e.Entity, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }
