package cmd

import (
	"errors"
	"fmt"
	"strings"
)

// Registration errors. They are fatal to startup.
var (
	ErrDuplicateName       = errors.New("duplicate name")
	ErrTreeFrozen          = errors.New("tree is frozen")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidArgument     = errors.New("invalid argument declaration")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)

// Decode errors. They are per-invocation and shown to the user.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrInvalidEnum     = errors.New("invalid enum value")
	ErrDuplicateOption = errors.New("duplicate option")
)

// MissingArgumentError reports a required argument absent from the raw input.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("argument %q is required", e.Name)
}

func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// TypeMismatchError reports a raw value that cannot be read as the declared kind.
type TypeMismatchError struct {
	Name     string
	Expected Kind
	Got      any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("argument %q: expected %s, got %v (%T)", e.Name, e.Expected, e.Got, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// InvalidEnumValueError reports a value outside the argument's enumeration.
type InvalidEnumValueError struct {
	Name    string
	Got     string
	Allowed []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("argument %q: %q is not one of [%s]", e.Name, e.Got, strings.Join(e.Allowed, ", "))
}

func (e *InvalidEnumValueError) Is(target error) bool { return target == ErrInvalidEnum }

// DuplicateOptionError reports the same option name twice in one raw set.
type DuplicateOptionError struct {
	Name string
}

func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("option %q given more than once", e.Name)
}

func (e *DuplicateOptionError) Is(target error) bool { return target == ErrDuplicateOption }

// IsDecodeError reports whether err is a recoverable decode failure that
// should be shown to the user rather than logged as a fault.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrInvalidEnum) ||
		errors.Is(err, ErrDuplicateOption)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q contains '.'", ErrInvalidName, name)
	}
	return nil
}
