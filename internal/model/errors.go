package model

import "fmt"

// UnknownKeyError indicates a key that is not defined in the active schema
// section for the record's kind.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key: %q is not defined in the schema", e.Key)
}

// KeyConflictError indicates an attempt to add a value over an existing key
// without requesting overwrite.
type KeyConflictError struct {
	Key string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("key conflict: %q already exists and overwrite was not requested", e.Key)
}

// KeyNotFoundError indicates a change targeting a key that is not present.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q is not present in the record", e.Key)
}

// InvalidValueError indicates that sanitization or validation rejected a value.
// It carries the offending value and the reason for rejection.
type InvalidValueError struct {
	Key    string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid value %v for key %q", e.Value, e.Key)
	}
	return fmt.Sprintf("invalid value %v for key %q: %s", e.Value, e.Key, e.Reason)
}

// InvalidArgumentError indicates malformed call-site input, such as an
// unrecognized hash filter mode or an unparseable wire type tag.
type InvalidArgumentError struct {
	Name     string
	Got      any
	Expected string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: got %v, expected %s", e.Name, e.Got, e.Expected)
}

// UnknownVariantError indicates a wire payload whose type tag is absent with
// no default, or names a kind outside the recognized variants.
type UnknownVariantError struct {
	Tag string
}

func (e *UnknownVariantError) Error() string {
	if e.Tag == "" {
		return "unknown variant: type tag is absent and no default was supplied"
	}
	return fmt.Sprintf("unknown variant: %q is not one of Message, Report, Event", e.Tag)
}

// UnknownTypeError indicates a schema descriptor referencing a type name with
// no registered field type.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: no field type registered for %q", e.Name)
}
