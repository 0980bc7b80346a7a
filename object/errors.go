package object

import (
	"errors"
	"fmt"
)

// ModelError represents a failure raised by the object model.
//
// Model errors include:
//   - Protected type: a builtin class's member table was about to be written
//   - Unknown member / unknown attribute: lookup of a name that resolves nowhere
//   - Read-only property: assignment through a property with no setter
//   - Not callable: invoking a property as an operation
//   - Bad receiver: accessing an instance member through a class
//   - Not instantiable: instantiating a builtin, or passing args without an initializer
//
// ModelError includes structured fields for diagnostics and recovery.
type ModelError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Class names the class involved, if any.
	Class string

	// Member names the member or attribute involved, if any.
	Member string
}

// ErrorCode categorizes model errors.
type ErrorCode string

const (
	// ErrCodeProtectedType indicates a write against a builtin class's member table.
	ErrCodeProtectedType ErrorCode = "PROTECTED_TYPE"

	// ErrCodeUnknownMember indicates a member lookup that resolved nowhere.
	ErrCodeUnknownMember ErrorCode = "UNKNOWN_MEMBER"

	// ErrCodeUnknownAttribute indicates an attribute read that resolved nowhere.
	ErrCodeUnknownAttribute ErrorCode = "UNKNOWN_ATTRIBUTE"

	// ErrCodeReadOnlyProperty indicates assignment through a property with no setter.
	ErrCodeReadOnlyProperty ErrorCode = "READ_ONLY_PROPERTY"

	// ErrCodeNotCallable indicates a call against a member that is not an operation.
	ErrCodeNotCallable ErrorCode = "NOT_CALLABLE"

	// ErrCodeNotAProperty indicates a field-style read of an operation member.
	ErrCodeNotAProperty ErrorCode = "NOT_A_PROPERTY"

	// ErrCodeBadReceiver indicates an instance member accessed through a class.
	ErrCodeBadReceiver ErrorCode = "BAD_RECEIVER"

	// ErrCodeNotInstantiable indicates instantiation of a class that forbids it.
	ErrCodeNotInstantiable ErrorCode = "NOT_INSTANTIABLE"
)

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Class != "" && e.Member != "" {
		return fmt.Sprintf("%s: %s (class=%s, member=%s)", e.Code, e.Message, e.Class, e.Member)
	}
	if e.Class != "" {
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsProtectedType returns true if the error is a protected-type violation.
// Uses errors.As to handle wrapped errors.
func IsProtectedType(err error) bool {
	return hasCode(err, ErrCodeProtectedType)
}

// IsUnknownMember returns true if the error is an unknown-member lookup failure.
// Uses errors.As to handle wrapped errors.
func IsUnknownMember(err error) bool {
	return hasCode(err, ErrCodeUnknownMember)
}

// IsUnknownAttribute returns true if the error is an unknown-attribute read.
func IsUnknownAttribute(err error) bool {
	return hasCode(err, ErrCodeUnknownAttribute)
}

// IsReadOnlyProperty returns true if the error is a read-only property assignment.
func IsReadOnlyProperty(err error) bool {
	return hasCode(err, ErrCodeReadOnlyProperty)
}

func hasCode(err error, code ErrorCode) bool {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// NewProtectedTypeError creates a ModelError for a write against a builtin class.
func NewProtectedTypeError(class string) *ModelError {
	return &ModelError{
		Code:    ErrCodeProtectedType,
		Message: "builtin class is protected; its member table cannot be extended",
		Class:   class,
	}
}

// NewUnknownMemberError creates a ModelError for a failed member lookup.
func NewUnknownMemberError(class, member string) *ModelError {
	return &ModelError{
		Code:    ErrCodeUnknownMember,
		Message: "member not found on class or its bases",
		Class:   class,
		Member:  member,
	}
}

// NewUnknownAttributeError creates a ModelError for a failed attribute read.
func NewUnknownAttributeError(class, attr string) *ModelError {
	return &ModelError{
		Code:    ErrCodeUnknownAttribute,
		Message: "no such attribute or property",
		Class:   class,
		Member:  attr,
	}
}

// NewReadOnlyPropertyError creates a ModelError for assignment without a setter.
func NewReadOnlyPropertyError(class, member string) *ModelError {
	return &ModelError{
		Code:    ErrCodeReadOnlyProperty,
		Message: "property has no setter",
		Class:   class,
		Member:  member,
	}
}

// NewNotCallableError creates a ModelError for calling a non-operation member.
func NewNotCallableError(class, member string) *ModelError {
	return &ModelError{
		Code:    ErrCodeNotCallable,
		Message: "member is a property; read it instead of calling it",
		Class:   class,
		Member:  member,
	}
}

// NewNotAPropertyError creates a ModelError for reading an operation member as a field.
func NewNotAPropertyError(class, member string) *ModelError {
	return &ModelError{
		Code:    ErrCodeNotAProperty,
		Message: "member is an operation; call it instead of reading it",
		Class:   class,
		Member:  member,
	}
}

// NewBadReceiverError creates a ModelError for an instance member accessed through a class.
func NewBadReceiverError(class, member, message string) *ModelError {
	return &ModelError{
		Code:    ErrCodeBadReceiver,
		Message: message,
		Class:   class,
		Member:  member,
	}
}

// NewNotInstantiableError creates a ModelError for forbidden instantiation.
func NewNotInstantiableError(class, message string) *ModelError {
	return &ModelError{
		Code:    ErrCodeNotInstantiable,
		Message: message,
		Class:   class,
	}
}
