package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports an entity invariant violated at construction or
// update time. It is always returned before any store write.
type ValidationError struct {
	Entity  EntityType
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s validation failed: %s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, e.Message)
}

// NotFoundError reports an operation referencing an id absent from the
// relevant store. The operation aborts and no fan-out occurs.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UnsupportedError reports an operation invoked against a store pair that does
// not own it. Cross-wiring mistakes fail loudly instead of silently no-opping.
type UnsupportedError struct {
	Op    string
	Owner string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("operation %s is owned by the %s store", e.Op, e.Owner)
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsUnsupported reports whether err carries an UnsupportedError.
func IsUnsupported(err error) bool {
	var ue UnsupportedError
	return errors.As(err, &ue)
}
