package adapter

import (
	"errors"
	"fmt"

	"github.com/root-talis/kaizou/schema"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")

	ErrInvalidConfiguration = fmt.Errorf("%w: invalid configuration", ErrConfiguration)
	ErrInvalidDataDomain    = fmt.Errorf("%w: invalid data domain", ErrConfiguration)
	ErrInvalidAdapter       = fmt.Errorf("%w: invalid adapter", ErrConfiguration)

	ErrUnregisteredAdapter = fmt.Errorf("%w: adapter is not registered", ErrNotFound)
	ErrColumnNotFound      = fmt.Errorf("%w: column", ErrNotFound)
	ErrForeignKeyNotFound  = fmt.Errorf("%w: foreign key", ErrNotFound)
	ErrIndexNotFound       = fmt.Errorf("%w: index", ErrNotFound)

	ErrNoTransaction         = errors.New("no active transaction")
	ErrTransactionRolledBack = errors.New("transaction was rolled back by a nested step")
)

// UnsupportedOperationError is returned when a dialect cannot express a
// structural change.
type UnsupportedOperationError struct {
	Adapter   string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s adapter does not support %s", e.Adapter, e.Operation)
}

func NewUnsupportedOperationError(adapter, operation string) error {
	return &UnsupportedOperationError{Adapter: adapter, Operation: operation}
}

// UnsupportedTypeError is returned for column types a dialect cannot map.
type UnsupportedTypeError struct {
	Adapter string
	Type    string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s adapter does not support the %q column type", e.Adapter, e.Type)
}

func NewUnsupportedTypeError(adapter, typ string) error {
	return &UnsupportedTypeError{Adapter: adapter, Type: typ}
}

// IrreversibleMigrationError is returned when a recorded action has no
// inverse.
type IrreversibleMigrationError struct {
	Action schema.ActionKind
}

func (e *IrreversibleMigrationError) Error() string {
	return fmt.Sprintf("cannot reverse a %q action", e.Action)
}
