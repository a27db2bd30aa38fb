package types

import "errors"

// Slot is a durable string-keyed store holding whole serialized values.
// Backends attach to a data directory, serve reads and writes by key, and
// detach when done. Writes are synchronous: a value is persisted before
// Write returns.
type Slot interface {
	// Attach connects the slot to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Read returns the raw value stored under key. The boolean is false
	// when nothing is stored.
	Read(key string) (string, bool, error)

	// Write replaces the value stored under key.
	Write(key, value string) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(key string) error
}

// Slot lifecycle errors.
var (
	ErrSlotDetached    = errors.New("slot is detached")
	ErrAlreadyAttached = errors.New("slot is already attached")
)
