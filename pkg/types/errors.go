package types

import "errors"

// Document operation errors.
var (
	// ErrValidation is returned by mutations given unusable input, such as
	// a blank protocol label or a day outside the active month.
	ErrValidation = errors.New("validation failed")

	// ErrImport is returned when imported text does not parse as a tracker
	// document. The live document is left unchanged.
	ErrImport = errors.New("import failed")

	// ErrStoreCorrupt marks persisted text that no longer parses. It is
	// logged and recovered by the store adapter, never returned to callers.
	ErrStoreCorrupt = errors.New("stored document is corrupt")

	// ErrProtocolNotFound is returned when a protocol reference does not
	// resolve in the active month.
	ErrProtocolNotFound = errors.New("protocol not found")
)
