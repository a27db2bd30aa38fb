// Package sqlite provides the public API for the SQLite slot backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/trackora/internal/sqlite"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	slot := sqlite.NewBackend()
//	err := slot.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/trackora",
//	})
//	defer slot.Detach()
func NewBackend() types.Slot {
	return sqlite.NewBackend()
}
