package store

import (
	"github.com/mesh-intelligence/trackora/internal/filestore"
	"github.com/mesh-intelligence/trackora/pkg/sqlite"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// OpenSlot creates the backend named by config and attaches it. The caller
// must Detach the returned slot.
func OpenSlot(config types.Config) (types.Slot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var slot types.Slot
	switch config.Backend {
	case types.BackendFile:
		slot = filestore.NewBackend()
	default:
		slot = sqlite.NewBackend()
	}
	if err := slot.Attach(config); err != nil {
		return nil, err
	}
	return slot, nil
}
