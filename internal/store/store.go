// Package store mediates every read and write of the tracker document
// against a durable slot. Reads fall back to a caller-supplied default
// when the slot is empty or unreadable, and corrupt slots are cleared.
// Writes rebase on the freshest persisted value, never on a cached copy.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

// Transform computes a new document from the persisted one.
type Transform func(types.TrackerDocument) (types.TrackerDocument, error)

// Store is the durable key-value store adapter.
type Store struct {
	mu   sync.Mutex
	slot types.Slot
	log  *zap.Logger
}

// New returns a Store over an attached slot. A nil logger disables logging.
func New(slot types.Slot, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{slot: slot, log: log.Named("store")}
}

// Load returns the document stored under key, or def when the slot is
// empty, unreadable, holds JSON null or holds JSON that is not an object.
// A slot whose text is not well-formed JSON is logged, deleted, and
// reported as def. Well-formed documents with mistyped fields are kept.
func (s *Store) Load(key string, def types.TrackerDocument) types.TrackerDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(key, def)
	if err == nil {
		return doc
	}

	s.log.Error("discarding unreadable document",
		zap.String("key", key),
		zap.Error(err))
	if derr := s.slot.Delete(key); derr != nil {
		s.log.Error("clearing corrupt slot failed",
			zap.String("key", key),
			zap.Error(derr))
	}
	return def.Clone()
}

// Update re-reads the persisted document, applies fn and writes the
// result back before returning. Read-modify-write cycles are serialized.
//
// An error from fn aborts the update and is returned; nothing is written.
// A failure to persist the result is logged but not returned: the new
// document is still handed back so the caller's view stays current.
func (s *Store) Update(key string, def types.TrackerDocument, fn Transform) (types.TrackerDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(key, def)
	if err != nil {
		s.log.Warn("rebasing update on default document",
			zap.String("key", key),
			zap.Error(err))
		current = def.Clone()
	}

	next, err := fn(current)
	if err != nil {
		return types.TrackerDocument{}, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.log.Error("encoding document failed", zap.String("key", key), zap.Error(err))
		return next, nil
	}
	if err := s.slot.Write(key, string(data)); err != nil {
		s.log.Error("persisting document failed", zap.String("key", key), zap.Error(err))
		return next, nil
	}
	s.log.Debug("document persisted", zap.String("key", key), zap.Int("bytes", len(data)))
	return next, nil
}

// Save replaces the document stored under key.
func (s *Store) Save(key string, doc types.TrackerDocument) types.TrackerDocument {
	next, _ := s.Update(key, doc, func(types.TrackerDocument) (types.TrackerDocument, error) {
		return doc, nil
	})
	return next
}

// Purge deletes the slot holding key.
func (s *Store) Purge(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Delete(key); err != nil {
		return fmt.Errorf("purge %s: %w", key, err)
	}
	s.log.Info("slot purged", zap.String("key", key))
	return nil
}

// read returns the persisted document or def. Text that is not
// well-formed JSON is returned as ErrStoreCorrupt; an empty slot is not
// an error.
func (s *Store) read(key string, def types.TrackerDocument) (types.TrackerDocument, error) {
	raw, ok, err := s.slot.Read(key)
	if err != nil {
		s.log.Error("reading slot failed", zap.String("key", key), zap.Error(err))
		return def.Clone(), nil
	}
	if !ok {
		return def.Clone(), nil
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		s.log.Warn("stored document is empty, using default", zap.String("key", key))
		return def.Clone(), nil
	}

	if !json.Valid(trimmed) {
		return types.TrackerDocument{}, fmt.Errorf("%w: stored text is not well-formed JSON", types.ErrStoreCorrupt)
	}
	doc, err := types.DecodeDocument(trimmed)
	if err != nil {
		s.log.Warn("stored document is not an object, using default",
			zap.String("key", key),
			zap.Error(err))
		return def.Clone(), nil
	}
	return doc, nil
}
