package types

import (
	"errors"
	"regexp"
)

// Config holds backend selection and parameters for Slot.Attach.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	StoreKey string `json:"store_key" yaml:"store_key"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// DefaultStoreKey names the slot holding the tracker document. The schema
// generation is part of the name so an incompatible layout can move to a
// new key instead of migrating in place.
const DefaultStoreKey = "tracker-data-v2"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrStoreKeyEmpty  = errors.New("store key must not be empty")
	ErrInvalidKey     = errors.New("invalid store key")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendFile:   true,
}

var storeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateKey reports whether key can name a slot on every backend.
// The file backend uses the key as a file name, so path separators and
// other special characters are rejected.
func ValidateKey(key string) error {
	if key == "" {
		return ErrStoreKeyEmpty
	}
	if !storeKeyPattern.MatchString(key) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}

// Validate checks that the Config is well-formed. An empty StoreKey is
// accepted and means DefaultStoreKey.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.StoreKey != "" {
		if err := ValidateKey(c.StoreKey); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the configured store key or DefaultStoreKey.
func (c Config) Key() string {
	if c.StoreKey == "" {
		return DefaultStoreKey
	}
	return c.StoreKey
}
