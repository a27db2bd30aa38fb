// Package types defines the tracker document model, the structured cell
// keys that index it, the Slot interface implemented by storage backends,
// Config, and the standard errors shared by the trackora packages.
package types
