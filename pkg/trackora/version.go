// Package trackora holds release metadata for the trackora module.
package trackora

// Version is the semantic version of this build.
const Version = "0.1.0"
