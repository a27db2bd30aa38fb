// Package engine holds the pure operations over a tracker document.
//
// Mutations take a document and explicit parameters and return a new
// document; the input is never modified. Queries are total functions of
// a document snapshot: they never panic and never return NaN, falling back
// to zero values for missing or malformed data.
//
// Month-scoped operations address the profile and month named by a Target.
package engine
