// Package sqlite implements the SQLite slot backend for trackora.
// This file holds the schema DDL.
package sqlite

// schemaVersion is recorded in PRAGMA user_version after the schema is
// applied. It versions the table layout, not the tracker document.
const schemaVersion = 1

const createSlots = `CREATE TABLE IF NOT EXISTS slots (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// schemaSQL is executed on every Attach; all statements are idempotent.
var schemaSQL = createSlots
