// Package store provides wholesale per-user persistence over a local SQLite
// file. Each user record is stored as one JSON value keyed by lowercased
// email and is read and rewritten in full on every mutation.
package store
