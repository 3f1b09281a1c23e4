// Package storage provides the client's local key/value storage: the
// on-disk replacement for a browser's local storage.
//
// # Overview
//
// Values are opaque byte strings addressed by string keys. Callers read and
// write whole values; there are no partial updates or secondary indexes.
// Two implementations satisfy Store:
//
//   - SQLiteStore is a single SQLite file per profile (modernc.org/sqlite),
//     schema managed by embedded goose migrations.
//   - MemoryStore is a map guarded by a mutex, for tests and throwaway profiles.
//
// # Absent keys
//
// Get returns (nil, nil) for a key that is not stored. Callers that mirror
// browser semantics treat an empty value the same as an absent one.
//
// # Concurrency
//
// Update runs its read-modify-write inside one transaction (SQLite) or under
// the store mutex (memory). Nothing coordinates separate processes that share
// one file beyond what SQLite itself provides; a single active client per
// profile is assumed.
package storage
