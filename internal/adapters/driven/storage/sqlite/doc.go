// Package sqlite provides the SQLite-backed lexical index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Full-text
// search runs over FTS5 virtual tables with BM25 ranking, one logical
// collection per index handle sharing a single database connection.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory as .up.sql files.
//
// # Data Location
//
// By default, the database is stored at <storage root>/index/lexical.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
