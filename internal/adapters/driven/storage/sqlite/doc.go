// Package sqlite provides a SQLite implementation of the VectorIndex and
// HistoryStore ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database file holds:
//
//   - segments: segment content, metadata and embedding blobs
//   - chat_sessions and chat_messages: conversation history
//
// Similarity search is a brute-force cosine scan over the stored embeddings,
// which is adequate for a single user's document collection. Use the qdrant
// backend for larger collections.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docrag/data/docrag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
