// Package domain defines the core business entities for docrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: An uploaded file before extraction
//   - DocumentTree: The structural view of a rich document
//   - Segment: A retrievable unit of text with metadata
//   - Mode: One of the assistant personas selected per query
//   - ChatSession / ChatMessage: Persisted conversation history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
