// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Extracts text or structure from a raw upload
//   - NormaliserRegistry: Selects the normaliser for a category
//   - Segmenter: Splits extracted content into segments
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, ingestion and retrieval are disabled.
//   - VectorIndex: Segment storage and similarity search.
//   - LLMService: Answer generation. Without it, only classification is available.
//   - HistoryStore: Conversation persistence. Without it, every question starts fresh.
//   - PromptStore: Persona template overrides. Without it, built-in templates are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
