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
//   - ManifestStore: Per-document manifest persistence
//   - ExtractionStore: Source bytes, pages and segments persistence
//   - ArtifactStore: Plan artifact persistence
//   - NotionStore: Append-only notion/contribution persistence
//   - PageExtractor: Per-format text extraction
//   - LexicalIndex: Full-text search with BM25-ordered ranking
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorIndex: Vector storage/search. Only useful with an EmbeddingService.
//   - EmbeddingService: Generates vector embeddings.
//   - LLMService: Plan generation. Without it, RequestPlan is unavailable.
//   - OCRFallback: Page-level OCR recovery for image-only pages.
//   - DocLocker: Cross-process advisory locking. A no-op locker keeps
//     exclusion intra-process only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
