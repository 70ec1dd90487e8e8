// Package domain defines the core business entities for Evidentia.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocID: A content-derived document identifier
//   - Manifest: The per-document state record
//   - Segment: A token-bounded, page-aligned chunk of extracted text
//   - Notion: A versioned, canonical distilled knowledge unit
//   - PlanArtifact: The validated output of a plan generation run
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
