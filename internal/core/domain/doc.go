// Package domain defines the core business entities for StudyRAG.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded document's metadata and lifecycle state
//   - Passage: The unit of retrieval within a document
//   - DocumentIndex: A document's passages and their embedding vectors
//   - GenerationRequest / GenerationChunk: The generation backend contract
//   - PaperAnalysis / MockTest / Grade / TestReport: structured exam results
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
