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
//   - DocumentStore: Document metadata persistence
//   - IndexStore: DocumentIndex persistence
//   - MockTestStore: Mock test and submission persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, ingestion and
//     document-grounded questions are disabled; general-knowledge mode still works.
//   - Generator: Text generation backend. Without it, asking and exam features
//     are disabled entirely.
//   - PromptStore: Custom prompt templates. Without it, embedded defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
