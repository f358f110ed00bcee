package mcp

import (
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions grounded in indexed documents.
	Ask driving.AskService

	// Document manages ingested documents.
	Document driving.DocumentService

	// Exam generates and grades mock tests.
	Exam driving.ExamService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	// Document and Exam are optional
	return nil
}
