package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"document ID to ground the answer in; omit for a general-knowledge answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string `json:"answer"`
	Context string `json:"context,omitempty"`
}

// GradeAnswerInput is the input schema for the grade_answer tool.
type GradeAnswerInput struct {
	Question string `json:"question" jsonschema:"the exam question"`
	Answer   string `json:"answer" jsonschema:"the student's written answer"`
	MaxMarks int    `json:"max_marks,omitempty" jsonschema:"maximum marks for the question (default 5)"`
}

// GradeAnswerOutput is the output schema for the grade_answer tool.
type GradeAnswerOutput struct {
	MarksAwarded float64 `json:"marks_awarded"`
	MaxMarks     int     `json:"max_marks"`
	Feedback     string  `json:"feedback"`
	Confidence   string  `json:"confidence"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question, grounded in an ingested document when document_id is given",
	}, s.handleAsk)

	if s.ports.Exam != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "grade_answer",
			Description: "Grade a written exam answer and return marks with feedback",
		}, s.handleGradeAnswer)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.DocumentID, input.Question)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			return nil, AskOutput{}, errors.New("document is still being ingested, retry shortly")
		}
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Context: answer.Context,
	}, nil
}

// handleGradeAnswer handles the grade_answer tool invocation.
func (s *Server) handleGradeAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GradeAnswerInput,
) (*mcp.CallToolResult, GradeAnswerOutput, error) {
	maxMarks := input.MaxMarks
	if maxMarks <= 0 {
		maxMarks = 5
	}

	grade, err := s.ports.Exam.GradeTextAnswer(ctx, input.Question, input.Answer, maxMarks)
	if err != nil {
		return nil, GradeAnswerOutput{}, err
	}

	return nil, GradeAnswerOutput{
		MarksAwarded: grade.MarksAwarded,
		MaxMarks:     grade.MaxMarks,
		Feedback:     grade.Feedback,
		Confidence:   string(grade.Confidence),
	}, nil
}
