package driving

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// ExamService generates and grades synthetic exam material.
//
// Structured tasks never fail on malformed backend output: they degrade
// to deterministic fallback content marked domain.ConfidenceLow.
type ExamService interface {
	// AnalyzePapers analyses a syllabus against previous question papers.
	AnalyzePapers(ctx context.Context, syllabusText string, paperTexts []string) (*domain.PaperAnalysis, error)

	// GenerateMockTest generates and stores a mock test.
	GenerateMockTest(ctx context.Context, spec domain.MockTestSpec) (*domain.MockTest, error)

	// GradeTextAnswer grades one descriptive answer out of maxMarks.
	// The awarded marks are always within [0, maxMarks].
	GradeTextAnswer(ctx context.Context, question, answerText string, maxMarks int) (*domain.Grade, error)

	// GradeSubmission grades a full submission against a stored test:
	// MCQs by exact option match, text answers via the generation
	// backend, plus an overall performance summary. The report is stored.
	GradeSubmission(ctx context.Context, testID string, answers map[string]string, timeTakenSeconds int) (*domain.TestReport, error)

	// GetTest retrieves a stored mock test.
	GetTest(ctx context.Context, testID string) (*domain.MockTest, error)

	// ListTests returns all stored mock tests, newest first.
	ListTests(ctx context.Context) ([]domain.MockTest, error)

	// ListReports returns the stored submission reports for a test,
	// newest first. Fails with domain.ErrNotFound when the test does
	// not exist; a test with no submissions yields an empty slice.
	ListReports(ctx context.Context, testID string) ([]domain.TestReport, error)
}
