package mcp

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAskService) AskStream(_ context.Context, _, _ string) (<-chan domain.AnswerChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan domain.AnswerChunk, 2)
	if m.answer != nil {
		out <- domain.AnswerChunk{Delta: m.answer.Text}
	}
	out <- domain.AnswerChunk{Done: true}
	close(out)
	return out, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockExamService is a mock implementation of driving.ExamService.
type mockExamService struct {
	grade  *domain.Grade
	test   *domain.MockTest
	tests  []domain.MockTest
	report *domain.TestReport
	err    error
}

func (m *mockExamService) AnalyzePapers(_ context.Context, _ string, _ []string) (*domain.PaperAnalysis, error) {
	return nil, m.err
}

func (m *mockExamService) GenerateMockTest(_ context.Context, _ domain.MockTestSpec) (*domain.MockTest, error) {
	return m.test, m.err
}

func (m *mockExamService) GradeTextAnswer(_ context.Context, _, _ string, maxMarks int) (*domain.Grade, error) {
	if m.grade != nil {
		grade := *m.grade
		grade.MaxMarks = maxMarks
		return &grade, m.err
	}
	return m.grade, m.err
}

func (m *mockExamService) GradeSubmission(_ context.Context, _ string, _ map[string]string, _ int) (*domain.TestReport, error) {
	return m.report, m.err
}

func (m *mockExamService) GetTest(_ context.Context, _ string) (*domain.MockTest, error) {
	return m.test, m.err
}

func (m *mockExamService) ListTests(_ context.Context) ([]domain.MockTest, error) {
	return m.tests, m.err
}

func (m *mockExamService) ListReports(_ context.Context, _ string) ([]domain.TestReport, error) {
	if m.report == nil {
		return nil, m.err
	}
	return []domain.TestReport{*m.report}, m.err
}
