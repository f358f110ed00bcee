package cli

import (
	"bytes"
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	doc *domain.Document
	err error
}

func (m *mockIngestService) Ingest(_ context.Context, documentID, title, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc != nil {
		return m.doc, nil
	}
	return &domain.Document{
		ID:             documentID,
		Title:          title,
		State:          domain.StateIndexed,
		PassageCount:   3,
		EmbeddingModel: "mock-embed",
	}, nil
}

func (m *mockIngestService) Status(_ context.Context, documentID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: documentID, State: domain.StateIndexed}, nil
}

// mockAskService implements driving.AskService for testing.
type mockAskService struct {
	answer *domain.Answer
	chunks []domain.AnswerChunk
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAskService) AskStream(_ context.Context, _, _ string) (<-chan domain.AnswerChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan domain.AnswerChunk, len(m.chunks))
	for _, chunk := range m.chunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

// mockExamService implements driving.ExamService for testing.
type mockExamService struct {
	analysis *domain.PaperAnalysis
	test     *domain.MockTest
	tests    []domain.MockTest
	grade    *domain.Grade
	report   *domain.TestReport
	err      error
}

func (m *mockExamService) AnalyzePapers(_ context.Context, _ string, _ []string) (*domain.PaperAnalysis, error) {
	return m.analysis, m.err
}

func (m *mockExamService) GenerateMockTest(_ context.Context, _ domain.MockTestSpec) (*domain.MockTest, error) {
	return m.test, m.err
}

func (m *mockExamService) GradeTextAnswer(_ context.Context, _, _ string, _ int) (*domain.Grade, error) {
	return m.grade, m.err
}

func (m *mockExamService) GradeSubmission(_ context.Context, _ string, _ map[string]string, _ int) (*domain.TestReport, error) {
	return m.report, m.err
}

func (m *mockExamService) GetTest(_ context.Context, _ string) (*domain.MockTest, error) {
	if m.test == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.test, m.err
}

func (m *mockExamService) ListTests(_ context.Context) ([]domain.MockTest, error) {
	return m.tests, m.err
}

func (m *mockExamService) ListReports(_ context.Context, _ string) ([]domain.TestReport, error) {
	if m.err == nil && m.test == nil {
		return nil, domain.ErrNotFound
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return nil, nil
	}
	return []domain.TestReport{*m.report}, nil
}

// mockDocService implements driving.DocumentService for testing.
type mockDocService struct {
	documents []domain.Document
	document  *domain.Document
	deleted   []string
	err       error
}

func (m *mockDocService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.document == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.document, m.err
}

func (m *mockDocService) Delete(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return m.err
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values map[string]any
	err    error
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return m.err }
func (m *mockConfigStore) Load() error { return m.err }
func (m *mockConfigStore) Path() string {
	return "/tmp/studyrag/config.toml"
}

// setupTestServices swaps in mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldAsk := askService
	oldExam := examService
	oldDocuments := documentService
	oldConfig := configStore

	ingestService = &mockIngestService{}
	askService = &mockAskService{answer: &domain.Answer{Text: "mock answer"}}
	examService = &mockExamService{}
	documentService = &mockDocService{
		documents: []domain.Document{
			{ID: "doc-1", Title: "Test Document 1", State: domain.StateIndexed},
		},
	}
	configStore = &mockConfigStore{values: map[string]any{"generation.provider": "ollama"}}

	return func() {
		ingestService = oldIngest
		askService = oldAsk
		examService = oldExam
		documentService = oldDocuments
		configStore = oldConfig
	}
}

// execute runs the root command with args and captures output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
