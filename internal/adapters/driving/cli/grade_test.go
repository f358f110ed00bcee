package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

func TestGradeCommand(t *testing.T) {
	assert.Equal(t, "grade", gradeCmd.Use)
	assert.True(t, gradeCmd.HasSubCommands())
}

func TestGradeAnswerExecute(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	examService = &mockExamService{grade: &domain.Grade{
		MarksAwarded: 3.5,
		MaxMarks:     5,
		Feedback:     "Covers the main idea but misses starvation.",
		Confidence:   domain.ConfidenceHigh,
	}}

	out, err := execute("grade", "answer", "What is round robin?", "Each process gets a time slice.")
	require.NoError(t, err)
	assert.Contains(t, out, "Marks: 3.5 / 5 (confidence: high)")
	assert.Contains(t, out, "misses starvation")
}

func TestGradeAnswerExecuteWrongArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("grade", "answer", "only a question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func writeAnswersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGradeSubmissionExecute(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	correct := true
	incorrect := false
	examService = &mockExamService{report: &domain.TestReport{
		SubmissionID: "sub-1",
		TestID:       "test-1",
		TotalScore:   8.5,
		MaxScore:     12,
		Percentage:   70.8,
		Summary: domain.PerformanceSummary{
			FeedbackSummary: "Solid grasp of scheduling, weaker on deadlock.",
			Strengths:       []string{"Scheduling algorithms"},
			Improvements:    []string{"Deadlock conditions"},
		},
		QuestionFeedback: []domain.AnswerFeedback{
			{QuestionID: "1", MarksAwarded: 2, MaxMarks: 2, IsCorrect: &correct},
			{QuestionID: "2", MarksAwarded: 0, MaxMarks: 2, IsCorrect: &incorrect, CorrectAnswer: "Round robin"},
			{QuestionID: "3", MarksAwarded: 6.5, MaxMarks: 8},
		},
	}}

	answers := writeAnswersFile(t, `{"1": "FCFS", "2": "SJF", "3": "A written answer."}`)

	out, err := execute("grade", "submission", "test-1", "--answers", answers)
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 8.5 / 12 (71%)")
	assert.Contains(t, out, "Solid grasp of scheduling")
	assert.Contains(t, out, "Strengths:")
	assert.Contains(t, out, "[1] 2.0 / 2  correct")
	assert.Contains(t, out, "[2] 0.0 / 2  incorrect (expected: Round robin)")
	assert.Contains(t, out, "[3] 6.5 / 8")
}

func TestGradeSubmissionExecuteBadJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	answers := writeAnswersFile(t, "not json")

	_, err := execute("grade", "submission", "test-1", "--answers", answers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestGradeReportsExecute(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	examService = &mockExamService{
		test: sampleMockTest(),
		report: &domain.TestReport{
			SubmissionID: "sub-1",
			TestID:       "test-1",
			TotalScore:   8.5,
			MaxScore:     12,
			Percentage:   70.8,
		},
	}

	out, err := execute("grade", "reports", "test-1")
	require.NoError(t, err)
	assert.Contains(t, out, "sub-1")
	assert.Contains(t, out, "8.5 / 12 (71%)")
}

func TestGradeReportsExecuteEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	examService = &mockExamService{test: sampleMockTest()}

	out, err := execute("grade", "reports", "test-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No graded submissions for this test.")
}

func TestGradeReportsExecuteNotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("grade", "reports", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock test missing not found")
}

func TestGradeSubmissionExecuteMissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("grade", "submission", "test-1", "--answers", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}
