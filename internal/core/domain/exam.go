package domain

import "time"

// Confidence marks whether a structured result came from the generation
// backend or from a deterministic fallback. Structured tasks never fail
// visibly; they degrade to fallback content marked ConfidenceLow.
type Confidence string

const (
	// ConfidenceHigh means the backend output parsed and validated.
	ConfidenceHigh Confidence = "high"

	// ConfidenceLow means the result is deterministic fallback content.
	ConfidenceLow Confidence = "low"
)

// UnitAnalysis is the per-unit breakdown within a PaperAnalysis.
type UnitAnalysis struct {
	UnitName        string   `json:"unit_name"`
	Weightage       float64  `json:"weightage_percentage"`
	ImportantTopics []string `json:"important_topics"`
	DifficultyLevel string   `json:"difficulty_level"`
	Recommendation  string   `json:"recommendation"`
}

// QuestionPattern describes a recurring question format across papers.
type QuestionPattern struct {
	QuestionType      string         `json:"question_type"`
	MarksDistribution map[string]int `json:"marks_distribution"`
	Frequency         int            `json:"frequency"`
	Examples          []string       `json:"examples"`
}

// PaperAnalysis is the structured result of analysing a syllabus against
// previous question papers.
type PaperAnalysis struct {
	AnalysisID          string            `json:"analysis_id"`
	OverallSummary      string            `json:"overall_summary"`
	FocusAreas          []string          `json:"focus_areas"`
	UnitWiseAnalysis    []UnitAnalysis    `json:"unit_wise_analysis"`
	QuestionPatterns    []QuestionPattern `json:"question_patterns"`
	SampleQuestions     []string          `json:"sample_questions"`
	PreparationStrategy string            `json:"preparation_strategy"`
	Confidence          Confidence        `json:"pattern_match_confidence"`
	CreatedAt           time.Time         `json:"created_at"`
}

// Question types within a mock test.
const (
	QuestionTypeMCQ  = "mcq"
	QuestionTypeText = "text"
)

// MockTestQuestion is one question of a generated mock test.
// Options and CorrectAnswer are set only for MCQ questions;
// AnswerGuidelines only for text questions.
type MockTestQuestion struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Question         string   `json:"question"`
	Options          []string `json:"options,omitempty"`
	CorrectAnswer    string   `json:"correctAnswer,omitempty"`
	Marks            int      `json:"marks"`
	Unit             string   `json:"unit,omitempty"`
	Topic            string   `json:"topic,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	AnswerGuidelines []string `json:"answer_guidelines,omitempty"`
}

// MockTest is a generated exam paper.
type MockTest struct {
	TestID     string             `json:"test_id"`
	Title      string             `json:"title"`
	Questions  []MockTestQuestion `json:"questions"`
	TotalMarks int                `json:"total_marks"`
	TimeLimit  int                `json:"time_limit"` // minutes
	Difficulty string             `json:"difficulty_level"`
	Confidence Confidence         `json:"pattern_match_confidence"`
	CreatedAt  time.Time          `json:"created_at"`
}

// MockTestSpec captures the parameters for generating a mock test.
type MockTestSpec struct {
	// SyllabusText is the course syllabus content.
	SyllabusText string

	// PaperTexts are previous question papers, for pattern matching.
	PaperTexts []string

	// NotesText is optional study-note content for topic depth.
	NotesText string

	// NumMCQ is the number of multiple-choice questions to generate.
	NumMCQ int

	// NumText is the number of descriptive questions to generate.
	NumText int

	// TotalMarks is the paper's marks budget.
	TotalMarks int

	// Difficulty is the requested difficulty level (easy/medium/hard).
	Difficulty string
}

// Grade is the structured result of grading one text answer.
// MarksAwarded is always within [0, MaxMarks].
type Grade struct {
	MarksAwarded float64    `json:"marks_awarded"`
	MaxMarks     int        `json:"max_marks"`
	Feedback     string     `json:"feedback"`
	Confidence   Confidence `json:"confidence"`
}

// AnswerFeedback is the per-question outcome of a graded submission.
// IsCorrect is set only for MCQ questions.
type AnswerFeedback struct {
	QuestionID    string  `json:"question_id"`
	Question      string  `json:"question"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	IsCorrect     *bool   `json:"is_correct,omitempty"`
	Feedback      string  `json:"feedback"`
	MarksAwarded  float64 `json:"marks_awarded"`
	MaxMarks      int     `json:"max_marks"`
}

// PerformanceSummary is the structured overall analysis of a submission.
type PerformanceSummary struct {
	FeedbackSummary      string     `json:"feedback_summary"`
	Strengths            []string   `json:"strengths"`
	Improvements         []string   `json:"improvements"`
	StudyRecommendations []string   `json:"study_recommendations"`
	Confidence           Confidence `json:"confidence"`
}

// TestReport is the full analysis of one mock test submission.
type TestReport struct {
	SubmissionID     string             `json:"submission_id"`
	TestID           string             `json:"test_id"`
	TotalScore       float64            `json:"total_score"`
	MaxScore         int                `json:"max_score"`
	Percentage       float64            `json:"percentage"`
	TimeTaken        int                `json:"time_taken"` // seconds
	Summary          PerformanceSummary `json:"summary"`
	QuestionFeedback []AnswerFeedback   `json:"question_feedback"`
	CreatedAt        time.Time          `json:"created_at"`
}
