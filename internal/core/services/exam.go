package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/extract"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
	"github.com/studyrag-labs/studyrag-cli/internal/prompt"
)

// Per-question marks for generated tests. Descriptive questions absorb
// the marks budget left after MCQs, with a floor.
const (
	mcqMarks     = 2
	textMarksMin = 5
)

// Time-limit heuristic in minutes.
const (
	mcqMinutes      = 2
	textMinutes     = 10
	minTestDuration = 60
)

// Ensure Examiner implements the interfaces.
var (
	_ driving.ExamService     = (*Examiner)(nil)
	_ driven.PromptStoreAware = (*Examiner)(nil)
)

// Examiner generates and grades synthetic exam material.
//
// Every structured task degrades rather than fails: when the backend
// output cannot be parsed into the expected shape, a deterministic
// fallback marked domain.ConfidenceLow is returned instead of an error.
type Examiner struct {
	generator driven.Generator
	testStore driven.MockTestStore
	assembler *prompt.Assembler
}

// NewExaminer creates a new examiner.
func NewExaminer(generator driven.Generator, testStore driven.MockTestStore) *Examiner {
	return &Examiner{
		generator: generator,
		testStore: testStore,
		assembler: prompt.New(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (e *Examiner) SetPromptStore(store driven.PromptStore) {
	e.assembler.SetPromptStore(store)
}

// AnalyzePapers analyses a syllabus against previous question papers.
func (e *Examiner) AnalyzePapers(ctx context.Context, syllabusText string, paperTexts []string) (*domain.PaperAnalysis, error) {
	if strings.TrimSpace(syllabusText) == "" {
		return nil, fmt.Errorf("%w: syllabus text is empty", domain.ErrInvalidInput)
	}
	if len(paperTexts) == 0 {
		return nil, fmt.Errorf("%w: no question papers provided", domain.ErrInvalidInput)
	}

	p := e.assembler.AnalyzePapers(syllabusText, paperTexts)
	raw, err := e.generator.Complete(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		logger.Warn("Paper analysis generation failed: %v", err)
		raw = ""
	}

	shape := extract.Shape{Required: []string{"overall_summary", "focus_areas"}}
	analysis, ok := extract.JSON(raw, shape, fallbackAnalysis)
	if ok {
		analysis.Confidence = domain.ConfidenceHigh
	}
	analysis.AnalysisID = uuid.NewString()
	analysis.CreatedAt = time.Now().UTC()
	return &analysis, nil
}

// GenerateMockTest generates and stores a mock test.
func (e *Examiner) GenerateMockTest(ctx context.Context, spec domain.MockTestSpec) (*domain.MockTest, error) {
	if strings.TrimSpace(spec.SyllabusText) == "" {
		return nil, fmt.Errorf("%w: syllabus text is empty", domain.ErrInvalidInput)
	}
	if spec.NumMCQ < 0 || spec.NumText < 0 || spec.NumMCQ+spec.NumText == 0 {
		return nil, fmt.Errorf("%w: test needs at least one question", domain.ErrInvalidInput)
	}

	perTextMarks := textMarksMin
	if spec.NumText > 0 {
		if derived := (spec.TotalMarks - spec.NumMCQ*mcqMarks) / spec.NumText; derived > perTextMarks {
			perTextMarks = derived
		}
	}

	p := e.assembler.GenerateMockTest(spec, mcqMarks, perTextMarks)
	raw, err := e.generator.Complete(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		logger.Warn("Mock test generation failed: %v", err)
		raw = ""
	}

	type payload struct {
		Questions []domain.MockTestQuestion `json:"questions"`
	}
	shape := extract.Shape{Required: []string{"questions"}}
	parsed, ok := extract.JSON(raw, shape, func() payload {
		return payload{Questions: fallbackQuestions(spec.NumMCQ, spec.NumText, mcqMarks, perTextMarks)}
	})
	if len(parsed.Questions) == 0 {
		parsed.Questions = fallbackQuestions(spec.NumMCQ, spec.NumText, mcqMarks, perTextMarks)
		ok = false
	}

	confidence := domain.ConfidenceHigh
	if !ok {
		confidence = domain.ConfidenceLow
	}

	created := time.Now().UTC()
	test := &domain.MockTest{
		TestID:     uuid.NewString(),
		Title:      "Mock Test - " + created.Format("January 2, 2006"),
		Questions:  normalizeQuestions(parsed.Questions, perTextMarks),
		TotalMarks: spec.TotalMarks,
		TimeLimit:  timeLimit(spec.NumMCQ, spec.NumText),
		Difficulty: spec.Difficulty,
		Confidence: confidence,
		CreatedAt:  created,
	}

	if err := e.testStore.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}
	return test, nil
}

// GradeTextAnswer grades one descriptive answer out of maxMarks.
// The awarded marks are always within [0, maxMarks].
func (e *Examiner) GradeTextAnswer(ctx context.Context, question, answerText string, maxMarks int) (*domain.Grade, error) {
	if maxMarks <= 0 {
		return nil, fmt.Errorf("%w: max marks must be positive", domain.ErrInvalidInput)
	}

	// An empty answer is graded deterministically, never sent to the
	// backend.
	if strings.TrimSpace(answerText) == "" {
		return &domain.Grade{
			MarksAwarded: 0,
			MaxMarks:     maxMarks,
			Feedback:     "No answer provided.",
			Confidence:   domain.ConfidenceHigh,
		}, nil
	}

	p := e.assembler.GradeAnswer(question, answerText, maxMarks)
	raw, err := e.generator.Complete(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		logger.Warn("Answer grading failed: %v", err)
		raw = ""
	}

	shape := extract.Shape{Required: []string{"marks_awarded", "feedback"}}
	grade, ok := extract.JSON(raw, shape, func() domain.Grade {
		return fallbackGrade(maxMarks)
	})
	if ok && grade.Confidence == "" {
		grade.Confidence = domain.ConfidenceHigh
	}
	grade.MaxMarks = maxMarks
	grade.MarksAwarded = extract.Clamp(grade.MarksAwarded, 0, float64(maxMarks))
	return &grade, nil
}

// GradeSubmission grades a full submission against a stored test.
// MCQ answers are matched exactly against the correct option; text
// answers go through the generation backend. The stored report includes
// an overall performance summary.
func (e *Examiner) GradeSubmission(ctx context.Context, testID string, answers map[string]string, timeTakenSeconds int) (*domain.TestReport, error) {
	test, err := e.testStore.GetTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}

	var totalScore float64
	feedback := make([]domain.AnswerFeedback, 0, len(test.Questions))

	for _, q := range test.Questions {
		userAnswer := answers[q.ID]

		if q.Type == domain.QuestionTypeMCQ {
			fb := gradeMCQ(q, userAnswer)
			totalScore += fb.MarksAwarded
			feedback = append(feedback, fb)
			continue
		}

		grade, err := e.GradeTextAnswer(ctx, q.Question, userAnswer, q.Marks)
		if err != nil {
			return nil, fmt.Errorf("grade question %s: %w", q.ID, err)
		}
		totalScore += grade.MarksAwarded
		feedback = append(feedback, domain.AnswerFeedback{
			QuestionID:   q.ID,
			Question:     q.Question,
			UserAnswer:   userAnswer,
			Feedback:     grade.Feedback,
			MarksAwarded: grade.MarksAwarded,
			MaxMarks:     q.Marks,
		})
	}

	maxScore := test.TotalMarks
	var percentage float64
	if maxScore > 0 {
		percentage = totalScore / float64(maxScore) * 100
	}

	summary := e.summarize(ctx, len(test.Questions), maxScore, totalScore, percentage, feedback)

	report := &domain.TestReport{
		SubmissionID:     uuid.NewString(),
		TestID:           testID,
		TotalScore:       totalScore,
		MaxScore:         maxScore,
		Percentage:       percentage,
		TimeTaken:        timeTakenSeconds,
		Summary:          summary,
		QuestionFeedback: feedback,
		CreatedAt:        time.Now().UTC(),
	}

	if err := e.testStore.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

// GetTest retrieves a stored mock test.
func (e *Examiner) GetTest(ctx context.Context, testID string) (*domain.MockTest, error) {
	return e.testStore.GetTest(ctx, testID)
}

// ListTests returns all stored mock tests, newest first.
func (e *Examiner) ListTests(ctx context.Context) ([]domain.MockTest, error) {
	return e.testStore.ListTests(ctx)
}

// ListReports returns the stored submission reports for a test, newest
// first. Fails with domain.ErrNotFound when the test does not exist.
func (e *Examiner) ListReports(ctx context.Context, testID string) ([]domain.TestReport, error) {
	if _, err := e.testStore.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	return e.testStore.ListReports(ctx, testID)
}

// summarize produces the overall performance summary for a graded
// submission, degrading to a percentage-bucketed fallback.
func (e *Examiner) summarize(ctx context.Context, questionCount, maxScore int, score, percentage float64, feedback []domain.AnswerFeedback) domain.PerformanceSummary {
	type perQuestion struct {
		QuestionType string  `json:"question_type"`
		MarksAwarded float64 `json:"marks_awarded"`
		MaxMarks     int     `json:"max_marks"`
		IsCorrect    *bool   `json:"is_correct,omitempty"`
	}
	performance := make([]perQuestion, len(feedback))
	for i, fb := range feedback {
		qType := "Descriptive"
		if fb.IsCorrect != nil {
			qType = "MCQ"
		}
		performance[i] = perQuestion{
			QuestionType: qType,
			MarksAwarded: fb.MarksAwarded,
			MaxMarks:     fb.MaxMarks,
			IsCorrect:    fb.IsCorrect,
		}
	}
	performanceJSON, err := json.Marshal(performance)
	if err != nil {
		performanceJSON = []byte("[]")
	}

	p := e.assembler.SummarizeOverall(questionCount, maxScore, score, percentage, string(performanceJSON))
	raw, err := e.generator.Complete(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		logger.Warn("Performance summary generation failed: %v", err)
		raw = ""
	}

	shape := extract.Shape{Required: []string{"feedback_summary", "strengths", "improvements", "study_recommendations"}}
	summary, ok := extract.JSON(raw, shape, func() domain.PerformanceSummary {
		return fallbackSummary(percentage)
	})
	if ok {
		summary.Confidence = domain.ConfidenceHigh
	}
	return summary
}

// gradeMCQ grades a multiple-choice answer by exact option match,
// ignoring surrounding whitespace.
func gradeMCQ(q domain.MockTestQuestion, userAnswer string) domain.AnswerFeedback {
	correct := strings.TrimSpace(userAnswer) == strings.TrimSpace(q.CorrectAnswer)

	var marks float64
	text := fmt.Sprintf("Incorrect. The correct answer is %s.", q.CorrectAnswer)
	if correct {
		marks = float64(q.Marks)
		text = "Correct answer!"
	}

	return domain.AnswerFeedback{
		QuestionID:    q.ID,
		Question:      q.Question,
		UserAnswer:    userAnswer,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     &correct,
		Feedback:      text,
		MarksAwarded:  marks,
		MaxMarks:      q.Marks,
	}
}

// normalizeQuestions enforces invariants the backend cannot be trusted
// with: sequential string IDs, per-type field hygiene and sane marks.
func normalizeQuestions(questions []domain.MockTestQuestion, perTextMarks int) []domain.MockTestQuestion {
	out := make([]domain.MockTestQuestion, len(questions))
	for i, q := range questions {
		q.ID = strconv.Itoa(i + 1)
		if q.Type != domain.QuestionTypeMCQ && q.Type != domain.QuestionTypeText {
			q.Type = domain.QuestionTypeMCQ
		}
		if q.Type == domain.QuestionTypeMCQ {
			q.AnswerGuidelines = nil
			if q.Marks <= 0 {
				q.Marks = mcqMarks
			}
		} else {
			q.Options = nil
			q.CorrectAnswer = ""
			if q.Marks <= 0 {
				q.Marks = perTextMarks
			}
		}
		out[i] = q
	}
	return out
}

// timeLimit estimates the test duration in minutes.
func timeLimit(numMCQ, numText int) int {
	total := numMCQ*mcqMinutes + numText*textMinutes
	if total < minTestDuration {
		return minTestDuration
	}
	return total
}

// fallbackQuestions builds a placeholder paper when generation fails.
func fallbackQuestions(numMCQ, numText, mcqMarksEach, textMarksEach int) []domain.MockTestQuestion {
	questions := make([]domain.MockTestQuestion, 0, numMCQ+numText)
	for i := 0; i < numMCQ; i++ {
		questions = append(questions, domain.MockTestQuestion{
			ID:            strconv.Itoa(i + 1),
			Type:          domain.QuestionTypeMCQ,
			Question:      fmt.Sprintf("Sample multiple choice question %d - Choose the correct answer:", i+1),
			Options:       []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectAnswer: "Option A",
			Marks:         mcqMarksEach,
		})
	}
	for i := 0; i < numText; i++ {
		questions = append(questions, domain.MockTestQuestion{
			ID:       strconv.Itoa(numMCQ + i + 1),
			Type:     domain.QuestionTypeText,
			Question: fmt.Sprintf("Sample descriptive question %d - Explain the concept with examples.", i+1),
			Marks:    textMarksEach,
		})
	}
	return questions
}

// fallbackGrade awards half marks when automatic grading fails.
func fallbackGrade(maxMarks int) domain.Grade {
	return domain.Grade{
		MarksAwarded: float64(maxMarks) * 0.5,
		MaxMarks:     maxMarks,
		Feedback:     "Unable to evaluate the answer automatically. Please review with an instructor.",
		Confidence:   domain.ConfidenceLow,
	}
}

// fallbackAnalysis is the deterministic paper analysis used when the
// backend output cannot be parsed.
func fallbackAnalysis() domain.PaperAnalysis {
	return domain.PaperAnalysis{
		OverallSummary: "Unable to generate a detailed analysis from the provided documents. Ensure they contain clear, readable text and try again.",
		FocusAreas: []string{
			"Review your uploaded documents",
			"Ensure the files contain readable text",
			"Retry the analysis with better quality documents",
		},
		UnitWiseAnalysis: []domain.UnitAnalysis{
			{
				UnitName:        "General Study Areas",
				Weightage:       25.0,
				ImportantTopics: []string{"Core concepts", "Fundamental principles", "Problem solving"},
				DifficultyLevel: "medium",
				Recommendation:  "Focus on understanding basic concepts and practice regular problem solving",
			},
		},
		QuestionPatterns: []domain.QuestionPattern{
			{
				QuestionType:      "Multiple Choice Questions",
				MarksDistribution: map[string]int{"2": 10, "5": 5},
				Frequency:         15,
				Examples:          []string{"Conceptual questions", "Application-based problems"},
			},
		},
		SampleQuestions: []string{
			"What are the fundamental concepts covered in this subject?",
			"Explain the key principles with examples.",
			"Compare and contrast different approaches.",
		},
		PreparationStrategy: "Start with basic concepts, practice previous year questions, and revise important topics regularly.",
		Confidence:          domain.ConfidenceLow,
	}
}

// fallbackSummary buckets overall performance by percentage.
func fallbackSummary(percentage float64) domain.PerformanceSummary {
	level := "needs improvement"
	switch {
	case percentage >= 80:
		level = "excellent"
	case percentage >= 60:
		level = "good"
	case percentage >= 40:
		level = "average"
	}

	return domain.PerformanceSummary{
		FeedbackSummary: fmt.Sprintf("Your performance was %s with a %.1f%% score. Continue practicing to improve your understanding of the concepts.", level, percentage),
		Strengths: []string{
			"Attempted the test",
			"Showed understanding of basic concepts",
		},
		Improvements: []string{
			"Focus on conceptual clarity",
			"Practice more descriptive answers",
			"Review incorrect answers",
		},
		StudyRecommendations: []string{
			"Review the syllabus thoroughly",
			"Practice previous year questions",
			"Take regular mock tests",
		},
		Confidence: domain.ConfidenceLow,
	}
}
