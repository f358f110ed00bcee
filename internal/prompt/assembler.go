// Package prompt assembles task-specific prompts for the generation
// backend from retrieved context and task parameters.
//
// Prompt size is bounded here, at the assembler boundary: every input
// slot is truncated to a task-specific cap before insertion, never
// inside the generator.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Input slot caps in characters.
const (
	// CapContext bounds retrieved passage context in answer prompts.
	CapContext = 4000

	// CapSyllabusAnalysis bounds syllabus text in analysis prompts.
	CapSyllabusAnalysis = 2000

	// CapSyllabusMockTest bounds syllabus text in mock-test prompts.
	CapSyllabusMockTest = 3000

	// CapPapers bounds combined previous-paper text.
	CapPapers = 4000

	// CapNotes bounds study-note text.
	CapNotes = 2000

	// CapAnswer bounds a student answer in grading prompts.
	CapAnswer = 4000
)

// paperSeparator joins multiple question papers into one slot.
const paperSeparator = "\n\n---PREVIOUS PAPER---\n\n"

// Ensure Assembler implements the optional prompt-store hook.
var _ driven.PromptStoreAware = (*Assembler)(nil)

// Assembler builds prompts from fixed templates with named slots.
// Templates can be overridden through a PromptStore; embedded defaults
// apply otherwise.
type Assembler struct {
	promptStore driven.PromptStore
}

// New creates a new prompt assembler using the embedded default templates.
func New() *Assembler {
	return &Assembler{}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the assembler uses its embedded default templates.
func (a *Assembler) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// AnswerQuestion builds the answer-question prompt. When retrieval
// produced no context the context section is omitted entirely and the
// generator is instructed to answer from general instructions, never
// handed an empty context slot.
func (a *Assembler) AnswerQuestion(context, question string) string {
	if context == "" {
		tmpl := a.loadPrompt(driven.PromptAnswerGeneral, defaultAnswerGeneralPrompt)
		return fmt.Sprintf(tmpl, question)
	}
	tmpl := a.loadPrompt(driven.PromptAnswerQuestion, defaultAnswerQuestionPrompt)
	return fmt.Sprintf(tmpl, Truncate(context, CapContext), question)
}

// AnalyzePapers builds the analyze-papers prompt.
func (a *Assembler) AnalyzePapers(syllabus string, papers []string) string {
	tmpl := a.loadPrompt(driven.PromptAnalyzePapers, defaultAnalyzePapersPrompt)
	return fmt.Sprintf(tmpl,
		Truncate(syllabus, CapSyllabusAnalysis),
		Truncate(strings.Join(papers, paperSeparator), CapPapers),
	)
}

// GenerateMockTest builds the generate-mock-test prompt.
// mcqMarks and textMarks are the per-question marks already derived
// from the spec's total budget.
func (a *Assembler) GenerateMockTest(spec domain.MockTestSpec, mcqMarks, textMarks int) string {
	notes := spec.NotesText
	if notes == "" {
		notes = "No additional notes provided"
	}

	tmpl := a.loadPrompt(driven.PromptGenerateMockTest, defaultGenerateMockTestPrompt)
	return fmt.Sprintf(tmpl,
		spec.NumMCQ, mcqMarks,
		spec.NumText, textMarks,
		spec.Difficulty,
		Truncate(spec.SyllabusText, CapSyllabusMockTest),
		Truncate(notes, CapNotes),
		Truncate(strings.Join(spec.PaperTexts, paperSeparator), CapPapers),
	)
}

// GradeAnswer builds the grade-text-answer prompt.
func (a *Assembler) GradeAnswer(question, answer string, maxMarks int) string {
	tmpl := a.loadPrompt(driven.PromptGradeAnswer, defaultGradeAnswerPrompt)
	return fmt.Sprintf(tmpl, question, Truncate(answer, CapAnswer), maxMarks)
}

// SummarizeOverall builds the summarize-overall prompt from a graded
// submission's aggregate numbers and per-question performance JSON.
func (a *Assembler) SummarizeOverall(questionCount, maxScore int, score, percentage float64, performanceJSON string) string {
	tmpl := a.loadPrompt(driven.PromptSummarizeOverall, defaultSummarizeOverallPrompt)
	return fmt.Sprintf(tmpl, questionCount, maxScore, score, percentage, performanceJSON)
}

// Truncate cuts s to at most limit bytes without splitting a rune.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// loadPrompt loads a template from the store, falling back to the
// embedded default if unavailable.
func (a *Assembler) loadPrompt(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}
	tmpl, err := a.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return tmpl
}
