package driven

// PromptStore provides access to prompt templates for the generation
// backend. Implementations may load prompts from files, embed them in
// the binary, or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// PromptStoreAware is an optional interface for components that can use
// custom prompts. Components implementing this interface can have their
// prompt templates customised by injecting a PromptStore after
// construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the component should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerQuestion answers a question grounded in retrieved passages.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswerQuestion = "answer_question"

	// PromptAnswerGeneral answers a question from general instructions only,
	// used when retrieval produced no context.
	// The template expects a %s (question) placeholder.
	PromptAnswerGeneral = "answer_general"

	// PromptAnalyzePapers analyses a syllabus against previous papers.
	// The template expects %s (syllabus) and %s (papers) placeholders.
	PromptAnalyzePapers = "analyze_papers"

	// PromptGenerateMockTest generates an exam paper.
	// The template expects %d (mcq count), %d (mcq marks), %d (text count),
	// %d (text marks), %s (difficulty), %s (syllabus), %s (notes) and
	// %s (papers) placeholders, in that order.
	PromptGenerateMockTest = "generate_mock_test"

	// PromptGradeAnswer grades one descriptive answer.
	// The template expects %s (question), %s (answer) and %d (max marks)
	// placeholders.
	PromptGradeAnswer = "grade_answer"

	// PromptSummarizeOverall summarises a graded submission.
	// The template expects %d (question count), %d (max score), %.1f (score),
	// %.1f (percentage) and %s (per-question performance JSON) placeholders.
	PromptSummarizeOverall = "summarize_overall"
)
