package prompt

import "github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"

// Defaults returns the embedded default templates keyed by well-known
// prompt name. The file-based prompt store seeds user-editable files
// from these.
func Defaults() map[string]string {
	return map[string]string{
		driven.PromptAnswerQuestion:   defaultAnswerQuestionPrompt,
		driven.PromptAnswerGeneral:    defaultAnswerGeneralPrompt,
		driven.PromptAnalyzePapers:    defaultAnalyzePapersPrompt,
		driven.PromptGenerateMockTest: defaultGenerateMockTestPrompt,
		driven.PromptGradeAnswer:      defaultGradeAnswerPrompt,
		driven.PromptSummarizeOverall: defaultSummarizeOverallPrompt,
	}
}

// Embedded default templates. Each can be overridden through the prompt
// store under the matching well-known name.

const defaultAnswerQuestionPrompt = `You are a helpful study assistant. Answer the question using the provided document context. If the context does not contain the answer, say so and answer from your general knowledge instead.

Context from the document:
%s

Question: %s

Answer:`

const defaultAnswerGeneralPrompt = `You are a helpful study assistant. Answer the following question clearly and concisely.

Question: %s

Answer:`

const defaultAnalyzePapersPrompt = `You are an expert exam analyst. Analyze the previous question papers against the syllabus and identify patterns.

SYLLABUS:
%s

PREVIOUS QUESTION PAPERS:
%s

Respond with a single JSON object of this exact shape:
{
  "overall_summary": "2-3 sentence summary of what the papers emphasise",
  "focus_areas": ["most important topics to prepare, in priority order"],
  "unit_wise_analysis": [
    {
      "unit_name": "unit or chapter name",
      "weightage_percentage": 25.0,
      "important_topics": ["topics from this unit that appear in the papers"],
      "difficulty_level": "easy|medium|hard",
      "recommendation": "how to prepare this unit"
    }
  ],
  "question_patterns": [
    {
      "question_type": "e.g. short answer, long answer, numerical",
      "marks_distribution": {"2": 4, "5": 2},
      "frequency": 3,
      "examples": ["an example question following the pattern"]
    }
  ],
  "sample_questions": ["likely questions for the next exam"],
  "preparation_strategy": "concrete preparation advice based on the patterns",
  "pattern_match_confidence": "high|low"
}

Set pattern_match_confidence to "low" if the papers do not clearly match the syllabus. Return ONLY the JSON object, no additional text.`

const defaultGenerateMockTestPrompt = `You are an expert exam paper setter. Create a mock test from the syllabus, notes and previous papers below.

Requirements:
- Exactly %d multiple-choice questions worth %d marks each, with exactly 4 options and correctAnswer set to the exact text of the right option.
- Exactly %d descriptive questions worth %d marks each, with answer_guidelines listing what a full-marks answer covers.
- Difficulty: %s
- Follow the style and emphasis of the previous papers where provided.

SYLLABUS:
%s

STUDY NOTES:
%s

PREVIOUS QUESTION PAPERS:
%s

Respond with a single JSON object of this exact shape:
{
  "questions": [
    {
      "id": "q1",
      "type": "mcq",
      "question": "question text",
      "options": ["option A", "option B", "option C", "option D"],
      "correctAnswer": "option A",
      "marks": 2,
      "unit": "unit name",
      "topic": "topic name",
      "difficulty": "easy|medium|hard"
    },
    {
      "id": "q2",
      "type": "text",
      "question": "question text",
      "marks": 5,
      "unit": "unit name",
      "topic": "topic name",
      "difficulty": "easy|medium|hard",
      "answer_guidelines": ["point a complete answer should cover"]
    }
  ]
}

Return ONLY the JSON object, no additional text.`

const defaultGradeAnswerPrompt = `You are an expert examiner. Grade the student's answer to the question below.

QUESTION:
%s

STUDENT ANSWER:
%s

Maximum marks: %d

Award marks for correctness, completeness and clarity. Partial credit is allowed. Be fair but rigorous.

Respond with a single JSON object of this exact shape:
{
  "marks_awarded": 0,
  "feedback": "2-3 sentences explaining the award and what was missing",
  "confidence": "high|low"
}

Set confidence to "low" if the answer is ambiguous or off-topic. Return ONLY the JSON object, no additional text.`

const defaultSummarizeOverallPrompt = `You are a supportive study coach. Summarise the student's performance on a mock test of %d questions with a maximum score of %d. The student scored %.1f (%.1f%%).

Per-question performance:
%s

Respond with a single JSON object of this exact shape:
{
  "feedback_summary": "2-3 sentence overall assessment",
  "strengths": ["what the student did well"],
  "improvements": ["what to work on"],
  "study_recommendations": ["concrete next steps"],
  "confidence": "high|low"
}

Return ONLY the JSON object, no additional text.`
