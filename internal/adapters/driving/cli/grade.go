package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

var (
	gradeMaxMarks    int
	gradeAnswersPath string
	gradeTimeTaken   int
	gradeJSON        bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade answers and submissions",
}

var gradeAnswerCmd = &cobra.Command{
	Use:   "answer [question] [answer]",
	Short: "Grade one descriptive answer",
	Args:  cobra.ExactArgs(2),
	RunE:  runGradeAnswer,
}

var gradeSubmissionCmd = &cobra.Command{
	Use:   "submission [test-id]",
	Short: "Grade a full submission against a stored mock test",
	Long: `Grades a submission file against a stored mock test. The file maps
question IDs to answers:

  {"1": "option text", "2": "a written answer"}

MCQs are matched against the correct option; descriptive answers are
graded by the generation backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runGradeSubmission,
}

var gradeReportsCmd = &cobra.Command{
	Use:   "reports [test-id]",
	Short: "List graded submissions for a stored mock test",
	Args:  cobra.ExactArgs(1),
	RunE:  runGradeReports,
}

func init() {
	gradeAnswerCmd.Flags().IntVar(&gradeMaxMarks, "marks", 5, "maximum marks for the answer")
	gradeAnswerCmd.Flags().BoolVar(&gradeJSON, "json", false, "output the grade as JSON")

	gradeSubmissionCmd.Flags().StringVar(&gradeAnswersPath, "answers", "", "JSON file mapping question IDs to answers (required)")
	gradeSubmissionCmd.Flags().IntVar(&gradeTimeTaken, "time", 0, "time taken in seconds")
	gradeSubmissionCmd.Flags().BoolVar(&gradeJSON, "json", false, "output the report as JSON")
	_ = gradeSubmissionCmd.MarkFlagRequired("answers")

	gradeReportsCmd.Flags().BoolVar(&gradeJSON, "json", false, "output the reports as JSON")

	gradeCmd.AddCommand(gradeAnswerCmd)
	gradeCmd.AddCommand(gradeSubmissionCmd)
	gradeCmd.AddCommand(gradeReportsCmd)
	rootCmd.AddCommand(gradeCmd)
}

func runGradeAnswer(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}

	grade, err := examService.GradeTextAnswer(cmd.Context(), args[0], args[1], gradeMaxMarks)
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	if gradeJSON {
		return printJSON(cmd, grade)
	}

	cmd.Printf("Marks: %.1f / %d (confidence: %s)\n", grade.MarksAwarded, grade.MaxMarks, grade.Confidence)
	cmd.Println(grade.Feedback)
	return nil
}

func runGradeSubmission(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}

	raw, err := os.ReadFile(gradeAnswersPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", gradeAnswersPath, err)
	}

	var answers map[string]string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return fmt.Errorf("parse %s: %w", gradeAnswersPath, err)
	}

	report, err := examService.GradeSubmission(cmd.Context(), args[0], answers, gradeTimeTaken)
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	if gradeJSON {
		return printJSON(cmd, report)
	}

	cmd.Printf("Score: %.1f / %d (%.0f%%)\n\n", report.TotalScore, report.MaxScore, report.Percentage)
	cmd.Println(report.Summary.FeedbackSummary)

	if len(report.Summary.Strengths) > 0 {
		cmd.Println()
		cmd.Println("Strengths:")
		for _, s := range report.Summary.Strengths {
			cmd.Printf("  - %s\n", s)
		}
	}
	if len(report.Summary.Improvements) > 0 {
		cmd.Println()
		cmd.Println("Improvements:")
		for _, s := range report.Summary.Improvements {
			cmd.Printf("  - %s\n", s)
		}
	}

	cmd.Println()
	cmd.Println("Per question:")
	for _, fb := range report.QuestionFeedback {
		cmd.Printf("  [%s] %.1f / %d", fb.QuestionID, fb.MarksAwarded, fb.MaxMarks)
		if fb.IsCorrect != nil {
			if *fb.IsCorrect {
				cmd.Print("  correct")
			} else {
				cmd.Printf("  incorrect (expected: %s)", fb.CorrectAnswer)
			}
		}
		cmd.Println()
	}
	return nil
}

func runGradeReports(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}

	reports, err := examService.ListReports(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("mock test %s not found", args[0])
		}
		return fmt.Errorf("list reports failed: %w", err)
	}

	if gradeJSON {
		return printJSON(cmd, reports)
	}

	if len(reports) == 0 {
		cmd.Println("No graded submissions for this test.")
		return nil
	}

	for _, report := range reports {
		cmd.Printf("%s  %.1f / %d (%.0f%%)  %s\n",
			report.SubmissionID, report.TotalScore, report.MaxScore,
			report.Percentage, report.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
