package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

var (
	mocktestSyllabusPath string
	mocktestPaperPaths   []string
	mocktestNotesPath    string
	mocktestNumMCQ       int
	mocktestNumText      int
	mocktestTotalMarks   int
	mocktestDifficulty   string
	mocktestJSON         bool
)

var mocktestCmd = &cobra.Command{
	Use:   "mocktest",
	Short: "Generate and inspect mock tests",
}

var mocktestGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a mock test from a syllabus and previous papers",
	RunE:  runMocktestGenerate,
}

var mocktestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored mock tests",
	RunE:  runMocktestList,
}

var mocktestShowCmd = &cobra.Command{
	Use:   "show [test-id]",
	Short: "Print a stored mock test",
	Args:  cobra.ExactArgs(1),
	RunE:  runMocktestShow,
}

func init() {
	mocktestGenerateCmd.Flags().StringVar(&mocktestSyllabusPath, "syllabus", "", "syllabus text file (required)")
	mocktestGenerateCmd.Flags().StringSliceVar(&mocktestPaperPaths, "paper", nil, "previous paper text file (repeatable, at least one required)")
	mocktestGenerateCmd.Flags().StringVar(&mocktestNotesPath, "notes", "", "optional study notes text file")
	mocktestGenerateCmd.Flags().IntVar(&mocktestNumMCQ, "mcq", 5, "number of multiple-choice questions")
	mocktestGenerateCmd.Flags().IntVar(&mocktestNumText, "text", 3, "number of descriptive questions")
	mocktestGenerateCmd.Flags().IntVar(&mocktestTotalMarks, "marks", 40, "total marks")
	mocktestGenerateCmd.Flags().StringVar(&mocktestDifficulty, "difficulty", "medium", "difficulty level (easy/medium/hard)")
	mocktestGenerateCmd.Flags().BoolVar(&mocktestJSON, "json", false, "output the test as JSON")
	_ = mocktestGenerateCmd.MarkFlagRequired("syllabus")

	mocktestShowCmd.Flags().BoolVar(&mocktestJSON, "json", false, "output the test as JSON")

	mocktestCmd.AddCommand(mocktestGenerateCmd)
	mocktestCmd.AddCommand(mocktestListCmd)
	mocktestCmd.AddCommand(mocktestShowCmd)
	rootCmd.AddCommand(mocktestCmd)
}

func runMocktestGenerate(cmd *cobra.Command, _ []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}
	if len(mocktestPaperPaths) == 0 {
		return errors.New("at least one --paper is required")
	}

	syllabus, err := readFiles([]string{mocktestSyllabusPath})
	if err != nil {
		return err
	}
	papers, err := readFiles(mocktestPaperPaths)
	if err != nil {
		return err
	}

	notes := ""
	if mocktestNotesPath != "" {
		contents, err := readFiles([]string{mocktestNotesPath})
		if err != nil {
			return err
		}
		notes = contents[0]
	}

	test, err := examService.GenerateMockTest(cmd.Context(), domain.MockTestSpec{
		SyllabusText: syllabus[0],
		PaperTexts:   papers,
		NotesText:    notes,
		NumMCQ:       mocktestNumMCQ,
		NumText:      mocktestNumText,
		TotalMarks:   mocktestTotalMarks,
		Difficulty:   mocktestDifficulty,
	})
	if err != nil {
		return fmt.Errorf("mock test generation failed: %w", err)
	}

	if mocktestJSON {
		return printJSON(cmd, test)
	}

	printMockTest(cmd, test)
	return nil
}

func runMocktestList(cmd *cobra.Command, _ []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}

	tests, err := examService.ListTests(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tests failed: %w", err)
	}

	if len(tests) == 0 {
		cmd.Println("No mock tests stored.")
		return nil
	}

	for _, test := range tests {
		cmd.Printf("%s  %s  (%d questions, %d marks, %d min)\n",
			test.TestID, test.Title, len(test.Questions), test.TotalMarks, test.TimeLimit)
	}
	return nil
}

func runMocktestShow(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}

	test, err := examService.GetTest(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("mock test %s not found", args[0])
		}
		return fmt.Errorf("get test failed: %w", err)
	}

	if mocktestJSON {
		return printJSON(cmd, test)
	}

	printMockTest(cmd, test)
	return nil
}

func printMockTest(cmd *cobra.Command, test *domain.MockTest) {
	cmd.Printf("%s (%s)\n", test.Title, test.TestID)
	cmd.Printf("Total marks: %d   Time limit: %d min   Difficulty: %s   Confidence: %s\n",
		test.TotalMarks, test.TimeLimit, test.Difficulty, test.Confidence)
	cmd.Println()

	for _, q := range test.Questions {
		cmd.Printf("[%s] (%d marks) %s\n", q.ID, q.Marks, q.Question)
		for i, option := range q.Options {
			cmd.Printf("    %c) %s\n", 'a'+i, option)
		}
		cmd.Println()
	}
}
