package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

var (
	analyzeSyllabusPath string
	analyzePaperPaths   []string
	analyzeJSON         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse previous question papers against a syllabus",
	Long: `Compares a syllabus with previous question papers and reports unit
weightage, question patterns, focus areas, and a preparation strategy.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSyllabusPath, "syllabus", "", "syllabus text file (required)")
	analyzeCmd.Flags().StringSliceVar(&analyzePaperPaths, "paper", nil, "previous paper text file (repeatable, at least one required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the analysis as JSON")
	_ = analyzeCmd.MarkFlagRequired("syllabus")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if examService == nil {
		return errors.New("exam service not configured: set up a generation backend first")
	}
	if len(analyzePaperPaths) == 0 {
		return errors.New("at least one --paper is required")
	}

	syllabus, err := readFiles([]string{analyzeSyllabusPath})
	if err != nil {
		return err
	}
	papers, err := readFiles(analyzePaperPaths)
	if err != nil {
		return err
	}

	analysis, err := examService.AnalyzePapers(cmd.Context(), syllabus[0], papers)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return printJSON(cmd, analysis)
	}

	printAnalysis(cmd, analysis)
	return nil
}

func printAnalysis(cmd *cobra.Command, a *domain.PaperAnalysis) {
	cmd.Printf("Analysis %s (confidence: %s)\n\n", a.AnalysisID, a.Confidence)
	cmd.Println(a.OverallSummary)

	if len(a.UnitWiseAnalysis) > 0 {
		cmd.Println()
		cmd.Println("Unit-wise analysis:")
		for _, unit := range a.UnitWiseAnalysis {
			cmd.Printf("  %s (%.0f%%, %s)\n", unit.UnitName, unit.Weightage, unit.DifficultyLevel)
			for _, topic := range unit.ImportantTopics {
				cmd.Printf("    - %s\n", topic)
			}
		}
	}

	if len(a.FocusAreas) > 0 {
		cmd.Println()
		cmd.Println("Focus areas:")
		for _, area := range a.FocusAreas {
			cmd.Printf("  - %s\n", area)
		}
	}

	if len(a.SampleQuestions) > 0 {
		cmd.Println()
		cmd.Println("Likely questions:")
		for _, q := range a.SampleQuestions {
			cmd.Printf("  - %s\n", q)
		}
	}

	if a.PreparationStrategy != "" {
		cmd.Println()
		cmd.Println("Preparation strategy:")
		cmd.Println(a.PreparationStrategy)
	}
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
