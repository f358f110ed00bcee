package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askDocumentID  string
	askStream      bool
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question",
	Long: `Answers a question using the generation backend. With --document the
answer is grounded in that document's indexed passages; without it the
backend answers from general knowledge.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "document", "d", "", "document ID to ground the answer in")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the answer as it is generated")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved context before the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured: set up embedding and generation backends first")
	}

	question := args[0]

	if askStream {
		return runAskStream(cmd, question)
	}

	answer, err := askService.Ask(cmd.Context(), askDocumentID, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askShowContext && answer.Context != "" {
		cmd.Println("Context:")
		cmd.Println(answer.Context)
		cmd.Println()
	}
	cmd.Println(answer.Text)
	return nil
}

func runAskStream(cmd *cobra.Command, question string) error {
	chunks, err := askService.AskStream(cmd.Context(), askDocumentID, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	for chunk := range chunks {
		if chunk.Err != "" {
			cmd.Println()
			return fmt.Errorf("generation failed: %s", chunk.Err)
		}
		if chunk.Context != "" && askShowContext {
			cmd.Println("Context:")
			cmd.Println(chunk.Context)
			cmd.Println()
		}
		cmd.Print(chunk.Delta)
	}
	cmd.Println()
	return nil
}
