package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

var (
	ingestID    string
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the index",
	Long: `Reads a text file, splits it into passages, embeds them, and stores
a searchable index. Re-ingesting with the same --id replaces the
previous index.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (generated when empty)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured: set up an embedding backend first")
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	title := ingestTitle
	if title == "" {
		title = filepath.Base(path)
	}

	doc, err := ingestService.Ingest(cmd.Context(), ingestID, title, string(raw))
	if err != nil {
		if errors.Is(err, domain.ErrIngestInProgress) {
			return fmt.Errorf("document %s is already being ingested", ingestID)
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

// printDocument writes a one-document summary.
func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("ID:       %s\n", doc.ID)
	cmd.Printf("Title:    %s\n", doc.Title)
	cmd.Printf("State:    %s\n", doc.State)
	if doc.State == domain.StateFailed && doc.FailReason != "" {
		cmd.Printf("Reason:   %s\n", doc.FailReason)
	}
	if doc.State == domain.StateIndexed {
		cmd.Printf("Passages: %d\n", doc.PassageCount)
		cmd.Printf("Model:    %s\n", doc.EmbeddingModel)
	}
}

// readFiles reads each path and returns the contents in order.
func readFiles(paths []string) ([]string, error) {
	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			return nil, fmt.Errorf("%s is empty", path)
		}
		texts = append(texts, string(raw))
	}
	return texts, nil
}
