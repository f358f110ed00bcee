package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driving/watch"
)

var watchExtensions []string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest files as they change",
	Long: `Watches a directory and keeps the index in sync with its contents:
new and modified files are ingested, removed files are deleted from the
index. The document ID is the file name without its extension.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchExtensions, "ext", nil, "file extensions to track (default .txt,.md)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured: set up an embedding backend first")
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	watcher, err := watch.New(watch.Config{
		Dir:        args[0],
		Ingest:     ingestService,
		Documents:  documentService,
		Extensions: watchExtensions,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	err = watcher.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
