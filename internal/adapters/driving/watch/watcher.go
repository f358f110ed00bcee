// Package watch ingests documents automatically as files change in a
// watched directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
)

// defaultExtensions are the file types picked up by the watcher.
var defaultExtensions = []string{".txt", ".md"}

// Config holds configuration for the directory watcher.
type Config struct {
	// Dir is the directory to watch (required).
	Dir string

	// Ingest receives created and updated files (required).
	Ingest driving.IngestService

	// Documents removes records for deleted files (required).
	Documents driving.DocumentService

	// Extensions lists the file extensions to pick up (default: .txt, .md).
	Extensions []string
}

// Watcher ingests files from a directory as they appear or change.
// The document ID is derived from the file name, so rewriting a file
// replaces its index.
type Watcher struct {
	watcher    *fsnotify.Watcher
	dir        string
	ingest     driving.IngestService
	documents  driving.DocumentService
	extensions map[string]struct{}
}

// New creates a watcher for the configured directory.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: directory is required")
	}
	if cfg.Ingest == nil || cfg.Documents == nil {
		return nil, errors.New("watch: ingest and document services are required")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", cfg.Dir)
	}

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsWatcher.Add(cfg.Dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		watcher:    fsWatcher,
		dir:        cfg.Dir,
		ingest:     cfg.Ingest,
		documents:  cfg.Documents,
		extensions: extSet,
	}, nil
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	logger.Info("watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handleEvent maps one filesystem event to an ingest or delete.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !w.watchable(event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		w.ingestFile(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.removeFile(ctx, event.Name)
	}
}

// watchable reports whether the path is a visible file with a tracked
// extension.
func (w *Watcher) watchable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DocumentID returns the document ID used for a watched file path.
func DocumentID(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return
	}

	doc, err := w.ingest.Ingest(ctx, DocumentID(path), filepath.Base(path), string(raw))
	if err != nil {
		if errors.Is(err, domain.ErrIngestInProgress) {
			logger.Debug("skipping %s: ingest already running", path)
			return
		}
		logger.Warn("ingest %s: %v", path, err)
		return
	}

	if doc.State == domain.StateFailed {
		logger.Warn("ingest %s: %s", path, doc.FailReason)
		return
	}
	logger.Info("indexed %s (%d passages)", doc.ID, doc.PassageCount)
}

func (w *Watcher) removeFile(ctx context.Context, path string) {
	id := DocumentID(path)
	if err := w.documents.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		logger.Warn("delete %s: %v", id, err)
		return
	}
	logger.Info("removed %s", id)
}
