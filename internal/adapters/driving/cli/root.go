// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/ai"
	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/config/file"
	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/storage/memory"
	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/storage/sqlite"
	"github.com/studyrag-labs/studyrag-cli/internal/chunker"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/core/services"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by initServices. Commands guard against nil when the
// backing provider is not configured.
var (
	ingestService   driving.IngestService
	askService      driving.AskService
	examService     driving.ExamService
	documentService driving.DocumentService

	configStore driven.ConfigStore
	promptStore driven.PromptStore
)

// closers holds resources released after command execution.
var closers []func()

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "Document Q&A and exam preparation from the command line",
	Long: `StudyRAG ingests study material into a local vector index and answers
questions grounded in it. It can also analyse previous question papers,
generate mock tests, and grade answers using a generation backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if skipServiceInit(cmd) {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx. Cancelling ctx stops
// long-running commands such as watch and mcp serve.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// skipServiceInit reports whether a command runs without backing services.
func skipServiceInit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// dataDir returns the application data directory (~/.studyrag).
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".studyrag"), nil
}

// initServices wires stores, backends, and core services.
// Missing backend configuration is not an error here; commands that
// need the missing service report it.
func initServices() error {
	// Already wired, e.g. by a test.
	if documentService != nil {
		return nil
	}

	// .env values fill in API keys without touching the config file.
	_ = godotenv.Load()

	dir, err := dataDir()
	if err != nil {
		return err
	}

	cfg, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = cfg

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}
	promptStore = prompts

	docStore, indexStore, testStore, err := openStores(dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(embeddingSettings())
	if err != nil {
		return err
	}
	if embedder != nil {
		closers = append(closers, func() { embedder.Close() })
	}

	generator, err := ai.CreateGenerator(generationSettings())
	if err != nil {
		return err
	}
	if generator != nil {
		closers = append(closers, func() { generator.Close() })
	}

	if embedder != nil {
		ingestService = services.NewIngestor(docStore, indexStore, embedder, chunker.New())
	} else {
		logger.Debug("embedding backend not configured, ingestion disabled")
	}

	var asker *services.Asker
	if embedder != nil && generator != nil {
		asker = services.NewAsker(docStore, indexStore, embedder, generator)
		askService = asker
	}
	if generator != nil {
		examService = services.NewExaminer(generator, testStore)
	} else {
		logger.Debug("generation backend not configured, ask and exam features disabled")
	}

	onDelete := func(string) {}
	if asker != nil {
		onDelete = asker.Invalidate
	}
	documentService = services.NewDocumentManager(docStore, indexStore, onDelete)

	// Inject customisable prompts into every service that accepts them.
	for _, svc := range []any{askService, examService} {
		if aware, ok := svc.(driven.PromptStoreAware); ok {
			aware.SetPromptStore(promptStore)
		}
	}

	return nil
}

// openStores opens the persistence backend. SQLite is the default;
// storage.backend = "memory" keeps everything in process for
// throwaway sessions.
func openStores(dir string) (driven.DocumentStore, driven.IndexStore, driven.MockTestStore, error) {
	backend := configOrEnv("storage.backend", "STUDYRAG_STORAGE_BACKEND")
	switch backend {
	case "memory":
		logger.Debug("using in-memory storage, nothing will be persisted")
		return memory.NewDocumentStore(), memory.NewIndexStore(), memory.NewMockTestStore(), nil
	case "", "sqlite":
		store, err := sqlite.NewStore(filepath.Join(dir, "data"))
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { store.Close() })
		return store.DocumentStore(), store.IndexStore(), store.MockTestStore(), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// closeServices releases resources acquired by initServices.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// configOrEnv reads a config key, falling back to an environment variable.
func configOrEnv(key, envVar string) string {
	if configStore != nil {
		if v := configStore.GetString(key); v != "" {
			return v
		}
	}
	return os.Getenv(envVar)
}

// embeddingSettings builds embedding configuration from the config store
// and environment. The provider defaults to local Ollama.
func embeddingSettings() *domain.EmbeddingSettings {
	provider := configOrEnv("embedding.provider", "STUDYRAG_EMBEDDING_PROVIDER")
	if provider == "" {
		provider = string(domain.AIProviderOllama)
	}

	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(provider),
		Model:    configOrEnv("embedding.model", "STUDYRAG_EMBEDDING_MODEL"),
		BaseURL:  configOrEnv("embedding.base_url", "STUDYRAG_EMBEDDING_BASE_URL"),
		APIKey:   configOrEnv("embedding.api_key", "OPENAI_API_KEY"),
	}
}

// generationSettings builds generation configuration from the config
// store and environment. The provider defaults to local Ollama.
func generationSettings() *domain.GenerationSettings {
	provider := configOrEnv("generation.provider", "STUDYRAG_GENERATION_PROVIDER")
	if provider == "" {
		provider = string(domain.AIProviderOllama)
	}

	return &domain.GenerationSettings{
		Provider: domain.AIProvider(provider),
		Model:    configOrEnv("generation.model", "STUDYRAG_GENERATION_MODEL"),
		BaseURL:  configOrEnv("generation.base_url", "STUDYRAG_GENERATION_BASE_URL"),
		APIKey:   configOrEnv("generation.api_key", "GEMINI_API_KEY"),
	}
}
