package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Reads and writes configuration values. Keys use dot notation, e.g.

  studyrag config set generation.provider gemini
  studyrag config set embedding.model nomic-embed-text
  studyrag config get generation.provider

API keys can also be supplied via environment variables or a .env file
(OPENAI_API_KEY, GEMINI_API_KEY).`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured backends are reachable",
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %s is not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println(configStore.Path())
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	embSettings := embeddingSettings()
	embedder, err := ai.CreateAndValidateEmbeddingService(embSettings)
	switch {
	case err != nil:
		cmd.Printf("Embedding (%s): %v\n", embSettings.Provider, err)
	case embedder == nil:
		cmd.Println("Embedding: not configured")
	default:
		cmd.Printf("Embedding (%s, %s): ok\n", embSettings.Provider, embedder.ModelName())
		embedder.Close()
	}

	genSettings := generationSettings()
	generator, genErr := ai.CreateAndValidateGenerator(genSettings)
	switch {
	case genErr != nil:
		cmd.Printf("Generation (%s): %v\n", genSettings.Provider, genErr)
	case generator == nil:
		cmd.Println("Generation: not configured")
	default:
		cmd.Printf("Generation (%s, %s): ok\n", genSettings.Provider, generator.ModelName())
		generator.Close()
	}

	if err != nil || genErr != nil {
		return errors.New("one or more backends failed the check")
	}
	return nil
}
