package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/tallyflow/tally/internal/config"
	"github.com/tallyflow/tally/internal/llm"
	"github.com/tallyflow/tally/internal/service"
	"github.com/tallyflow/tally/internal/storage"
)

const defaultUserID = "local"

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tally/tally.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentUser resolves the acting user id. Single-user installs run under
// the default id without any configuration.
func currentUser(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if id := viper.GetString("user.id"); id != "" {
		return id
	}
	return defaultUserID
}

// llmConfig assembles the LLM collaborator configuration from viper. The API
// key can come from the config file or TALLY_LLM_API_KEY.
func llmConfig() llm.Config {
	return llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}
}

// newClassifier builds the LLM classifier when an API key is configured.
// Without one, ingestion still works; transactions land as Uncategorized.
func newClassifier(logger *slog.Logger) (*llm.Classifier, error) {
	cfg := llmConfig()
	if cfg.APIKey == "" {
		return nil, nil
	}
	return llm.NewClassifier(cfg, logger)
}
