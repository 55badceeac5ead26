// Package llm implements the external AI collaborators: the per-transaction
// classifier, the document extractor, and the insight generator. All three
// share one chat-completion client and degrade to local fallbacks when the
// remote service misbehaves.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is a minimal chat-completion interface. Implementations return the
// raw assistant message content; callers own prompt construction and parsing.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for LLM-backed collaborators.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// NewClient creates a chat-completion client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// cleanMarkdownWrapper strips ```json fences that chat models wrap around
// JSON payloads despite instructions not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
