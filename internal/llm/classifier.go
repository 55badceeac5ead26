package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Classifier implements service.Classifier against a chat-completion client.
// It returns the model's label verbatim; vocabulary coercion is the
// resolver's job.
type Classifier struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewClassifier creates a new LLM-backed transaction classifier.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// NewClassifierWithClient builds a classifier around an existing client.
// Used by tests and by callers that share one client across collaborators.
func NewClassifierWithClient(client Client, logger *slog.Logger) *Classifier {
	return &Classifier{
		client:      client,
		logger:      logger,
		retryOpts:   service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second},
		rateLimiter: newRateLimiter(0),
	}
}

// Classify asks the model for a single category label for one transaction.
func (c *Classifier) Classify(ctx context.Context, description string, amount float64) (string, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	prompt := classifyPrompt(description, amount)

	var content string
	err := common.WithRetry(ctx, func() error {
		var completeErr error
		content, completeErr = c.client.Complete(ctx, classifySystemPrompt, prompt)
		return completeErr
	}, c.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	label := strings.TrimSpace(content)
	c.logger.Debug("transaction classified",
		"description", description,
		"amount", amount,
		"label", label)

	return label, nil
}

const classifySystemPrompt = "You are a helpful financial assistant."

func classifyPrompt(description string, amount float64) string {
	return fmt.Sprintf(`You are a financial classifier.
Categorize this transaction: %q with amount %.2f.

Strictly choose ONE category from this list:
[%s]

If it represents income or salary, choose "Salary".
If you are unsure, choose "Uncategorized".

Reply with ONLY the category name. No punctuation.`,
		description, amount, strings.Join(model.Categories, ", "))
}

// Close releases the classifier's rate limiter.
func (c *Classifier) Close() {
	c.rateLimiter.Close()
}
