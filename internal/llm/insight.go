package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyflow/tally/internal/model"
)

// Insighter implements service.InsightGenerator: it turns a rolling habit
// summary into a short behavioral write-up. Purely advisory output.
type Insighter struct {
	client Client
	logger *slog.Logger
}

// NewInsighter creates a new LLM-backed insight generator.
func NewInsighter(client Client, logger *slog.Logger) *Insighter {
	return &Insighter{client: client, logger: logger}
}

const insightSystemPrompt = `You are a financial psychologist. Based on the user's spending summary over the LAST 3 MONTHS:
1. Assign them a fun "Money Personality" (e.g., The Social Spender, The Tech Investor).
2. Give 1 insightful sentence explaining why based on their highest category or frequency.
3. Be positive but insightful.`

// GenerateInsight renders the habit summary as context lines and asks the
// model for the personality write-up.
func (i *Insighter) GenerateInsight(ctx context.Context, summary []model.CategorySummary) (string, error) {
	if len(summary) == 0 {
		return "", fmt.Errorf("no spending summary to analyze")
	}

	lines := make([]string, 0, len(summary))
	for _, s := range summary {
		lines = append(lines, fmt.Sprintf("%s: Spent R%.0f across %d transactions.", s.Category, s.Total, s.Count))
	}

	content, err := i.client.Complete(ctx, insightSystemPrompt, strings.Join(lines, "\n"))
	if err != nil {
		return "", fmt.Errorf("insight generation failed: %w", err)
	}

	i.logger.Debug("insight generated", "categories", len(summary))

	return strings.TrimSpace(content), nil
}
