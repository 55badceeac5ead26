package llm

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifierWithClient(&mockClient{content: "  Food\n"}, slog.Default())
	defer c.Close()

	label, err := c.Classify(context.Background(), "Starbucks", 5.40)
	require.NoError(t, err)
	assert.Equal(t, "Food", label, "reply is trimmed but otherwise verbatim")
}

func TestClassifier_Classify_OutOfVocabularyPassedThrough(t *testing.T) {
	// The classifier does not coerce labels; that is the resolver's job.
	c := NewClassifierWithClient(&mockClient{content: "banana"}, slog.Default())
	defer c.Close()

	label, err := c.Classify(context.Background(), "Mystery debit", 10)
	require.NoError(t, err)
	assert.Equal(t, "banana", label)
}

func TestClassifyPrompt_ContainsVocabularyAndTransaction(t *testing.T) {
	prompt := classifyPrompt("Starbucks", 5.40)

	assert.Contains(t, prompt, `"Starbucks"`)
	assert.Contains(t, prompt, "5.40")
	assert.Contains(t, prompt, "Uncategorized")
	assert.Contains(t, prompt, "EFT/Transfer")
}
