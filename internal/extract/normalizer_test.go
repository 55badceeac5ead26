package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	extraction := &service.Extraction{
		Metadata: service.ExtractionMetadata{Bank: "FNB", Account: "62000001"},
		Transactions: []service.ExtractedTransaction{
			{Date: "2025-11-02", Description: "Starbucks", Amount: -5.40, Type: "expense"},
			{Date: "2025-11-01", Description: "Salary", Amount: 15000, Type: "INCOME", Category: "Salary"},
			{Date: "not-a-date", Description: "  ", Amount: 20, Type: "debit"},
		},
	}

	got, err := n.Normalize(extraction, 2025)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "temp-0", got[0].ID)
	assert.Equal(t, 5.40, got[0].Amount, "amount is normalized to its absolute value")
	assert.Equal(t, model.TypeExpense, got[0].Type)
	assert.Empty(t, got[0].Category)
	assert.True(t, got[0].Selected)

	assert.Equal(t, model.TypeIncome, got[1].Type, "type label is case-folded")
	assert.Equal(t, "Salary", got[1].Category, "upstream category is preserved")

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got[2].Date,
		"unparseable date defaults to january first of the statement year")
	assert.Equal(t, "Unknown Transaction", got[2].Description)
	assert.Equal(t, model.TypeExpense, got[2].Type, "unknown labels are expenses")
}

func TestNormalizer_Normalize_Empty(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(&service.Extraction{}, 2025)
	assert.ErrorIs(t, err, common.ErrExtractionEmpty)

	_, err = n.Normalize(nil, 2025)
	assert.ErrorIs(t, err, common.ErrExtractionEmpty)
}

func TestNormalizer_FromCandidates(t *testing.T) {
	n := NewNormalizer()

	_, err := n.FromCandidates(nil)
	assert.ErrorIs(t, err, common.ErrExtractionEmpty)

	candidates := []model.Transaction{{ID: "temp-0", Amount: 1.00, Type: model.TypeExpense, Selected: true}}
	got, err := n.FromCandidates(candidates)
	require.NoError(t, err)
	assert.Equal(t, candidates, got)
}
