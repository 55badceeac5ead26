package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

func sessionCandidates() []model.Transaction {
	return []model.Transaction{
		{ID: "temp-0", Description: "Salary", Amount: 15000.00, Type: model.TypeIncome, Selected: true},
		{ID: "temp-1", Description: "Starbucks", Amount: 5.40, Type: model.TypeExpense, Selected: true},
		{ID: "temp-2", Description: "Rent", Amount: 4500.00, Type: model.TypeExpense, Selected: true},
	}
}

func TestLedger_Totals(t *testing.T) {
	l := New(sessionCandidates())

	income, expenses := l.Totals()
	assert.Equal(t, 15000.00, income)
	assert.Equal(t, 4505.40, expenses)
}

func TestLedger_Toggle(t *testing.T) {
	l := New(sessionCandidates())

	income, expenses, ok := l.Toggle("temp-2")
	require.True(t, ok)
	assert.Equal(t, 15000.00, income)
	assert.Equal(t, 5.40, expenses, "excluded candidate leaves the expense total")

	// Toggling the same item twice returns totals to their prior value.
	income, expenses, ok = l.Toggle("temp-2")
	require.True(t, ok)
	assert.Equal(t, 15000.00, income)
	assert.Equal(t, 4505.40, expenses)
}

func TestLedger_Toggle_UnknownID(t *testing.T) {
	l := New(sessionCandidates())

	income, expenses, ok := l.Toggle("temp-99")
	assert.False(t, ok)
	assert.Equal(t, 15000.00, income)
	assert.Equal(t, 4505.40, expenses, "totals unchanged")
}

func TestLedger_Selected(t *testing.T) {
	l := New(sessionCandidates())
	l.Toggle("temp-0")

	selected := l.Selected()
	require.Len(t, selected, 2)
	assert.Equal(t, "temp-1", selected[0].ID)
	assert.Equal(t, "temp-2", selected[1].ID)
}

// commitRecorder captures the single unit-of-work call.
type commitRecorder struct {
	service.Storage

	statementID   string
	txns          []model.Transaction
	incomeMinor   int64
	expensesMinor int64
	err           error
}

func (c *commitRecorder) CommitStatement(_ context.Context, statementID string, txns []model.Transaction, incomeMinor, expensesMinor int64) error {
	c.statementID = statementID
	c.txns = txns
	c.incomeMinor = incomeMinor
	c.expensesMinor = expensesMinor
	return c.err
}

func TestLedger_Commit(t *testing.T) {
	candidates := sessionCandidates()
	candidates[1].Category = "Food"
	candidates[1].Date = time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)

	l := New(candidates)
	l.Toggle("temp-2") // exclude rent

	store := &commitRecorder{}
	count, err := l.Commit(context.Background(), store, "stmt-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, "stmt-1", store.statementID)
	assert.Equal(t, int64(1500000), store.incomeMinor)
	assert.Equal(t, int64(540), store.expensesMinor, "totals never reflect unselected candidates")

	require.Len(t, store.txns, 2)
	for _, txn := range store.txns {
		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, "stmt-1", txn.StatementID)
		assert.NotEmpty(t, txn.Category)
	}
	assert.Equal(t, int64(1500000), store.txns[0].AmountMinor)
	assert.Equal(t, model.CategoryUncategorized, store.txns[0].Category, "empty category defaults at commit")
	assert.Equal(t, "Food", store.txns[1].Category)
}

func TestLedger_Commit_RoundsToMinorUnits(t *testing.T) {
	l := New([]model.Transaction{
		{ID: "temp-0", Description: "Odd cents", Amount: 10.005, Type: model.TypeExpense, Selected: true},
	})

	store := &commitRecorder{}
	_, err := l.Commit(context.Background(), store, "stmt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), store.expensesMinor)
}

func TestLedger_Commit_PropagatesStorageFailure(t *testing.T) {
	l := New(sessionCandidates())

	store := &commitRecorder{err: errors.New("disk full")}
	_, err := l.Commit(context.Background(), store, "stmt-1")
	assert.Error(t, err, "persistence failure surfaces as a commit failure")
}
