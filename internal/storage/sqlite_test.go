package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testStatement(userID string) *model.Statement {
	return &model.Statement{
		ID:            uuid.New().String(),
		UserID:        userID,
		Month:         11,
		Year:          2025,
		Status:        model.StatusPending,
		OriginBank:    "FNB",
		AccountNumber: "62000001",
	}
}

func testTxn(statementID string, date time.Time, desc string, minor int64, txType model.TransactionType, category string) model.Transaction {
	return model.Transaction{
		ID:          uuid.New().String(),
		StatementID: statementID,
		Date:        date,
		Description: desc,
		AmountMinor: minor,
		Type:        txType,
		Category:    category,
	}
}

func TestSQLiteStorage_Migrate_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLiteStorage_StatementRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))

	got, err := s.GetStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, stmt.UserID, got.UserID)
	assert.Equal(t, stmt.Month, got.Month)
	assert.Equal(t, stmt.Year, got.Year)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "FNB", got.OriginBank)
	assert.Zero(t, got.TotalIncomeMinor)
	assert.Zero(t, got.TotalExpensesMinor)
}

func TestSQLiteStorage_GetStatement_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetStatement(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_CreateStatement_Validation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		stmt *model.Statement
	}{
		{name: "nil statement", stmt: nil},
		{name: "missing user", stmt: &model.Statement{ID: "x", Month: 1, Year: 2025}},
		{name: "month out of range", stmt: &model.Statement{ID: "x", UserID: "u", Month: 13, Year: 2025}},
		{name: "month zero", stmt: &model.Statement{ID: "x", UserID: "u", Month: 0, Year: 2025}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.CreateStatement(ctx, tt.stmt))
		})
	}
}

func TestSQLiteStorage_CreateStatement_Duplicate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))
	assert.ErrorIs(t, s.CreateStatement(ctx, stmt), common.ErrDuplicateEntry)
}

func TestSQLiteStorage_ListStatements(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older := testStatement("user-1")
	older.Month = 3
	newer := testStatement("user-1")
	newer.Month = 9
	other := testStatement("user-2")

	require.NoError(t, s.CreateStatement(ctx, older))
	require.NoError(t, s.CreateStatement(ctx, newer))
	require.NoError(t, s.CreateStatement(ctx, other))

	got, err := s.ListStatements(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Month, "newest period first")
	assert.Equal(t, 3, got[1].Month)
}

func TestSQLiteStorage_CommitStatement(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))

	date := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		testTxn(stmt.ID, date, "Salary", 1500000, model.TypeIncome, "Salary"),
		testTxn(stmt.ID, date, "Starbucks", 540, model.TypeExpense, "Food"),
	}

	require.NoError(t, s.CommitStatement(ctx, stmt.ID, txns, 1500000, 540))

	got, err := s.GetStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, int64(1500000), got.TotalIncomeMinor)
	assert.Equal(t, int64(540), got.TotalExpensesMinor)

	persisted, err := s.GetTransactionsByStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

func TestSQLiteStorage_CommitStatement_MissingStatementRollsBack(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// No such statement: the commit must fail as a unit, leaving no
	// transaction rows behind.
	txns := []model.Transaction{
		testTxn("ghost", time.Now().UTC(), "Starbucks", 540, model.TypeExpense, "Food"),
	}

	err := s.CommitStatement(ctx, "ghost", txns, 0, 540)
	require.Error(t, err)

	persisted, err := s.GetTransactionsByStatement(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, persisted, "no partial commit")
}

func TestSQLiteStorage_CommitStatement_RejectsBadTransactions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))

	bad := testTxn(stmt.ID, time.Now().UTC(), "Negative", -100, model.TypeExpense, "Food")
	assert.Error(t, s.CommitStatement(ctx, stmt.ID, []model.Transaction{bad}, 0, 0))

	unknownType := testTxn(stmt.ID, time.Now().UTC(), "Weird", 100, "TRANSFER", "Food")
	assert.Error(t, s.CommitStatement(ctx, stmt.ID, []model.Transaction{unknownType}, 0, 0))
}

func TestSQLiteStorage_DeleteStatement_Cascades(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))

	txns := []model.Transaction{
		testTxn(stmt.ID, time.Now().UTC(), "Starbucks", 540, model.TypeExpense, "Food"),
	}
	require.NoError(t, s.CommitStatement(ctx, stmt.ID, txns, 0, 540))

	require.NoError(t, s.DeleteStatement(ctx, stmt.ID))

	_, err := s.GetStatement(ctx, stmt.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	orphans, err := s.GetTransactionsByStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans, "transactions never outlive their statement")
}

func TestSQLiteStorage_DeleteStatement_NotFound(t *testing.T) {
	s := newTestStorage(t)
	assert.ErrorIs(t, s.DeleteStatement(context.Background(), "missing"), common.ErrNotFound)
}

func TestSQLiteStorage_GetTransactions_Filters(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt1 := testStatement("user-1")
	stmt2 := testStatement("user-2")
	require.NoError(t, s.CreateStatement(ctx, stmt1))
	require.NoError(t, s.CreateStatement(ctx, stmt2))

	nov := time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CommitStatement(ctx, stmt1.ID, []model.Transaction{
		testTxn(stmt1.ID, nov, "Starbucks", 540, model.TypeExpense, "Food"),
		testTxn(stmt1.ID, oct, "Salary", 1500000, model.TypeIncome, "Salary"),
	}, 1500000, 540))
	require.NoError(t, s.CommitStatement(ctx, stmt2.ID, []model.Transaction{
		testTxn(stmt2.ID, nov, "Uber", 8950, model.TypeExpense, "Transport"),
	}, 0, 8950))

	t.Run("by user", func(t *testing.T) {
		got, err := s.GetTransactions(ctx, service.TransactionFilter{UserID: "user-1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by user and type", func(t *testing.T) {
		got, err := s.GetTransactions(ctx, service.TransactionFilter{UserID: "user-1", Type: model.TypeExpense})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Starbucks", got[0].Description)
	})

	t.Run("by date range", func(t *testing.T) {
		start := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
		got, err := s.GetTransactions(ctx, service.TransactionFilter{StartDate: &start})
		require.NoError(t, err)
		assert.Len(t, got, 2, "november transactions across users")
	})

	t.Run("by statement", func(t *testing.T) {
		got, err := s.GetTransactions(ctx, service.TransactionFilter{StatementID: stmt2.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Uber", got[0].Description)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.GetTransactions(ctx, service.TransactionFilter{UserID: "user-1", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestSQLiteStorage_UpdateTransactionCategory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stmt := testStatement("user-1")
	require.NoError(t, s.CreateStatement(ctx, stmt))

	txn := testTxn(stmt.ID, time.Now().UTC(), "Mystery", 1000, model.TypeExpense, model.CategoryUncategorized)
	require.NoError(t, s.CommitStatement(ctx, stmt.ID, []model.Transaction{txn}, 0, 1000))

	require.NoError(t, s.UpdateTransactionCategory(ctx, txn.ID, "Shopping"))

	got, err := s.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got.Category)
}

func TestSQLiteStorage_UpdateTransactionCategory_Errors(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateTransactionCategory(ctx, "missing", "Food"), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTransactionCategory(ctx, "missing", "banana"), common.ErrInvalidCategory)
}
