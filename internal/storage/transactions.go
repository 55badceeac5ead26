package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// CommitStatement bulk-inserts the verified transactions and updates the
// owning statement's totals and status inside one database transaction.
// Either every write lands or none of them do; totals never reflect a
// transaction set that was not fully inserted.
func (s *SQLiteStorage) CommitStatement(ctx context.Context, statementID string, txns []model.Transaction, incomeMinor, expensesMinor int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, statement_id, date, description, amount, type, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range txns {
		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			statementID,
			txn.Date,
			txn.Description,
			txn.AmountMinor,
			string(txn.Type),
			txn.Category,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE statements
		SET total_income = ?, total_expenses = ?, processing_status = ?
		WHERE id = ?
	`, incomeMinor, expensesMinor, string(model.StatusCompleted), statementID)
	if err != nil {
		return fmt.Errorf("failed to update statement totals: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check totals update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("statement %s: %w", statementID, common.ErrNotFound)
	}

	return tx.Commit()
}

// GetTransactionByID fetches one persisted transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, statement_id, date, description, amount, type, category
		FROM transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}

	return txn, nil
}

// GetTransactionsByStatement returns a statement's transactions in date order.
func (s *SQLiteStorage) GetTransactionsByStatement(ctx context.Context, statementID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, `
		SELECT id, statement_id, date, description, amount, type, category
		FROM transactions
		WHERE statement_id = ?
		ORDER BY date, id
	`, statementID)
}

// GetTransactions returns transactions matching the filter, joined through
// statements so user scoping works. Results are in date order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := strings.Builder{}
	query.WriteString(`
		SELECT t.id, t.statement_id, t.date, t.description, t.amount, t.type, t.category
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		WHERE 1=1
	`)

	var args []any
	if filter.UserID != "" {
		query.WriteString(" AND s.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.StatementID != "" {
		query.WriteString(" AND t.statement_id = ?")
		args = append(args, filter.StatementID)
	}
	if filter.Type != "" {
		query.WriteString(" AND t.type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.StartDate != nil {
		query.WriteString(" AND t.date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query.WriteString(" AND t.date <= ?")
		args = append(args, *filter.EndDate)
	}

	query.WriteString(" ORDER BY t.date, t.id")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	return s.queryTransactions(ctx, query.String(), args...)
}

// UpdateTransactionCategory overwrites a single persisted transaction's
// category. This is the manual reassignment path; it bypasses the classifier
// and is a direct point update.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, transactionID, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if !model.ValidCategory(category) {
		return fmt.Errorf("%w: %q", common.ErrInvalidCategory, category)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category = ? WHERE id = ?`,
		category, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check category update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, common.ErrNotFound)
	}

	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		txns = append(txns, *txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var txType string

	err := row.Scan(
		&txn.ID,
		&txn.StatementID,
		&txn.Date,
		&txn.Description,
		&txn.AmountMinor,
		&txType,
		&txn.Category,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txType)
	return &txn, nil
}
