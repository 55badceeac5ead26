package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// CreateStatement inserts a new statement in PENDING state with zero totals.
func (s *SQLiteStorage) CreateStatement(ctx context.Context, stmt *model.Statement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStatement(stmt); err != nil {
		return err
	}

	if stmt.Status == "" {
		stmt.Status = model.StatusPending
	}
	if stmt.CreatedAt.IsZero() {
		stmt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statements (
			id, user_id, month, year, total_income, total_expenses,
			processing_status, origin_bank, account_number, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		stmt.ID,
		stmt.UserID,
		stmt.Month,
		stmt.Year,
		stmt.TotalIncomeMinor,
		stmt.TotalExpensesMinor,
		string(stmt.Status),
		stmt.OriginBank,
		stmt.AccountNumber,
		stmt.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("statement %s: %w", stmt.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert statement %s: %w", stmt.ID, err)
	}

	return nil
}

// GetStatement fetches one statement by id.
func (s *SQLiteStorage) GetStatement(ctx context.Context, id string) (*model.Statement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, month, year, total_income, total_expenses,
			processing_status, origin_bank, account_number, created_at
		FROM statements WHERE id = ?
	`, id)

	stmt, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement %s: %w", id, err)
	}

	return stmt, nil
}

// ListStatements returns a user's statements, newest period first.
func (s *SQLiteStorage) ListStatements(ctx context.Context, userID string) ([]model.Statement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, month, year, total_income, total_expenses,
			processing_status, origin_bank, account_number, created_at
		FROM statements
		WHERE user_id = ?
		ORDER BY year DESC, month DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []model.Statement
	for rows.Next() {
		stmt, scanErr := scanStatement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", scanErr)
		}
		statements = append(statements, *stmt)
	}

	return statements, rows.Err()
}

// DeleteStatement removes a statement and all transactions it owns. No
// transaction may outlive its statement.
func (s *SQLiteStorage) DeleteStatement(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Explicit child delete; the schema-level cascade only applies when the
	// driver has foreign keys enabled, so don't depend on it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE statement_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete statement transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM statements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
	}

	return tx.Commit()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStatement(row scanner) (*model.Statement, error) {
	var stmt model.Statement
	var status string

	err := row.Scan(
		&stmt.ID,
		&stmt.UserID,
		&stmt.Month,
		&stmt.Year,
		&stmt.TotalIncomeMinor,
		&stmt.TotalExpensesMinor,
		&status,
		&stmt.OriginBank,
		&stmt.AccountNumber,
		&stmt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	stmt.Status = model.ProcessingStatus(status)
	return &stmt, nil
}
