package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tallyflow/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("value cannot be empty")
	ErrInvalidStatement = errors.New("invalid statement")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

func validateStatement(stmt *model.Statement) error {
	if stmt == nil {
		return fmt.Errorf("%w: nil", ErrInvalidStatement)
	}
	if stmt.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidStatement)
	}
	if stmt.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidStatement)
	}
	if stmt.Month < 1 || stmt.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidStatement, stmt.Month)
	}
	if stmt.Year < 1900 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidStatement, stmt.Year)
	}
	return nil
}

func validateTransactions(txns []model.Transaction) error {
	for i := range txns {
		if txns[i].ID == "" {
			return fmt.Errorf("transaction %d: %w: id", i, ErrEmptyString)
		}
		if txns[i].StatementID == "" {
			return fmt.Errorf("transaction %s: %w: statement id", txns[i].ID, ErrEmptyString)
		}
		if txns[i].Type != model.TypeIncome && txns[i].Type != model.TypeExpense {
			return fmt.Errorf("transaction %s: unknown type %q", txns[i].ID, txns[i].Type)
		}
		if txns[i].AmountMinor < 0 {
			return fmt.Errorf("transaction %s: negative amount %d", txns[i].ID, txns[i].AmountMinor)
		}
	}
	return nil
}
