// Package ledger tracks per-transaction inclusion during the verification
// phase and converts the selected subset into a committed statement.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Ledger is a single verification session over one candidate batch. Every
// candidate starts selected; totals are display-only until commit.
type Ledger struct {
	candidates []model.Transaction
}

// New creates a verification session over the given candidates.
func New(candidates []model.Transaction) *Ledger {
	return &Ledger{candidates: candidates}
}

// Candidates returns the session's full candidate list in input order.
func (l *Ledger) Candidates() []model.Transaction {
	return l.candidates
}

// Toggle flips exactly one candidate's inclusion flag and returns the
// recomputed running totals. It reports false when no candidate has the id.
func (l *Ledger) Toggle(id string) (income, expenses float64, ok bool) {
	for i := range l.candidates {
		if l.candidates[i].ID == id {
			l.candidates[i].Selected = !l.candidates[i].Selected
			income, expenses = l.Totals()
			return income, expenses, true
		}
	}

	income, expenses = l.Totals()
	return income, expenses, false
}

// Totals sums the amounts of currently selected candidates, partitioned by
// type, in major currency units.
func (l *Ledger) Totals() (income, expenses float64) {
	for _, txn := range l.candidates {
		if !txn.Selected {
			continue
		}
		switch txn.Type {
		case model.TypeIncome:
			income += txn.Amount
		case model.TypeExpense:
			expenses += txn.Amount
		}
	}
	return income, expenses
}

// Selected returns the candidates currently marked for inclusion.
func (l *Ledger) Selected() []model.Transaction {
	var selected []model.Transaction
	for _, txn := range l.candidates {
		if txn.Selected {
			selected = append(selected, txn)
		}
	}
	return selected
}

// Commit persists the selected subset as the statement's transactions and
// sets the statement totals from that same subset. The storage gateway
// performs both writes as a single unit of work; a partial commit is a
// correctness violation, so any error here means nothing was persisted.
func (l *Ledger) Commit(ctx context.Context, storage service.Storage, statementID string) (int, error) {
	var incomeMinor, expensesMinor int64
	selected := l.Selected()

	records := make([]model.Transaction, 0, len(selected))
	for _, txn := range selected {
		minor := txn.MinorUnits()
		switch txn.Type {
		case model.TypeIncome:
			incomeMinor += minor
		case model.TypeExpense:
			expensesMinor += minor
		}

		category := txn.Category
		if category == "" {
			category = model.CategoryUncategorized
		}

		records = append(records, model.Transaction{
			ID:          uuid.New().String(),
			StatementID: statementID,
			Date:        txn.Date,
			Description: txn.Description,
			Category:    category,
			Type:        txn.Type,
			AmountMinor: minor,
		})
	}

	if err := storage.CommitStatement(ctx, statementID, records, incomeMinor, expensesMinor); err != nil {
		return 0, fmt.Errorf("failed to commit statement: %w", err)
	}

	return len(records), nil
}
