// Package model defines the core domain types shared across the pipeline.
package model

import (
	"math"
	"time"
)

// TransactionType partitions transactions into money in and money out.
// Sign is carried exclusively by the type; Amount is always absolute.
type TransactionType string

const (
	// TypeIncome represents money coming into the account.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense represents money leaving the account.
	TypeExpense TransactionType = "EXPENSE"
)

// ParseTransactionType case-folds an upstream type label to the two-value
// enum. Anything that is not income is treated as an expense.
func ParseTransactionType(label string) TransactionType {
	switch label {
	case "INCOME", "income", "Income", "CREDIT", "credit":
		return TypeIncome
	default:
		return TypeExpense
	}
}

// Transaction is a single financial transaction. Before commit it is an
// in-memory candidate produced by extraction: ID is only unique within one
// batch, Selected tracks inclusion during the verification phase, and Amount
// holds absolute major currency units. After commit StatementID is set,
// Selected is meaningless, and AmountMinor is the persisted integer value.
type Transaction struct {
	Date        time.Time
	ID          string
	StatementID string
	Description string
	Category    string
	Type        TransactionType
	Amount      float64
	AmountMinor int64
	Selected    bool
}

// MinorUnits converts the candidate amount to integer minor currency units
// (cents), the only representation persisted totals are computed in.
func (t *Transaction) MinorUnits() int64 {
	if t.AmountMinor != 0 {
		return t.AmountMinor
	}
	return int64(math.Round(t.Amount * 100))
}

// MajorUnits converts a persisted minor-unit amount back to major units.
func (t *Transaction) MajorUnits() float64 {
	if t.AmountMinor != 0 {
		return float64(t.AmountMinor) / 100
	}
	return t.Amount
}

// DateString renders the transaction date in the ISO form used everywhere.
func (t *Transaction) DateString() string {
	return t.Date.Format("2006-01-02")
}
