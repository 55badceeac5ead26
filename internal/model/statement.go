package model

import "time"

// ProcessingStatus tracks a statement through the ingestion pipeline.
type ProcessingStatus string

const (
	// StatusPending marks a statement whose transactions have not been
	// committed yet.
	StatusPending ProcessingStatus = "PENDING"
	// StatusCompleted marks a statement whose totals reflect its committed
	// transactions.
	StatusCompleted ProcessingStatus = "COMPLETED"
)

// Statement is the persisted aggregate root owning a set of transactions.
// Totals are integer minor currency units and must equal the sum of the
// committed child transactions of the matching type.
type Statement struct {
	CreatedAt          time.Time
	ID                 string
	UserID             string
	OriginBank         string
	AccountNumber      string
	Status             ProcessingStatus
	Month              int
	Year               int
	TotalIncomeMinor   int64
	TotalExpensesMinor int64
}
