// Package service defines the interfaces for all external collaborators.
// The pipeline receives these as injected dependencies; nothing is looked up
// from process-wide state.
package service

import (
	"context"
	"time"

	"github.com/tallyflow/tally/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	StatementID string
	UserID      string
	Type        model.TransactionType
	Limit       int
}

// Storage defines the contract for the persistence gateway.
type Storage interface {
	// Statement operations
	CreateStatement(ctx context.Context, stmt *model.Statement) error
	GetStatement(ctx context.Context, id string) (*model.Statement, error)
	ListStatements(ctx context.Context, userID string) ([]model.Statement, error)
	DeleteStatement(ctx context.Context, id string) error

	// CommitStatement bulk-inserts the verified transactions and updates the
	// owning statement's totals and status in a single unit of work. Either
	// both writes land or neither does.
	CommitStatement(ctx context.Context, statementID string, txns []model.Transaction, incomeMinor, expensesMinor int64) error

	// Transaction operations
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByStatement(ctx context.Context, statementID string) ([]model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, transactionID, category string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Classifier is the single-transaction classification collaborator. The reply
// is a free-form label; callers are responsible for coercing anything outside
// the category vocabulary to Uncategorized.
type Classifier interface {
	Classify(ctx context.Context, description string, amount float64) (string, error)
}

// ExtractedTransaction is one record from the document-extraction
// collaborator. The amount sign is not trusted; the normalizer always takes
// the absolute value.
type ExtractedTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"desc"`
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
	Amount      float64 `json:"amount"`
}

// ExtractionMetadata carries statement-level fields recognized by the
// document-extraction collaborator.
type ExtractionMetadata struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
}

// Extraction is the full document-extraction response.
type Extraction struct {
	Metadata     ExtractionMetadata     `json:"metadata"`
	Transactions []ExtractedTransaction `json:"transactions"`
}

// DocumentExtractor turns raw statement text into structured transactions.
type DocumentExtractor interface {
	ExtractTransactions(ctx context.Context, rawText string) (*Extraction, error)
}

// InsightGenerator produces short behavioral insight text from a spending
// summary. Advisory only; failures never affect the main pipeline.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, summary []model.CategorySummary) (string, error)
}

// Task is an advisory unit of background work published after a commit.
type Task struct {
	ID          string
	Kind        string
	StatementID string
	UserID      string
}

// TaskQueue accepts fire-and-forget tasks. Publishing must not block the
// caller on task execution, and task failure has no bearing on the result of
// the operation that published it.
type TaskQueue interface {
	Publish(ctx context.Context, task Task) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
