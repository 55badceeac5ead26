// Package resolver fills in transaction categories: upstream categories are
// authoritative, everything else is classified by the external collaborator,
// and anything that fails or falls outside the vocabulary lands on
// Uncategorized.
package resolver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// defaultWorkers bounds the classification fan-out. Classifier calls for
// independent transactions have no ordering dependency between them.
const defaultWorkers = 5

// Resolver resolves categories for a batch of candidate transactions.
type Resolver struct {
	classifier service.Classifier
	logger     *slog.Logger
	workers    int
}

// New creates a resolver with the given classifier collaborator.
func New(classifier service.Classifier, logger *slog.Logger, workers int) *Resolver {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Resolver{
		classifier: classifier,
		logger:     logger,
		workers:    workers,
	}
}

// ResolveBatch resolves the category of every candidate in place and returns
// when all of them have settled. Candidates that already carry a vocabulary
// category are never re-classified. A failed or out-of-vocabulary reply
// resolves that single candidate to Uncategorized and never aborts the batch.
//
// onProgress, if non-nil, is called once per settled candidate.
func (r *Resolver) ResolveBatch(ctx context.Context, candidates []model.Transaction, onProgress func()) {
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i := range candidates {
		if candidates[i].Category != "" {
			// Upstream extraction already decided; coerce out-of-vocabulary
			// labels without spending a classifier call.
			if !model.ValidCategory(candidates[i].Category) {
				candidates[i].Category = model.CategoryUncategorized
			}
			if onProgress != nil {
				onProgress()
			}
			continue
		}

		wg.Add(1)
		go func(txn *model.Transaction) {
			defer wg.Done()
			defer func() {
				if onProgress != nil {
					onProgress()
				}
			}()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				txn.Category = model.CategoryUncategorized
				return
			}

			txn.Category = r.resolveOne(ctx, txn)
		}(&candidates[i])
	}

	wg.Wait()
}

// resolveOne classifies a single candidate, degrading to Uncategorized on any
// failure or out-of-vocabulary reply.
func (r *Resolver) resolveOne(ctx context.Context, txn *model.Transaction) string {
	label, err := r.classifier.Classify(ctx, txn.Description, txn.Amount)
	if err != nil {
		r.logger.Warn("classifier call failed, falling back",
			"transaction_id", txn.ID,
			"description", txn.Description,
			"error", err)
		return model.CategoryUncategorized
	}

	if !model.ValidCategory(label) {
		r.logger.Warn("classifier returned out-of-vocabulary label",
			"transaction_id", txn.ID,
			"label", label)
		return model.CategoryUncategorized
	}

	return label
}
