// Package extract merges transaction candidates from the text parser, OFX
// statement files, and the document-extraction collaborator into one
// canonical in-memory representation.
package extract

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Normalizer converts extractor payloads into candidate transactions.
type Normalizer struct{}

// NewNormalizer creates a new extraction normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts an extraction payload into the canonical candidate list.
// Amounts are always stored as absolute values, type labels are case-folded
// to the two-value enum, and categories already supplied upstream are kept
// verbatim so the resolver treats them as authoritative.
//
// A payload with zero transactions returns common.ErrExtractionEmpty: the
// caller decides whether to fall back to a simpler extraction path, it is
// never silently treated as a successful empty batch.
func (n *Normalizer) Normalize(extraction *service.Extraction, year int) ([]model.Transaction, error) {
	if extraction == nil || len(extraction.Transactions) == 0 {
		return nil, common.ErrExtractionEmpty
	}

	candidates := make([]model.Transaction, 0, len(extraction.Transactions))
	for i, rec := range extraction.Transactions {
		candidates = append(candidates, model.Transaction{
			ID:          fmt.Sprintf("temp-%d", i),
			Date:        normalizeDate(rec.Date, year),
			Description: normalizeDescription(rec.Description),
			Amount:      math.Abs(rec.Amount),
			Type:        model.ParseTransactionType(rec.Type),
			Category:    rec.Category,
			Selected:    true,
		})
	}

	return candidates, nil
}

// FromCandidates wraps already-parsed candidates in the same empty-result
// contract as Normalize, so both extraction paths report the condition the
// same way.
func (n *Normalizer) FromCandidates(candidates []model.Transaction) ([]model.Transaction, error) {
	if len(candidates) == 0 {
		return nil, common.ErrExtractionEmpty
	}
	return candidates, nil
}

func normalizeDate(raw string, year int) time.Time {
	if date, err := time.Parse("2006-01-02", strings.TrimSpace(raw)); err == nil {
		return date
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func normalizeDescription(raw string) string {
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return "Unknown Transaction"
	}
	return desc
}
