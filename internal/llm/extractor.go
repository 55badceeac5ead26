package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tallyflow/tally/internal/service"
)

// maxExtractionChars caps how much statement text is sent per extraction
// request. Statements longer than this are truncated, matching the original
// document pipeline.
const maxExtractionChars = 10000

// Extractor implements service.DocumentExtractor with a chat-completion
// client: raw statement text in, structured transaction records out.
type Extractor struct {
	client Client
	logger *slog.Logger
}

// NewExtractor creates a new LLM-backed document extractor.
func NewExtractor(client Client, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

const extractSystemPrompt = `Extract transactions from this bank statement text into a JSON object.
Format: { "metadata": { "bank": "Bank Name", "account": "1234" }, "transactions": [{ "date": "YYYY-MM-DD", "desc": "Description", "amount": 10.00, "type": "expense" }] }
- Use "income" for deposits/salaries.
- Leave metadata fields empty when the statement does not show them.
- Return ONLY valid JSON. No markdown.`

// ExtractTransactions sends the statement text to the model and parses the
// reply into an extraction payload. The reply may be either the full object
// or a bare transaction array; both are accepted.
func (e *Extractor) ExtractTransactions(ctx context.Context, rawText string) (*service.Extraction, error) {
	if len(rawText) > maxExtractionChars {
		rawText = rawText[:maxExtractionChars]
	}

	content, err := e.client.Complete(ctx, extractSystemPrompt, rawText)
	if err != nil {
		return nil, fmt.Errorf("document extraction failed: %w", err)
	}

	cleaned := cleanMarkdownWrapper(content)

	var extraction service.Extraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		// Some models reply with the bare array despite the prompt.
		var transactions []service.ExtractedTransaction
		if arrErr := json.Unmarshal([]byte(cleaned), &transactions); arrErr != nil {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
		extraction.Transactions = transactions
	}

	e.logger.Info("document extraction complete",
		"transactions", len(extraction.Transactions),
		"bank", extraction.Metadata.Bank)

	return &extraction, nil
}
