package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tallyflow/tally/internal/ledger"
	"github.com/tallyflow/tally/internal/model"
)

// Verifier runs the interactive review session over parsed candidates. Every
// candidate starts included; the user toggles entries out by number, watches
// the running totals, and either commits the remaining set or abandons the
// statement.
type Verifier struct {
	reader *LineReader
	writer io.Writer
}

// NewVerifier creates a verifier over the given streams. Nil streams default
// to stdin and stdout.
func NewVerifier(in io.Reader, out io.Writer) *Verifier {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	return &Verifier{
		reader: NewLineReader(in),
		writer: out,
	}
}

// Review displays the candidate list and processes toggle commands until the
// user commits or aborts. It returns true when the session should commit.
func (v *Verifier) Review(ctx context.Context, session *ledger.Ledger) (bool, error) {
	v.renderCandidates(session)

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if _, err := fmt.Fprint(v.writer, FormatPrompt("[#] toggle, [l]ist, [c]ommit, [q]uit")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := v.reader.ReadLine(ctx)
		if err == io.EOF {
			// Non-interactive input ran out; commit what is selected.
			return true, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "", "c", "commit":
			return true, nil
		case "q", "quit":
			return false, nil
		case "l", "list":
			v.renderCandidates(session)
		default:
			v.handleToggle(session, line)
		}
	}
}

func (v *Verifier) handleToggle(session *ledger.Ledger, line string) {
	index, err := strconv.Atoi(line)
	candidates := session.Candidates()
	if err != nil || index < 1 || index > len(candidates) {
		fmt.Fprintln(v.writer, WarningStyle.Render(fmt.Sprintf("enter a number between 1 and %d", len(candidates))))
		return
	}

	income, expenses, _ := session.Toggle(candidates[index-1].ID)
	v.renderRow(index, candidates[index-1])
	v.renderTotals(income, expenses)
}

func (v *Verifier) renderCandidates(session *ledger.Ledger) {
	fmt.Fprintln(v.writer, FormatTitle("Review transactions"))

	header := fmt.Sprintf("    %-12s %-32s %-22s %10s", "DATE", "DESCRIPTION", "CATEGORY", "AMOUNT")
	fmt.Fprintln(v.writer, TableHeaderStyle.Render(header))

	for i, txn := range session.Candidates() {
		v.renderRow(i+1, txn)
	}

	income, expenses := session.Totals()
	v.renderTotals(income, expenses)
}

func (v *Verifier) renderRow(index int, txn model.Transaction) {
	amount := fmt.Sprintf("%10.2f", txn.Amount)
	switch txn.Type {
	case model.TypeIncome:
		amount = IncomeStyle.Render("+" + strings.TrimSpace(amount))
	case model.TypeExpense:
		amount = ExpenseStyle.Render("-" + strings.TrimSpace(amount))
	}

	row := fmt.Sprintf("%2d. %-12s %-32s %-22s %10s",
		index,
		txn.DateString(),
		truncate(txn.Description, 32),
		txn.Category,
		amount,
	)

	if !txn.Selected {
		row = ExcludedStyle.Render(row)
	}

	fmt.Fprintln(v.writer, row)
}

func (v *Verifier) renderTotals(income, expenses float64) {
	fmt.Fprintln(v.writer, SubtleStyle.Render(fmt.Sprintf(
		"income %.2f | expenses %.2f | net %.2f",
		income, expenses, income-expenses,
	)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
