package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/model"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		year     int
		want     []model.Transaction
		wantNone bool
	}{
		{
			name:  "expense line with text date and currency marker",
			input: "Nov 02   Starbucks    R5.40",
			year:  2025,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC),
					Description: "Starbucks",
					Amount:      5.40,
					Type:        model.TypeExpense,
					Selected:    true,
				},
			},
		},
		{
			name:  "plus sign and salary keyword classify as income",
			input: "Nov 01   Salary Deposit   +R15000.00",
			year:  2025,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
					Description: "Salary Deposit",
					Amount:      15000.00,
					Type:        model.TypeIncome,
					Selected:    true,
				},
			},
		},
		{
			name:  "numeric date with slash",
			input: "11/12 Uber Trip 89.50",
			year:  2024,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2024, time.November, 12, 0, 0, 0, 0, time.UTC),
					Description: "Uber Trip",
					Amount:      89.50,
					Type:        model.TypeExpense,
					Selected:    true,
				},
			},
		},
		{
			name:  "no date token falls back to january first",
			input: "Interest charged 12.00",
			year:  2025,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
					Description: "Interest charged",
					Amount:      12.00,
					Type:        model.TypeExpense,
					Selected:    true,
				},
			},
		},
		{
			name:  "last monetary token wins over reference numbers",
			input: "Nov 05 Card payment ref 004592 230.00",
			year:  2025,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC),
					Description: "Card payment ref 004592",
					Amount:      230.00,
					Type:        model.TypeExpense,
					Selected:    true,
				},
			},
		},
		{
			name:  "negative amount stored as absolute value",
			input: "Nov 07 Refund reversal -42.10",
			year:  2025,
			want: []model.Transaction{
				{
					ID:          "temp-0",
					Date:        time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC),
					Description: "Refund reversal",
					Amount:      42.10,
					Type:        model.TypeExpense,
					Selected:    true,
				},
			},
		},
		{
			name:     "zero amount line is dropped",
			input:    "Nov 09 Fee waived 0.00",
			year:     2025,
			wantNone: true,
		},
		{
			name:     "line without numbers is dropped",
			input:    "OPENING BALANCE CONTINUED",
			year:     2025,
			wantNone: true,
		},
		{
			name:     "blank lines are skipped",
			input:    "\n   \n\t\n",
			year:     2025,
			wantNone: true,
		},
		{
			name:     "empty input yields no candidates",
			input:    "",
			year:     2025,
			wantNone: true,
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input, tt.year)
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestParser_Parse_MultiLine(t *testing.T) {
	input := "Nov 01 Salary Deposit +15000.00\n\nNov 02 Starbucks 5.40\nnot a transaction line\nNov 03 Woolworths 482.19"

	got := New().Parse(input, 2025)

	require.Len(t, got, 3)
	assert.Equal(t, "temp-0", got[0].ID)
	assert.Equal(t, model.TypeIncome, got[0].Type)
	assert.Equal(t, "temp-2", got[1].ID)
	assert.Equal(t, "Starbucks", got[1].Description)
	assert.Equal(t, "temp-4", got[2].ID)
	assert.Equal(t, 482.19, got[2].Amount)
}

func TestParser_Parse_AmountAlwaysNonNegative(t *testing.T) {
	lines := []string{
		"Nov 01 Salary +100.00",
		"Nov 02 Groceries -55.55",
		"Nov 03 Rent 4500.00",
	}

	for _, line := range lines {
		for _, txn := range New().Parse(line, 2025) {
			assert.GreaterOrEqual(t, txn.Amount, 0.0, "line %q", line)
		}
	}
}

func TestParser_Parse_DescriptionFallback(t *testing.T) {
	got := New().Parse("Nov 12 99.99", 2025)

	require.Len(t, got, 1)
	assert.Equal(t, "Unknown Transaction", got[0].Description)
	assert.Equal(t, time.Date(2025, time.November, 12, 0, 0, 0, 0, time.UTC), got[0].Date)
}
