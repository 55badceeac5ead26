package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/tallyflow/tally/internal/model"
)

const trendBarWidth = 30

// RenderBreakdown writes a per-category spending table, largest first.
func RenderBreakdown(w io.Writer, title string, summaries []model.CategorySummary) {
	fmt.Fprintln(w, TitleStyle.Render(ChartIcon+" "+title))

	if len(summaries) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("no spending recorded"))
		return
	}

	header := fmt.Sprintf("%-24s %12s %8s", "CATEGORY", "TOTAL", "COUNT")
	fmt.Fprintln(w, TableHeaderStyle.Render(header))

	var total float64
	for _, s := range summaries {
		fmt.Fprintf(w, "%-24s %12.2f %8d\n", s.Category, s.Total, s.Count)
		total += s.Total
	}

	fmt.Fprintln(w, SubtleStyle.Render(fmt.Sprintf("%-24s %12.2f", "total", total)))
}

// RenderTrend writes the monthly series as a horizontal bar chart scaled to
// the largest month.
func RenderTrend(w io.Writer, buckets []model.TrendBucket) {
	fmt.Fprintln(w, TitleStyle.Render(ChartIcon+" Monthly spending"))

	var max float64
	for _, b := range buckets {
		if b.Total > max {
			max = b.Total
		}
	}

	for _, b := range buckets {
		width := 0
		if max > 0 {
			width = int(b.Total / max * trendBarWidth)
		}

		bar := strings.Repeat("█", width)
		fmt.Fprintf(w, "%s %d %s %.2f\n",
			b.Month, b.Year,
			PromptStyle.Render(bar),
			b.Total,
		)
	}
}

// RenderStatements writes the statement listing, newest period first.
func RenderStatements(w io.Writer, statements []model.Statement) {
	fmt.Fprintln(w, FormatTitle("Statements"))

	if len(statements) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("no statements ingested"))
		return
	}

	header := fmt.Sprintf("%-36s %-9s %-10s %12s %12s", "ID", "PERIOD", "STATUS", "INCOME", "EXPENSES")
	fmt.Fprintln(w, TableHeaderStyle.Render(header))

	for _, s := range statements {
		fmt.Fprintf(w, "%-36s %4d-%02d   %-10s %12.2f %12.2f\n",
			s.ID, s.Year, s.Month, s.Status,
			float64(s.TotalIncomeMinor)/100,
			float64(s.TotalExpensesMinor)/100,
		)
	}
}
