// Package parser turns free-form bank statement text into candidate
// transactions using line-based heuristics. It is deliberately best-effort:
// lines without a parseable non-zero amount are dropped, not reported.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tallyflow/tally/internal/model"
)

var (
	// moneyPattern matches monetary-looking tokens: optional sign, optional
	// currency marker, digits with optional thousands separators, optional
	// two-decimal fraction.
	moneyPattern = regexp.MustCompile(`[-+]?R?[\d,]+(?:\.\d{1,2})?`)

	// textDatePattern matches "Nov 12" style day references.
	textDatePattern = regexp.MustCompile(`([A-Za-z]{3})\s+(\d{1,2})`)

	// numDatePattern matches "11/12" or "11-12" style day references.
	numDatePattern = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)

	// Leading date prefixes stripped from descriptions.
	leadingTextDate = regexp.MustCompile(`^[A-Za-z]{3}\s\d{1,2}`)
	leadingNumDate  = regexp.MustCompile(`^\d{1,2}/\d{1,2}`)
)

// incomeKeywords reclassify a line as income when present anywhere in its
// lowercase text.
var incomeKeywords = []string{"deposit", "salary", "credit"}

// Parser extracts candidate transactions from raw statement text.
type Parser struct{}

// New creates a new text statement parser.
func New() *Parser {
	return &Parser{}
}

// Parse scans each non-blank line of rawText for a transaction. The supplied
// year fills in date tokens that omit one; lines with no recognizable date at
// all default to January 1st of that year. Returned candidates preserve input
// line order and all start selected.
func (p *Parser) Parse(rawText string, year int) []model.Transaction {
	var results []model.Transaction

	for index, line := range strings.Split(rawText, "\n") {
		cleanLine := strings.TrimSpace(line)
		if cleanLine == "" {
			continue
		}

		tokens := moneyPattern.FindAllString(cleanLine, -1)
		if len(tokens) == 0 {
			continue
		}

		// Statement lines put the amount at the end, after the description.
		// Earlier matches are more likely dates or reference numbers.
		moneyStr := tokens[len(tokens)-1]

		amount, err := strconv.ParseFloat(strings.NewReplacer("R", "", ",", "").Replace(moneyStr), 64)
		if err != nil || amount == 0 {
			continue
		}

		results = append(results, model.Transaction{
			ID:          fmt.Sprintf("temp-%d", index),
			Date:        extractDate(cleanLine, year),
			Description: extractDescription(cleanLine, moneyStr),
			Amount:      math.Abs(amount),
			Type:        classifyLine(cleanLine, moneyStr),
			Selected:    true,
		})
	}

	return results
}

// classifyLine decides income vs expense. Expense is the default; an explicit
// plus sign on the amount or an income keyword anywhere in the line wins.
func classifyLine(line, moneyStr string) model.TransactionType {
	if strings.Contains(moneyStr, "+") {
		return model.TypeIncome
	}

	lower := strings.ToLower(line)
	for _, keyword := range incomeKeywords {
		if strings.Contains(lower, keyword) {
			return model.TypeIncome
		}
	}

	return model.TypeExpense
}

// extractDate finds a date token in the line and combines it with year.
// It tries "Nov 12" first, then "11/12" or "11-12", then falls back to
// January 1st of the statement year.
func extractDate(line string, year int) time.Time {
	if m := textDatePattern.FindStringSubmatch(line); m != nil {
		if date, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %d", normalizeMonth(m[1]), m[2], year)); err == nil {
			return date
		}
	}

	if m := numDatePattern.FindStringSubmatch(line); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if date, ok := makeDate(year, month, day); ok {
			return date
		}
	}

	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// normalizeMonth folds "NOV"/"nov" to the "Nov" form time.Parse expects.
func normalizeMonth(m string) string {
	if len(m) != 3 {
		return m
	}
	return strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
}

// makeDate builds a UTC date, rejecting month/day combinations that do not
// exist instead of letting time.Date normalize them.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// extractDescription strips the matched money token and any leading date
// prefix from the line. An empty remainder becomes "Unknown Transaction".
func extractDescription(line, moneyStr string) string {
	desc := strings.TrimSpace(strings.Replace(line, moneyStr, "", 1))
	desc = strings.TrimSpace(leadingTextDate.ReplaceAllString(desc, ""))
	desc = strings.TrimSpace(leadingNumDate.ReplaceAllString(desc, ""))

	if desc == "" {
		return "Unknown Transaction"
	}
	return desc
}
