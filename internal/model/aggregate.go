package model

// CategorySummary is one row of a per-category aggregation: total spend in
// major currency units and the number of contributing transactions.
type CategorySummary struct {
	Category string
	Total    float64
	Count    int
}

// TrendBucket is one calendar month of a spending trend series.
type TrendBucket struct {
	Month string // three-letter month name, e.g. "Nov"
	Year  int
	Total float64
}
