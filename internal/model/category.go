package model

// CategoryUncategorized is the fallback category for transactions the
// classifier could not place, and the default for fresh candidates.
const CategoryUncategorized = "Uncategorized"

// Categories is the fixed closed vocabulary of permitted category labels.
// Classifier replies outside this set are coerced to Uncategorized.
var Categories = []string{
	"Housing",
	"Food",
	"Transport",
	"Shopping",
	"Utilities",
	"Health",
	"Entertainment",
	"Salary",
	"Cash/ATM",
	"Savings/Investments",
	"Loans",
	"EFT/Transfer",
	CategoryUncategorized,
}

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// ValidCategory reports whether name is a member of the vocabulary.
func ValidCategory(name string) bool {
	_, ok := categorySet[name]
	return ok
}
