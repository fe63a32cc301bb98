package pipeline

import (
	"strings"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// categoryRule maps a category to the keywords that select it. Rules are
// checked in order and the first match wins; there is no scoring.
type categoryRule struct {
	category string
	keywords []string
}

var expenseRules = []categoryRule{
	{domain.CategoryBusinessTravel, []string{"travel", "taxi", "uber", "flight", "hotel"}},
	{domain.CategoryOfficeSupplies, []string{"software", "laptop", "computer", "phone", "equipment"}},
	{domain.CategoryProfessionalServices, []string{"legal", "accounting", "consultant"}},
	{domain.CategoryMarketing, []string{"advertising", "marketing", "promotion"}},
	{domain.CategoryUtilities, []string{"internet", "electricity", "phone bill", "utility"}},
	{domain.CategoryRent, []string{"rent", "office space"}},
}

var incomeRules = []categoryRule{
	{domain.CategoryConsulting, []string{"consulting", "consultation"}},
	{domain.CategoryRoyalty, []string{"royalty", "licensing"}},
}

// Categorize infers a category from the transaction description using
// case-insensitive substring matching. It is a fallback for records whose
// upstream classification was absent; an explicitly supplied category is
// never overridden by this function's callers.
func Categorize(description string, txType domain.TransactionType) string {
	desc := strings.ToLower(description)

	rules := expenseRules
	if txType == domain.TypeIncome {
		rules = incomeRules
	}

	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return domain.DefaultCategory(txType)
}
