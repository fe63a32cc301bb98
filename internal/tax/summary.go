package tax

import (
	"fmt"
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// Summary is the full tax picture for a transaction collection. It is
// ephemeral: recomputed from the collection on demand and never persisted
// as a source of truth.
type Summary struct {
	TotalIncome        float64 `json:"total_income"`
	TotalExpenses      float64 `json:"total_expenses"`
	DeductibleExpenses float64 `json:"deductible_expenses"`
	TaxableIncome      float64 `json:"taxable_income"`
	IncomeTax          float64 `json:"income_tax"`

	CalculationMethod string `json:"calculation_method"`
	UsePresumptive    bool   `json:"use_presumptive"`

	AdvanceTaxSchedule []Installment `json:"advance_tax_schedule"`

	GSTCollected float64 `json:"gst_collected"`
	GSTPaid      float64 `json:"gst_paid"`
	GSTLiability float64 `json:"gst_liability"`

	TotalTaxLiability float64 `json:"total_tax_liability"`

	IncomeCount  int `json:"income_count"`
	ExpenseCount int `json:"expense_count"`

	SavingsFromPresumptive float64 `json:"savings_from_presumptive"`

	// Derived statistics added by Summarize.
	CurrentMonthIncome   float64                   `json:"current_month_income"`
	CurrentMonthExpenses float64                   `json:"current_month_expenses"`
	CategoryBreakdown    map[string]CategoryTotals `json:"category_breakdown"`
	EffectiveTaxRate     float64                   `json:"effective_tax_rate"`
	NetProfit            float64                   `json:"net_profit"`
	ProfitMargin         float64                   `json:"profit_margin"`
}

// CategoryTotals aggregates one category's transactions.
type CategoryTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Count   int     `json:"count"`
	Net     float64 `json:"net"`
}

// EmptySummary is the zeroed summary used for empty collections and for
// the engine's internal failure path.
func EmptySummary() Summary {
	return Summary{
		CalculationMethod:  MethodNoData,
		AdvanceTaxSchedule: []Installment{},
		CategoryBreakdown:  map[string]CategoryTotals{},
	}
}

// Summarize extends the engine's output with time-windowed and
// category-windowed rollups plus derived ratios.
func Summarize(txs []domain.Transaction) Summary {
	return summarizeAt(txs, time.Now())
}

func summarizeAt(txs []domain.Transaction, now time.Time) Summary {
	if len(txs) == 0 {
		return EmptySummary()
	}

	s := calculateAt(txs, now)

	for _, t := range txs {
		if !isCurrentMonth(t.Date, now) {
			continue
		}
		if t.Type == domain.TypeIncome {
			s.CurrentMonthIncome += t.Amount
		} else {
			s.CurrentMonthExpenses += t.Amount
		}
	}

	s.CategoryBreakdown = categoryBreakdown(txs)

	if s.TaxableIncome > 0 {
		s.EffectiveTaxRate = s.IncomeTax / s.TaxableIncome * 100
	}
	s.NetProfit = s.TotalIncome - s.DeductibleExpenses
	if s.TotalIncome > 0 {
		s.ProfitMargin = s.NetProfit / s.TotalIncome * 100
	}

	return s
}

// categoryBreakdown groups transactions by category with a running
// net = income - expense per category.
func categoryBreakdown(txs []domain.Transaction) map[string]CategoryTotals {
	breakdown := make(map[string]CategoryTotals)

	for _, t := range txs {
		category := t.Category
		if category == "" {
			category = "other"
		}

		totals := breakdown[category]
		if t.Type == domain.TypeIncome {
			totals.Income += t.Amount
		} else {
			totals.Expense += t.Amount
		}
		totals.Count++
		totals.Net = totals.Income - totals.Expense
		breakdown[category] = totals
	}

	return breakdown
}

// isCurrentMonth matches on year and month only, ignoring the day.
func isCurrentMonth(dateStr string, now time.Time) bool {
	d, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		return false
	}
	return d.Year() == now.Year() && d.Month() == now.Month()
}

// MonthlySummary is the rollup for a single calendar month.
type MonthlySummary struct {
	Month            string               `json:"month"`
	TotalIncome      float64              `json:"total_income"`
	TotalExpenses    float64              `json:"total_expenses"`
	NetProfit        float64              `json:"net_profit"`
	TransactionCount int                  `json:"transaction_count"`
	Transactions     []domain.Transaction `json:"transactions"`
}

// SummarizeMonth aggregates the transactions that fall in the given year
// and month. Records with unparseable dates are skipped.
func SummarizeMonth(txs []domain.Transaction, year int, month time.Month) MonthlySummary {
	out := MonthlySummary{
		Month:        fmt.Sprintf("%d-%02d", year, int(month)),
		Transactions: []domain.Transaction{},
	}

	for _, t := range txs {
		d, ok := t.DateTime()
		if !ok || d.Year() != year || d.Month() != month {
			continue
		}
		if t.Type == domain.TypeIncome {
			out.TotalIncome += t.Amount
		} else {
			out.TotalExpenses += t.Amount
		}
		out.Transactions = append(out.Transactions, t)
	}

	out.NetProfit = out.TotalIncome - out.TotalExpenses
	out.TransactionCount = len(out.Transactions)
	return out
}
