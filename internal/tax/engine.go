// Package tax computes Indian freelancer tax liability for one assessment
// year from a collection of validated transactions. All computations are
// pure functions of their input and are recomputed on every call; there is
// no cached or incremental state to invalidate.
package tax

import (
	"math"
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// PresumptiveRate is the Section 44ADA deemed expense ratio for qualifying
// professional income.
const PresumptiveRate = 0.50

// Calculation method labels.
const (
	MethodPresumptive = "Section 44ADA (Presumptive)"
	MethodRegular     = "Regular (Actual Expenses)"
	MethodNoData      = "No data"
)

// bracket is one slab of the progressive rate table. UpTo is the cumulative
// upper bound of the slab in rupees.
type bracket struct {
	UpTo float64
	Rate float64
}

// Income tax slabs for FY 2024-25 (AY 2025-26), new regime.
var taxBrackets = []bracket{
	{250000, 0},
	{500000, 0.05},
	{750000, 0.10},
	{1000000, 0.15},
	{1250000, 0.20},
	{1500000, 0.25},
	{math.Inf(1), 0.30},
}

// Calculate computes the tax liability summary for the given transactions.
// It never fails: malformed numeric input (non-finite amounts) yields the
// zeroed summary so callers can always render a summary view.
func Calculate(txs []domain.Transaction) Summary {
	return calculateAt(txs, time.Now())
}

func calculateAt(txs []domain.Transaction, now time.Time) Summary {
	var (
		totalIncome   float64
		totalExpenses float64
		gstCollected  float64
		gstPaid       float64
		incomeCount   int
		expenseCount  int
	)

	for _, t := range txs {
		if !isFinite(t.Amount) || !isFinite(t.GSTAmount) {
			return EmptySummary()
		}
		if t.Type == domain.TypeIncome {
			totalIncome += t.Amount
			incomeCount++
			if t.GSTApplicable {
				gstCollected += t.GSTAmount
			}
		} else {
			totalExpenses += t.Amount
			expenseCount++
			if t.GSTApplicable {
				gstPaid += t.GSTAmount
			}
		}
	}

	presumptiveIncome := totalIncome * PresumptiveRate
	regularTaxableIncome := math.Max(0, totalIncome-totalExpenses)

	// Presumptive is elected whenever actual expenses fall below the 50%
	// deemed allowance, even if that yields a higher taxable figure than
	// the regular method. The OR condition, not pure minimization, governs
	// the choice; the savings figure and advice text are defined relative
	// to it.
	usePresumptive := presumptiveIncome < regularTaxableIncome ||
		totalExpenses < totalIncome*PresumptiveRate

	var taxableIncome, deductibleExpenses float64
	method := MethodRegular
	if usePresumptive {
		taxableIncome = presumptiveIncome
		deductibleExpenses = totalIncome * PresumptiveRate
		method = MethodPresumptive
	} else {
		taxableIncome = regularTaxableIncome
		deductibleExpenses = totalExpenses
	}

	incomeTax := computeIncomeTax(taxableIncome)
	gstLiability := math.Max(0, gstCollected-gstPaid)

	// Always recomputed through the bracket function so the figure
	// reflects the true marginal schedule.
	savings := 0.0
	if usePresumptive {
		savings = math.Max(0, computeIncomeTax(regularTaxableIncome)-incomeTax)
	}

	return Summary{
		TotalIncome:            totalIncome,
		TotalExpenses:          totalExpenses,
		DeductibleExpenses:     deductibleExpenses,
		TaxableIncome:          taxableIncome,
		IncomeTax:              incomeTax,
		CalculationMethod:      method,
		UsePresumptive:         usePresumptive,
		AdvanceTaxSchedule:     computeAdvanceTaxSchedule(incomeTax, now),
		GSTCollected:           gstCollected,
		GSTPaid:                gstPaid,
		GSTLiability:           gstLiability,
		TotalTaxLiability:      incomeTax + gstLiability,
		IncomeCount:            incomeCount,
		ExpenseCount:           expenseCount,
		SavingsFromPresumptive: savings,
		CategoryBreakdown:      map[string]CategoryTotals{},
	}
}

// computeIncomeTax applies the marginal rate table to taxable income.
// The result is continuous and non-decreasing in its argument.
func computeIncomeTax(taxableIncome float64) float64 {
	if taxableIncome <= 0 {
		return 0
	}

	var tax float64
	previousCeiling := 0.0

	for _, b := range taxBrackets {
		if taxableIncome <= previousCeiling {
			break
		}
		taxableInBracket := math.Min(taxableIncome, b.UpTo) - previousCeiling
		tax += taxableInBracket * b.Rate
		previousCeiling = b.UpTo

		if taxableIncome <= b.UpTo {
			break
		}
	}

	return tax
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
