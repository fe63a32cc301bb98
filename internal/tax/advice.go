package tax

import (
	"fmt"
	"strings"
)

// FormatCurrency renders an amount as ₹ with comma-grouped thousands and
// two decimals. Display only — exported/persisted payloads always carry
// plain decimal numbers.
func FormatCurrency(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "₹" + b.String() + "." + fracPart
}

// Advice generates personalized tax advice from a summary. Rules are
// independent and additive: every matching rule fires, in a fixed order.
func Advice(s Summary) []string {
	var advice []string

	if s.UsePresumptive {
		advice = append(advice, "You're using Section 44ADA presumptive taxation, which assumes 50% of your income as expenses.")
		if s.TotalExpenses > s.TotalIncome*PresumptiveRate {
			advice = append(advice, "Consider switching to regular taxation as your actual expenses exceed 50% of income.")
		}
	}

	if s.GSTLiability > 0 {
		advice = append(advice, fmt.Sprintf("You have GST liability of %s. Ensure timely GST filing.", FormatCurrency(s.GSTLiability)))
	}

	overdue := 0
	for _, inst := range s.AdvanceTaxSchedule {
		if inst.IsOverdue && inst.InstallmentAmount > 0 {
			overdue++
		}
	}
	if overdue > 0 {
		advice = append(advice, fmt.Sprintf("You have %d overdue advance tax installments. Consider paying immediately to avoid interest.", overdue))
	}

	if s.TotalIncome > 1000000 {
		advice = append(advice, "Your income exceeds ₹10L. Consider tax planning strategies and maintain detailed records.")
	}

	return advice
}

// Recommendations generates tax planning recommendations. Like Advice, the
// rules are additive, but these target filing-season planning rather than
// the current liability picture.
func Recommendations(s Summary) []string {
	var recs []string

	if s.TotalIncome > 2000000 {
		recs = append(recs, "Consider incorporating as a company for potential tax benefits at higher income levels.")
	}

	if s.TotalIncome > 0 {
		expenseRatio := s.TotalExpenses / s.TotalIncome * 100
		if expenseRatio < 20 {
			recs = append(recs, "Your expense ratio is low. Review if you're claiming all eligible business expenses.")
		} else if expenseRatio > 70 {
			recs = append(recs, "High expense ratio detected. Ensure all expenses are business-related and well-documented.")
		}
	}

	if s.TotalIncome > 2000000 && s.GSTCollected == 0 {
		recs = append(recs, "Consider GST registration as your income exceeds ₹20L threshold.")
	}

	if s.IncomeTax > 50000 {
		recs = append(recs, "Consider tax-saving investments under Section 80C, 80D to reduce tax liability.")
	}

	return recs
}
