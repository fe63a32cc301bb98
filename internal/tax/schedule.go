package tax

import (
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// Installment is one advance-tax payment checkpoint.
type Installment struct {
	DueDate           string  `json:"due_date"`
	Description       string  `json:"description"`
	InstallmentAmount float64 `json:"installment_amount"`
	CumulativeAmount  float64 `json:"cumulative_amount"`
	CumulativeRate    float64 `json:"cumulative_rate"`
	IsOverdue         bool    `json:"is_overdue"`
}

// advanceTaxCheckpoints are the statutory cumulative-rate checkpoints for
// FY 2024-25. Dates are fixed by the schedule, not derived.
var advanceTaxCheckpoints = []struct {
	CumulativeRate float64
	DueDate        string
	Description    string
}{
	{0.15, "2024-06-15", "15% by June 15"},
	{0.45, "2024-09-15", "45% by September 15"},
	{0.75, "2024-12-15", "75% by December 15"},
	{1.00, "2025-03-15", "100% by March 15"},
}

// computeAdvanceTaxSchedule derives the four installments for an annual tax
// amount. Each installment's own amount is the difference between its
// cumulative amount and the previous checkpoint's, so the installments
// always sum to the annual tax.
func computeAdvanceTaxSchedule(annualTax float64, now time.Time) []Installment {
	schedule := make([]Installment, 0, len(advanceTaxCheckpoints))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	previousPaid := 0.0
	for _, cp := range advanceTaxCheckpoints {
		cumulativeAmount := annualTax * cp.CumulativeRate

		// Hardcoded dates always parse; the guard keeps a bad checkpoint
		// from marking itself overdue.
		isOverdue := false
		if due, err := time.Parse(domain.DateLayout, cp.DueDate); err == nil {
			isOverdue = today.After(due)
		}

		schedule = append(schedule, Installment{
			DueDate:           cp.DueDate,
			Description:       cp.Description,
			InstallmentAmount: cumulativeAmount - previousPaid,
			CumulativeAmount:  cumulativeAmount,
			CumulativeRate:    cp.CumulativeRate,
			IsOverdue:         isOverdue,
		})
		previousPaid = cumulativeAmount
	}

	return schedule
}
