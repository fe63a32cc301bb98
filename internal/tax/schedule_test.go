package tax

import (
	"math"
	"testing"
	"time"
)

func TestComputeAdvanceTaxSchedule_Amounts(t *testing.T) {
	schedule := computeAdvanceTaxSchedule(100000, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	if len(schedule) != 4 {
		t.Fatalf("got %d installments, want 4", len(schedule))
	}

	wantInstallments := []float64{15000, 30000, 30000, 25000}
	wantCumulative := []float64{15000, 45000, 75000, 100000}

	var sum float64
	for i, inst := range schedule {
		if math.Abs(inst.InstallmentAmount-wantInstallments[i]) > 1e-9 {
			t.Errorf("installment %d amount = %v, want %v", i, inst.InstallmentAmount, wantInstallments[i])
		}
		if math.Abs(inst.CumulativeAmount-wantCumulative[i]) > 1e-9 {
			t.Errorf("installment %d cumulative = %v, want %v", i, inst.CumulativeAmount, wantCumulative[i])
		}
		sum += inst.InstallmentAmount
	}

	if math.Abs(sum-100000) > 1e-9 {
		t.Errorf("installments sum to %v, want the annual tax 100000", sum)
	}
}

func TestComputeAdvanceTaxSchedule_Overdue(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want []bool
	}{
		{"before first due date", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), []bool{false, false, false, false}},
		{"on a due date is not overdue", time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC), []bool{false, false, false, false}},
		{"day after first due date", time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), []bool{true, false, false, false}},
		{"mid year", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), []bool{true, true, false, false}},
		{"after final due date", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), []bool{true, true, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := computeAdvanceTaxSchedule(100000, tt.now)
			for i, inst := range schedule {
				if inst.IsOverdue != tt.want[i] {
					t.Errorf("installment %d (due %s) overdue = %v, want %v", i, inst.DueDate, inst.IsOverdue, tt.want[i])
				}
			}
		})
	}
}

func TestComputeAdvanceTaxSchedule_ZeroTax(t *testing.T) {
	schedule := computeAdvanceTaxSchedule(0, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	for i, inst := range schedule {
		if inst.InstallmentAmount != 0 || inst.CumulativeAmount != 0 {
			t.Errorf("installment %d = %+v, want zero amounts", i, inst)
		}
		// Overdue flags still reflect the calendar even with nothing owed.
		if !inst.IsOverdue {
			t.Errorf("installment %d overdue = false, want true", i)
		}
	}
}
