package pipeline

import (
	"testing"

	"github.com/taxmitra/taxmitra/internal/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		txType      domain.TransactionType
		want        string
	}{
		{"uber ride", "Uber to client office", domain.TypeExpense, domain.CategoryBusinessTravel},
		{"hotel stay", "Hotel booking Mumbai", domain.TypeExpense, domain.CategoryBusinessTravel},
		{"software license", "Annual software subscription", domain.TypeExpense, domain.CategoryOfficeSupplies},
		{"legal fees", "Legal review of contract", domain.TypeExpense, domain.CategoryProfessionalServices},
		{"ad spend", "Google advertising campaign", domain.TypeExpense, domain.CategoryMarketing},
		{"internet bill", "Monthly internet charges", domain.TypeExpense, domain.CategoryUtilities},
		{"office rent", "Rent for June", domain.TypeExpense, domain.CategoryRent},
		{"case insensitive", "TAXI FARE", domain.TypeExpense, domain.CategoryBusinessTravel},
		{"no keyword expense", "Miscellaneous purchase", domain.TypeExpense, domain.CategoryOtherBusiness},
		{"consulting income", "Consulting engagement Q2", domain.TypeIncome, domain.CategoryConsulting},
		{"royalty income", "Book royalty payment", domain.TypeIncome, domain.CategoryRoyalty},
		{"no keyword income", "Payment received", domain.TypeIncome, domain.CategoryFreelanceIncome},
		{"income rules ignore expense keywords", "Travel reimbursement", domain.TypeIncome, domain.CategoryFreelanceIncome},
		{"empty description", "", domain.TypeExpense, domain.CategoryOtherBusiness},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.description, tt.txType)
			if got != tt.want {
				t.Errorf("Categorize(%q, %s) = %q, want %q", tt.description, tt.txType, got, tt.want)
			}
		})
	}
}

// Rule order is part of the contract: a description matching several rules
// must resolve to the earliest one.
func TestCategorize_FirstMatchWins(t *testing.T) {
	got := Categorize("Taxi to buy laptop equipment", domain.TypeExpense)
	if got != domain.CategoryBusinessTravel {
		t.Errorf("Categorize = %q, want %q (earlier rule)", got, domain.CategoryBusinessTravel)
	}
}
