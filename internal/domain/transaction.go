package domain

import (
	"time"
)

// TransactionType says whether a transaction is money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Expense categories recognised by the tax engine, aligned with common
// deductible heads for Indian freelancers.
const (
	CategoryBusinessTravel       = "business_travel"
	CategoryOfficeSupplies       = "office_supplies"
	CategoryProfessionalServices = "professional_services"
	CategoryMarketing            = "marketing"
	CategoryUtilities            = "utilities"
	CategoryRent                 = "rent"
	CategoryOtherBusiness        = "other_business"
)

// Income categories.
const (
	CategoryFreelanceIncome = "freelance_income"
	CategoryConsulting      = "consulting"
	CategoryRoyalty         = "royalty"
	CategoryOtherIncome     = "other_income"
)

// ExpenseCategories lists all valid expense categories.
var ExpenseCategories = []string{
	CategoryBusinessTravel,
	CategoryOfficeSupplies,
	CategoryProfessionalServices,
	CategoryMarketing,
	CategoryUtilities,
	CategoryRent,
	CategoryOtherBusiness,
}

// IncomeCategories lists all valid income categories.
var IncomeCategories = []string{
	CategoryFreelanceIncome,
	CategoryConsulting,
	CategoryRoyalty,
	CategoryOtherIncome,
}

// DefaultCategory returns the fallback category for a transaction type.
func DefaultCategory(t TransactionType) string {
	if t == TypeIncome {
		return CategoryFreelanceIncome
	}
	return CategoryOtherBusiness
}

// DateLayout is the canonical calendar date format for transaction dates.
const DateLayout = "2006-01-02"

// Transaction is one normalized financial record. Instances are produced by
// the pipeline validator from untrusted model output; every field is already
// coerced into its documented range by the time a Transaction exists.
type Transaction struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Type   TransactionType `json:"type"`
	Amount float64         `json:"amount"` // rupees, never negative
	Date   string          `json:"date"`   // YYYY-MM-DD

	ClientVendor string `json:"client_vendor"`
	Description  string `json:"description"`
	Category     string `json:"category"`

	GSTApplicable bool    `json:"gst_applicable"`
	GSTAmount     float64 `json:"gst_amount"` // never exceeds Amount

	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"` // [0, 1]

	OriginalFilename string   `json:"original_filename,omitempty"`
	ExtractedText    string   `json:"extracted_text,omitempty"`
	ProcessingNotes  []string `json:"processing_notes"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// DateTime parses the transaction date. The bool result is false when the
// stored date string is not a valid YYYY-MM-DD value.
func (t *Transaction) DateTime() (time.Time, bool) {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// TransactionUpdate carries a partial field merge for an existing
// transaction. Nil fields are left untouched.
type TransactionUpdate struct {
	Type          *TransactionType `json:"type,omitempty"`
	Amount        *float64         `json:"amount,omitempty"`
	Date          *string          `json:"date,omitempty"`
	ClientVendor  *string          `json:"client_vendor,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	GSTApplicable *bool            `json:"gst_applicable,omitempty"`
	GSTAmount     *float64         `json:"gst_amount,omitempty"`
	Currency      *string          `json:"currency,omitempty"`
}

// Apply merges non-nil fields into the transaction.
func (u *TransactionUpdate) Apply(t *Transaction) {
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.ClientVendor != nil {
		t.ClientVendor = *u.ClientVendor
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.GSTApplicable != nil {
		t.GSTApplicable = *u.GSTApplicable
	}
	if u.GSTAmount != nil {
		t.GSTAmount = *u.GSTAmount
	}
	if u.Currency != nil {
		t.Currency = *u.Currency
	}
}
