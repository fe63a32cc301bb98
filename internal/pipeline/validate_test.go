package pipeline

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
)

var testNow = time.Date(2024, 8, 20, 10, 30, 0, 0, time.UTC)

func TestValidateRecord_NilRecord(t *testing.T) {
	got := validateRecordAt(nil, testNow)

	if got.Type != domain.TypeExpense {
		t.Errorf("Type = %q, want %q", got.Type, domain.TypeExpense)
	}
	if got.Amount != 0 {
		t.Errorf("Amount = %v, want 0", got.Amount)
	}
	if got.Date != "2024-08-20" {
		t.Errorf("Date = %q, want %q", got.Date, "2024-08-20")
	}
	if got.ClientVendor != "Unknown" {
		t.Errorf("ClientVendor = %q, want %q", got.ClientVendor, "Unknown")
	}
	if got.Description != "Failed to parse" {
		t.Errorf("Description = %q, want %q", got.Description, "Failed to parse")
	}
	if got.Category != domain.CategoryOtherBusiness {
		t.Errorf("Category = %q, want %q", got.Category, domain.CategoryOtherBusiness)
	}
	if got.Currency != "INR" {
		t.Errorf("Currency = %q, want %q", got.Currency, "INR")
	}
	if got.Confidence != failureConfidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, failureConfidence)
	}
}

func TestValidateRecord_WellFormedRecord(t *testing.T) {
	raw := map[string]interface{}{
		"type":           "income",
		"amount":         45000.0,
		"date":           "2024-07-01",
		"client_vendor":  "Acme Corp",
		"description":    "Website redesign",
		"category":       "freelance_income",
		"gst_applicable": true,
		"gst_amount":     8100.0,
		"currency":       "inr",
		"confidence":     0.95,
	}

	got := validateRecordAt(raw, testNow)

	if got.Type != domain.TypeIncome {
		t.Errorf("Type = %q, want income", got.Type)
	}
	if got.Amount != 45000 {
		t.Errorf("Amount = %v, want 45000", got.Amount)
	}
	if got.Date != "2024-07-01" {
		t.Errorf("Date = %q, want 2024-07-01", got.Date)
	}
	if !got.GSTApplicable || got.GSTAmount != 8100 {
		t.Errorf("GST = (%v, %v), want (8100, true)", got.GSTAmount, got.GSTApplicable)
	}
	if got.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", got.Currency)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
	if len(got.ProcessingNotes) != 0 {
		t.Errorf("ProcessingNotes = %v, want none", got.ProcessingNotes)
	}
}

// A record with a currency-formatted amount string, a missing date, missing
// category, and a GST amount exceeding the transaction amount. Every field
// is normalized independently and the GST pair is reset together.
func TestValidateRecord_MessyModelOutput(t *testing.T) {
	raw := map[string]interface{}{
		"type":           "Income",
		"amount":         "₹12,500",
		"date":           "",
		"client_vendor":  "Acme Corp",
		"description":    "Website design services",
		"category":       "",
		"gst_applicable": "yes",
		"gst_amount":     15000.0,
	}

	got := validateRecordAt(raw, testNow)

	if got.Type != domain.TypeIncome {
		t.Errorf("Type = %q, want income", got.Type)
	}
	if got.Amount != 12500 {
		t.Errorf("Amount = %v, want 12500", got.Amount)
	}
	if got.Date != testNow.Format(domain.DateLayout) {
		t.Errorf("Date = %q, want today", got.Date)
	}
	if got.Category != domain.CategoryFreelanceIncome {
		t.Errorf("Category = %q, want %q", got.Category, domain.CategoryFreelanceIncome)
	}
	// gst_amount 15000 > amount 12500: both reset.
	if got.GSTAmount != 0 || got.GSTApplicable {
		t.Errorf("GST = (%v, %v), want (0, false)", got.GSTAmount, got.GSTApplicable)
	}
	if got.Confidence != defaultConfidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, defaultConfidence)
	}
}

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"plain number", 1500.0, 1500},
		{"int", 42, 42},
		{"negative becomes absolute", -250.0, 250},
		{"rupee glyph", "₹12,500", 12500},
		{"Rs prefix", "Rs 1,000", 1000},
		{"INR prefix", "INR 999.50", 999.50},
		{"negative string", "-340.25", 340.25},
		{"unparseable text", "around five hundred", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceAmount(tt.in); got != tt.want {
				t.Errorf("coerceAmount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"valid date", "2024-03-15", "2024-03-15"},
		{"valid with spaces", " 2024-03-15 ", "2024-03-15"},
		{"wrong format", "15/03/2024", "2024-08-20"},
		{"month name", "March 15, 2024", "2024-08-20"},
		{"impossible date", "2024-13-45", "2024-08-20"},
		{"empty", "", "2024-08-20"},
		{"nil", nil, "2024-08-20"},
		{"number", 20240315, "2024-08-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceDate(tt.in, testNow); got != tt.want {
				t.Errorf("coerceDate(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"in range", 0.85, 0.85},
		{"above one clamps", 1.5, 1.0},
		{"below zero clamps", -0.3, 0.0},
		{"missing defaults", nil, defaultConfidence},
		{"string number", "0.4", 0.4},
		{"unparseable string defaults", "high", defaultConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceConfidence(tt.in); got != tt.want {
				t.Errorf("coerceConfidence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"yes", "yes", true},
		{"TRUE", "TRUE", true},
		{"y", "y", true},
		{"one string", "1", true},
		{"no", "no", false},
		{"arbitrary string", "applicable", false},
		{"nonzero number", 1.0, true},
		{"zero number", 0.0, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceBool(tt.in); got != tt.want {
				t.Errorf("coerceBool(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncation(t *testing.T) {
	longVendor := strings.Repeat("v", 150)
	longDesc := strings.Repeat("d", 250)

	got := validateRecordAt(map[string]interface{}{
		"client_vendor": longVendor,
		"description":   longDesc,
	}, testNow)

	if len([]rune(got.ClientVendor)) != maxVendorLen {
		t.Errorf("ClientVendor length = %d, want %d", len([]rune(got.ClientVendor)), maxVendorLen)
	}
	if len([]rune(got.Description)) != maxDescriptionLen {
		t.Errorf("Description length = %d, want %d", len([]rune(got.Description)), maxDescriptionLen)
	}
}

func TestTruncateRunes_Multibyte(t *testing.T) {
	s := strings.Repeat("₹", 150)
	got := truncateRunes(s, 100)
	if len([]rune(got)) != 100 {
		t.Errorf("truncated length = %d runes, want 100", len([]rune(got)))
	}
	if !strings.HasPrefix(s, got) {
		t.Error("truncation split a multibyte character")
	}
}

func TestProcessingNotes(t *testing.T) {
	got := validateRecordAt(map[string]interface{}{
		"confidence": 0.2,
	}, testNow)

	want := []string{
		"Low confidence parsing - please verify",
		"No amount detected - please verify",
		"Client/vendor not identified",
	}
	if !reflect.DeepEqual(got.ProcessingNotes, want) {
		t.Errorf("ProcessingNotes = %v, want %v", got.ProcessingNotes, want)
	}
}

// Validation must be a fixed point: feeding an already-validated record back
// through the validator changes nothing.
func TestValidateRecord_Idempotent(t *testing.T) {
	raw := map[string]interface{}{
		"type":           "Income",
		"amount":         "₹12,500",
		"date":           "2024-05-05",
		"client_vendor":  "Acme Corp",
		"description":    "Retainer",
		"gst_applicable": "yes",
		"gst_amount":     2250.0,
		"confidence":     1.4,
	}

	first := validateRecordAt(raw, testNow)

	again := validateRecordAt(map[string]interface{}{
		"type":           string(first.Type),
		"amount":         first.Amount,
		"date":           first.Date,
		"client_vendor":  first.ClientVendor,
		"description":    first.Description,
		"category":       first.Category,
		"gst_applicable": first.GSTApplicable,
		"gst_amount":     first.GSTAmount,
		"currency":       first.Currency,
		"confidence":     first.Confidence,
	}, testNow)

	if !reflect.DeepEqual(first, again) {
		t.Errorf("re-validation changed the record:\nfirst: %+v\nagain: %+v", first, again)
	}
}
