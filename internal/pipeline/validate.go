package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// Field limits applied during validation.
const (
	maxVendorLen      = 100
	maxDescriptionLen = 200
	maxExtractedText  = 1000

	defaultConfidence = 0.7
	failureConfidence = 0.1
)

// ValidateRecord normalizes one untrusted record (raw model output) into a
// well-typed transaction. It never fails: every field is coerced
// independently, and a nil record yields a deterministic low-confidence
// fallback. Callers must treat the result as trustworthy; nothing outside
// this function inspects the raw map again.
func ValidateRecord(raw map[string]interface{}) *domain.Transaction {
	return validateRecordAt(raw, time.Now())
}

func validateRecordAt(raw map[string]interface{}, now time.Time) *domain.Transaction {
	if raw == nil {
		return fallbackRecord(now)
	}

	t := &domain.Transaction{
		Type:          coerceType(raw["type"]),
		Amount:        coerceAmount(raw["amount"]),
		Date:          coerceDate(raw["date"], now),
		ClientVendor:  truncateRunes(coerceText(raw["client_vendor"], "Unknown"), maxVendorLen),
		Description:   truncateRunes(coerceText(raw["description"], "Transaction"), maxDescriptionLen),
		GSTApplicable: coerceBool(raw["gst_applicable"]),
		GSTAmount:     coerceFloat(raw["gst_amount"]),
		Currency:      coerceCurrency(raw["currency"]),
		Confidence:    coerceConfidence(raw["confidence"]),
	}
	t.Category = coerceCategory(raw["category"], t.Type)

	// Cross-field invariant: GST can never exceed the transaction amount.
	// The pair is reset together so downstream netting stays consistent.
	// Must run after both fields are individually normalized.
	if t.GSTAmount > t.Amount {
		t.GSTAmount = 0
		t.GSTApplicable = false
	}

	t.ProcessingNotes = processingNotes(t)
	return t
}

// fallbackRecord is returned when the raw record is absent entirely.
// It is indistinguishable from a successful low-confidence validation,
// which is exactly what downstream rendering expects.
func fallbackRecord(now time.Time) *domain.Transaction {
	t := &domain.Transaction{
		Type:         domain.TypeExpense,
		Amount:       0,
		Date:         now.Format(domain.DateLayout),
		ClientVendor: "Unknown",
		Description:  "Failed to parse",
		Category:     domain.CategoryOtherBusiness,
		Currency:     "INR",
		Confidence:   failureConfidence,
	}
	t.ProcessingNotes = processingNotes(t)
	return t
}

// processingNotes derives advisory strings from the final normalized values.
// They are informational only and never feed back into the fields.
func processingNotes(t *domain.Transaction) []string {
	var notes []string
	if t.Confidence < 0.5 {
		notes = append(notes, "Low confidence parsing - please verify")
	}
	if t.Amount == 0 {
		notes = append(notes, "No amount detected - please verify")
	}
	if t.ClientVendor == "Unknown" {
		notes = append(notes, "Client/vendor not identified")
	}
	return notes
}

func coerceType(v interface{}) domain.TransactionType {
	s, ok := v.(string)
	if !ok {
		return domain.TypeExpense
	}
	if strings.ToLower(strings.TrimSpace(s)) == string(domain.TypeIncome) {
		return domain.TypeIncome
	}
	return domain.TypeExpense
}

// coerceAmount accepts numbers or text. Text amounts may carry currency
// glyphs and thousands separators ("₹12,500", "Rs 1,000"); anything that
// still fails to parse becomes 0. The sign is never meaningful.
func coerceAmount(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return absFinite(val)
	case int:
		return absFinite(float64(val))
	case int64:
		return absFinite(float64(val))
	case string:
		s := val
		for _, glyph := range []string{"₹", "Rs", "INR", ","} {
			s = strings.ReplaceAll(s, glyph, "")
		}
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return absFinite(f)
	default:
		return 0
	}
}

// coerceFloat is the plain numeric coercion used for gst_amount: falsy or
// missing values become 0, no glyph stripping.
func coerceFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return absFinite(val)
	case int:
		return absFinite(float64(val))
	case int64:
		return absFinite(float64(val))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return absFinite(f)
	default:
		return 0
	}
}

func absFinite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Abs(f)
}

// coerceDate accepts strict YYYY-MM-DD only. Any failure, including a
// missing value, substitutes the current date without flagging an error.
func coerceDate(v interface{}, now time.Time) string {
	s, ok := v.(string)
	if !ok {
		return now.Format(domain.DateLayout)
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return now.Format(domain.DateLayout)
	}
	return s
}

func coerceText(v interface{}, fallback string) string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return fallback
		}
		return s
	case nil:
		return fallback
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", val)
	default:
		return fallback
	}
}

// coerceCategory keeps whatever non-empty string the classifier supplied;
// membership in the category taxonomy is the Categorizer's concern, not
// the validator's.
func coerceCategory(v interface{}, txType domain.TransactionType) string {
	s, ok := v.(string)
	if !ok {
		return domain.DefaultCategory(txType)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DefaultCategory(txType)
	}
	return s
}

func coerceBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return false
	}
}

func coerceCurrency(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return "INR"
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "INR"
	}
	return s
}

func coerceConfidence(v interface{}) float64 {
	f := defaultConfidence
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err == nil {
			f = parsed
		}
	}
	if math.IsNaN(f) {
		f = defaultConfidence
	}
	return math.Min(1.0, math.Max(0.0, f))
}

// truncateRunes bounds free text by rune count, not bytes, so multibyte
// vendor names are not cut mid-character.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
