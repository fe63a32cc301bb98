package pipeline

import (
	"strings"

	"github.com/taxmitra/taxmitra/internal/domain"
)

// buildExtractionPrompt constructs the instruction block sent to the model
// alongside the receipt. The model must answer with a single JSON object
// describing the primary transaction.
func buildExtractionPrompt() string {
	var b strings.Builder

	b.WriteString("You are a parser for Indian business invoices and receipts belonging to a freelancer.\n")
	b.WriteString("Extract financial information and categorize it according to Indian tax regulations.\n\n")

	b.WriteString("Categories for expenses:\n")
	for _, c := range domain.ExpenseCategories {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\nCategories for income:\n")
	for _, c := range domain.IncomeCategories {
		b.WriteString("- " + c + "\n")
	}

	b.WriteString("\nReturn a single JSON object with these fields:\n")
	b.WriteString("- \"type\": \"income\" or \"expense\"\n")
	b.WriteString("- \"amount\": number\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"client_vendor\": string, client or vendor name\n")
	b.WriteString("- \"description\": string, brief description\n")
	b.WriteString("- \"category\": string, one of the categories above\n")
	b.WriteString("- \"gst_applicable\": true or false\n")
	b.WriteString("- \"gst_amount\": number, GST portion if applicable\n")
	b.WriteString("- \"currency\": string, assume \"INR\" if not specified\n")
	b.WriteString("- \"confidence\": number between 0.0 and 1.0\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Look for amounts near ₹, Rs or INR markers.\n")
	b.WriteString("- If multiple transactions are present, return the primary/largest one.\n")
	b.WriteString("- If the amount is unclear, make a reasonable estimate and lower the confidence.\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences or Markdown.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}
