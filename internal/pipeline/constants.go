package pipeline

// Default values for receipt processing and parsing.
const (
	// DefaultModelName is the default Gemini model used for parsing.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultMIMEType is assumed when a receipt's content type is unknown.
	DefaultMIMEType = "application/pdf"
)
