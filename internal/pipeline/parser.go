package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// parseReceiptWithModel sends receipt bytes to Gemini and returns the raw
// parsed JSON object. The model is asked for STRICT JSON but the result is
// still treated as untrusted until it passes ValidateRecord.
func parseReceiptWithModel(ctx context.Context, data []byte, mimeType string) (map[string]interface{}, error) {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("parseReceiptWithModel: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildExtractionPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("parseReceiptWithModel: generate content: %w", err)
	}

	return decodeModelJSON(resp.Text())
}

// parseExtractedText is the OCR-text entry point: the extraction
// collaborator has already produced free-form text and only the
// classification step is delegated to the model.
func parseExtractedText(ctx context.Context, text string) (map[string]interface{}, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("parseExtractedText: create genai client: %w", err)
	}

	prompt := buildExtractionPrompt() +
		"\nParse this invoice/receipt text and extract financial information:\n\n" + text

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("parseExtractedText: generate content: %w", err)
	}

	return decodeModelJSON(resp.Text())
}

func decodeModelJSON(rawText string) (map[string]interface{}, error) {
	if rawText == "" {
		return nil, fmt.Errorf("decodeModelJSON: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("decodeModelJSON: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return parsed, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// GeminiParser is the concrete AIParser backed by the Gemini API.
type GeminiParser struct{}

// NewGeminiParser creates a new Gemini-backed parser.
func NewGeminiParser() *GeminiParser {
	return &GeminiParser{}
}

// ParseReceipt implements AIParser.
func (p *GeminiParser) ParseReceipt(ctx context.Context, data []byte, mimeType string) (map[string]interface{}, error) {
	return parseReceiptWithModel(ctx, data, mimeType)
}

// ParseText implements AIParser.
func (p *GeminiParser) ParseText(ctx context.Context, text string) (map[string]interface{}, error) {
	return parseExtractedText(ctx, text)
}
