package categorization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// Suggestion is one AI category proposal with the model's own confidence.
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Suggester proposes a category for a single transaction. Implementations
// report transport or model failures as errors; callers treat any error as
// "no suggestion".
type Suggester interface {
	Suggest(ctx context.Context, description string, amount decimal.Decimal, date time.Time) (Suggestion, error)
}

// GeminiSuggester asks a Gemini model to categorize one transaction.
type GeminiSuggester struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiSuggester creates a suggester backed by the Gemini API.
func NewGeminiSuggester(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiSuggester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("categorization: gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("categorization: create genai client: %w", err)
	}

	return &GeminiSuggester{client: client, model: model, logger: logger}, nil
}

const suggestPromptTemplate = `You are categorizing one personal-finance transaction for a budgeting app.

Transaction:
- description: %q
- amount: %s
- date: %s

Pick the single best category from everyday budgeting categories
(Groceries, Utilities, Transportation, Entertainment, Healthcare, Insurance,
Shopping, Education, Home Improvement, Personal Care, Childcare, Pet Care,
Gifts & Donations, Rent, Credit Card Payment, Salary, Investment, Refunds,
Other Income, Other Expenses).

Return ONLY valid raw JSON, no code fences, of the form:
{"category": "<category>", "confidence": <0.0-1.0>}`

// Suggest asks the model for a category. The response must be a small JSON
// object; anything else is an error.
func (s *GeminiSuggester) Suggest(ctx context.Context, description string, amount decimal.Decimal, date time.Time) (Suggestion, error) {
	prompt := fmt.Sprintf(suggestPromptTemplate, description, amount.StringFixed(2), date.Format("2006-01-02"))

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return Suggestion{}, fmt.Errorf("categorization: generate content: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Suggestion{}, fmt.Errorf("categorization: empty model response")
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &suggestion); err != nil {
		return Suggestion{}, fmt.Errorf("categorization: unmarshal suggestion: %w", err)
	}
	if suggestion.Category == "" {
		return Suggestion{}, fmt.Errorf("categorization: suggestion missing category")
	}

	return suggestion, nil
}

// stripCodeFences removes Markdown fences the model sometimes adds despite the
// prompt, keeping only the JSON object.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
