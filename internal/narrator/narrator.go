// Package narrator turns a comparison into a short plain-language summary.
// The summary is descriptive only; it never changes any computed figure.
package narrator

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// maxPromptCategories caps the per-category lines included in a prompt.
const maxPromptCategories = 10

// Narrator describes a comparison.
type Narrator interface {
	Narrate(ctx context.Context, result *models.ComparisonResult, insights *models.ComparisonInsights) (string, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiNarrator asks a Gemini model for the summary.
type GeminiNarrator struct {
	client *genai.Client
	model  contentGenerator
	logger logging.Logger
}

// NewGeminiNarrator creates a client for apiKey. An empty model name uses DefaultModel.
func NewGeminiNarrator(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiNarrator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.2)

	return &GeminiNarrator{
		client: client,
		model:  gm,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "narrator"),
	}, nil
}

// Narrate returns the model's summary of the comparison.
func (n *GeminiNarrator) Narrate(ctx context.Context, result *models.ComparisonResult, insights *models.ComparisonInsights) (string, error) {
	prompt, err := BuildPrompt(result, insights)
	if err != nil {
		return "", err
	}

	resp, err := n.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("no response from Gemini API")
	}

	n.logger.Debug("Narrative generated", logging.F(logging.FieldCount, len(text)))
	return text, nil
}

// Close releases the client.
func (n *GeminiNarrator) Close() error {
	if n.client != nil {
		return n.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// BuildPrompt renders the comparison figures into a prompt. The output only
// depends on its inputs.
func BuildPrompt(result *models.ComparisonResult, insights *models.ComparisonInsights) (string, error) {
	if result == nil || insights == nil {
		return "", fmt.Errorf("comparison result and insights are required")
	}

	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Summarize the change between two bank statements ")
	b.WriteString("in at most four sentences. Use only the figures below and do not invent numbers.\n\n")

	writeStatement(&b, "Statement 1", result.Statement1)
	writeStatement(&b, "Statement 2", result.Statement2)

	fmt.Fprintf(&b, "Total spending: %s -> %s (change %s)\n",
		models.FormatCurrency(insights.Statement1Spending),
		models.FormatCurrency(insights.Statement2Spending),
		models.FormatCurrency(insights.TotalSpendingChange))
	fmt.Fprintf(&b, "Total income: %s -> %s (change %s)\n",
		models.FormatCurrency(insights.Statement1Income),
		models.FormatCurrency(insights.Statement2Income),
		models.FormatCurrency(insights.TotalIncomeChange))

	b.WriteString("\nCategories (largest change first):\n")
	for i, c := range result.Comparison {
		if i == maxPromptCategories {
			fmt.Fprintf(&b, "- ... %d more\n", len(result.Comparison)-i)
			break
		}
		fmt.Fprintf(&b, "- %s: %s -> %s (%s)\n",
			models.CategoryLabel(c.Category),
			models.FormatCurrency(c.Statement1Total),
			models.FormatCurrency(c.Statement2Total),
			c.PercentChange.String())
	}

	if len(insights.NewCategories) > 0 {
		fmt.Fprintf(&b, "New categories: %s\n", labels(insights.NewCategories))
	}
	if len(insights.DiscontinuedCategories) > 0 {
		fmt.Fprintf(&b, "Discontinued categories: %s\n", labels(insights.DiscontinuedCategories))
	}
	if len(insights.Recommendations) > 0 {
		b.WriteString("Recommendations already given:\n")
		for _, r := range insights.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String(), nil
}

func writeStatement(b *strings.Builder, title string, stmt *models.ParsedStatement) {
	if stmt == nil {
		return
	}
	s := stmt.Summary
	fmt.Fprintf(b, "%s: %s %s, %s to %s\n", title, s.BankName, s.AccountNumber,
		s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
}

func labels(categories []string) string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = models.CategoryLabel(c)
	}
	return strings.Join(out, ", ")
}
