package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/octobees/cardcrm/internal/entity"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-3-flash-preview"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ contentGenerator = (*genai.Models)(nil)

// NewGeminiClient creates a GenAI client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// GeminiExtractor extracts card fields with a Gemini multimodal model.
type GeminiExtractor struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGeminiExtractor wires an extractor on top of client.Models.
func NewGeminiExtractor(client *genai.Client, model string, logger *zap.Logger) *GeminiExtractor {
	var models contentGenerator
	if client != nil {
		models = client.Models
	}
	return newGeminiExtractor(models, model, logger)
}

func newGeminiExtractor(models contentGenerator, model string, logger *zap.Logger) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiExtractor{models: models, model: model, logger: logger}
}

// Extract sends the photo and instruction and decodes the JSON answer.
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (entity.ExtractedCard, error) {
	if g.models == nil {
		return entity.ExtractedCard{}, ErrNotConfigured
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(extractInstruction),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   cardSchema(),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Warn("card extraction failed", zap.String("model", g.model), zap.Error(err))
		return entity.ExtractedCard{}, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return entity.ExtractedCard{}, fmt.Errorf("%w: no response", ErrMalformedResponse)
	}
	card, err := decodeCard([]byte(resp.Text()))
	if err != nil {
		g.logger.Warn("card extraction returned unreadable json", zap.String("model", g.model), zap.Error(err))
		return entity.ExtractedCard{}, err
	}
	return card, nil
}

func cardSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(cardFields))
	for _, name := range cardFields {
		props[name] = &genai.Schema{Type: genai.TypeString}
	}
	props["category"].Description = "One of: " + strings.Join(categoryNames(), ", ")
	props["field"].Description = "e.g., Men, Women, Kids, Textile"
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: cardFields,
		Required:         []string{"companyName", "personName"},
	}
}

func categoryNames() []string {
	names := make([]string, 0, len(entity.Categories))
	for _, c := range entity.Categories {
		names = append(names, string(c))
	}
	return names
}

const strategyInstruction = `You help a fashion photographer follow up with contacts met at trade fairs.
Write a short outreach plan (at most five bullet points, in Egyptian Arabic) for the contact below.
Focus on the next concrete step given the pipeline status. Reply with plain text only.`

// GeminiAdvisor drafts outreach plans with a Gemini text model.
type GeminiAdvisor struct {
	models contentGenerator
	model  string
}

// NewGeminiAdvisor wires an advisor on top of client.Models.
func NewGeminiAdvisor(client *genai.Client, model string) *GeminiAdvisor {
	var models contentGenerator
	if client != nil {
		models = client.Models
	}
	return newGeminiAdvisor(models, model)
}

func newGeminiAdvisor(models contentGenerator, model string) *GeminiAdvisor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiAdvisor{models: models, model: model}
}

// Strategy returns a plain-text plan for c.
func (a *GeminiAdvisor) Strategy(ctx context.Context, c entity.Contact) (string, error) {
	if a.models == nil {
		return "", ErrNotConfigured
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", c.CompanyName)
	fmt.Fprintf(&b, "Person: %s\n", c.PersonName)
	fmt.Fprintf(&b, "Category: %s\n", c.Category)
	if c.Field != "" {
		fmt.Fprintf(&b, "Field: %s\n", c.Field)
	}
	fmt.Fprintf(&b, "Status: %s\n", c.Status)
	if c.LastContactDate != nil {
		fmt.Fprintf(&b, "Last contacted: %s\n", c.LastContactDate.Format("2006-01-02"))
	}
	if strings.TrimSpace(c.Notes) != "" {
		fmt.Fprintf(&b, "Notes: %s\n", c.Notes)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(strategyInstruction, genai.RoleUser),
	}
	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(b.String()), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no response", ErrMalformedResponse)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty strategy", ErrMalformedResponse)
	}
	return text, nil
}

var (
	_ Extractor = (*GeminiExtractor)(nil)
	_ Advisor   = (*GeminiAdvisor)(nil)
)
