// Package extraction turns card photos into structured contact fields using a
// hosted multimodal model.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/cardcrm/internal/entity"
)

var (
	// ErrNotConfigured is returned when the extraction backend has no credentials.
	ErrNotConfigured = errors.New("extraction service not configured")
	// ErrMalformedResponse is returned when the service answers with something other than the card schema.
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// Extractor reads a business card photo.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (entity.ExtractedCard, error)
}

// Advisor drafts an outreach strategy for a contact.
type Advisor interface {
	Strategy(ctx context.Context, c entity.Contact) (string, error)
}

const extractInstruction = `Extract all relevant professional contact information from this business card.
Be accurate. If a field is missing, return an empty string.
Also, suggest a category based on the content (Brand, Factory, Export, Workshop, or Other).
Return the data strictly in JSON format.`

// cardFields lists the response keys in schema order.
var cardFields = []string{
	"companyName", "personName", "phone", "whatsapp", "email", "instagram",
	"facebook", "telegram", "website", "address", "category", "field",
}

// decodeCard parses a JSON object into an ExtractedCard. Missing keys stay empty.
func decodeCard(raw []byte) (entity.ExtractedCard, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return entity.ExtractedCard{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var card entity.ExtractedCard
	if err := json.Unmarshal([]byte(text), &card); err != nil {
		return entity.ExtractedCard{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return card, nil
}
