package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
)

// extractionPrompt instructs the model to decompose a raw apartment-search
// query into typed claims. Kept in sync with the claim taxonomy.
const extractionPrompt = `You decompose an apartment search query into atomic claims.
Respond with JSON only: {"claims": [...]}.

Each claim:
  "text":       the claim restated as a standalone statement
  "claim_type": one of location, features, amenities, size, condition, pricing,
                accessibility, policies, utilities, transport, neighborhood, restrictions
  "domain":     which level it describes: neighborhood, apartment, or room
  "room_type":  only for room-domain claims, e.g. "kitchen", "bedroom"
  "weight":     importance to the user in [0,1]
  "negation":   true if the user does NOT want this
  "is_specific": true if the claim names a concrete place, e.g. "Williamsburg"
  "or_group":   same positive integer for claims joined by "or", else 0
  "quantifiers": numeric constraints split out of the text, each with
      "qtype" (money, area, count, distance, duration), "noun", "op"
      (EQUALS, GT, GTE, LT, LTE, RANGE), "vmin", "vmax", "unit"

Approximate amounts ("around 2000") must be widened into a RANGE, never APPROX.`

// Extractor turns raw search queries into typed claims via chat completion.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ExtractorConfig holds the extraction model settings.
type ExtractorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewExtractor creates an OpenAI-compatible claim extractor.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// extractedClaim is the wire shape the model responds with.
type extractedClaim struct {
	Text        string                `json:"text"`
	ClaimType   string                `json:"claim_type"`
	Domain      string                `json:"domain"`
	RoomType    string                `json:"room_type,omitempty"`
	Weight      float64               `json:"weight"`
	Negation    bool                  `json:"negation"`
	IsSpecific  bool                  `json:"is_specific"`
	ORGroup     int                   `json:"or_group"`
	Quantifiers []extractedQuantifier `json:"quantifiers,omitempty"`
}

type extractedQuantifier struct {
	QType string  `json:"qtype"`
	Noun  string  `json:"noun"`
	VMin  float64 `json:"vmin"`
	VMax  float64 `json:"vmax"`
	Op    string  `json:"op"`
	Unit  string  `json:"unit,omitempty"`
}

// Extract decomposes a raw query into validated claims.
func (e *Extractor) Extract(ctx context.Context, query string) ([]claim.Claim, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w: %v", domain.ErrExtractionProviderError, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty extraction response: %w", domain.ErrExtractionProviderError)
	}

	var parsed struct {
		Claims []extractedClaim `json:"claims"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		e.logger.Warn("Unparseable extraction response", zap.String("content", content), zap.Error(err))
		return nil, fmt.Errorf("parse extraction response: %w", domain.ErrExtractionProviderError)
	}

	claims := make([]claim.Claim, 0, len(parsed.Claims))
	for i := range parsed.Claims {
		c := convertExtracted(&parsed.Claims[i])
		c.Normalize()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("extracted claim %d: %w", i, err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("extractor health check: %w", err)
	}
	return nil
}

// approxMargin widens a stray APPROX into a RANGE when the model ignores the
// prompt instruction.
const approxMargin = 0.15

func convertExtracted(ec *extractedClaim) claim.Claim {
	c := claim.Claim{
		Text:       ec.Text,
		ClaimType:  claim.Type(strings.ToLower(ec.ClaimType)),
		Domain:     claim.Domain(strings.ToLower(ec.Domain)),
		RoomType:   strings.ToLower(ec.RoomType),
		Weight:     ec.Weight,
		Negation:   ec.Negation,
		IsSpecific: ec.IsSpecific,
		ORGroup:    ec.ORGroup,
	}
	for _, eq := range ec.Quantifiers {
		q := claim.Quantifier{
			QType: claim.QType(strings.ToLower(eq.QType)),
			Noun:  strings.ToLower(eq.Noun),
			VMin:  eq.VMin,
			VMax:  eq.VMax,
			Op:    claim.Op(strings.ToUpper(eq.Op)),
			Unit:  eq.Unit,
		}
		if q.Op == claim.OpApprox {
			center := q.VMin
			if center == 0 {
				center = q.VMax
			}
			q.Op = claim.OpRange
			q.VMin = center * (1 - approxMargin)
			q.VMax = center * (1 + approxMargin)
		}
		c.Quantifiers = append(c.Quantifiers, q)
	}
	return c
}
