// Package ai classifies review sentiment with Gemini.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier assigns a sentiment to free text.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}

// GeminiClassifier holds the Gemini client.
type GeminiClassifier struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

// NewGeminiClassifier initializes the Gemini client.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiClassifier{client: client, modelName: modelName, logger: logger}, nil
}

func (g *GeminiClassifier) Close() error {
	return g.client.Close()
}

const systemPrompt = `You label customer reviews of an online shop.
Answer with JSON {"sentiment": "positive" | "neutral" | "negative"} and nothing else.`

func (g *GeminiClassifier) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sentiment": {
				Type: genai.TypeString,
				Enum: []string{
					string(models.SentimentPositive),
					string(models.SentimentNeutral),
					string(models.SentimentNegative),
				},
			},
		},
		Required: []string{"sentiment"},
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	raw := responseText(resp)
	var out struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// Some models ignore the MIME type and answer with a bare word.
		out.Sentiment = raw
	}

	sentiment, err := ParseSentiment(out.Sentiment)
	if err != nil {
		g.logger.Debug("unparseable sentiment response", zap.String("raw", raw))
		return "", err
	}
	return sentiment, nil
}

// responseText concatenates the text parts of the first candidate.
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

var errUnknownSentiment = errors.New("unknown sentiment")

// ParseSentiment normalizes a label to one of the three sentiments.
func ParseSentiment(raw string) (models.Sentiment, error) {
	switch s := models.Sentiment(strings.ToLower(strings.Trim(strings.TrimSpace(raw), `".`))); s {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownSentiment, raw)
}

// NeutralClassifier is used when no Gemini key is configured.
type NeutralClassifier struct{}

func (NeutralClassifier) Classify(context.Context, string) (models.Sentiment, error) {
	return models.SentimentNeutral, nil
}
