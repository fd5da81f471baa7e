package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"transferair/internal/modules/intent"
)

var _ intent.Classifier = (*GeminiProvider)(nil)

// GeminiProvider classifies free-text chat messages using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Classify reads what a user wants from a message that matched no button.
func (p *GeminiProvider) Classify(ctx context.Context, text string) (intent.Guess, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return intent.Guess{}, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return intent.Guess{}, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return parseClassification(responseText.String())
}

func parseClassification(raw string) (intent.Guess, error) {
	cleanJSON := cleanJSONString(raw)
	var c classification
	if err := json.Unmarshal([]byte(cleanJSON), &c); err != nil {
		return intent.Guess{}, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	return c.guess(), nil
}

const systemPrompt = `Role: you route messages sent to the Telegram bot of TransferAir, an intercity
taxi service based in Mineralnye Vody (airport MRV), North Caucasus, Russia. Messages are usually in Russian.

Classify the message into exactly one intent:
- "quote": the user asks how much a ride costs ("сколько стоит до Домбая", "цена Пятигорск - Сочи").
- "order": the user wants to book a ride ("хочу заказать такси на завтра", "нужна машина в аэропорт").
- "dispatcher": the user wants to talk to a human or asks for a phone number.
- "info": the user asks who you are or about the service in general.
- "other": anything else.

Extract place names only when the user wrote them. Keep the user's spelling, drop prepositions
("до Домбая" -> "Домбай", "из аэропорта" -> "аэропорт"). Never invent a place.

Output JSON only:
{"intent": "quote" | "order" | "dispatcher" | "info" | "other", "origin": "string or null", "destination": "string or null"}`

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
