package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const supportSystemPrompt = `You are a supportive listener for university students on a campus wellness platform.
Respond with warmth and without judgment in two to four sentences.
Do not diagnose or prescribe. If the student mentions self-harm or danger, urge them to contact campus crisis services or emergency services right away.`

// GeminiReplies generates replies with Google's Gemini API.
type GeminiReplies struct {
	client  *genai.Client
	modelID string
}

// NewGeminiReplies creates a Gemini-backed generator.
func NewGeminiReplies(ctx context.Context, apiKey, modelID string) (*GeminiReplies, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create gemini client: %w", err)
	}
	return &GeminiReplies{client: client, modelID: modelID}, nil
}

// Generate sends the user's message and returns the model's text.
func (g *GeminiReplies) Generate(ctx context.Context, userText string) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(supportSystemPrompt))
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(400)

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return "", fmt.Errorf("chat: gemini completion failed: %w", err)
	}
	return geminiText(resp)
}

// Close releases resources held by the Gemini client.
func (g *GeminiReplies) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("chat: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("chat: gemini returned empty content")
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("chat: gemini returned empty content")
	}
	return text, nil
}
