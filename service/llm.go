package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// LLM is the language/vision model collaborator. Extraction and chat code
// depend on this interface so tests can substitute a fake; the production
// implementation wraps the Gemini client.
type LLM interface {
	// GenerateVision sends a prompt plus an image and returns the text reply.
	GenerateVision(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error)
	// GenerateText sends a text-only prompt under a system instruction.
	GenerateText(ctx context.Context, model, system, prompt string, temperature float32) (string, error)
}

// Model names per task. Notices need the stronger reasoning model; invoices
// and chat run on flash for speed and cost.
const (
	noticeModel  = "gemini-1.5-pro"
	invoiceModel = "gemini-1.5-flash"
	chatModel    = "gemini-1.5-flash"
)

const (
	visionCallTimeout = 90 * time.Second
	textCallTimeout   = 60 * time.Second
)

// GeminiLLM implements LLM over the Gemini API client
type GeminiLLM struct {
	client *genai.Client
}

// NewGeminiLLM wraps an initialized Gemini client
func NewGeminiLLM(client *genai.Client) *GeminiLLM {
	return &GeminiLLM{client: client}
}

// GenerateVision runs a vision extraction call with a bounded timeout
func (g *GeminiLLM) GenerateVision(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, visionCallTimeout)
	defer cancel()

	m := g.client.GenerativeModel(model)
	m.SetTemperature(0.1)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(imageFormat(mimeType), image))
	if err != nil {
		return "", fmt.Errorf("vision call failed: %w", err)
	}

	return responseText(resp)
}

// GenerateText runs a text completion with a bounded timeout
func (g *GeminiLLM) GenerateText(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, textCallTimeout)
	defer cancel()

	m := g.client.GenerativeModel(model)
	m.SetTemperature(temperature)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}

	return responseText(resp)
}

// imageFormat maps a MIME type to the format string the Gemini SDK expects
// ("jpeg", "png", ...)
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	switch format {
	case "", "jpg":
		return "jpeg"
	}
	return format
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrGenerationFailed
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}

	if builder.Len() == 0 {
		return "", ErrGenerationFailed
	}
	return builder.String(), nil
}
