package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// ChatService is the advisory chat feature: a CA persona answering GST
// questions with the user's recent conversation as context. The memory
// manager is language-agnostic; tone and language live in the system
// instruction composed here.
type ChatService struct {
	llm    LLM
	memory *ConversationMemory
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithLLM sets the language model collaborator
func ChatWithLLM(llm LLM) ChatServiceOption {
	return func(s *ChatService) {
		s.llm = llm
	}
}

// ChatWithMemory sets the conversation memory manager
func ChatWithMemory(memory *ConversationMemory) ChatServiceOption {
	return func(s *ChatService) {
		s.memory = memory
	}
}

// NewChatService creates a chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers a user message in the requested language, using and updating
// the per-user conversation window
func (s *ChatService) Chat(ctx context.Context, userID, message, language string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("llm client not set")
	}

	var history []models.Turn
	if s.memory != nil {
		history = s.memory.GetContext(ctx, userID)
	}

	reply, err := s.llm.GenerateText(ctx, chatModel, caSystemInstruction(language), chatPrompt(history, message), 0.7)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if s.memory != nil {
		s.memory.AppendExchange(ctx, userID, message, reply)
	}

	return reply, nil
}

// HSNResult represents an HSN code lookup answer
type HSNResult struct {
	HSNCode string `json:"hsn_code"`
	GSTRate string `json:"gst_rate"`
	Reason  string `json:"reason"`
}

// SearchHSN asks the model for the most likely HSN code for a product query
func (s *ChatService) SearchHSN(ctx context.Context, query string) (*HSNResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("llm client not set")
	}

	prompt := fmt.Sprintf(`You are a GST expert. The user is asking: %q.
Identify the HSN code they are looking for.
Return ONLY a JSON object:
{
  "hsn_code": "<the most likely HSN code>",
  "gst_rate": "<the applicable GST rate like '5%%', '12%%', '18%%'>",
  "reason": "<a short explanation>"
}`, query)

	text, err := s.llm.GenerateText(ctx, chatModel, "", prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("hsn lookup failed: %w", err)
	}

	raw, err := cleanJSON(text)
	if err != nil {
		return nil, fmt.Errorf("hsn lookup returned unparseable output: %w", err)
	}

	return &HSNResult{
		HSNCode: stringField(raw, "hsn_code"),
		GSTRate: stringField(raw, "gst_rate"),
		Reason:  stringField(raw, "reason"),
	}, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// caSystemInstruction composes the CA persona. Hinglish is the default tone
// for the kirana-store audience; other language codes get the same persona in
// that language.
func caSystemInstruction(language string) string {
	tone := "Speak in Hinglish (a natural mix of Hindi and English) which feels personal and removes fear."
	switch strings.ToLower(language) {
	case "en":
		tone = "Speak in simple, reassuring English."
	case "hi":
		tone = "Speak in simple Hindi."
	}

	return fmt.Sprintf(`You are a friendly, knowledgeable Indian Chartered Accountant (CA).
Your client is a small shop owner.

Instructions:
1. %s
2. Be authoritative but calm.
3. Do not give illegal advice.
4. Keep answers concise (under 3 sentences unless asked for detail).`, tone)
}

// chatPrompt flattens the recent window plus the new message into a single
// prompt
func chatPrompt(history []models.Turn, message string) string {
	if len(history) == 0 {
		return message
	}

	var builder strings.Builder
	builder.WriteString("Recent conversation:\n")
	for _, turn := range history {
		builder.WriteString(string(turn.Role))
		builder.WriteString(": ")
		builder.WriteString(turn.Content)
		builder.WriteString("\n")
	}
	builder.WriteString("\nuser: ")
	builder.WriteString(message)
	return builder.String()
}
