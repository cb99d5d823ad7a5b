package services

import (
	"context"
	"errors"
	"strings"

	"github.com/RomanDaru/otazkomat/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoAnswer is returned when the provider answers with no usable text.
// Callers treat it as a hard failure; nothing is persisted and the client
// gets a generic service error.
var ErrNoAnswer = errors.New("no answer generated")

// AnswerSource is echoed in API responses so clients can label answers.
const AnswerSource = "OpenAI GPT-3.5"

const answerSystemPrompt = "You are a helpful assistant that provides accurate and concise answers to everyday questions. " +
	"Answer in Slovak language. Keep your answers clear and to the point."

// AnswerGenerator produces an answer for a question. AskService depends on
// this interface so tests can swap in a fake.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string) (string, error)
}

// LLMService answers questions via an OpenAI-compatible chat completions API.
type LLMService struct {
	client *openai.Client
	model  string
}

func NewLLMService(cfg config.Config) *LLMService {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.OpenAIModel
	if model == "" {
		model = openai.GPT3Dot5Turbo0125
	}

	return &LLMService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// GenerateAnswer runs a single completion with the fixed system prompt and a
// bounded output length. No retries: a failed call fails the whole request.
func (s *LLMService) GenerateAnswer(ctx context.Context, question string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrNoAnswer
	}
	return resp.Choices[0].Message.Content, nil
}
