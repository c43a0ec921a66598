package llm

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"
)

// Client is the interface every provider implementation satisfies.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a single provider call. Temperature is passed
// through as-is; callers that need determinism pin it themselves.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse holds the raw response text and token usage.
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// NewClientFromEnv selects a provider from LLM_PROVIDER. The returned
// model name is what cache entries are stamped with.
func NewClientFromEnv() (Client, string) {
	switch os.Getenv("LLM_PROVIDER") {
	case "mock":
		log.Println("LLM using mock responses")
		return NewMockClient(), "mock"
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = openai.GPT4o
		}
		log.Println("LLM using OpenAI API:", model)
		return NewOpenAIClient(model), model
	default:
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		log.Println("LLM using Anthropic API:", model)
		return NewAnthropicClient(model), model
	}
}

// ── AnthropicClient (Anthropic SDK) ────────────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: param.NewOpt(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages.new: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &CompletionResponse{
		Text:         responseText,
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		StopReason:   string(message.StopReason),
	}, nil
}

// ── OpenAIClient ───────────────────────────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in API response")
	}

	return &CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   string(resp.Choices[0].FinishReason),
	}, nil
}

// ── MockClient ─────────────────────────────────────────────

type MockClient struct {
	// Responses are returned in order; the last one repeats once the
	// queue is drained. Empty queue falls back to a canned topic list.
	Responses []string
	Calls     int
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.Calls++
	text := mockTopicJSON
	if len(m.Responses) > 0 {
		idx := m.Calls - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		text = m.Responses[idx]
	}
	return &CompletionResponse{
		Text:         text,
		InputTokens:  1200,
		OutputTokens: 800,
		StopReason:   "end_turn",
	}, nil
}

const mockTopicJSON = `[
  {"id":"t_001","name":"[Mock] Algebra Review","weight":1.5,"prereqs":[]},
  {"id":"t_002","name":"[Mock] Limits and Continuity","weight":2.0,"prereqs":["t_001"]},
  {"id":"t_003","name":"[Mock] Derivatives","weight":1.0,"prereqs":["t_002"]}
]`
