package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

const completionMaxTokens = 1024

// ChatRequest is the provider-neutral input to a completion call.
type ChatRequest struct {
	System   string
	Messages []models.ChatMessage
}

// Provider is a language-model backend capable of answering a chat turn.
type Provider interface {
	ID() models.ProviderID
	Model() string
	Complete(ctx context.Context, req ChatRequest) (models.ProviderResponse, error)
}

// anthropicProvider is the reasoning backend.
type anthropicProvider struct {
	cfg    config.ProviderConfig
	client anthropic.Client
}

// NewReasoningProvider creates the reasoning provider over the Anthropic API.
func NewReasoningProvider(cfg config.ProviderConfig) Provider {
	return &anthropicProvider{
		cfg:    cfg,
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
	}
}

func (p *anthropicProvider) ID() models.ProviderID { return models.ProviderReasoning }

func (p *anthropicProvider) Model() string { return p.cfg.Model }

func (p *anthropicProvider) Complete(ctx context.Context, req ChatRequest) (models.ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout(p.cfg.Timeout))
	defer cancel()

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: completionMaxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	return models.TextResult{
		Text: text,
		TokenUsage: models.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// openAIProvider is the search-grounded backend.
type openAIProvider struct {
	cfg    config.ProviderConfig
	client *openai.Client
}

// NewSearchGroundedProvider creates the search-grounded provider over the
// OpenAI API.
func NewSearchGroundedProvider(cfg config.ProviderConfig) Provider {
	return &openAIProvider{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
	}
}

func (p *openAIProvider) ID() models.ProviderID { return models.ProviderSearchGrounded }

func (p *openAIProvider) Model() string { return p.cfg.Model }

func (p *openAIProvider) Complete(ctx context.Context, req ChatRequest) (models.ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout(p.cfg.Timeout))
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.cfg.Model,
		MaxTokens: completionMaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	choice := resp.Choices[0]
	usage := models.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}

	// Function-call replies surface as a ToolCallResult so callers can
	// dispatch without poking at provider payload shapes.
	if len(choice.Message.ToolCalls) > 0 {
		call := choice.Message.ToolCalls[0]
		return models.ToolCallResult{
			Name:       call.Function.Name,
			Arguments:  call.Function.Arguments,
			TokenUsage: usage,
		}, nil
	}

	return models.TextResult{
		Text:       choice.Message.Content,
		TokenUsage: usage,
	}, nil
}

// callTimeout guards against zero-value configs in tests.
func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
