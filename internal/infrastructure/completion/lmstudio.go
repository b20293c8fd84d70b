package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/internaltypes"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LMStudio calls an OpenAI-compatible chat completions endpoint such as the
// one served by LM Studio.
type LMStudio struct {
	client    chatClient
	model     string
	maxTokens int
}

func NewLMStudio(baseURL, model string, timeout time.Duration) *LMStudio {
	if model == "" {
		model = "local-model"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// LM Studio ignores the API key but the client always sends one.
	cfg := openai.DefaultConfig("lm-studio")
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return newLMStudio(openai.NewClientWithConfig(cfg), model)
}

func newLMStudio(client chatClient, model string) *LMStudio {
	return &LMStudio{client: client, model: model, maxTokens: 800}
}

func (c *LMStudio) Name() string { return "lmstudio" }

func (c *LMStudio) Complete(ctx context.Context, messages []assistant.Message, temperature float32) (string, error) {
	history := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    history,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("lmstudio: %w: status %d: %s", internaltypes.ErrUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("lmstudio: %w: %w", internaltypes.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("lmstudio: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
