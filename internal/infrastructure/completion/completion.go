package completion

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/infrastructure/config"
)

// FromConfig builds the configured completer. It returns nil when
// COMPLETION_PROVIDER is "none".
func FromConfig(ctx context.Context, cfg config.Config) (assistant.Completer, error) {
	switch cfg.CompletionProvider {
	case config.CompletionNone, "":
		return nil, nil
	case config.CompletionLMStudio:
		return NewLMStudio(cfg.LMStudioBaseURL, cfg.CompletionModel, cfg.CompletionTimeout), nil
	case config.CompletionGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.CompletionModel)
		if err != nil {
			return nil, err
		}
		return WithTimeout(g, cfg.CompletionTimeout), nil
	case config.CompletionBedrock:
		b, err := NewBedrock(ctx, cfg.AWSRegion, cfg.BedrockModelID)
		if err != nil {
			return nil, err
		}
		return WithTimeout(b, cfg.CompletionTimeout), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.CompletionProvider)
	}
}

type timeoutCompleter struct {
	assistant.Completer
	timeout time.Duration
}

// WithTimeout bounds every Complete call made through c.
func WithTimeout(c assistant.Completer, d time.Duration) assistant.Completer {
	if d <= 0 {
		return c
	}
	return timeoutCompleter{Completer: c, timeout: d}
}

func (t timeoutCompleter) Complete(ctx context.Context, messages []assistant.Message, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Completer.Complete(ctx, messages, temperature)
}

func (t timeoutCompleter) Close() error {
	if c, ok := t.Completer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
