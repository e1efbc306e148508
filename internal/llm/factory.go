package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/intentdrift/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with timeout,
// retry and logging middleware. eventRepo may be nil when runs are not persisted.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, logger)
	return WithTimeout(WithRetry(logged, cfg.Retry), cfg.Timeout), nil
}

// NewEmbedder creates an Embedder from configuration, wrapped with retry.
func NewEmbedder(ctx context.Context, cfg Config) (Embedder, error) {
	var base Embedder

	switch cfg.Embedder {
	case "openai":
		e, err := NewOpenAIEmbedder(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("initializing openai embedder: %w", err)
		}
		base = e
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini embedder: %w", err)
		}
		base = geminiEmbedder{p}
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %q", cfg.Embedder)
	}

	return WithEmbedRetry(base, cfg.Retry), nil
}
