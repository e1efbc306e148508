package encoder

import (
	"context"
	"fmt"
	"sync"
)

// Embedder is a remote embedding backend. llm.OpenAIProvider,
// llm.GeminiProvider and llm.MockProvider satisfy it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// ProviderEncoder adapts an Embedder into an Encoder. Vectors are
// re-normalized to unit length and memoized per text, so a trajectory that
// repeats goal names pays for each distinct text once.
type ProviderEncoder struct {
	embedder Embedder

	mu    sync.Mutex
	cache map[string]Embedding
	dim   int
}

// NewProviderEncoder wraps embedder.
func NewProviderEncoder(embedder Embedder) *ProviderEncoder {
	return &ProviderEncoder{
		embedder: embedder,
		cache:    make(map[string]Embedding),
	}
}

func (p *ProviderEncoder) Encode(ctx context.Context, text string) (Embedding, error) {
	p.mu.Lock()
	if v, ok := p.cache[text]; ok {
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()

	vecs, err := p.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", p.embedder.ModelID(), err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed with %s: expected one non-empty vector, got %d", p.embedder.ModelID(), len(vecs))
	}

	v := Normalize(Embedding(append([]float32(nil), vecs[0]...)))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dim != 0 && len(v) != p.dim {
		return nil, fmt.Errorf("%w: provider returned %d, previously %d", ErrDimensionMismatch, len(v), p.dim)
	}
	p.dim = len(v)
	p.cache[text] = v
	return v, nil
}

func (p *ProviderEncoder) Dimension() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dim
}

func (p *ProviderEncoder) Name() string { return p.embedder.ModelID() }
