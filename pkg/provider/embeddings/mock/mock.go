// Package mock provides a test double for the embeddings.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/murmurhq/murmur/pkg/provider/embeddings"
)

// Provider is a mock implementation of embeddings.Provider. It returns a
// deterministic vector derived from the input length, so distinct inputs
// typically produce distinct vectors without any model.
type Provider struct {
	mu sync.Mutex

	// Dim is the dimensionality of returned vectors. Defaults to 4 when 0.
	Dim int

	// Err, if non-nil, is returned from Embed and EmbedBatch.
	Err error

	// EmbedCalls records every text passed to Embed or EmbedBatch in order.
	EmbedCalls []string
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedCalls = append(p.EmbedCalls, text)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.vector(text), nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedCalls = append(p.EmbedCalls, texts...)
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	if p.Dim <= 0 {
		return 4
	}
	return p.Dim
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return "mock" }

func (p *Provider) vector(text string) []float32 {
	dim := p.Dim
	if dim <= 0 {
		dim = 4
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32((len(text)+i)%7) / 7
	}
	return v
}

// Ensure Provider implements embeddings.Provider at compile time.
var _ embeddings.Provider = (*Provider)(nil)
