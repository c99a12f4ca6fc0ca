package encoder

import (
	"context"
	"sync"

	"github.com/example/go-voice-eval/internal/audio"
)

// Cache memoizes embeddings by source key for one comparison run. The
// reference waveform recurs for every synthetic sample of every model, so its
// embedding is extracted once and reused. The cache is handed to the
// evaluator explicitly; there is no package-level state.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]float32
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]float32)}
}

// Embed returns the cached embedding for key, extracting and storing it on
// first use. An empty key bypasses the cache.
func (c *Cache) Embed(ctx context.Context, p Provider, key string, w *audio.Waveform) ([]float32, error) {
	if c == nil || key == "" {
		return p.Embed(ctx, w)
	}

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	embedding, err := p.Embed(ctx, w)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = embedding
	c.mu.Unlock()
	return embedding, nil
}
