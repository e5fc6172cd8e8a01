package vector

import (
	"context"
	"sync"
)

// MemoryIndex is an in-process Index for tests and local development.
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[string][]Item
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{namespaces: make(map[string][]Item)}
}

func (x *MemoryIndex) Upsert(_ context.Context, namespace string, items []Item) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.namespaces[namespace] = append(x.namespaces[namespace], items...)
	return nil
}

func (x *MemoryIndex) Query(_ context.Context, namespace string, embedding []float32, topK int) ([]Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	items := x.namespaces[namespace]
	matches := make([]Match, len(items))
	for i, item := range items {
		matches[i] = Match{
			Page:    item.Page,
			Content: item.Content,
			Score:   cosineSimilarity(embedding, item.Embedding),
		}
	}
	return topMatches(matches, topK), nil
}

func (x *MemoryIndex) DeleteNamespace(_ context.Context, namespace string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.namespaces, namespace)
	return nil
}

// Size returns the number of items in a namespace.
func (x *MemoryIndex) Size(namespace string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.namespaces[namespace])
}
