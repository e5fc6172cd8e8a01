// Package vector provides a namespaced embedding index. One namespace
// per ingested file, keyed by the file ID; vectors carry their source
// text so retrieval returns ready-to-prompt passages.
package vector

import (
	"context"
	"math"
	"sort"
)

// Item is a passage to index.
type Item struct {
	Page      int
	Content   string
	Embedding []float32
}

// Match is a retrieved passage with its similarity score.
type Match struct {
	Page    int
	Content string
	Score   float32
}

type Index interface {
	Upsert(ctx context.Context, namespace string, items []Item) error
	// Query returns up to topK matches ordered by descending cosine
	// similarity. No score threshold is applied.
	Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]Match, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

func topMatches(matches []Match, topK int) []Match {
	if topK <= 0 || len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK]
}
