package vector

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"quillpdf/internal/model"
)

// MySQLIndex stores vectors as rows in the relational store and ranks
// in process. Namespaces stay small (one PDF's pages), so a linear
// scan per query is adequate.
type MySQLIndex struct {
	db *gorm.DB
}

func NewMySQLIndex(db *gorm.DB) *MySQLIndex {
	return &MySQLIndex{db: db}
}

func (x *MySQLIndex) Upsert(ctx context.Context, namespace string, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	chunks := make([]model.FileChunk, len(items))
	for i, item := range items {
		chunks[i] = model.FileChunk{
			Namespace: namespace,
			Page:      item.Page,
			Content:   item.Content,
		}
		chunks[i].SetEmbedding(item.Embedding)
	}
	if err := x.db.WithContext(ctx).Create(&chunks).Error; err != nil {
		return fmt.Errorf("upsert vectors failed: %w", err)
	}
	return nil
}

func (x *MySQLIndex) Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]Match, error) {
	var chunks []model.FileChunk
	if err := x.db.WithContext(ctx).Where("namespace = ?", namespace).Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("query vectors failed: %w", err)
	}

	matches := make([]Match, len(chunks))
	for i := range chunks {
		matches[i] = Match{
			Page:    chunks[i].Page,
			Content: chunks[i].Content,
			Score:   cosineSimilarity(embedding, chunks[i].EmbeddingVector()),
		}
	}
	return topMatches(matches, topK), nil
}

func (x *MySQLIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := x.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&model.FileChunk{}).Error; err != nil {
		return fmt.Errorf("delete vector namespace failed: %w", err)
	}
	return nil
}
