package model

import (
	"encoding/json"
	"time"
)

// FileChunk is one embedded passage in a file's vector namespace.
// Embedding is stored as a JSON array of float32 for portability.
type FileChunk struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Namespace string    `gorm:"size:36;not null;index" json:"namespace"`
	Page      int       `gorm:"not null" json:"page"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Embedding string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *FileChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *FileChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
