package app

import (
	"context"
	"time"

	"quillpdf/internal/ai"
	"quillpdf/internal/model"
)

// Store interfaces are satisfied by the gorm repositories; services
// depend on these so tests can substitute fakes.

type UserStore interface {
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetBySubscriptionID(subscriptionID string) (*model.User, error)
	UpdateBilling(userID uint, customerID, subscriptionID, priceID string, periodEnd time.Time) error
	RefreshBilling(subscriptionID, priceID string, periodEnd time.Time) error
}

type FileStore interface {
	Create(file *model.File) error
	ListByUserID(userID uint) ([]model.File, error)
	GetByID(id string) (*model.File, error)
	GetByIDAndUserID(id string, userID uint) (*model.File, error)
	GetByKeyAndUserID(key string, userID uint) (*model.File, error)
	UpdateStatus(id string, status model.UploadStatus) error
	DeleteByIDAndUserID(id string, userID uint) error
}

type MessageStore interface {
	Create(message *model.Message) error
	ListRecentByFileID(fileID string, limit int) ([]model.Message, error)
	ListPageByFileID(fileID string, limit int, cursor uint) ([]model.Message, uint, error)
	DeleteByFileID(fileID string) error
}

// ObjectStore resolves and fetches uploaded objects by storage key.
type ObjectStore interface {
	ObjectURL(key string) string
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// StatusCache keeps upload statuses warm for the polling endpoint.
type StatusCache interface {
	GetStatus(ctx context.Context, fileID string) (model.UploadStatus, bool, error)
	SetStatus(ctx context.Context, fileID string, status model.UploadStatus) error
	Delete(ctx context.Context, fileID string) error
}

// IngestJob is the queue payload linking an uploaded object to its
// pending File row.
type IngestJob struct {
	FileID string `json:"file_id"`
	Key    string `json:"key"`
	UserID uint   `json:"user_id"`
}

type IngestPublisher interface {
	Publish(ctx context.Context, job IngestJob) error
}

// Embedder produces vectors in the embedding space shared by
// ingestion and retrieval. Both pipelines must use the same model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionStreamer streams a chat completion, invoking onChunk per
// content delta, and returns the full accumulated text.
type CompletionStreamer interface {
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}
