package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"quillpdf/internal/model"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrIngestEnqueue = errors.New("ingest enqueue failed")
)

type FileService struct {
	files       FileStore
	messages    MessageStore
	vectors     NamespaceDeleter
	objects     ObjectStore
	publisher   IngestPublisher
	statusCache StatusCache
}

// NamespaceDeleter is the slice of vector.Index the file service needs
// for cascade deletes.
type NamespaceDeleter interface {
	DeleteNamespace(ctx context.Context, namespace string) error
}

func NewFileService(
	files FileStore,
	messages MessageStore,
	vectors NamespaceDeleter,
	objects ObjectStore,
	publisher IngestPublisher,
	statusCache StatusCache,
) *FileService {
	return &FileService{
		files:       files,
		messages:    messages,
		vectors:     vectors,
		objects:     objects,
		publisher:   publisher,
		statusCache: statusCache,
	}
}

type CompleteUploadInput struct {
	UserID uint
	Key    string
	Name   string
}

// CompleteUpload records the uploaded file and queues it for
// ingestion. The File row exists after this returns no matter what
// happens downstream; pollers learn the outcome from its status.
func (s *FileService) CompleteUpload(ctx context.Context, input CompleteUploadInput) (*model.File, error) {
	key := strings.TrimSpace(input.Key)
	name := strings.TrimSpace(input.Name)
	if input.UserID == 0 || key == "" || name == "" {
		return nil, ErrInvalidInput
	}

	file := &model.File{
		ID:           uuid.NewString(),
		Key:          key,
		Name:         name,
		URL:          s.objects.ObjectURL(key),
		UserID:       input.UserID,
		UploadStatus: model.UploadStatusPending,
	}
	if err := s.files.Create(file); err != nil {
		return nil, err
	}
	if s.statusCache != nil {
		_ = s.statusCache.SetStatus(ctx, file.ID, file.UploadStatus)
	}

	if s.publisher == nil {
		return nil, ErrIngestEnqueue
	}
	if err := s.publisher.Publish(ctx, IngestJob{
		FileID: file.ID,
		Key:    file.Key,
		UserID: file.UserID,
	}); err != nil {
		log.Printf("enqueue ingest job for file %s failed: %v", file.ID, err)
		return nil, ErrIngestEnqueue
	}

	return file, nil
}

func (s *FileService) ListFiles(userID uint) ([]model.File, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.files.ListByUserID(userID)
}

func (s *FileService) GetFileByKey(key string, userID uint) (*model.File, error) {
	if userID == 0 || strings.TrimSpace(key) == "" {
		return nil, ErrInvalidInput
	}
	file, err := s.files.GetByKeyAndUserID(key, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// GetUploadStatus reads from the redis cache first, falling back to
// the database and re-warming the cache.
func (s *FileService) GetUploadStatus(ctx context.Context, fileID string, userID uint) (model.UploadStatus, error) {
	if userID == 0 || fileID == "" {
		return "", ErrInvalidInput
	}

	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", ErrFileNotFound
	}

	if s.statusCache != nil {
		if status, hit, cacheErr := s.statusCache.GetStatus(ctx, fileID); cacheErr == nil && hit {
			return status, nil
		}
		_ = s.statusCache.SetStatus(ctx, fileID, file.UploadStatus)
	}
	return file.UploadStatus, nil
}

type MessagePage struct {
	Messages   []model.Message `json:"messages"`
	NextCursor uint            `json:"next_cursor,omitempty"`
}

// GetFileMessages returns messages newest-first, keyset-paginated.
// Chained cursors produce disjoint pages covering every message once.
func (s *FileService) GetFileMessages(fileID string, userID uint, limit int, cursor uint) (*MessagePage, error) {
	if userID == 0 || fileID == "" {
		return nil, ErrInvalidInput
	}

	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}

	messages, nextCursor, err := s.messages.ListPageByFileID(fileID, limit, cursor)
	if err != nil {
		return nil, err
	}
	return &MessagePage{Messages: messages, NextCursor: nextCursor}, nil
}

// DeleteFile removes the file, its messages and its vector namespace.
func (s *FileService) DeleteFile(ctx context.Context, fileID string, userID uint) error {
	if userID == 0 || fileID == "" {
		return ErrInvalidInput
	}

	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrFileNotFound
	}

	if err := s.messages.DeleteByFileID(fileID); err != nil {
		return err
	}
	if err := s.vectors.DeleteNamespace(ctx, fileID); err != nil {
		return err
	}
	if err := s.files.DeleteByIDAndUserID(fileID, userID); err != nil {
		return err
	}
	if s.statusCache != nil {
		_ = s.statusCache.Delete(ctx, fileID)
	}
	return nil
}
