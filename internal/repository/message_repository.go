package repository

import (
	"fmt"

	"gorm.io/gorm"

	"quillpdf/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecentByFileID returns the most recent limit messages for the
// file in ascending creation order, for prompt assembly.
func (r *MessageRepository) ListRecentByFileID(fileID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 6
	}
	var messages []model.Message
	err := r.db.Where("file_id = ?", fileID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	// oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListPageByFileID returns up to limit messages newest-first starting
// at cursor (a message ID; 0 means from the newest). The second return
// is the cursor for the next page, 0 when the page is the last one.
func (r *MessageRepository) ListPageByFileID(fileID string, limit int, cursor uint) ([]model.Message, uint, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := r.db.Where("file_id = ?", fileID)
	if cursor != 0 {
		q = q.Where("id <= ?", cursor)
	}

	// id is the keyset: ordering by anything else (created_at) could
	// disagree with the id <= cursor filter and skip or repeat rows
	var messages []model.Message
	err := q.Order("id DESC").
		Limit(limit + 1).
		Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list message page failed: %w", err)
	}

	var nextCursor uint
	if len(messages) > limit {
		nextCursor = messages[limit].ID
		messages = messages[:limit]
	}
	return messages, nextCursor, nil
}

func (r *MessageRepository) DeleteByFileID(fileID string) error {
	if err := r.db.Where("file_id = ?", fileID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by file failed: %w", err)
	}
	return nil
}
