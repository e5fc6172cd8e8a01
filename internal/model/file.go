package model

import "time"

// UploadStatus is the ingestion lifecycle of a file. Transitions are
// monotonic: PENDING -> PROCESSING -> SUCCESS | FAILED.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "PENDING"
	UploadStatusProcessing UploadStatus = "PROCESSING"
	UploadStatusSuccess    UploadStatus = "SUCCESS"
	UploadStatusFailed     UploadStatus = "FAILED"
)

// File is an uploaded PDF. Its ID doubles as the vector namespace key.
type File struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Key          string       `gorm:"size:256;not null;index" json:"key"`
	Name         string       `gorm:"size:256;not null" json:"name"`
	URL          string       `gorm:"size:512;not null" json:"url"`
	UserID       uint         `gorm:"not null;index" json:"user_id"`
	UploadStatus UploadStatus `gorm:"size:16;not null;default:PENDING" json:"upload_status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
