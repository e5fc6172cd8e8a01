package model

import "time"

type Message struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FileID        string    `gorm:"size:36;not null;index" json:"file_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	IsUserMessage bool      `gorm:"not null" json:"is_user_message"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}
