package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"quillpdf/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *model.File) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	return nil
}

func (r *FileRepository) ListByUserID(userID uint) ([]model.File, error) {
	var files []model.File
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}
	return files, nil
}

func (r *FileRepository) GetByIDAndUserID(id string, userID uint) (*model.File, error) {
	var file model.File
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) GetByKeyAndUserID(key string, userID uint) (*model.File, error) {
	var file model.File
	if err := r.db.Where("`key` = ? AND user_id = ?", key, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file by key failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) GetByID(id string) (*model.File, error) {
	var file model.File
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file by id failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) UpdateStatus(id string, status model.UploadStatus) error {
	if err := r.db.Model(&model.File{}).Where("id = ?", id).Update("upload_status", status).Error; err != nil {
		return fmt.Errorf("update file status failed: %w", err)
	}
	return nil
}

func (r *FileRepository) DeleteByIDAndUserID(id string, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.File{}).Error; err != nil {
		return fmt.Errorf("delete file failed: %w", err)
	}
	return nil
}
