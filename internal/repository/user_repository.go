package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quillpdf/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetBySubscriptionID(subscriptionID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("stripe_subscription_id = ?", subscriptionID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by subscription id failed: %w", err)
	}
	return &user, nil
}

// UpdateBilling overwrites the user's billing columns. Last write wins,
// which keeps webhook redelivery harmless.
func (r *UserRepository) UpdateBilling(userID uint, customerID, subscriptionID, priceID string, periodEnd time.Time) error {
	updates := map[string]interface{}{
		"stripe_customer_id":        customerID,
		"stripe_subscription_id":    subscriptionID,
		"stripe_price_id":           priceID,
		"stripe_current_period_end": periodEnd,
	}
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update user billing failed: %w", err)
	}
	return nil
}

// RefreshBilling updates only the fields a renewal changes.
func (r *UserRepository) RefreshBilling(subscriptionID, priceID string, periodEnd time.Time) error {
	updates := map[string]interface{}{
		"stripe_price_id":           priceID,
		"stripe_current_period_end": periodEnd,
	}
	if err := r.db.Model(&model.User{}).Where("stripe_subscription_id = ?", subscriptionID).Updates(updates).Error; err != nil {
		return fmt.Errorf("refresh user billing failed: %w", err)
	}
	return nil
}
