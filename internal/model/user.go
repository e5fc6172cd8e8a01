package model

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// Never-subscribed users all carry the zero value here, so these
	// columns must not be uniquely indexed.
	StripeCustomerID       string     `gorm:"size:64;index" json:"-"`
	StripeSubscriptionID   string     `gorm:"size:64;index" json:"-"`
	StripePriceID          string     `gorm:"size:64" json:"-"`
	StripeCurrentPeriodEnd *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscribed reports whether the user currently has a paid plan.
// A grace window matches the billing provider's own treatment of
// period boundaries around renewal.
func (u *User) Subscribed(now time.Time) bool {
	if u.StripeSubscriptionID == "" || u.StripePriceID == "" {
		return false
	}
	if u.StripeCurrentPeriodEnd == nil {
		return false
	}
	return u.StripeCurrentPeriodEnd.Add(24 * time.Hour).After(now)
}
