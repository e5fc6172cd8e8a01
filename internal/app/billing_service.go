package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrWebhookSignature = errors.New("webhook signature verification failed")
	ErrUserNotFound     = errors.New("user not found")
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventInvoicePaid       = "invoice.payment_succeeded"
)

// WebhookEvent is a verified billing event reduced to the fields the
// reconciler acts on.
type WebhookEvent struct {
	Type           string
	SubscriptionID string
	Metadata       map[string]string
}

// Subscription is a billing-provider subscription snapshot.
type Subscription struct {
	ID               string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd time.Time
}

type BillingClient interface {
	// VerifyEvent authenticates the raw payload against its signature
	// header and parses it.
	VerifyEvent(payload []byte, signature string) (*WebhookEvent, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	NewCheckoutSession(ctx context.Context, userID uint, email string) (string, error)
	NewPortalSession(ctx context.Context, customerID string) (string, error)
}

type BillingService struct {
	users  UserStore
	client BillingClient
}

func NewBillingService(users UserStore, client BillingClient) *BillingService {
	return &BillingService{users: users, client: client}
}

// HandleWebhook verifies and applies one billing event. Unknown event
// kinds are accepted and ignored; updates are last-write-wins, so
// redelivery of the same event is harmless.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.client.VerifyEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case eventCheckoutCompleted:
		return s.applyCheckout(ctx, event)
	case eventInvoicePaid:
		return s.applyRenewal(ctx, event)
	default:
		return nil
	}
}

func (s *BillingService) applyCheckout(ctx context.Context, event *WebhookEvent) error {
	// userId metadata is attached at checkout-session creation; a
	// checkout event without it did not originate here. Ignore.
	raw, ok := event.Metadata["userId"]
	if !ok || raw == "" {
		return nil
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}

	sub, err := s.client.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}
	return s.users.UpdateBilling(uint(userID), sub.CustomerID, sub.ID, sub.PriceID, sub.CurrentPeriodEnd)
}

func (s *BillingService) applyRenewal(ctx context.Context, event *WebhookEvent) error {
	if event.SubscriptionID == "" {
		return nil
	}
	sub, err := s.client.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}
	return s.users.RefreshBilling(sub.ID, sub.PriceID, sub.CurrentPeriodEnd)
}

// CreateSession returns a billing-portal URL for subscribed users and
// a checkout URL otherwise.
func (s *BillingService) CreateSession(ctx context.Context, userID uint) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if user.Subscribed(time.Now()) && user.StripeCustomerID != "" {
		return s.client.NewPortalSession(ctx, user.StripeCustomerID)
	}
	return s.client.NewCheckoutSession(ctx, user.ID, user.Email)
}
