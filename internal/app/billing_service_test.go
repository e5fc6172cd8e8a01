package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpdf/internal/model"
)

func TestHandleWebhookCheckoutCompleted(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{Username: "alice", Email: "alice@example.com"}))

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	client := &fakeBillingClient{
		event: &WebhookEvent{
			Type:           "checkout.session.completed",
			SubscriptionID: "sub_123",
			Metadata:       map[string]string{"userId": "1"},
		},
		subscriptions: map[string]*Subscription{
			"sub_123": {ID: "sub_123", CustomerID: "cus_9", PriceID: "price_pro", CurrentPeriodEnd: periodEnd},
		},
	}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	user, err := users.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "cus_9", user.StripeCustomerID)
	assert.Equal(t, "sub_123", user.StripeSubscriptionID)
	assert.Equal(t, "price_pro", user.StripePriceID)
	require.NotNil(t, user.StripeCurrentPeriodEnd)
	assert.True(t, user.StripeCurrentPeriodEnd.Equal(periodEnd))
	assert.True(t, user.Subscribed(time.Now()))
}

func TestHandleWebhookCheckoutWithoutMetadataIsIgnored(t *testing.T) {
	users := newFakeUserStore()
	client := &fakeBillingClient{
		event: &WebhookEvent{
			Type:           "checkout.session.completed",
			SubscriptionID: "sub_123",
			Metadata:       map[string]string{},
		},
	}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Zero(t, users.updateBillingCalls)
}

func TestHandleWebhookCheckoutBadUserIDIsIgnored(t *testing.T) {
	users := newFakeUserStore()
	client := &fakeBillingClient{
		event: &WebhookEvent{
			Type:           "checkout.session.completed",
			SubscriptionID: "sub_123",
			Metadata:       map[string]string{"userId": "not-a-number"},
		},
	}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Zero(t, users.updateBillingCalls)
}

func TestHandleWebhookInvoicePaidRefreshes(t *testing.T) {
	users := newFakeUserStore()
	stale := time.Now().Add(-24 * time.Hour)
	require.NoError(t, users.Create(&model.User{
		Username:               "bob",
		Email:                  "bob@example.com",
		StripeCustomerID:       "cus_9",
		StripeSubscriptionID:   "sub_123",
		StripePriceID:          "price_pro",
		StripeCurrentPeriodEnd: &stale,
	}))

	renewed := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	client := &fakeBillingClient{
		event: &WebhookEvent{Type: "invoice.payment_succeeded", SubscriptionID: "sub_123"},
		subscriptions: map[string]*Subscription{
			"sub_123": {ID: "sub_123", CustomerID: "cus_9", PriceID: "price_pro", CurrentPeriodEnd: renewed},
		},
	}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	user, _ := users.GetByID(1)
	require.NotNil(t, user.StripeCurrentPeriodEnd)
	assert.True(t, user.StripeCurrentPeriodEnd.Equal(renewed))
}

func TestHandleWebhookRedeliveryIsIdempotent(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{Username: "alice", Email: "alice@example.com"}))

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	client := &fakeBillingClient{
		event: &WebhookEvent{
			Type:           "checkout.session.completed",
			SubscriptionID: "sub_123",
			Metadata:       map[string]string{"userId": "1"},
		},
		subscriptions: map[string]*Subscription{
			"sub_123": {ID: "sub_123", CustomerID: "cus_9", PriceID: "price_pro", CurrentPeriodEnd: periodEnd},
		},
	}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	user, _ := users.GetByID(1)
	assert.Equal(t, "sub_123", user.StripeSubscriptionID)
	assert.True(t, user.StripeCurrentPeriodEnd.Equal(periodEnd))
	assert.Equal(t, 2, users.updateBillingCalls)
}

func TestHandleWebhookUnknownEventIsAccepted(t *testing.T) {
	users := newFakeUserStore()
	client := &fakeBillingClient{event: &WebhookEvent{Type: "customer.created"}}

	svc := NewBillingService(users, client)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Zero(t, users.updateBillingCalls)
	assert.Zero(t, users.refreshBillingCalls)
}

func TestHandleWebhookBadSignature(t *testing.T) {
	users := newFakeUserStore()
	client := &fakeBillingClient{verifyErr: errors.New("signature mismatch")}

	svc := NewBillingService(users, client)
	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad-sig")
	require.ErrorIs(t, err, ErrWebhookSignature)
	assert.Zero(t, users.updateBillingCalls)
	assert.Zero(t, users.refreshBillingCalls)
}

func TestCreateSessionChecksOutUnsubscribedUser(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{Username: "carol", Email: "carol@example.com"}))
	client := &fakeBillingClient{checkoutURL: "https://checkout.test/s/1"}

	svc := NewBillingService(users, client)
	url, err := svc.CreateSession(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/s/1", url)
	assert.Equal(t, 1, client.checkoutCalls)
	assert.Zero(t, client.portalCalls)
}

func TestCreateSessionOpensPortalForSubscriber(t *testing.T) {
	users := newFakeUserStore()
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, users.Create(&model.User{
		Username:               "dave",
		Email:                  "dave@example.com",
		StripeCustomerID:       "cus_9",
		StripeSubscriptionID:   "sub_123",
		StripePriceID:          "price_pro",
		StripeCurrentPeriodEnd: &periodEnd,
	}))
	client := &fakeBillingClient{portalURL: "https://portal.test/p/1"}

	svc := NewBillingService(users, client)
	url, err := svc.CreateSession(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.test/p/1", url)
	assert.Equal(t, 1, client.portalCalls)
	assert.Zero(t, client.checkoutCalls)
}

func TestCreateSessionExpiredSubscriptionFallsBackToCheckout(t *testing.T) {
	users := newFakeUserStore()
	lapsed := time.Now().Add(-72 * time.Hour)
	require.NoError(t, users.Create(&model.User{
		Username:               "erin",
		Email:                  "erin@example.com",
		StripeCustomerID:       "cus_9",
		StripeSubscriptionID:   "sub_123",
		StripePriceID:          "price_pro",
		StripeCurrentPeriodEnd: &lapsed,
	}))
	client := &fakeBillingClient{checkoutURL: "https://checkout.test/s/2"}

	svc := NewBillingService(users, client)
	url, err := svc.CreateSession(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/s/2", url)
	assert.Equal(t, 1, client.checkoutCalls)
}

func TestCreateSessionUnknownUser(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), &fakeBillingClient{})
	_, err := svc.CreateSession(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}
