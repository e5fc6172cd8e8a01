package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	stripesdk "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"quillpdf/internal/app"
	"quillpdf/internal/config"
)

// Client implements app.BillingClient on the Stripe API.
type Client struct {
	api           *client.API
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string
	returnURL     string
}

func New(cfg config.StripeConfig) *Client {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &Client{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		returnURL:     cfg.BillingReturnURL,
	}
}

func (c *Client) VerifyEvent(payload []byte, signature string) (*app.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("construct event failed: %w", err)
	}

	// Both checkout sessions and invoices carry the subscription as a
	// plain id string plus a metadata map; that is all we act on.
	var object struct {
		Subscription string            `json:"subscription"`
		Metadata     map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		return nil, fmt.Errorf("parse event object failed: %w", err)
	}

	return &app.WebhookEvent{
		Type:           string(event.Type),
		SubscriptionID: object.Subscription,
		Metadata:       object.Metadata,
	}, nil
}

func (c *Client) GetSubscription(ctx context.Context, id string) (*app.Subscription, error) {
	params := &stripesdk.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription failed: %w", err)
	}

	var priceID string
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}
	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	return &app.Subscription{
		ID:               sub.ID,
		CustomerID:       customerID,
		PriceID:          priceID,
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0),
	}, nil
}

func (c *Client) NewCheckoutSession(ctx context.Context, userID uint, email string) (string, error) {
	params := &stripesdk.CheckoutSessionParams{
		SuccessURL:         stripesdk.String(c.successURL),
		CancelURL:          stripesdk.String(c.cancelURL),
		Mode:               stripesdk.String(string(stripesdk.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		CustomerEmail:      stripesdk.String(email),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				Price:    stripesdk.String(c.priceID),
				Quantity: stripesdk.Int64(1),
			},
		},
	}
	params.Context = ctx
	// The webhook reconciler finds the user through this metadata.
	params.AddMetadata("userId", strconv.FormatUint(uint64(userID), 10))

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session failed: %w", err)
	}
	return session.URL, nil
}

func (c *Client) NewPortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripesdk.BillingPortalSessionParams{
		Customer:  stripesdk.String(customerID),
		ReturnURL: stripesdk.String(c.returnURL),
	}
	params.Context = ctx

	session, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session failed: %w", err)
	}
	return session.URL, nil
}
