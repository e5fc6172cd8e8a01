package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"quillpdf/internal/app"
	"quillpdf/internal/transport/http/response"
)

type BillingHandler struct {
	billingService *app.BillingService
}

func NewBillingHandler(billingService *app.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Webhook receives signed billing events. Ignored event kinds and
// tolerated gaps (missing metadata) come back 200 so the provider
// stops redelivering.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read webhook payload failed")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, app.ErrWebhookSignature) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "webhook handling failed")
		return
	}
	c.Status(http.StatusOK)
}

// CreateSession returns a checkout or billing-portal URL depending on
// the caller's subscription state.
func (h *BillingHandler) CreateSession(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	url, err := h.billingService.CreateSession(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create billing session failed")
		}
		return
	}
	response.OK(c, gin.H{"url": url})
}
