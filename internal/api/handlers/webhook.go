package handlers

import (
	"io"
	"net/http"

	"github.com/pratik-mahalle/docbrief/internal/api/dto"
	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/identity"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives identity and billing provider events
type WebhookHandler struct {
	identity     *services.IdentityService
	billing      *services.BillingService
	verifier     *identity.Verifier
	stripeSecret string
	logger       *logger.Logger
}

// NewWebhookHandler creates a new webhook handler. A nil verifier rejects
// every identity event.
func NewWebhookHandler(
	identityService *services.IdentityService,
	billingService *services.BillingService,
	verifier *identity.Verifier,
	stripeSecret string,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		identity:     identityService,
		billing:      billingService,
		verifier:     verifier,
		stripeSecret: stripeSecret,
		logger:       log,
	}
}

// Clerk handles identity provider user events
// @Summary Identity webhook
// @Tags Webhooks
// @Accept json
// @Success 200 {string} string "Webhook received"
// @Failure 400 {object} utils.ErrorResponse "Signature verification failed"
// @Failure 409 {object} utils.ErrorResponse "User already exists"
// @Failure 500 {object} utils.ErrorResponse "Database write failed"
// @Router /api/webhooks/clerk [post]
func (h *WebhookHandler) Clerk(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read request body"))
		return
	}

	if h.verifier == nil {
		h.logger.Error("Identity webhook secret is not configured")
		metrics.RecordWebhookEvent("clerk", "unknown", "rejected")
		utils.WriteErrorMessage(w, http.StatusBadRequest, errors.ErrCodeSignature, "Error verifying webhook")
		return
	}
	if err := h.verifier.Verify(r.Header, payload); err != nil {
		h.logger.WarnWithErr(err, "Identity webhook verification failed")
		metrics.RecordWebhookEvent("clerk", "unknown", "rejected")
		utils.WriteErrorMessage(w, http.StatusBadRequest, errors.ErrCodeSignature, "Error verifying webhook")
		return
	}

	ev, err := identity.ParseEvent(payload)
	if err != nil {
		metrics.RecordWebhookEvent("clerk", "unknown", "malformed")
		utils.WriteError(w, errors.BadRequest("Malformed webhook payload"))
		return
	}

	if err := h.identity.HandleEvent(r.Context(), ev); err != nil {
		metrics.RecordWebhookEvent("clerk", ev.Type, "error")
		switch appErr := errors.From(err); appErr.Code {
		case errors.ErrCodeConflict, errors.ErrCodeBadRequest:
			utils.WriteError(w, appErr)
		default:
			utils.WriteErrorMessage(w, http.StatusInternalServerError, appErr.Code, "Error saving user")
		}
		return
	}

	metrics.RecordWebhookEvent("clerk", ev.Type, "ok")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Webhook received"))
}

// Stripe handles payment processor events. Any failure answers 400 so the
// processor retries the delivery.
// @Summary Billing webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAck
// @Failure 400 {object} utils.ErrorResponse "Webhook Error"
// @Router /api/webhooks/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.webhookError(w, "unknown", err)
		return
	}

	event, err := billing.VerifyEvent(payload, r.Header.Get("Stripe-Signature"), h.stripeSecret)
	if err != nil {
		h.webhookError(w, "unknown", err)
		return
	}
	eventType := string(event.Type)

	parsed, err := billing.ParseEvent(event)
	if err != nil {
		h.webhookError(w, eventType, err)
		return
	}

	if err := h.billing.HandleEvent(r.Context(), parsed); err != nil {
		h.webhookError(w, eventType, err)
		return
	}

	outcome := "ok"
	if _, ignored := parsed.(billing.Ignored); ignored {
		outcome = "ignored"
	}
	metrics.RecordWebhookEvent("stripe", eventType, outcome)
	utils.WriteJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}

func (h *WebhookHandler) webhookError(w http.ResponseWriter, eventType string, err error) {
	h.logger.WithFields(map[string]interface{}{
		"event_type": eventType,
	}).WarnWithErr(err, "Billing webhook failed")
	metrics.RecordWebhookEvent("stripe", eventType, "error")

	utils.WriteErrorMessage(w, http.StatusBadRequest, errors.From(err).Code, "Webhook Error: "+err.Error())
}
