package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/docbrief/internal/api/dto"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

// BillingHandler handles checkout, portal and subscription status
type BillingHandler struct {
	checkout *services.CheckoutService
	logger   *logger.Logger
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(checkout *services.CheckoutService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		checkout: checkout,
		logger:   log,
	}
}

// Checkout starts a subscription checkout
// @Summary Start checkout
// @Tags Billing
// @Produce json
// @Success 303 "Redirect to the hosted checkout page"
// @Success 200 {object} dto.SessionURLResponse "With Accept: application/json"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Failure 404 {object} utils.ErrorResponse "User not found"
// @Router /api/v1/billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.checkout.StartCheckout(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.redirect(w, r, url)
}

// Portal opens the billing portal
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.checkout.OpenPortal(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.redirect(w, r, url)
}

// Subscription returns the current user's subscription state
// @Summary Get subscription
// @Tags Billing
// @Produce json
// @Success 200 {object} services.SubscriptionStatus
// @Router /api/v1/billing/subscription [get]
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.checkout.Status(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}

func (h *BillingHandler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if wantsJSON(r) {
		utils.WriteJSON(w, http.StatusOK, dto.SessionURLResponse{URL: url})
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
