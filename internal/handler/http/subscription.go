package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type SubscriptionHandler interface {
	GetMySubscription(w http.ResponseWriter, r *http.Request)
	CheckLimit(w http.ResponseWriter, r *http.Request)
	ChangePlan(w http.ResponseWriter, r *http.Request)
}

type subscriptionHandlerImpl struct {
	subscriptionService subscription.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService subscription.SubscriptionService) SubscriptionHandler {
	return &subscriptionHandlerImpl{subscriptionService: subscriptionService}
}

// GetMySubscription returns the center's active subscription with usage
// GET /api/v1/subscription
func (h *subscriptionHandlerImpl) GetMySubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptionService.GetMySubscription(r.Context(), middleware.Scope(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, sub)
}

// CheckLimit previews whether increment more resources of kind fit the plan
// GET /api/v1/subscription/limits/{kind}?increment=1
func (h *subscriptionHandlerImpl) CheckLimit(w http.ResponseWriter, r *http.Request) {
	increment := 1
	n, ok := queryInt(w, r, "increment")
	if !ok {
		return
	}
	if n != nil {
		if *n < 1 {
			response.BadRequest(w, "Invalid query parameters", map[string]string{"increment": "must be at least 1"})
			return
		}
		increment = *n
	}

	kind := plan.ResourceKind(chi.URLParam(r, "kind"))
	result, err := h.subscriptionService.CheckLimit(r.Context(), middleware.Scope(r), kind, increment)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result.ToResponse())
}

// ChangePlan moves a center onto a plan directly (platform admin)
// PUT /api/v1/admin/centers/{id}/subscription
func (h *subscriptionHandlerImpl) ChangePlan(w http.ResponseWriter, r *http.Request) {
	centerID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req subscription.ChangePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CenterID = centerID

	sub, err := h.subscriptionService.ChangePlan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription changed successfully", sub)
}
