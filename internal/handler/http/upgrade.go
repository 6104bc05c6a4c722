package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type UpgradeHandler interface {
	// Center admin
	Create(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)

	// Platform admin
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type upgradeHandlerImpl struct {
	upgradeService upgrade.UpgradeService
}

func NewUpgradeHandler(upgradeService upgrade.UpgradeService) UpgradeHandler {
	return &upgradeHandlerImpl{upgradeService: upgradeService}
}

func (h *upgradeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req upgrade.CreateUpgradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.upgradeService.Create(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Upgrade request submitted", resp)
}

func (h *upgradeHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	resp, err := h.upgradeService.ListMine(r.Context(), middleware.Scope(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// GET /api/v1/admin/upgrade-requests?status=pending
func (h *upgradeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter upgrade.UpgradeFilter
	if s := queryString(r, "status"); s != nil {
		status := upgrade.Status(*s)
		filter.Status = &status
	}
	resp, err := h.upgradeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *upgradeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.upgradeService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// POST /api/v1/admin/upgrade-requests/{id}/approve
func (h *upgradeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decision(w, r)
	if !ok {
		return
	}
	resp, err := h.upgradeService.Approve(r.Context(), middleware.Scope(r).UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Upgrade request approved", resp)
}

// POST /api/v1/admin/upgrade-requests/{id}/reject
func (h *upgradeHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decision(w, r)
	if !ok {
		return
	}
	resp, err := h.upgradeService.Reject(r.Context(), middleware.Scope(r).UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Upgrade request rejected", resp)
}

// decision reads the optional notes body; an empty body is allowed.
func (h *upgradeHandlerImpl) decision(w http.ResponseWriter, r *http.Request) (upgrade.DecisionRequest, bool) {
	var req upgrade.DecisionRequest
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return req, false
	}
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if !decodeJSON(w, r, &req) {
			return req, false
		}
	}
	req.ID = id
	return req, true
}
