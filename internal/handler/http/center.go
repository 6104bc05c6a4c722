package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type CenterHandler interface {
	GetMy(w http.ResponseWriter, r *http.Request)
	UpdateMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type centerHandlerImpl struct {
	centerService center.CenterService
}

func NewCenterHandler(centerService center.CenterService) CenterHandler {
	return &centerHandlerImpl{centerService: centerService}
}

func (h *centerHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	c, err := h.centerService.GetMyCenter(r.Context(), middleware.Scope(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, c)
}

func (h *centerHandlerImpl) UpdateMy(w http.ResponseWriter, r *http.Request) {
	var req center.UpdateCenterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.centerService.UpdateMyCenter(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Center updated successfully", c)
}

// List lists every center (platform admin).
func (h *centerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	centers, err := h.centerService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, centers)
}

// Delete removes a center with all its data (platform admin).
func (h *centerHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.centerService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Center deleted successfully", nil)
}
