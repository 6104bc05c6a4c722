package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/master"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type MasterHandler interface {
	// Governorate handlers
	ListGovernorates(w http.ResponseWriter, r *http.Request)

	// Academic year handlers
	ListAcademicYears(w http.ResponseWriter, r *http.Request)
	CreateAcademicYear(w http.ResponseWriter, r *http.Request)
	DeleteAcademicYear(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{
		masterService: masterService,
	}
}

// ==================== GOVERNORATE HANDLERS ====================

func (h *masterHandlerImpl) ListGovernorates(w http.ResponseWriter, r *http.Request) {
	resp, err := h.masterService.ListGovernorates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ==================== ACADEMIC YEAR HANDLERS ====================

func (h *masterHandlerImpl) ListAcademicYears(w http.ResponseWriter, r *http.Request) {
	resp, err := h.masterService.ListAcademicYears(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *masterHandlerImpl) CreateAcademicYear(w http.ResponseWriter, r *http.Request) {
	var req academicyear.CreateAcademicYearRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.masterService.CreateAcademicYear(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Academic year created successfully", resp)
}

func (h *masterHandlerImpl) DeleteAcademicYear(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterService.DeleteAcademicYear(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Academic year deleted successfully", nil)
}
