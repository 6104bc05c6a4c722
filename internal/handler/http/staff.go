package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/staff"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type StaffHandler interface {
	CreateTeacher(w http.ResponseWriter, r *http.Request)
	CreateAssistant(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	ListCatalog(w http.ResponseWriter, r *http.Request)
	ListTemplates(w http.ResponseWriter, r *http.Request)
	GetPermissions(w http.ResponseWriter, r *http.Request)
	SyncPermissions(w http.ResponseWriter, r *http.Request)
	ApplyTemplate(w http.ResponseWriter, r *http.Request)
}

type staffHandlerImpl struct {
	staffService      staff.StaffService
	permissionService staff.PermissionService
}

func NewStaffHandler(staffService staff.StaffService, permissionService staff.PermissionService) StaffHandler {
	return &staffHandlerImpl{
		staffService:      staffService,
		permissionService: permissionService,
	}
}

// POST /api/v1/staff/teachers
func (h *staffHandlerImpl) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req user.CreateTeacherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.staffService.CreateTeacher(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Teacher created successfully", u)
}

// POST /api/v1/staff/assistants
func (h *staffHandlerImpl) CreateAssistant(w http.ResponseWriter, r *http.Request) {
	var req user.CreateAssistantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.staffService.CreateAssistant(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Assistant created successfully", u)
}

// GET /api/v1/staff?role=teacher&teacher_id=...
func (h *staffHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter user.StaffFilter
	if role := queryString(r, "role"); role != nil {
		rl := user.Role(*role)
		if rl != user.RoleTeacher && rl != user.RoleAssistant {
			response.BadRequest(w, "Invalid query parameters", map[string]string{"role": "must be teacher or assistant"})
			return
		}
		filter.Role = &rl
	}
	teacherID, ok := queryUUID(w, r, "teacher_id")
	if !ok {
		return
	}
	filter.TeacherID = teacherID

	users, err := h.staffService.List(r.Context(), middleware.Scope(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

func (h *staffHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.staffService.GetByID(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, u)
}

func (h *staffHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req user.UpdateStaffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	u, err := h.staffService.Update(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Staff member updated successfully", u)
}

func (h *staffHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.staffService.Delete(r.Context(), middleware.Scope(r), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Staff member deleted successfully", nil)
}

// GET /api/v1/permissions/catalog
func (h *staffHandlerImpl) ListCatalog(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.permissionService.ListCatalog())
}

// GET /api/v1/permissions/templates
func (h *staffHandlerImpl) ListTemplates(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.permissionService.ListTemplates())
}

// GET /api/v1/permissions/users/{id}
func (h *staffHandlerImpl) GetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	perms, err := h.permissionService.GetPermissions(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, perms)
}

// PUT /api/v1/permissions/users/{id}
func (h *staffHandlerImpl) SyncPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req user.SyncPermissionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	perms, err := h.permissionService.SyncPermissions(r.Context(), middleware.Scope(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Permissions updated successfully", perms)
}

// POST /api/v1/permissions/users/{id}/template
func (h *staffHandlerImpl) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req user.ApplyTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	perms, err := h.permissionService.ApplyTemplate(r.Context(), middleware.Scope(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Template applied successfully", perms)
}
