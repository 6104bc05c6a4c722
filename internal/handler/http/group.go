package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type GroupHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AssignStudents(w http.ResponseWriter, r *http.Request)
	RemoveStudent(w http.ResponseWriter, r *http.Request)
}

type groupHandlerImpl struct {
	groupService group.GroupService
}

func NewGroupHandler(groupService group.GroupService) GroupHandler {
	return &groupHandlerImpl{groupService: groupService}
}

func (h *groupHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req group.CreateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.groupService.Create(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Group created successfully", g)
}

// GET /api/v1/groups?teacher_id=&academic_year_id=&is_active=
func (h *groupHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter group.GroupFilter
	var ok bool
	if filter.TeacherID, ok = queryUUID(w, r, "teacher_id"); !ok {
		return
	}
	if filter.AcademicYearID, ok = queryInt(w, r, "academic_year_id"); !ok {
		return
	}
	if filter.IsActive, ok = queryBool(w, r, "is_active"); !ok {
		return
	}

	groups, err := h.groupService.List(r.Context(), middleware.Scope(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, groups)
}

func (h *groupHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	g, err := h.groupService.GetByID(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, g)
}

func (h *groupHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req group.UpdateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	g, err := h.groupService.Update(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Group updated successfully", g)
}

func (h *groupHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(r.Context(), middleware.Scope(r), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Group deleted successfully", nil)
}

// POST /api/v1/groups/{id}/students
func (h *groupHandlerImpl) AssignStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req group.AssignStudentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.GroupID = id

	g, err := h.groupService.AssignStudents(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Students assigned successfully", g)
}

// DELETE /api/v1/groups/{id}/students/{studentID}
func (h *groupHandlerImpl) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	studentID, ok := uuidParam(w, r, "studentID")
	if !ok {
		return
	}
	if err := h.groupService.RemoveStudent(r.Context(), middleware.Scope(r), id, studentID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Student removed from group", nil)
}
