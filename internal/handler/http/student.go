package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type StudentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type studentHandlerImpl struct {
	studentService student.StudentService
}

func NewStudentHandler(studentService student.StudentService) StudentHandler {
	return &studentHandlerImpl{studentService: studentService}
}

func (h *studentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req student.CreateStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.studentService.Create(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Student created successfully", s)
}

// GET /api/v1/students?teacher_id=&group_id=&academic_year_id=&search=&page=&limit=
func (h *studentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter student.StudentFilter
	var ok bool
	if filter.TeacherID, ok = queryUUID(w, r, "teacher_id"); !ok {
		return
	}
	if filter.GroupID, ok = queryUUID(w, r, "group_id"); !ok {
		return
	}
	if filter.AcademicYearID, ok = queryInt(w, r, "academic_year_id"); !ok {
		return
	}
	filter.Search = queryString(r, "search")
	if filter.Page, filter.Limit, ok = paging(w, r); !ok {
		return
	}

	resp, err := h.studentService.List(r.Context(), middleware.Scope(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, resp.Students, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

func (h *studentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	s, err := h.studentService.GetByID(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, s)
}

func (h *studentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req student.UpdateStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	s, err := h.studentService.Update(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Student updated successfully", s)
}

func (h *studentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.studentService.Delete(r.Context(), middleware.Scope(r), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Student deleted successfully", nil)
}
