package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	ListByGroupDate(w http.ResponseWriter, r *http.Request)
	ListByStudent(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// Record stores one session's attendance and derives per-session payments
// POST /api/v1/attendance
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.attendanceService.Record(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance recorded successfully", resp)
}

// GET /api/v1/attendance/groups/{id}?date=YYYY-MM-DD
func (h *attendanceHandlerImpl) ListByGroupDate(w http.ResponseWriter, r *http.Request) {
	groupID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	if date == nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{"date": "date is required"})
		return
	}

	rows, err := h.attendanceService.ListByGroupDate(r.Context(), middleware.Scope(r), groupID, *date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rows)
}

// GET /api/v1/attendance/students/{id}?from=&to=
func (h *attendanceHandlerImpl) ListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var rng attendance.DateRange
	if rng.From, ok = queryDate(w, r, "from"); !ok {
		return
	}
	if rng.To, ok = queryDate(w, r, "to"); !ok {
		return
	}

	rows, err := h.attendanceService.ListByStudent(r.Context(), middleware.Scope(r), studentID, rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rows)
}
