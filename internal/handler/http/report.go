package http

import (
	"net/http"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/report"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type ReportHandler interface {
	GetMonthlyIncome(w http.ResponseWriter, r *http.Request)
	GetAttendanceSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// GetMonthlyIncome handles GET /api/v1/reports/income?year=2025
// The current year is used when year is omitted.
func (h *reportHandlerImpl) GetMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	req := report.MonthlyIncomeRequest{Year: time.Now().Year()}
	if year != nil {
		req.Year = *year
	}

	resp, err := h.reportService.MonthlyIncome(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// GetAttendanceSummary handles GET /api/v1/reports/attendance?group_id=&from=&to=
func (h *reportHandlerImpl) GetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	groupID, ok := queryUUID(w, r, "group_id")
	if !ok {
		return
	}
	if groupID == nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{"group_id": "group_id is required"})
		return
	}
	req := report.AttendanceSummaryRequest{GroupID: *groupID}
	if req.Range.From, ok = queryDate(w, r, "from"); !ok {
		return
	}
	if req.Range.To, ok = queryDate(w, r, "to"); !ok {
		return
	}

	resp, err := h.reportService.AttendanceSummary(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
