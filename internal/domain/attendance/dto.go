package attendance

import (
	"fmt"
	"time"

	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

type EntryRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	IsPresent bool    `json:"is_present"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// RecordAttendanceRequest records one session of a group. The batch is
// written entirely or not at all.
type RecordAttendanceRequest struct {
	GroupID string         `json:"group_id" validate:"required,uuid"`
	Date    string         `json:"date" validate:"required,date"`
	Entries []EntryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (r *RecordAttendanceRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(r.Entries))
	for i, e := range r.Entries {
		if _, dup := seen[e.StudentID]; dup {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("entries[%d].student_id", i),
				Message: ErrDuplicateEntry.Error(),
			})
		}
		seen[e.StudentID] = struct{}{}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SessionDate returns Date parsed; call after Validate.
func (r *RecordAttendanceRequest) SessionDate() time.Time {
	d, _ := validator.IsValidDate(r.Date)
	return d
}

type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (d DateRange) Validate() error {
	if d.From != nil && d.To != nil && d.From.After(*d.To) {
		return ErrInvalidDateRange
	}
	return nil
}

type AttendanceResponse struct {
	ID          string  `json:"id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	GroupID     string  `json:"group_id"`
	GroupName   string  `json:"group_name,omitempty"`
	Date        string  `json:"date"`
	IsPresent   bool    `json:"is_present"`
	Notes       *string `json:"notes,omitempty"`
}

func (a *Attendance) ToResponse() AttendanceResponse {
	return AttendanceResponse{
		ID:          a.ID,
		StudentID:   a.StudentID,
		StudentName: a.StudentName,
		GroupID:     a.GroupID,
		GroupName:   a.GroupName,
		Date:        a.Date.Format("2006-01-02"),
		IsPresent:   a.IsPresent,
		Notes:       a.Notes,
	}
}

func ToResponses(rows []Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, len(rows))
	for i := range rows {
		out[i] = rows[i].ToResponse()
	}
	return out
}

type RecordAttendanceResponse struct {
	GroupID         string               `json:"group_id"`
	Date            string               `json:"date"`
	Recorded        int                  `json:"recorded"`
	PaymentsCreated int                  `json:"payments_created"`
	Attendances     []AttendanceResponse `json:"attendances"`
}

type StudentSummaryResponse struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
}
