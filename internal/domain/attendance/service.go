package attendance

import (
	"context"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type AttendanceService interface {
	Record(ctx context.Context, scope tenant.Scope, req RecordAttendanceRequest) (RecordAttendanceResponse, error)
	ListByGroupDate(ctx context.Context, scope tenant.Scope, groupID string, date time.Time) ([]AttendanceResponse, error)
	ListByStudent(ctx context.Context, scope tenant.Scope, studentID string, r DateRange) ([]AttendanceResponse, error)
}
