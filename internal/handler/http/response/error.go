package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/report"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Fail(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", validationErrs.ToMap())
		return
	}

	var limitErr *subscription.LimitExceededError
	if errors.As(err, &limitErr) {
		Fail(w, http.StatusForbidden, CodeLimitExceeded, limitErr.Error(), limitErr.Result.ToResponse())
		return
	}

	switch {
	// 401
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, jwt.ErrInvalidClaims):
		Fail(w, http.StatusUnauthorized, CodeUnauthorized, err.Error(), nil)

	// 403
	case errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, auth.ErrGoogleAccountNotLinked),
		errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrCenterAdminRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, tenant.ErrNoCenter),
		errors.Is(err, tenant.ErrForbidden):
		Fail(w, http.StatusForbidden, CodeForbidden, err.Error(), nil)

	// 404
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, center.ErrCenterNotFound),
		errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, student.ErrStudentNotFound),
		errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, upgrade.ErrRequestNotFound),
		errors.Is(err, academicyear.ErrAcademicYearNotFound),
		errors.Is(err, governorate.ErrGovernorateNotFound):
		NotFound(w, err.Error())

	// 409
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, plan.ErrPlanNameExists),
		errors.Is(err, plan.ErrPlanInUse),
		errors.Is(err, plan.ErrPlanReferenced),
		errors.Is(err, plan.ErrDefaultPlanChanged),
		errors.Is(err, group.ErrGroupNameExists),
		errors.Is(err, group.ErrGroupFull),
		errors.Is(err, group.ErrStudentInAnotherGroup),
		errors.Is(err, payment.ErrPaymentExists),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrNotPaid),
		errors.Is(err, upgrade.ErrAlreadyHandled),
		errors.Is(err, upgrade.ErrPendingExists),
		errors.Is(err, academicyear.ErrAcademicYearNameExists),
		errors.Is(err, academicyear.ErrAcademicYearInUse):
		Fail(w, http.StatusConflict, CodeConflict, err.Error(), nil)

	// 400
	case errors.Is(err, auth.ErrGoogleLoginDisabled),
		errors.Is(err, center.ErrInvalidCenterName),
		errors.Is(err, plan.ErrNoDefaultPlan),
		errors.Is(err, plan.ErrCannotDeleteDefaultPlan),
		errors.Is(err, plan.ErrCannotDeactivateDefaultPlan),
		errors.Is(err, plan.ErrPlanInactive),
		errors.Is(err, plan.ErrInvalidResourceKind),
		errors.Is(err, subscription.ErrSamePlan),
		errors.Is(err, user.ErrCenterIDRequired),
		errors.Is(err, user.ErrUnknownPermission),
		errors.Is(err, user.ErrUnknownTemplate),
		errors.Is(err, user.ErrNotAnAssistant),
		errors.Is(err, user.ErrTeacherRequired),
		errors.Is(err, student.ErrTeacherRequired),
		errors.Is(err, group.ErrTeacherRequired),
		errors.Is(err, group.ErrAcademicYearMismatch),
		errors.Is(err, group.ErrStudentNotInGroup),
		errors.Is(err, group.ErrMaxBelowCurrent),
		errors.Is(err, attendance.ErrDuplicateEntry),
		errors.Is(err, attendance.ErrStudentNotInGroup),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, payment.ErrNotMonthlyGroup),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidDateRange),
		errors.Is(err, upgrade.ErrSamePlan),
		errors.Is(err, upgrade.ErrPlanUnavailable),
		errors.Is(err, upgrade.ErrInvalidStatus),
		errors.Is(err, report.ErrInvalidYear),
		errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		Fail(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
	}
}
