package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", student.ErrStudentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", group.ErrGroupNotFound), http.StatusNotFound},
		{"forbidden", user.ErrInsufficientPermissions, http.StatusForbidden},
		{"conflict", upgrade.ErrAlreadyHandled, http.StatusConflict},
		{"group full", group.ErrGroupFull, http.StatusConflict},
		{"default plan race", fmt.Errorf("mark default plan: %w", plan.ErrDefaultPlanChanged), http.StatusConflict},
		{"bad request", group.ErrAcademicYearMismatch, http.StatusBadRequest},
		{"validation", validator.ValidationErrors{{Field: "name", Message: "name is required"}}, http.StatusUnprocessableEntity},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HandleError(rr, tt.err)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestHandleError_LimitExceededCarriesResult(t *testing.T) {
	err := &subscription.LimitExceededError{Result: subscription.LimitResult{
		Kind:           plan.ResourceStudent,
		Reason:         "max students reached",
		Current:        2,
		Limit:          2,
		SuggestedPlans: []plan.Plan{{ID: "p-advanced", Name: "Advanced", MaxStudents: 10}},
	}}

	rr := httptest.NewRecorder()
	HandleError(rr, fmt.Errorf("create student: %w", err))
	require.Equal(t, http.StatusForbidden, rr.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Kind           string `json:"kind"`
				Current        int    `json:"current"`
				Limit          int    `json:"limit"`
				SuggestedPlans []struct {
					Name string `json:"name"`
				} `json:"suggested_plans"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "LIMIT_EXCEEDED", body.Error.Code)
	assert.Equal(t, "max students reached", body.Error.Message)
	assert.Equal(t, "student", body.Error.Details.Kind)
	assert.Equal(t, 2, body.Error.Details.Limit)
	require.Len(t, body.Error.Details.SuggestedPlans, 1)
	assert.Equal(t, "Advanced", body.Error.Details.SuggestedPlans[0].Name)
}
