package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
	authService "github.com/tutora/tutora-backend/internal/service/auth"
	planService "github.com/tutora/tutora-backend/internal/service/plan"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
	staffService "github.com/tutora/tutora-backend/internal/service/staff"
	studentService "github.com/tutora/tutora-backend/internal/service/student"
	subscriptionService "github.com/tutora/tutora-backend/internal/service/subscription"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testApp struct {
	store  *servicetest.Store
	jwt    jwt.Service
	auth   AuthHandler
	router http.Handler
}

// newTestApp wires the routes exercised here against the in-memory store.
// Handlers whose routes are not exercised get nil services.
func newTestApp(t *testing.T) testApp {
	t.Helper()
	store := servicetest.NewStore()
	store.AddPlan(plan.Plan{
		Name: "Trial", MaxStudents: 1, MaxTeachers: 1, MaxAssistants: 1,
		Price: decimal.Zero, DurationDays: 14, IsActive: true, IsDefault: true, IsTrial: true,
	})
	store.AddPlan(plan.Plan{
		Name: "Advanced", MaxStudents: 100, MaxTeachers: 5, MaxAssistants: 5,
		Price: decimal.NewFromInt(500), DurationDays: 90, IsActive: true,
	})

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, "1h", "24h", false)
	require.NoError(t, err)

	guard := subscriptionService.NewLimitGuard(store.Subscriptions(), store.Plans(), store.Centers())
	authSvc := authService.NewAuthService(store, store.Users(), store.Centers(), store.Plans(), store.Subscriptions(),
		nil, jwtSvc, store.RefreshTokens())

	authHandler := NewAuthHandler(jwtSvc, authSvc, nil, "http://localhost:3000", false)
	h := Handlers{
		Auth:         authHandler,
		Plan:         NewPlanHandler(planService.NewPlanService(store.Plans(), store)),
		Center:       NewCenterHandler(nil),
		Subscription: NewSubscriptionHandler(subscriptionService.NewSubscriptionService(store.Subscriptions(), store.Plans(), store)),
		Staff: NewStaffHandler(
			staffService.NewStaffService(store, store.Users(), store.RefreshTokens(), guard),
			staffService.NewPermissionService(store, store.Users()),
		),
		Student:    NewStudentHandler(studentService.NewStudentService(store, store.Students(), store.Groups(), store.Users(), store.AcademicYears(), guard)),
		Group:      NewGroupHandler(nil),
		Attendance: NewAttendanceHandler(nil),
		Payment:    NewPaymentHandler(nil),
		Upgrade:    NewUpgradeHandler(nil),
		Master:     NewMasterHandler(nil),
		Dashboard:  NewDashboardHandler(nil),
		Report:     NewReportHandler(nil),
	}

	return testApp{
		store:  store,
		jwt:    jwtSvc,
		auth:   authHandler,
		router: NewRouter(jwtSvc, store.Users(), h, RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}}),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (a testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// register signs up a center and returns the owner's access token.
func (a testApp) register(t *testing.T, centerName, email string) string {
	t.Helper()
	rr, env := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"center_name":      centerName,
		"owner_name":       "Owner",
		"email":            email,
		"password":         "SecurePass123!",
		"confirm_password": "SecurePass123!",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func (a testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	rr, env := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &tokens)
	return tokens.AccessToken
}

func createdID(t *testing.T, rr *httptest.ResponseRecorder, env envelope) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var row struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &row)
	require.NotEmpty(t, row.ID)
	return row.ID
}

func TestRouter_AuthRequired(t *testing.T) {
	app := newTestApp(t)

	rr, _ := app.do(t, http.MethodGet, "/api/v1/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	refresh, _, err := app.jwt.GenerateRefreshToken("someone")
	require.NoError(t, err)
	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "refresh tokens do not authenticate requests")

	rr, env := app.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_PublicPlans(t *testing.T) {
	app := newTestApp(t)

	rr, env := app.do(t, http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var plans []struct {
		Name string `json:"name"`
	}
	decodeData(t, env, &plans)
	require.Len(t, plans, 2)
	assert.Equal(t, "Trial", plans[0].Name)
}

func TestRouter_StudentLimitExceeded(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "Nile Center", "owner@nile.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/staff/teachers", owner, map[string]string{
		"name": "Mr. Hassan", "email": "hassan@nile.test", "password": "password123",
	})
	teacherID := createdID(t, rr, env)

	rr, env = app.do(t, http.MethodPost, "/api/v1/students", owner, map[string]string{"name": "Omar", "teacher_id": teacherID})
	createdID(t, rr, env)

	rr, env = app.do(t, http.MethodPost, "/api/v1/students", owner, map[string]string{"name": "Mona", "teacher_id": teacherID})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "LIMIT_EXCEEDED", env.Error.Code)
	assert.Equal(t, "max students reached", env.Error.Message)

	var details struct {
		Kind           string `json:"kind"`
		Current        int    `json:"current"`
		Limit          int    `json:"limit"`
		SuggestedPlans []struct {
			Name string `json:"name"`
		} `json:"suggested_plans"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, "student", details.Kind)
	assert.Equal(t, 1, details.Current)
	assert.Equal(t, 1, details.Limit)
	require.Len(t, details.SuggestedPlans, 1)
	assert.Equal(t, "Advanced", details.SuggestedPlans[0].Name)

	rr, env = app.do(t, http.MethodGet, "/api/v1/subscription/limits/student", owner, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var check struct {
		Allowed bool `json:"allowed"`
	}
	decodeData(t, env, &check)
	assert.False(t, check.Allowed)
}

func TestRouter_AssistantPermissionsApplyImmediately(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "Nile Center", "owner@nile.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/staff/teachers", owner, map[string]string{
		"name": "Mr. Hassan", "email": "hassan@nile.test", "password": "password123",
	})
	teacherID := createdID(t, rr, env)

	rr, env = app.do(t, http.MethodPost, "/api/v1/staff/assistants", owner, map[string]string{
		"name": "Sara", "email": "sara@nile.test", "password": "password123", "teacher_id": teacherID,
	})
	assistantID := createdID(t, rr, env)
	assistant := app.login(t, "sara@nile.test", "password123")

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", assistant, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/reports/income", assistant, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = app.do(t, http.MethodPut, "/api/v1/staff/"+assistantID+"/permissions", assistant,
		map[string][]string{"permissions": {"students.view_own"}})
	assert.Equal(t, http.StatusForbidden, rr.Code, "assistants cannot grant themselves permissions")

	rr, _ = app.do(t, http.MethodPut, "/api/v1/staff/"+assistantID+"/permissions", owner,
		map[string][]string{"permissions": {"students.view_own"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", assistant, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "the same token picks up the new grant")

	rr, env = app.do(t, http.MethodPut, "/api/v1/staff/"+assistantID+"/permissions", owner,
		map[string][]string{"permissions": {"students.teleport"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
}

func TestRouter_DeactivatedStaffLoseAccess(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "Nile Center", "owner@nile.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/staff/teachers", owner, map[string]string{
		"name": "Mr. Hassan", "email": "hassan@nile.test", "password": "password123",
	})
	teacherID := createdID(t, rr, env)
	teacher := app.login(t, "hassan@nile.test", "password123")

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", teacher, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = app.do(t, http.MethodPut, "/api/v1/staff/"+teacherID, owner, map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students", teacher, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_TenantIsolation(t *testing.T) {
	app := newTestApp(t)
	nile := app.register(t, "Nile Center", "owner@nile.test")
	delta := app.register(t, "Delta Center", "owner@delta.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/staff/teachers", nile, map[string]string{
		"name": "Mr. Hassan", "email": "hassan@nile.test", "password": "password123",
	})
	teacherID := createdID(t, rr, env)
	rr, env = app.do(t, http.MethodPost, "/api/v1/students", nile, map[string]string{"name": "Omar", "teacher_id": teacherID})
	studentID := createdID(t, rr, env)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students/"+studentID, delta, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = app.do(t, http.MethodDelete, "/api/v1/students/"+studentID, delta, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/staff/"+teacherID, delta, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env = app.do(t, http.MethodGet, "/api/v1/students", delta, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var students []json.RawMessage
	decodeData(t, env, &students)
	assert.Empty(t, students)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students/"+studentID, nile, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AdminRoutesRequirePlatformAdmin(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "Nile Center", "owner@nile.test")

	rr, _ := app.do(t, http.MethodGet, "/api/v1/admin/plans", owner, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_BadPathParameters(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "Nile Center", "owner@nile.test")

	rr, env := app.do(t, http.MethodGet, "/api/v1/students/not-a-uuid", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/students?teacher_id=nope", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = app.do(t, http.MethodGet, "/api/v1/subscription/limits/classrooms", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
