package auth

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

const testSecret = "test-secret-key-for-jwt"

var testSession = auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"}

type governorateStub map[int]string

func (g governorateStub) List(ctx context.Context) ([]governorate.Governorate, error) {
	return nil, nil
}
func (g governorateStub) Exists(ctx context.Context, id int) (bool, error) {
	_, ok := g[id]
	return ok, nil
}
func (g governorateStub) Upsert(ctx context.Context, govs []governorate.Governorate) error {
	return nil
}

type authFixture struct {
	store *servicetest.Store
	jwt   jwt.Service
	svc   auth.AuthService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	store := servicetest.NewStore()
	jwtService, err := jwt.NewJWTService(testSecret, "1h", "24h", false)
	require.NoError(t, err)
	svc := NewAuthService(store, store.Users(), store.Centers(), store.Plans(), store.Subscriptions(),
		governorateStub{1: "Cairo"}, jwtService, store.RefreshTokens())
	return authFixture{store: store, jwt: jwtService, svc: svc}
}

func (f authFixture) addTrialPlan() plan.Plan {
	return f.store.AddPlan(plan.Plan{
		Name: "Trial", MaxStudents: 20, MaxTeachers: 1, MaxAssistants: 1,
		Price: decimal.Zero, DurationDays: 14, IsActive: true, IsDefault: true, IsTrial: true,
	})
}

func (f authFixture) addUser(t *testing.T, email, password string) user.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	c, _ := f.store.AddCenter("Nile Center", nil)
	return f.store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Email: email, PasswordHash: &hash, Role: user.RoleTeacher})
}

func validRegistration(email string) auth.RegisterRequest {
	return auth.RegisterRequest{
		CenterName:      "  Nile Center ",
		OwnerName:       "Amr",
		Email:           email,
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	trial := f.addTrialPlan()

	resp, err := f.svc.Register(ctx, validRegistration("Owner@Example.com"), testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.RefreshTokenExpiresIn, resp.AccessTokenExpiresIn)

	owner, err := f.store.Users().GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleCenterAdmin, owner.Role)
	require.NotNil(t, owner.CenterID)

	c, err := f.store.Centers().GetByID(ctx, *owner.CenterID)
	require.NoError(t, err)
	assert.Equal(t, "Nile Center", c.Name)
	require.NotNil(t, c.OwnerID)
	assert.Equal(t, owner.ID, *c.OwnerID)

	sub, ok := f.store.ActiveSubscription(c.ID)
	require.True(t, ok)
	assert.Equal(t, trial.ID, sub.PlanID)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, trial.EndDate(sub.StartDate), *sub.EndDate)
	assert.Equal(t, 1, f.store.LiveTokens(owner.ID))
}

func TestAuthService_Register_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no default plan", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(ctx, validRegistration("owner@example.com"), testSession)
		assert.ErrorIs(t, err, plan.ErrNoDefaultPlan)
	})

	t.Run("unknown governorate", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addTrialPlan()
		req := validRegistration("owner@example.com")
		gov := 27
		req.GovernorateID = &gov
		_, err := f.svc.Register(ctx, req, testSession)
		assert.ErrorIs(t, err, governorate.ErrGovernorateNotFound)
	})

	t.Run("password mismatch", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addTrialPlan()
		req := validRegistration("owner@example.com")
		req.ConfirmPassword = "something-else"
		_, err := f.svc.Register(ctx, req, testSession)
		assert.Error(t, err)
	})

	t.Run("duplicate email leaves no center behind", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addTrialPlan()
		_, err := f.svc.Register(ctx, validRegistration("owner@example.com"), testSession)
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, validRegistration("OWNER@example.com"), testSession)
		assert.ErrorIs(t, err, user.ErrUserEmailExists)

		centers, err := f.store.Centers().List(ctx)
		require.NoError(t, err)
		assert.Len(t, centers, 1)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.addUser(t, "hassan@example.com", "password123")

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "Hassan@Example.com", Password: "password123"}, testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 1, f.store.LiveTokens(u.ID))

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "hassan@example.com", Password: "wrongpassword"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Disabled(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.addUser(t, "hassan@example.com", "password123")
	u.IsActive = false
	require.NoError(t, f.store.Users().Update(ctx, u))

	_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "hassan@example.com", Password: "password123"}, testSession)
	assert.ErrorIs(t, err, auth.ErrAccountDisabled)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.addUser(t, "hassan@example.com", "password123")

	_, err := f.svc.LoginWithGoogle(ctx, "stranger@example.com", "google-id-1", testSession)
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)

	resp, err := f.svc.LoginWithGoogle(ctx, "Hassan@example.com", "google-id-123", testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	linked, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "google-id-123", *linked.GoogleID)

	_, err = f.svc.LoginWithGoogle(ctx, "hassan@example.com", "google-id-123", testSession)
	assert.NoError(t, err)

	_, err = f.svc.LoginWithGoogle(ctx, "hassan@example.com", "google-id-999", testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addUser(t, "hassan@example.com", "password123")

	login, err := f.svc.Login(ctx, auth.LoginRequest{Email: "hassan@example.com", Password: "password123"}, testSession)
	require.NoError(t, err)

	resp, err := f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))

	_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "not-a-token"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "access tokens are not refresh tokens")
}

func TestAuthService_RefreshToken_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	u := f.addUser(t, "hassan@example.com", "password123")

	token, _, err := f.jwt.GenerateRefreshToken(u.ID)
	require.NoError(t, err)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: token})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.addUser(t, "hassan@example.com", "password123")

	login, err := f.svc.Login(ctx, auth.LoginRequest{Email: "hassan@example.com", Password: "password123"}, testSession)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))
	assert.Zero(t, f.store.LiveTokens(u.ID))
	assert.NoError(t, f.svc.Logout(ctx, ""))

	_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}
