package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/tutora/tutora-backend/internal/config"
	"github.com/tutora/tutora-backend/internal/fixtures"
	appHTTP "github.com/tutora/tutora-backend/internal/handler/http"
	"github.com/tutora/tutora-backend/internal/pkg/cron"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/pkg/email"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
	"github.com/tutora/tutora-backend/internal/pkg/oauth"
	"github.com/tutora/tutora-backend/internal/repository/postgresql"
	attendanceService "github.com/tutora/tutora-backend/internal/service/attendance"
	serviceAuth "github.com/tutora/tutora-backend/internal/service/auth"
	centerService "github.com/tutora/tutora-backend/internal/service/center"
	dashboardService "github.com/tutora/tutora-backend/internal/service/dashboard"
	groupService "github.com/tutora/tutora-backend/internal/service/group"
	"github.com/tutora/tutora-backend/internal/service/master"
	paymentService "github.com/tutora/tutora-backend/internal/service/payment"
	planService "github.com/tutora/tutora-backend/internal/service/plan"
	reportService "github.com/tutora/tutora-backend/internal/service/report"
	staffService "github.com/tutora/tutora-backend/internal/service/staff"
	studentService "github.com/tutora/tutora-backend/internal/service/student"
	subscriptionService "github.com/tutora/tutora-backend/internal/service/subscription"
	upgradeService "github.com/tutora/tutora-backend/internal/service/upgrade"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "tutora"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	centerRepo := postgresql.NewCenterRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	planRepo := postgresql.NewPlanRepository(db)
	subscriptionRepo := postgresql.NewSubscriptionRepository(db)
	upgradeRepo := postgresql.NewUpgradeRepository(db)
	governorateRepo := postgresql.NewGovernorateRepository(db)
	academicYearRepo := postgresql.NewAcademicYearRepository(db)
	studentRepo := postgresql.NewStudentRepository(db)
	groupRepo := postgresql.NewGroupRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	seeder := fixtures.Seeder{
		Governorates:  governorateRepo,
		AcademicYears: academicYearRepo,
		Plans:         planRepo,
	}
	if err := seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	} else {
		slog.Info("google login disabled")
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}

	limitGuard := subscriptionService.NewLimitGuard(subscriptionRepo, planRepo, centerRepo)
	subscriptionSvc := subscriptionService.NewSubscriptionService(subscriptionRepo, planRepo, tx)
	authService := serviceAuth.NewAuthService(tx, userRepo, centerRepo, planRepo, subscriptionRepo, governorateRepo, JWTService, refreshTokenRepo)
	planSvc := planService.NewPlanService(planRepo, tx)
	centerSvc := centerService.NewCenterService(centerRepo, governorateRepo)
	staffSvc := staffService.NewStaffService(tx, userRepo, refreshTokenRepo, limitGuard)
	permissionSvc := staffService.NewPermissionService(tx, userRepo)
	studentSvc := studentService.NewStudentService(tx, studentRepo, groupRepo, userRepo, academicYearRepo, limitGuard)
	groupSvc := groupService.NewGroupService(tx, groupRepo, studentRepo, userRepo, academicYearRepo)
	attendanceSvc := attendanceService.NewAttendanceService(tx, attendanceRepo, groupRepo, studentRepo, paymentRepo)
	paymentSvc := paymentService.NewPaymentService(paymentRepo, groupRepo, studentRepo)
	upgradeSvc := upgradeService.NewUpgradeService(tx, upgradeRepo, subscriptionRepo, planRepo, emailService)
	masterSvc := master.NewMasterService(governorateRepo, academicYearRepo)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, attendanceRepo, paymentRepo, subscriptionSvc)
	reportSvc := reportService.NewReportService(paymentRepo, attendanceRepo, groupRepo)

	handlers := appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL, cfg.IsProduction()),
		Plan:         appHTTP.NewPlanHandler(planSvc),
		Center:       appHTTP.NewCenterHandler(centerSvc),
		Subscription: appHTTP.NewSubscriptionHandler(subscriptionSvc),
		Staff:        appHTTP.NewStaffHandler(staffSvc, permissionSvc),
		Student:      appHTTP.NewStudentHandler(studentSvc),
		Group:        appHTTP.NewGroupHandler(groupSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Payment:      appHTTP.NewPaymentHandler(paymentSvc),
		Upgrade:      appHTTP.NewUpgradeHandler(upgradeSvc),
		Master:       appHTTP.NewMasterHandler(masterSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
	}

	router := appHTTP.NewRouter(JWTService, userRepo, handlers, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewBillingJobs(subscriptionSvc, paymentSvc).RegisterJobs(scheduler)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
