// Command seed loads reference data, a platform admin and optional demo
// centers through the same services the API uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/config"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/fixtures"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
	"github.com/tutora/tutora-backend/internal/repository/postgresql"
	serviceAuth "github.com/tutora/tutora-backend/internal/service/auth"
	groupService "github.com/tutora/tutora-backend/internal/service/group"
	staffService "github.com/tutora/tutora-backend/internal/service/staff"
	studentService "github.com/tutora/tutora-backend/internal/service/student"
	subscriptionService "github.com/tutora/tutora-backend/internal/service/subscription"
)

const demoPassword = "password123"

type seedOptions struct {
	centers       int
	students      int
	adminEmail    string
	adminPassword string
}

func main() {
	var opts seedOptions
	flag.IntVar(&opts.centers, "centers", 0, "number of demo centers to create")
	flag.IntVar(&opts.students, "students", 10, "students per demo center")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin@tutora.app", "platform admin email")
	flag.StringVar(&opts.adminPassword, "admin-password", "", "platform admin password (admin is skipped when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seed(context.Background(), cfg, db, opts); err != nil {
		slog.Error("seed failed", "error", err)
		db.Close()
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func seed(ctx context.Context, cfg *config.Config, db *database.DB, opts seedOptions) error {
	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	centerRepo := postgresql.NewCenterRepository(db)
	planRepo := postgresql.NewPlanRepository(db)
	subscriptionRepo := postgresql.NewSubscriptionRepository(db)
	governorateRepo := postgresql.NewGovernorateRepository(db)
	academicYearRepo := postgresql.NewAcademicYearRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	studentRepo := postgresql.NewStudentRepository(db)
	groupRepo := postgresql.NewGroupRepository(db)

	seeder := fixtures.Seeder{
		Governorates:  governorateRepo,
		AcademicYears: academicYearRepo,
		Plans:         planRepo,
	}
	if err := seeder.Seed(ctx); err != nil {
		return err
	}

	if opts.adminPassword != "" {
		if err := seedAdmin(ctx, userRepo, opts.adminEmail, opts.adminPassword); err != nil {
			return err
		}
	}

	if opts.centers == 0 {
		return nil
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, false)
	if err != nil {
		return err
	}
	limitGuard := subscriptionService.NewLimitGuard(subscriptionRepo, planRepo, centerRepo)
	authSvc := serviceAuth.NewAuthService(tx, userRepo, centerRepo, planRepo, subscriptionRepo, governorateRepo, JWTService, refreshTokenRepo)
	staffSvc := staffService.NewStaffService(tx, userRepo, refreshTokenRepo, limitGuard)
	groupSvc := groupService.NewGroupService(tx, groupRepo, studentRepo, userRepo, academicYearRepo)
	studentSvc := studentService.NewStudentService(tx, studentRepo, groupRepo, userRepo, academicYearRepo, limitGuard)

	for i := 1; i <= opts.centers; i++ {
		email := fmt.Sprintf("owner%d@demo.tutora.app", i)
		if _, err := userRepo.GetByEmail(ctx, email); err == nil {
			slog.Info("demo center exists, skipping", "email", email)
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		governorateID := fixtures.Governorates[i%len(fixtures.Governorates)].ID
		_, err := authSvc.Register(ctx, auth.RegisterRequest{
			CenterName:      fmt.Sprintf("Demo Center %d", i),
			OwnerName:       fmt.Sprintf("Demo Owner %d", i),
			Email:           email,
			GovernorateID:   &governorateID,
			Password:        demoPassword,
			ConfirmPassword: demoPassword,
		}, auth.SessionTrackingRequest{UserAgent: "seed"})
		if err != nil {
			return fmt.Errorf("register demo center %d: %w", i, err)
		}

		owner, err := userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		scope := tenant.Scope{CenterID: *owner.CenterID, UserID: owner.ID, Role: user.RoleCenterAdmin}

		teacher, err := staffSvc.CreateTeacher(ctx, scope, user.CreateTeacherRequest{
			Name:     fmt.Sprintf("Demo Teacher %d", i),
			Email:    fmt.Sprintf("teacher%d@demo.tutora.app", i),
			Password: demoPassword,
		})
		if err != nil {
			return fmt.Errorf("create teacher for center %d: %w", i, err)
		}

		g, err := groupSvc.Create(ctx, scope, group.CreateGroupRequest{
			TeacherID:    &teacher.ID,
			Name:         "Saturday Group",
			MaxStudents:  opts.students,
			PaymentType:  group.PaymentTypePerSession,
			StudentPrice: decimal.NewFromInt(50),
			Schedules: []group.ScheduleRequest{
				{DayOfWeek: 6, StartTime: "16:00", EndTime: "18:00"},
			},
		})
		if err != nil {
			return fmt.Errorf("create group for center %d: %w", i, err)
		}

		for n := 1; n <= opts.students; n++ {
			_, err := studentSvc.Create(ctx, scope, student.CreateStudentRequest{
				TeacherID: &teacher.ID,
				GroupID:   &g.ID,
				Name:      fmt.Sprintf("Student %d-%d", i, n),
			})
			if err != nil {
				return fmt.Errorf("create student %d for center %d: %w", n, i, err)
			}
		}
		slog.Info("demo center seeded", "center_id", scope.CenterID, "students", opts.students)
	}
	return nil
}

func seedAdmin(ctx context.Context, users user.UserRepository, email, password string) error {
	email = serviceAuth.NormalizeEmail(email)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := serviceAuth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, user.User{
		Name:         "Platform Admin",
		Email:        email,
		PasswordHash: &hash,
		Role:         user.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("create platform admin: %w", err)
	}
	slog.Info("platform admin created", "email", email)
	return nil
}
