package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         AuthHandler
	Plan         PlanHandler
	Center       CenterHandler
	Subscription SubscriptionHandler
	Staff        StaffHandler
	Student      StudentHandler
	Group        GroupHandler
	Attendance   AttendanceHandler
	Payment      PaymentHandler
	Upgrade      UpgradeHandler
	Master       MasterHandler
	Dashboard    DashboardHandler
	Report       ReportHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(JWTService jwt.Service, users user.UserRepository, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})
		})

		// Public plan catalogue for the pricing page
		r.Get("/plans", h.Plan.ListActive)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(users))

			r.Route("/master", func(r chi.Router) {
				r.Get("/governorates", h.Master.ListGovernorates)
				r.Get("/academic-years", h.Master.ListAcademicYears)
			})

			// Center members only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCenter)

				r.Route("/center", func(r chi.Router) {
					r.Get("/", h.Center.GetMy)
					r.With(middleware.RequireCenterAdmin).Put("/", h.Center.UpdateMy)
				})

				r.Route("/subscription", func(r chi.Router) {
					r.Get("/", h.Subscription.GetMySubscription)
					r.Get("/limits/{kind}", h.Subscription.CheckLimit)
				})

				r.Route("/staff", func(r chi.Router) {
					r.Get("/", h.Staff.List)
					r.Post("/teachers", h.Staff.CreateTeacher)
					r.Post("/assistants", h.Staff.CreateAssistant)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Staff.Get)
						r.Put("/", h.Staff.Update)
						r.Delete("/", h.Staff.Delete)
						r.Get("/permissions", h.Staff.GetPermissions)
						r.Put("/permissions", h.Staff.SyncPermissions)
						r.Post("/permissions/template", h.Staff.ApplyTemplate)
					})
				})

				r.Route("/permissions", func(r chi.Router) {
					r.Get("/", h.Staff.ListCatalog)
					r.Get("/templates", h.Staff.ListTemplates)
				})

				r.Route("/students", func(r chi.Router) {
					r.Get("/", h.Student.List)
					r.Post("/", h.Student.Create)
					r.Get("/{id}", h.Student.Get)
					r.Put("/{id}", h.Student.Update)
					r.Delete("/{id}", h.Student.Delete)
				})

				r.Route("/groups", func(r chi.Router) {
					r.Get("/", h.Group.List)
					r.Post("/", h.Group.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Group.Get)
						r.Put("/", h.Group.Update)
						r.Delete("/", h.Group.Delete)
						r.Post("/students", h.Group.AssignStudents)
						r.Delete("/students/{studentID}", h.Group.RemoveStudent)
					})
				})

				r.Route("/attendance", func(r chi.Router) {
					r.Post("/", h.Attendance.Record)
					r.Get("/groups/{id}", h.Attendance.ListByGroupDate)
					r.Get("/students/{id}", h.Attendance.ListByStudent)
				})

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", h.Payment.List)
					r.Post("/monthly", h.Payment.CreateMonthly)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Payment.Get)
						r.Delete("/", h.Payment.Delete)
						r.Post("/pay", h.Payment.MarkPaid)
						r.Post("/unpay", h.Payment.MarkUnpaid)
					})
				})

				r.Route("/upgrade-requests", func(r chi.Router) {
					r.Use(middleware.RequireCenterAdmin)
					r.Get("/", h.Upgrade.ListMine)
					r.Post("/", h.Upgrade.Create)
				})

				r.Get("/dashboard", h.Dashboard.GetDashboard)

				r.Route("/reports", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/income", h.Report.GetMonthlyIncome)
					r.Get("/attendance", h.Report.GetAttendanceSummary)
				})
			})

			// Platform admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/plans", func(r chi.Router) {
					r.Get("/", h.Plan.List)
					r.Post("/", h.Plan.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Plan.Get)
						r.Put("/", h.Plan.Update)
						r.Delete("/", h.Plan.Delete)
						r.Post("/default", h.Plan.SetDefault)
					})
				})

				r.Route("/centers", func(r chi.Router) {
					r.Get("/", h.Center.List)
					r.Delete("/{id}", h.Center.Delete)
					r.Put("/{id}/subscription", h.Subscription.ChangePlan)
				})

				r.Route("/upgrade-requests", func(r chi.Router) {
					r.Get("/", h.Upgrade.List)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Upgrade.Get)
						r.Post("/approve", h.Upgrade.Approve)
						r.Post("/reject", h.Upgrade.Reject)
					})
				})

				r.Route("/academic-years", func(r chi.Router) {
					r.Post("/", h.Master.CreateAcademicYear)
					r.Delete("/{id}", h.Master.DeleteAcademicYear)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
