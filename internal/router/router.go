package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sims-go-api/internal/authz"
	"github.com/noah-isme/sims-go-api/internal/config"
	"github.com/noah-isme/sims-go-api/internal/handler"
	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/observability"
	"github.com/noah-isme/sims-go-api/internal/session"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	DashboardHandler *handler.DashboardHandler
	StudentHandler   *handler.StudentHandler
	BackupHandler    *handler.BackupHandler
	SessionManager   *session.Manager
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/healthz", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	anon := middleware.AnonymousSession(deps.SessionManager)
	guard := middleware.SessionProtected(deps.SessionManager)
	csrf := middleware.CSRFProtected(deps.SessionManager)
	loginLimiter := middleware.RateLimit("login", 5, time.Minute)

	// Public form routes. Registration is CSRF-guarded against the anonymous
	// session that rendered the form.
	app.Get("/login", anon, deps.AuthHandler.LoginForm)
	app.Post("/login", loginLimiter, deps.AuthHandler.Login)
	app.Get("/register", anon, deps.AuthHandler.RegisterForm)
	app.Post("/register", anon, csrf, deps.AuthHandler.Register)

	// Everything below requires an authenticated, non-expired session.
	app.Post("/logout", guard, deps.AuthHandler.Logout)

	app.Get("/dashboard", guard, deps.DashboardHandler.Show)
	app.Post("/dashboard/delete", guard, middleware.RequireAction(authz.ActionStudentDelete), csrf, deps.DashboardHandler.Delete)

	app.Get("/students/new", guard, deps.StudentHandler.NewForm)
	app.Post("/students", guard, middleware.RequireAction(authz.ActionStudentCreate), csrf, deps.StudentHandler.Create)

	app.Get("/backup", guard, middleware.RequireAction(authz.ActionBackupView), deps.BackupHandler.Show)
	app.Post("/backup", guard, middleware.RequireAction(authz.ActionBackupRun), csrf, deps.BackupHandler.Run)
}
