package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/config"
	"github.com/noah-isme/sims-go-api/internal/database"
	"github.com/noah-isme/sims-go-api/internal/handler"
	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
	"github.com/noah-isme/sims-go-api/internal/router"
	"github.com/noah-isme/sims-go-api/internal/service"
	"github.com/noah-isme/sims-go-api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Student{}, &models.LoginAttempt{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSUrl)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attemptRepo := repository.NewLoginAttemptRepository(db)

	if err := bootstrapAdmin(cfg, userRepo); err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}

	sessionStore := session.NewRedisStore(redisClient, cfg.SessionIdleTimeout)
	sessionManager := session.NewManager(sessionStore, cfg.SessionIdleTimeout, cfg.CSRFTokenLength)

	auditService := service.NewAuditService(attemptRepo, natsConn, logger)
	authService, err := service.NewAuthService(userRepo, auditService, validate, cfg.BcryptCost, logger)
	if err != nil {
		log.Fatalf("failed to create auth service: %v", err)
	}
	studentService := service.NewStudentService(studentRepo, courseRepo, auditService, validate, logger)
	backupService := service.NewBackupService(service.ExecDumper{
		Command:     cfg.BackupCommand,
		DatabaseURL: cfg.DatabaseURL,
	}, cfg.BackupDir, logger)

	authHandler := handler.NewAuthHandler(authService, sessionManager, logger)
	dashboardHandler := handler.NewDashboardHandler(studentService, sessionManager, logger)
	studentHandler := handler.NewStudentHandler(studentService, sessionManager, logger)
	backupHandler := handler.NewBackupHandler(backupService, sessionManager, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		StudentHandler:   studentHandler,
		BackupHandler:    backupHandler,
		SessionManager:   sessionManager,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// bootstrapAdmin provisions the configured admin account when it does not
// exist yet. Self-registration only ever creates "user" accounts.
func bootstrapAdmin(cfg config.Config, users repository.UserRepository) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	ctx := context.Background()

	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Email:        cfg.AdminEmail,
		Role:         models.RoleAdmin,
	}

	return users.Create(ctx, &admin)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
