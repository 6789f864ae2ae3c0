package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/config"
	"github.com/noah-isme/sims-go-api/internal/handler"
	"github.com/noah-isme/sims-go-api/internal/middleware"
	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
	"github.com/noah-isme/sims-go-api/internal/router"
	"github.com/noah-isme/sims-go-api/internal/service"
	"github.com/noah-isme/sims-go-api/internal/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:e2e_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Student{}, &models.LoginAttempt{}))

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attemptRepo := repository.NewLoginAttemptRepository(db)

	sessionStore := session.NewRedisStore(redisClient, 30*time.Minute)
	sessionManager := session.NewManager(sessionStore, 30*time.Minute, 32)

	auditService := service.NewAuditService(attemptRepo, nil, logger)
	authService, err := service.NewAuthService(userRepo, auditService, validate, bcrypt.MinCost, logger)
	require.NoError(t, err)
	studentService := service.NewStudentService(studentRepo, courseRepo, auditService, validate, logger)
	backupService := service.NewBackupService(noopDumper{}, t.TempDir(), logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "SIMS Test", AppEnv: "test"}, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, sessionManager, logger),
		DashboardHandler: handler.NewDashboardHandler(studentService, sessionManager, logger),
		StudentHandler:   handler.NewStudentHandler(studentService, sessionManager, logger),
		BackupHandler:    handler.NewBackupHandler(backupService, sessionManager, logger),
		SessionManager:   sessionManager,
	})

	return app, db
}

type noopDumper struct{}

func (noopDumper) Dump(_ context.Context, path string) error {
	return os.WriteFile(path, []byte("-- dump"), 0o640)
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        username + "@example.com",
		Role:         role,
	}).Error)
}

func seedStudents(t *testing.T, db *gorm.DB) (models.Course, []models.Student) {
	t.Helper()

	course := models.Course{CourseCode: "BSIT", CourseDescription: "Information Technology"}
	require.NoError(t, db.Create(&course).Error)

	students := []models.Student{
		{StudentID: "2024-0001", FullName: "Ana Reyes", Email: "ana@example.com", CourseID: &course.ID},
		{StudentID: "2024-0002", FullName: "Ben Cruz", Email: "ben@example.com"},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
	}

	return course, students
}

func formRequest(path string, values url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	return payload
}

func login(t *testing.T, app *fiber.App, username, password string) *http.Cookie {
	t.Helper()
	resp, err := app.Test(formRequest("/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return sessionCookie(t, resp)
}

func dashboardCSRF(t *testing.T, app *fiber.App, cookie *http.Cookie) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		CSRFToken string `json:"csrf_token"`
	}
	payload := decodeEnvelope(t, resp)
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.NotEmpty(t, data.CSRFToken)
	return data.CSRFToken
}

func studentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	return count
}

func TestAdminDashboardDeleteEndToEnd(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, "admin", "Adm1nPass!", models.RoleAdmin)
	_, students := seedStudents(t, db)

	cookie := login(t, app, "admin", "Adm1nPass!")

	// Dashboard lists students ordered by id with course fields resolved.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dashboard struct {
		User struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
		Students []struct {
			ID                uint   `json:"id"`
			CourseCode        string `json:"course_code"`
			CourseDescription string `json:"course_description"`
		} `json:"students"`
		CSRFToken string `json:"csrf_token"`
	}
	payload := decodeEnvelope(t, resp)
	require.NoError(t, json.Unmarshal(payload.Data, &dashboard))

	require.Equal(t, "admin", dashboard.User.Role)
	require.Len(t, dashboard.Students, 2)
	require.Less(t, dashboard.Students[0].ID, dashboard.Students[1].ID)
	require.Equal(t, "BSIT", dashboard.Students[0].CourseCode)
	require.Equal(t, "N/A", dashboard.Students[1].CourseCode)
	require.NotEmpty(t, dashboard.CSRFToken)

	// Delete the first student with the issued token.
	resp, err = app.Test(formRequest("/dashboard/delete", url.Values{
		"student_id": {strconv.FormatUint(uint64(students[0].ID), 10)},
		"csrf_token": {dashboard.CSRFToken},
	}, cookie), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload = decodeEnvelope(t, resp)
	require.True(t, payload.Success)
	require.Equal(t, "Student deleted successfully.", payload.Message)
	require.Equal(t, int64(1), studentCount(t, db))

	// Deleting the same id again: defined no-op, still no error.
	token := dashboardCSRF(t, app, cookie)
	resp, err = app.Test(formRequest("/dashboard/delete", url.Values{
		"student_id": {strconv.FormatUint(uint64(students[0].ID), 10)},
		"csrf_token": {token},
	}, cookie), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	payload = decodeEnvelope(t, resp)
	require.True(t, payload.Success)
	require.Equal(t, int64(1), studentCount(t, db))
}

func TestDeleteRejectedWithoutValidCSRF(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, "admin", "Adm1nPass!", models.RoleAdmin)
	_, students := seedStudents(t, db)

	cookie := login(t, app, "admin", "Adm1nPass!")
	id := strconv.FormatUint(uint64(students[0].ID), 10)

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(formRequest("/dashboard/delete", url.Values{
			"student_id": {id},
		}, cookie), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.Equal(t, int64(2), studentCount(t, db))
	})

	t.Run("wrong token", func(t *testing.T) {
		resp, err := app.Test(formRequest("/dashboard/delete", url.Values{
			"student_id": {id},
			"csrf_token": {"deadbeef"},
		}, cookie), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.Equal(t, int64(2), studentCount(t, db))
	})

	t.Run("token reused after invalidation", func(t *testing.T) {
		token := dashboardCSRF(t, app, cookie)

		resp, err := app.Test(formRequest("/dashboard/delete", url.Values{
			"student_id": {id},
			"csrf_token": {token},
		}, cookie), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, int64(1), studentCount(t, db))

		// The consumed token no longer works.
		resp, err = app.Test(formRequest("/dashboard/delete", url.Values{
			"student_id": {strconv.FormatUint(uint64(students[1].ID), 10)},
			"csrf_token": {token},
		}, cookie), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.Equal(t, int64(1), studentCount(t, db))
	})
}

func TestDeleteForbiddenForNonAdmin(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, "regular", "Regul4rPass!", models.RoleUser)
	_, students := seedStudents(t, db)

	cookie := login(t, app, "regular", "Regul4rPass!")
	token := dashboardCSRF(t, app, cookie)

	resp, err := app.Test(formRequest("/dashboard/delete", url.Values{
		"student_id": {strconv.FormatUint(uint64(students[0].ID), 10)},
		"csrf_token": {token},
	}, cookie), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, int64(2), studentCount(t, db))
}

func TestProtectedPagesRedirectWithoutSession(t *testing.T) {
	app, _ := setupApp(t)

	for _, path := range []string{"/dashboard", "/students/new", "/backup"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestBackupPageIsAdminOnly(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, "regular", "Regul4rPass!", models.RoleUser)
	seedUser(t, db, "admin", "Adm1nPass!", models.RoleAdmin)

	userCookie := login(t, app, "regular", "Regul4rPass!")
	req := httptest.NewRequest(http.MethodGet, "/backup", nil)
	req.AddCookie(userCookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminCookie := login(t, app, "admin", "Adm1nPass!")
	req = httptest.NewRequest(http.MethodGet, "/backup", nil)
	req.AddCookie(adminCookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page struct {
		Strategy  []struct{ Strategy string } `json:"strategy"`
		CSRFToken string                      `json:"csrf_token"`
	}
	payload := decodeEnvelope(t, resp)
	require.NoError(t, json.Unmarshal(payload.Data, &page))
	require.NotEmpty(t, page.Strategy)
	require.NotEmpty(t, page.CSRFToken)
}
