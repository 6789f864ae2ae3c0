package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/dto"
	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
)

type recordingAudit struct {
	logins []bool
	events []string
}

func (a *recordingAudit) RecordLogin(_ context.Context, _, _ string, succeeded bool) {
	a.logins = append(a.logins, succeeded)
}

func (a *recordingAudit) Publish(action string, _ map[string]interface{}) {
	a.events = append(a.events, action)
}

var _ AuditService = (*recordingAudit)(nil)

func setupAuthService(t *testing.T) (AuthService, *gorm.DB, *recordingAudit) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.LoginAttempt{}))

	audit := &recordingAudit{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	auth, err := NewAuthService(repository.NewUserRepository(db), audit, validate, bcrypt.MinCost, logger)
	require.NoError(t, err)

	return auth, db, audit
}

func validRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:        "new_user1",
		Email:           "new.user@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	auth, db, _ := setupAuthService(t)

	user, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var stored models.User
	require.NoError(t, db.First(&stored).Error)
	require.NotEqual(t, "Passw0rd!", stored.PasswordHash, "password must never be stored in plaintext")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd!")))
}

func TestRegisterDuplicateIsGeneric(t *testing.T) {
	auth, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	// Same username, different email.
	dup := validRegistration()
	dup.Email = "different@example.com"
	_, err = auth.Register(ctx, dup)
	require.ErrorIs(t, err, ErrDuplicateAccount)

	// Same email, different username: indistinguishable from the above.
	dup = validRegistration()
	dup.Username = "different_user"
	_, err = auth.Register(ctx, dup)
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestRegisterValidationOrder(t *testing.T) {
	auth, _, _ := setupAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*dto.RegisterRequest)
		field   string
		message string
	}{
		{
			name:   "missing fields",
			mutate: func(r *dto.RegisterRequest) { r.Email = "" },
			field:  "form",
		},
		{
			name:   "bad username charset",
			mutate: func(r *dto.RegisterRequest) { r.Username = "no spaces!" },
			field:  "username",
		},
		{
			name:   "short username",
			mutate: func(r *dto.RegisterRequest) { r.Username = "ab" },
			field:  "username",
		},
		{
			name:   "bad email",
			mutate: func(r *dto.RegisterRequest) { r.Email = "not-an-email" },
			field:  "email",
		},
		{
			name: "password too short",
			mutate: func(r *dto.RegisterRequest) {
				r.Password = "Sh0rt!"
				r.ConfirmPassword = "Sh0rt!"
			},
			field: "password",
		},
		{
			name: "confirm mismatch",
			mutate: func(r *dto.RegisterRequest) {
				r.ConfirmPassword = "Passw0rd!?"
			},
			field: "confirm_password",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)

			_, err := auth.Register(ctx, req)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		wantErr  string
	}{
		{"alllowercase1!", "uppercase"},
		{"Password1", "special character"},
		{"PASSWORD1!", "lowercase"},
		{"Password!", "number"},
		{"Passw0rd!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			err := checkPasswordPolicy(tc.password)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoginFailureIsGenericAndAudited(t *testing.T) {
	auth, _, audit := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	// Unknown username and wrong password produce the identical error.
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "Passw0rd!"}, "10.0.0.9")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "new_user1", Password: "WrongPass1!"}, "10.0.0.9")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := auth.Login(ctx, dto.LoginRequest{Username: "new_user1", Password: "Passw0rd!"}, "10.0.0.9")
	require.NoError(t, err)
	require.Equal(t, "new_user1", user.Username)

	require.Equal(t, []bool{false, false, true}, audit.logins)
}

func TestEchoFieldsNeverContainMarkup(t *testing.T) {
	auth, _, _ := setupAuthService(t)

	echo := auth.EchoFields(dto.RegisterRequest{
		Username: "<script>alert(1)</script>bob",
		Email:    "bob@example.com",
		Password: "secret",
	})

	require.Equal(t, "bob", echo["username"])
	require.Equal(t, "bob@example.com", echo["email"])
	require.NotContains(t, echo, "password")
}
