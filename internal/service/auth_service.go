package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/dto"
	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// passwordSymbols is the punctuation set at least one password character must come from.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// AuthService handles registration and credential verification.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (models.User, error)
	Login(ctx context.Context, req dto.LoginRequest, remoteIP string) (models.User, error)
	EchoFields(req dto.RegisterRequest) map[string]string
}

type authService struct {
	users      repository.UserRepository
	audit      AuditService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	bcryptCost int
	// dummyHash is compared against when the username does not exist so a
	// failed lookup costs the same as a failed password check.
	dummyHash []byte
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, audit AuditService, validate *validator.Validate, bcryptCost int, logger zerolog.Logger) (AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("sims-timing-equalizer"), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &authService{
		users:      users,
		audit:      audit,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/sims-go-api/internal/service/auth"),
	}, nil
}

// Register validates the submitted form in a fixed order, checks uniqueness
// with a single probe, and stores only the bcrypt hash of the password. The
// created account always has role "user".
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return models.User{}, &ValidationError{Field: "form", Message: "Please fill in all fields."}
	}

	if !usernamePattern.MatchString(username) {
		return models.User{}, &ValidationError{Field: "username", Message: "Username must be 3-50 characters (letters, numbers, underscores only)."}
	}

	if err := s.validator.Var(email, "required,email"); err != nil {
		return models.User{}, &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}

	if err := checkPasswordPolicy(req.Password); err != nil {
		return models.User{}, err
	}

	if req.Password != req.ConfirmPassword {
		return models.User{}, &ValidationError{Field: "confirm_password", Message: "Passwords do not match."}
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Role:         models.RoleUser,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	span.SetAttributes(attribute.String("auth.username", username))
	s.logger.Info().Str("username", username).Msg("user registered")

	return user, nil
}

// Login verifies credentials and records the attempt in the audit trail. The
// failure error and its cost are identical whether the username is unknown or
// the password is wrong.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest, remoteIP string) (models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			s.audit.RecordLogin(ctx, username, remoteIP, false)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.RecordLogin(ctx, username, remoteIP, false)
		return models.User{}, ErrInvalidCredentials
	}

	s.audit.RecordLogin(ctx, username, remoteIP, true)
	s.logger.Info().Str("username", username).Msg("user logged in")

	return user, nil
}

// EchoFields returns the non-sensitive form values, sanitized, for re-rendering
// the form after a validation failure. Passwords are never echoed.
func (s *authService) EchoFields(req dto.RegisterRequest) map[string]string {
	return map[string]string{
		"username": s.sanitizer.Sanitize(strings.TrimSpace(req.Username)),
		"email":    s.sanitizer.Sanitize(strings.TrimSpace(req.Email)),
	}
}

func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters long."}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return &ValidationError{Field: "password", Message: "Password must contain at least one uppercase letter."}
	case !hasLower:
		return &ValidationError{Field: "password", Message: "Password must contain at least one lowercase letter."}
	case !hasDigit:
		return &ValidationError{Field: "password", Message: "Password must contain at least one number."}
	case !hasSymbol:
		return &ValidationError{Field: "password", Message: `Password must contain at least one special character (!@#$%^&*(),.?":{}|<>).`}
	}

	return nil
}
