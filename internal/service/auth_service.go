package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type authDirectory interface {
	GetByEmail(ctx context.Context, role models.Role, email string) (*models.Person, error)
	GetByID(ctx context.Context, role models.Role, id string) (*models.Person, error)
}

// AuthConfig defines configuration for session issuance.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	// Bootstrap admin credentials; the admin account never lives in the
	// directory.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// AuthService authenticates principals against their role's directory
// collection and issues stateless access tokens. Passwords are stored and
// compared as plain text; the credential model is a login gate, not a
// security boundary.
type AuthService struct {
	directory authDirectory
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(directory authDirectory, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{directory: directory, validator: validate, logger: logger, config: config}
}

// Login authenticates against the collection the requested role selects. A
// wrong role with otherwise valid credentials fails: each role only sees its
// own collection.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", req.Role))
	}

	person, err := s.resolvePrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	token, issuedAt, err := s.issueToken(person)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("login",
		zap.String("user_id", person.ID),
		zap.String("role", string(person.Role)))

	sanitized := *person
	sanitized.Password = ""
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		IssuedAt:    issuedAt,
		User:        sanitized,
	}, nil
}

func (s *AuthService) resolvePrincipal(ctx context.Context, req models.LoginRequest) (*models.Person, error) {
	if req.Role == models.RoleAdmin {
		if req.Email != s.config.AdminEmail || req.Password != s.config.AdminPassword {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return &models.Person{
			ID:    "admin",
			Name:  s.config.AdminName,
			Email: s.config.AdminEmail,
			Role:  models.RoleAdmin,
		}, nil
	}

	person, err := s.directory.GetByEmail(ctx, req.Role, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}
	if person.Password != req.Password {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return person, nil
}

func (s *AuthService) issueToken(person *models.Person) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID:     person.ID,
		Role:       person.Role,
		Name:       person.Name,
		Email:      person.Email,
		Department: person.Department,
		Specialty:  person.Specialty,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   person.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// Me returns the current session snapshot, refreshed from the directory when
// the principal still exists there.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.Person, error) {
	if claims.Role == models.RoleAdmin {
		person := claims.Person()
		return &person, nil
	}
	person, err := s.directory.GetByID(ctx, claims.Role, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}
	person.Password = ""
	return person, nil
}
