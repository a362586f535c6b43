package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// AuthService handles the admin panel session
type AuthService interface {
	// Login checks the admin credential and issues a session token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)

	// Logout revokes a session before it expires
	Logout(ctx context.Context, sessionID string) error

	// ValidateToken verifies a token and that its session is still stored
	ValidateToken(ctx context.Context, token string) (*domain.AdminSession, error)
}

// AuthServiceConfig contains configuration for auth service
type AuthServiceConfig struct {
	JWTSecret    string
	Issuer       string
	SessionTTL   time.Duration
	Username     string
	PasswordHash string
}

type authService struct {
	sessionRepo repository.SessionRepository
	config      *AuthServiceConfig
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(sessionRepo repository.SessionRepository, config *AuthServiceConfig) AuthService {
	if config.SessionTTL == 0 {
		config.SessionTTL = 8 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "aeroflash"
	}
	return &authService{
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password", domain.ErrMissingField)
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the admin credential and issues a session token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	if s.config.PasswordHash == "" {
		span.SetStatus(codes.Error, "admin credential not configured")
		return nil, domain.ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.config.Username)) == 1
	// hash compared on every attempt, known username or not
	passErr := bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.AdminSession{
		ID:        uuid.New().String(),
		Username:  s.config.Username,
		Role:      domain.RoleAdmin,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  session.ID,
		"sub":  session.Username,
		"role": session.Role,
		"iss":  s.config.Issuer,
		"iat":  session.IssuedAt.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("session_id", session.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.LoginResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes a session before it expires
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	if sessionID == "" {
		return domain.ErrInvalidToken
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// ValidateToken verifies a token and that its session is still stored
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.AdminSession, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.validate_token")
	defer span.End()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	sessionID, _ := claims["jti"].(string)
	role, _ := claims["role"].(string)
	if sessionID == "" || role != domain.RoleAdmin {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionRevoked) {
			span.SetStatus(codes.Error, "session revoked")
		}
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return session, nil
}
