package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/sierrasilva/backoffice/internal"
	"golang.org/x/crypto/bcrypt"
)

// Service authenticates the configured administrator and issues JWTs.
type Service struct {
	cfg    apperrors.AuthConfig
	logger *slog.Logger
}

func NewService(cfg apperrors.AuthConfig, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

// Authenticate checks the credentials against the configured admin account
// and returns a signed token with the admin profile.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if dto.Email == "" || dto.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required", apperrors.ErrCodeValidationFailed)
	}

	if dto.Email != s.cfg.AdminEmail {
		s.logger.Warn("login attempt with unknown email", "email", dto.Email)
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login attempt with wrong password", "email", dto.Email)
		return nil, apperrors.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.TokenDuration)
	claims := &Claims{
		Email: s.cfg.AdminEmail,
		Name:  s.cfg.AdminName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   s.cfg.AdminEmail,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		return nil, apperrors.NewInternalError("failed to issue a token", err)
	}

	s.logger.Info("admin logged in", "email", s.cfg.AdminEmail)

	return &LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User: AdminUser{
			Email: s.cfg.AdminEmail,
			Name:  s.cfg.AdminName,
		},
	}, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.ErrInvalidToken
}

// HashPassword creates a bcrypt hash, used by the seeder and ops tooling.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
