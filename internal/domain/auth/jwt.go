package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "stockyard/internal/core/context"
	"stockyard/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "stockyard",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents JWT claims. The registered ID claim (jti) identifies
// the token for logout denylisting.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"uid"`
	UserCode    string   `json:"ucode,omitempty"`
	Email       string   `json:"email"`
	FullName    string   `json:"name,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms,omitempty"`
	IsAdmin     bool     `json:"adm,omitempty"`
}

// ToUserContext converts claims to request user context.
func (c *Claims) ToUserContext() *appctx.UserContext {
	return &appctx.UserContext{
		UserID:      c.UserID,
		UserCode:    c.UserCode,
		Email:       c.Email,
		FullName:    c.FullName,
		Roles:       c.Roles,
		Permissions: c.Permissions,
		IsAdmin:     c.IsAdmin,
		SessionID:   c.ID,
	}
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken generates a new access token with a fresh jti.
func (s *JWTService) GenerateAccessToken(user *User, roles, permissions []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:      user.ID.String(),
		UserCode:    user.Code,
		Email:       user.Email,
		FullName:    user.FullName,
		Roles:       roles,
		Permissions: permissions,
		IsAdmin:     user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken verifies signature and expiry and returns the claims.
// Denylist checks are done by the auth service, not here.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
