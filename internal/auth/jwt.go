package auth

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notes-api/internal/config"
)

var (
	settingsMu  sync.RWMutex
	jwtSecret   = []byte("development-insecure-secret-change-me")
	jwtIssuer   = "notes-api"
	jwtAudience = "notes-admin"
	tokenTTL    = 24 * time.Hour
)

// Configure replaces the signing settings; the server calls it once at startup.
func Configure(cfg config.AuthConfig) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	jwtSecret = []byte(cfg.JWTSecret)
	jwtIssuer = cfg.Issuer
	jwtAudience = cfg.Audience
	if cfg.TokenTTL > 0 {
		tokenTTL = cfg.TokenTTL
	}
}

// Claims represents the JWT claims
type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken generates a JWT token for the given admin
func GenerateToken(adminID, username, role string) (string, error) {
	settingsMu.RLock()
	secret, issuer, audience, ttl := jwtSecret, jwtIssuer, jwtAudience, tokenTTL
	settingsMu.RUnlock()

	now := time.Now()
	claims := Claims{
		AdminID:  adminID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	settingsMu.RLock()
	secret, issuer, audience := jwtSecret, jwtIssuer, jwtAudience
	settingsMu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Issuer != issuer {
		return nil, errors.New("invalid token issuer")
	}
	if !slices.Contains(claims.Audience, audience) {
		return nil, errors.New("invalid token audience")
	}
	return claims, nil
}
