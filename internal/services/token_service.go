package services

import (
	"fmt"
	"strconv"
	"time"

	"streaming-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL matches the session length handed out by the account service.
const tokenTTL = 7 * 24 * time.Hour

// TokenService issues and validates bearer tokens for already-provisioned
// users. Account creation and credential checks live in a separate service.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service from the configured secret.
func NewTokenService() *TokenService {
	return &TokenService{secret: []byte(config.AppConfig.JWTSecret)}
}

// Issue signs a token for the given user id.
func (s *TokenService) Issue(userID uint) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT_SECRET is not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and returns the user id it was issued for.
func (s *TokenService) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("token missing user identifier")
	}

	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user identifier in token: %w", err)
	}
	return uint(userID), nil
}
