package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 12 * time.Hour

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// CreateToken mints an HS256 session token for a collaboration participant.
func CreateToken(secret, subject string, ttl time.Duration) (TokenResponse, error) {
	if secret == "" {
		return TokenResponse{}, fmt.Errorf("session secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	expiresAt := time.Now().Add(ttl).Unix()
	claims := jwt.MapClaims{
		"sub": subject,
		"jti": uuid.NewString(),
		"exp": expiresAt,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: tokenString,
		ExpiresAt:   expiresAt,
	}, nil
}

func ParseToken(secret, tokenString string) (jwt.MapClaims, error) {
	if len(tokenString) == 0 {
		return nil, fmt.Errorf("token string is empty")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid - unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("claims of unauthorized type")
	}

	return claims, nil
}
