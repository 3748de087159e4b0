package middleware

import (
	"net/http"
	"strings"
	"time"

	internaljwt "codestudio-backend/internal/jwt"
)

// ValidateCollabToken guards the collaboration websocket when a shared
// session secret is configured. Browsers cannot set headers on websocket
// requests, so a token query parameter is accepted as well.
func ValidateCollabToken(secret string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
			if tokenString == "" {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := internaljwt.ParseToken(secret, tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			expires, _ := claims["exp"].(float64)
			if time.Now().Unix() > int64(expires) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}
