/**
 * @description
 * Authentication middleware for the membership-service. Staff clients present
 * an HS256 JWT signed with the shared service secret; the token subject is
 * made available to handlers through the request context.
 */
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// StaffIDContextKey is the key used to store the staff id in the request context.
const StaffIDContextKey = contextKey("staffID")

// StaffAuthMiddleware validates bearer JWTs and injects the subject into context.
func StaffAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			staffID, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), StaffIDContextKey, staffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffFromContext retrieves the staff id from the request context.
func StaffFromContext(ctx context.Context) (string, bool) {
	staffID, ok := ctx.Value(StaffIDContextKey).(string)
	return staffID, ok
}
