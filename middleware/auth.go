package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/soccerhub/league-manager/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

var ErrNoPrincipal = errors.New("no authenticated principal in context")

// Authenticate verifies the bearer token and stores the resulting
// principal in the request context. Requests without a valid token are
// rejected before reaching any handler.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			principal, err := parseToken(tokenString, jwtSecret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to the given roles. It assumes
// Authenticate already ran.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := GetPrincipal(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetPrincipal extracts the authenticated principal placed in the context
// by Authenticate.
func GetPrincipal(ctx context.Context) (models.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(models.Principal)
	if !ok {
		return models.Principal{}, ErrNoPrincipal
	}
	return principal, nil
}

func parseToken(tokenString, jwtSecret string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return models.Principal{}, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return models.Principal{}, errors.New("token validation failed")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, errors.New("unexpected claims type")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return models.Principal{}, errors.New("token is missing the user_id claim")
	}
	roleString, ok := claims["role"].(string)
	if !ok {
		return models.Principal{}, errors.New("token is missing the role claim")
	}
	role := models.UserRole(roleString)
	if !role.Valid() {
		return models.Principal{}, fmt.Errorf("unknown role %q in token", roleString)
	}

	return models.Principal{UserID: int(userID), Role: role}, nil
}
