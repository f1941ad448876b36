package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"greenshift/backend/services/optimiser-service/internal/models"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthMiddleware validates bearer JWTs and stores the resolved Principal in
// the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimSpace(parts[1])
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenInvalidClaims
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			principal, err := principalFromClaims(claims)
			if err != nil {
				http.Error(w, "user identity not present in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFromClaims(claims jwt.MapClaims) (models.Principal, error) {
	userID, err := claimInt64(claims, "user_id")
	if err != nil {
		return models.Principal{}, err
	}

	principal := models.Principal{UserID: userID, Role: models.RolePending}
	if role, ok := claims["role"].(string); ok && role != "" {
		principal.Role = models.Role(role)
	}
	if propertyID, err := claimInt64(claims, "property_id"); err == nil {
		principal.PropertyID = propertyID
	}
	if portfolioID, err := claimInt64(claims, "portfolio_id"); err == nil {
		principal.PortfolioID = portfolioID
	}
	return principal, nil
}

func claimInt64(claims jwt.MapClaims, key string) (int64, error) {
	v, ok := claims[key]
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	f, ok := v.(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return int64(f), nil
}

// PrincipalFromContext retrieves the authenticated caller from the request
// context.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(models.Principal)
	return principal, ok
}
