package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"carebridge/internal/token"
	id "carebridge/pkg/domain"
	"carebridge/pkg/requestcontext"
)

// TokenValidator defines the interface for validating operator tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

// RequireOperator enforces a valid operator bearer token and places the
// operator id in the request context.
func RequireOperator(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			rawToken, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
					"client_ip", requestcontext.ClientIP(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(rawToken)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
					"client_ip", requestcontext.ClientIP(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			operatorID, err := id.ParseOperatorID(claims.OperatorID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed operator id",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithOperatorID(ctx, operatorID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
