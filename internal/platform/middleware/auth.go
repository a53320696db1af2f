package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/httputil"
	"github.com/grace-umanah/bit-holdings/pkg/requestcontext"
)

// TokenValidator resolves a bearer token to the participant principal it
// authenticates.
type TokenValidator interface {
	PrincipalFromToken(tokenString string) (id.Participant, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated principal into the context as the caller.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "missing or invalid Authorization header",
				})
				return
			}

			principal, err := validator.PrincipalFromToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "invalid or expired token",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, principal)))
		})
	}
}
