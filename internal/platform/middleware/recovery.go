package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
	"github.com/grace-umanah/bit-holdings/pkg/platform/httputil"
	"github.com/grace-umanah/bit-holdings/pkg/requestcontext"
)

// Recovery converts handler panics into 500 responses instead of tearing
// down the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "handler panic",
						"request_id", requestcontext.RequestID(ctx),
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, derrors.New(derrors.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
