package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/grace-umanah/bit-holdings/pkg/requestcontext"
)

// requestIDHeader propagates correlation ids across services.
const requestIDHeader = "X-Request-ID"

// heightHeader carries the execution height assigned by the embedding
// ordering layer. Absent for direct API calls; the protocol core then
// derives the height from the transaction nonce.
const heightHeader = "X-Execution-Height"

// RequestID assigns each request a correlation id (honoring an inbound one),
// pins the request time, and lifts the ordering layer's execution height
// into the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		if h := r.Header.Get(heightHeader); h != "" {
			if height, err := strconv.ParseUint(h, 10, 64); err == nil && height > 0 {
				ctx = requestcontext.WithHeight(ctx, height)
			}
		}

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
