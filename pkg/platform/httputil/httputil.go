// Package httputil centralizes JSON encoding and error translation for the
// HTTP facade so handlers stay thin.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies; protocol payloads are tiny.
const maxBodyBytes = 1 << 16

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the JSON error envelope. Internal
// errors omit the description so infrastructure details never leak to
// callers.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != derrors.CodeInternal {
		var e *derrors.Error
		if errors.As(err, &e) && e.Message != "" {
			body["error_description"] = e.Message
		}
	}
	WriteJSON(w, derrors.ToHTTPStatus(code), body)
}

// DecodeAndPrepare decodes the request body into T, rejecting unknown fields
// and oversized payloads. On failure it writes the error response and
// returns ok = false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req T
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, derrors.New(derrors.CodeInvalidParameters, "invalid request body"))
		return nil, false
	}
	return &req, true
}
