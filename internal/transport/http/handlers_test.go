package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	"github.com/grace-umanah/bit-holdings/internal/certificate"
	"github.com/grace-umanah/bit-holdings/internal/compliance"
	"github.com/grace-umanah/bit-holdings/internal/events"
	"github.com/grace-umanah/bit-holdings/internal/ledger"
	"github.com/grace-umanah/bit-holdings/internal/protocol"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

const (
	testOwner  = id.Participant("protocol-owner")
	testIssuer = id.Participant("issuer-1")
	testHolder = id.Participant("holder-1")
)

// staticValidator resolves tokens of the form "token-<principal>"; anything
// else is rejected. Stands in for the JWT service in router tests.
type staticValidator struct{}

func (staticValidator) PrincipalFromToken(token string) (id.Participant, error) {
	var p string
	if _, err := fmt.Sscanf(token, "token-%s", &p); err != nil {
		return "", fmt.Errorf("unknown token")
	}
	return id.ParseParticipant(p)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := protocol.New(protocol.Stores{
		Assets:       asset.NewInMemoryStore(),
		Holdings:     ledger.NewInMemoryStore(),
		Compliance:   compliance.NewInMemoryStore(),
		Certificates: certificate.NewInMemoryStore(),
		Events:       events.NewInMemoryStore(),
	}, testOwner, protocol.WithLogger(logger))
	require.NoError(t, err)

	return NewRouter(New(svc, logger), staticValidator{}, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, caller id.Participant, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, buf)
	if !caller.IsNil() {
		req.Header.Set("Authorization", "Bearer token-"+caller.String())
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/statistics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/statistics", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_HealthAndMetricsAreOpen(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleTokenize(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/assets", testIssuer, tokenizeRequest{
		TotalUnits:     1000,
		TradeableUnits: 1000,
		MetadataHash:   "valid metadata string",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, w)["asset_id"])

	t.Run("request id header is echoed", func(t *testing.T) {
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("invalid metadata maps to 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/assets", testIssuer, tokenizeRequest{
			TotalUnits:     10,
			TradeableUnits: 10,
			MetadataHash:   "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_parameters", decodeBody(t, w)["error"])
	})

	t.Run("zero units map to 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/assets", testIssuer, tokenizeRequest{
			MetadataHash: "valid metadata string",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransferAndQueries(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/assets", testIssuer, tokenizeRequest{
		TotalUnits:     1000,
		TradeableUnits: 1000,
		MetadataHash:   "valid metadata string",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("transfer to unapproved recipient maps to 403", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/assets/1/transfers", testIssuer, transferRequest{
			Recipient: testHolder.String(),
			Units:     100,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "compliance_violation", decodeBody(t, w)["error"])
	})

	t.Run("non-owner compliance update maps to 403", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/v1/assets/1/compliance/"+testHolder.String(), testIssuer, complianceRequest{Approved: true})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("approved transfer succeeds", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/v1/assets/1/compliance/"+testHolder.String(), testOwner, complianceRequest{Approved: true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, decodeBody(t, w)["approved"])

		w = doJSON(t, router, http.MethodPost, "/v1/assets/1/transfers", testIssuer, transferRequest{
			Recipient: testHolder.String(),
			Units:     400,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, decodeBody(t, w)["ok"])
	})

	t.Run("ownership positions reflect the transfer", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/assets/1/holdings/"+testHolder.String(), testIssuer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(400), decodeBody(t, w)["units"])
	})

	t.Run("holdings list sums to the full supply", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/assets/1/holdings", testIssuer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		holdings, ok := decodeBody(t, w)["holdings"].([]any)
		require.True(t, ok)
		require.Len(t, holdings, 2)
		var sum float64
		for _, h := range holdings {
			sum += h.(map[string]any)["units"].(float64)
		}
		assert.Equal(t, float64(1000), sum)
	})

	t.Run("asset details are served", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/assets/1", testIssuer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(1000), body["total_units"])
		assert.Equal(t, testIssuer.String(), body["primary_owner"])
	})

	t.Run("unknown asset maps to 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/assets/99", testIssuer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("transfer on unknown asset maps to 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/assets/99/transfers", testIssuer, transferRequest{
			Recipient: testHolder.String(),
			Units:     1,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "invalid_asset", decodeBody(t, w)["error"])
	})

	t.Run("overdraw maps to 422", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/assets/1/transfers", testIssuer, transferRequest{
			Recipient: testHolder.String(),
			Units:     100000,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("transaction records are queryable", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/transactions/1", testIssuer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ASSET_TOKENIZED", body["action"])
		assert.NotEmpty(t, body["hash"])
	})

	t.Run("statistics count assets and transactions", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/statistics", testIssuer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		// tokenize, approve, transfer = three accepted transitions.
		assert.Equal(t, float64(1), body["total_assets"])
		assert.Equal(t, float64(3), body["total_transactions"])
	})

	t.Run("malformed asset id maps to 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/assets/abc", testIssuer, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
