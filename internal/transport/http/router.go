// Package httptransport is the thin HTTP facade over the protocol service.
// Handlers parse and translate; all semantics live in internal/protocol.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	"github.com/grace-umanah/bit-holdings/internal/compliance"
	"github.com/grace-umanah/bit-holdings/internal/events"
	"github.com/grace-umanah/bit-holdings/internal/ledger"
	"github.com/grace-umanah/bit-holdings/internal/platform/middleware"
	"github.com/grace-umanah/bit-holdings/internal/protocol"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Service is the protocol surface the facade exposes.
type Service interface {
	TokenizeAsset(ctx context.Context, totalUnits, tradeableUnits uint64, metadataHash id.MetadataHash) (id.AssetID, error)
	ExecuteOwnershipTransfer(ctx context.Context, assetID id.AssetID, recipient id.Participant, units uint64) (bool, error)
	UpdateComplianceStatus(ctx context.Context, assetID id.AssetID, participant id.Participant, approved bool) (bool, error)

	AssetDetails(ctx context.Context, assetID id.AssetID) (*asset.Asset, error)
	OwnershipPosition(ctx context.Context, assetID id.AssetID, holder id.Participant) (uint64, error)
	AssetHoldings(ctx context.Context, assetID id.AssetID) ([]ledger.Position, error)
	ComplianceStatus(ctx context.Context, assetID id.AssetID, participant id.Participant) (*compliance.Record, error)
	TransactionRecord(ctx context.Context, txID id.TxID) (*events.Event, error)
	ProtocolStatistics(ctx context.Context) (protocol.Statistics, error)
}

// Handler wires ledger endpoints to the protocol service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the HTTP handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// NewRouter builds the full route tree. Every ledger route requires a valid
// bearer token; only health and metrics are open.
func NewRouter(h *Handler, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		r.Post("/v1/assets", h.HandleTokenize)
		r.Get("/v1/assets/{assetID}", h.HandleAssetDetails)
		r.Post("/v1/assets/{assetID}/transfers", h.HandleTransfer)
		r.Get("/v1/assets/{assetID}/holdings", h.HandleAssetHoldings)
		r.Get("/v1/assets/{assetID}/holdings/{participant}", h.HandleOwnershipPosition)
		r.Put("/v1/assets/{assetID}/compliance/{participant}", h.HandleComplianceUpdate)
		r.Get("/v1/assets/{assetID}/compliance/{participant}", h.HandleComplianceStatus)
		r.Get("/v1/transactions/{txID}", h.HandleTransactionRecord)
		r.Get("/v1/statistics", h.HandleStatistics)
	})

	return r
}
