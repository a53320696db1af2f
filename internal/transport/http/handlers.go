package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/httputil"
	"github.com/grace-umanah/bit-holdings/pkg/requestcontext"
)

type tokenizeRequest struct {
	TotalUnits     uint64 `json:"total_units"`
	TradeableUnits uint64 `json:"tradeable_units"`
	MetadataHash   string `json:"metadata_hash"`
}

type transferRequest struct {
	Recipient string `json:"recipient"`
	Units     uint64 `json:"units"`
}

type complianceRequest struct {
	Approved bool `json:"approved"`
}

// HandleTokenize handles POST /v1/assets.
func (h *Handler) HandleTokenize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[tokenizeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	metadata, err := id.ParseMetadataHash(req.MetadataHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	assetID, err := h.service.TokenizeAsset(ctx, req.TotalUnits, req.TradeableUnits, metadata)
	if err != nil {
		h.logger.WarnContext(ctx, "tokenization rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]uint64{"asset_id": uint64(assetID)})
}

// HandleTransfer handles POST /v1/assets/{assetID}/transfers.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[transferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	recipient, err := id.ParseParticipant(req.Recipient)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	done, err := h.service.ExecuteOwnershipTransfer(ctx, assetID, recipient, req.Units)
	if err != nil {
		h.logger.WarnContext(ctx, "transfer rejected",
			"request_id", requestID,
			"asset_id", assetID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": done})
}

// HandleComplianceUpdate handles PUT /v1/assets/{assetID}/compliance/{participant}.
func (h *Handler) HandleComplianceUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	participant, err := id.ParseParticipant(chi.URLParam(r, "participant"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[complianceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	approved, err := h.service.UpdateComplianceStatus(ctx, assetID, participant, req.Approved)
	if err != nil {
		h.logger.WarnContext(ctx, "compliance update rejected",
			"request_id", requestID,
			"asset_id", assetID.String(),
			"participant", participant.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"approved": approved})
}

// HandleAssetDetails handles GET /v1/assets/{assetID}.
func (h *Handler) HandleAssetDetails(w http.ResponseWriter, r *http.Request) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.service.AssetDetails(r.Context(), assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleAssetHoldings handles GET /v1/assets/{assetID}/holdings. The
// positions come from one consistent read, so their units always sum to the
// asset's total supply.
func (h *Handler) HandleAssetHoldings(w http.ResponseWriter, r *http.Request) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	positions, err := h.service.AssetHoldings(r.Context(), assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"holdings": positions})
}

// HandleOwnershipPosition handles GET /v1/assets/{assetID}/holdings/{participant}.
func (h *Handler) HandleOwnershipPosition(w http.ResponseWriter, r *http.Request) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	holder, err := id.ParseParticipant(chi.URLParam(r, "participant"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	units, err := h.service.OwnershipPosition(r.Context(), assetID, holder)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"units": units})
}

// HandleComplianceStatus handles GET /v1/assets/{assetID}/compliance/{participant}.
// A pair never written returns 404; callers must treat that as non-compliant.
func (h *Handler) HandleComplianceStatus(w http.ResponseWriter, r *http.Request) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	participant, err := id.ParseParticipant(chi.URLParam(r, "participant"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.service.ComplianceStatus(r.Context(), assetID, participant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleTransactionRecord handles GET /v1/transactions/{txID}.
func (h *Handler) HandleTransactionRecord(w http.ResponseWriter, r *http.Request) {
	txID, err := id.ParseTxID(chi.URLParam(r, "txID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	e, err := h.service.TransactionRecord(r.Context(), txID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

// HandleStatistics handles GET /v1/statistics.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ProtocolStatistics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
