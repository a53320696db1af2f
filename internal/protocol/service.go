// Package protocol implements the state-transition entry points of the
// registry: tokenize-asset, execute-ownership-transfer, and
// update-compliance-status. Each entry point runs strict check-then-mutate
// inside one StoreTx boundary so any precondition failure leaves state
// untouched, and appends exactly one event as its final step.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	"github.com/grace-umanah/bit-holdings/internal/certificate"
	"github.com/grace-umanah/bit-holdings/internal/compliance"
	"github.com/grace-umanah/bit-holdings/internal/events"
	"github.com/grace-umanah/bit-holdings/internal/ledger"
	"github.com/grace-umanah/bit-holdings/internal/platform/metrics"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	"github.com/grace-umanah/bit-holdings/pkg/requestcontext"
)

var tracer = otel.Tracer("bit-holdings/protocol")

// Stores bundles the five persistence interfaces one transition touches.
type Stores struct {
	Assets       asset.Store
	Holdings     ledger.Store
	Compliance   compliance.Store
	Certificates certificate.Store
	Events       events.Store
}

// Service orchestrates protocol state transitions and the query layer.
type Service struct {
	stores   Stores
	tx       StoreTx
	owner    id.Participant
	contract id.Participant
	cache    *AssetCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type serviceConfig struct {
	tx       StoreTx
	contract id.Participant
	cache    *AssetCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*serviceConfig)

// WithStoreTx overrides the transaction boundary. Used by the postgres
// wiring to run each transition in one SQL transaction.
func WithStoreTx(tx StoreTx) Option {
	return func(c *serviceConfig) { c.tx = tx }
}

// WithContractIdentity sets the service's own execution identity, which is
// never an eligible transfer recipient or compliance subject.
func WithContractIdentity(p id.Participant) Option {
	return func(c *serviceConfig) { c.contract = p }
}

// WithAssetCache enables the read-through cache for asset detail queries.
func WithAssetCache(cache *AssetCache) Option {
	return func(c *serviceConfig) { c.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// New builds the protocol service. The owner principal is the sole
// compliance authority, fixed at deployment.
func New(stores Stores, owner id.Participant, opts ...Option) (*Service, error) {
	if stores.Assets == nil || stores.Holdings == nil || stores.Compliance == nil ||
		stores.Certificates == nil || stores.Events == nil {
		return nil, fmt.Errorf("all stores are required")
	}
	if owner.IsNil() {
		return nil, fmt.Errorf("protocol owner principal is required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stores:   stores,
		tx:       tx,
		owner:    owner,
		contract: cfg.contract,
		cache:    cfg.cache,
		metrics:  cfg.metrics,
		logger:   logger,
	}, nil
}

// TokenizeAsset registers a new asset with the caller as primary owner: it
// allocates the next sequential asset id, seeds the caller's position with
// the full supply, mints the certificate to the caller, and appends an
// ASSET_TOKENIZED event. All-or-nothing.
func (s *Service) TokenizeAsset(ctx context.Context, totalUnits, tradeableUnits uint64, metadataHash id.MetadataHash) (id.AssetID, error) {
	ctx, span := tracer.Start(ctx, "protocol.TokenizeAsset")
	defer span.End()
	start := time.Now()

	var assetID id.AssetID
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		caller := requestcontext.Caller(txCtx)
		if caller.IsNil() {
			return derrors.New(derrors.CodeUnauthorized, "caller identity is required")
		}

		height, err := s.resolveHeight(txCtx)
		if err != nil {
			return err
		}
		a, err := asset.New(caller, totalUnits, tradeableUnits, metadataHash, height)
		if err != nil {
			return err
		}
		nextID, err := s.stores.Assets.NextID(txCtx)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to allocate asset id")
		}
		a.ID = nextID

		// Minting is checked before any mutation so a collision aborts the
		// whole operation with state untouched.
		if _, err := s.stores.Certificates.Holder(txCtx, nextID); err == nil {
			return derrors.New(derrors.CodeTransferRejected, "certificate already exists for new asset id")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to check certificate")
		}

		if err := s.stores.Assets.Insert(txCtx, a); err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to register asset")
		}
		if err := s.stores.Holdings.Credit(txCtx, nextID, caller, totalUnits); err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to initialize ownership position")
		}
		if err := s.stores.Certificates.Mint(txCtx, nextID, caller); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return derrors.New(derrors.CodeTransferRejected, "certificate mint failed")
			}
			return derrors.Wrap(err, derrors.CodeInternal, "failed to mint certificate")
		}
		if err := s.appendEvent(txCtx, id.ActionAssetTokenized, nextID, caller, height); err != nil {
			return err
		}
		assetID = nextID
		return nil
	})
	s.observe(string(id.ActionAssetTokenized), start, err)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "asset tokenized",
		slog.Uint64("asset_id", uint64(assetID)),
		slog.Uint64("total_units", totalUnits),
		slog.Uint64("tradeable_units", tradeableUnits),
	)
	return assetID, nil
}

// ExecuteOwnershipTransfer moves units from the caller to the recipient.
// Preconditions run in a fixed order and the first failure wins; no state
// changes until every check has passed. When the caller divests its entire
// position and is the certificate bearer, the certificate moves with the
// units.
func (s *Service) ExecuteOwnershipTransfer(ctx context.Context, assetID id.AssetID, recipient id.Participant, units uint64) (bool, error) {
	ctx, span := tracer.Start(ctx, "protocol.ExecuteOwnershipTransfer")
	defer span.End()
	start := time.Now()

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		caller := requestcontext.Caller(txCtx)
		if caller.IsNil() {
			return derrors.New(derrors.CodeUnauthorized, "caller identity is required")
		}
		if units == 0 {
			return derrors.New(derrors.CodeInvalidParameters, "transfer units must be greater than zero")
		}

		a, err := s.stores.Assets.FindByID(txCtx, assetID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return derrors.New(derrors.CodeInvalidAsset, "asset does not exist")
			}
			return derrors.Wrap(err, derrors.CodeInternal, "failed to load asset")
		}
		if err := s.requireEligibleParticipant(recipient); err != nil {
			return err
		}
		if !a.TransferEnabled {
			return derrors.New(derrors.CodeUnauthorized, "transfers are disabled for this asset")
		}
		if err := s.requireApproved(txCtx, assetID, recipient); err != nil {
			return err
		}

		balance, err := s.stores.Holdings.Units(txCtx, assetID, caller)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to load sender position")
		}
		if balance < units {
			return derrors.New(derrors.CodeInsufficientOwnership, "sender holds fewer units than requested")
		}

		// The certificate moves only when the sender divests its entire
		// position and is the current bearer. Resolve that before mutating
		// so the transfer step below cannot fail mid-flight.
		moveCertificate := false
		if balance == units {
			holder, err := s.stores.Certificates.Holder(txCtx, assetID)
			switch {
			case err == nil:
				moveCertificate = holder == caller
			case errors.Is(err, sentinel.ErrNotFound):
				// No certificate minted; nothing to move.
			default:
				return derrors.Wrap(err, derrors.CodeInternal, "failed to load certificate")
			}
		}

		height, err := s.resolveHeight(txCtx)
		if err != nil {
			return err
		}
		if err := s.stores.Holdings.Debit(txCtx, assetID, caller, units); err != nil {
			// A concurrent writer can shrink the position between the balance
			// check and the debit on the SQL path; that is still an
			// overdraw, not an infrastructure fault.
			if errors.Is(err, sentinel.ErrInvalidState) {
				return derrors.New(derrors.CodeInsufficientOwnership, "sender holds fewer units than requested")
			}
			return derrors.Wrap(err, derrors.CodeInternal, "failed to debit sender")
		}
		if err := s.stores.Holdings.Credit(txCtx, assetID, recipient, units); err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to credit recipient")
		}
		if moveCertificate {
			if err := s.stores.Certificates.Transfer(txCtx, assetID, caller, recipient); err != nil {
				return derrors.Wrap(err, derrors.CodeTransferRejected, "certificate transfer failed")
			}
		}
		return s.appendEvent(txCtx, id.ActionOwnershipTransferred, assetID, caller, height)
	})
	s.observe(string(id.ActionOwnershipTransferred), start, err)
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "ownership transferred",
		slog.Uint64("asset_id", uint64(assetID)),
		slog.String("recipient", recipient.String()),
		slog.Uint64("units", units),
	)
	return true, nil
}

// UpdateComplianceStatus upserts the approval record for (asset,
// participant). Only the protocol owner, the sole compliance authority, may
// call it; revocation is an unconditional overwrite with approved = false.
func (s *Service) UpdateComplianceStatus(ctx context.Context, assetID id.AssetID, participant id.Participant, approved bool) (bool, error) {
	ctx, span := tracer.Start(ctx, "protocol.UpdateComplianceStatus")
	defer span.End()
	start := time.Now()

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		caller := requestcontext.Caller(txCtx)
		if caller.IsNil() || caller != s.owner {
			return derrors.New(derrors.CodeUnauthorized, "only the protocol owner may update compliance")
		}

		if _, err := s.stores.Assets.FindByID(txCtx, assetID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return derrors.New(derrors.CodeInvalidParameters, "asset does not exist")
			}
			return derrors.Wrap(err, derrors.CodeInternal, "failed to load asset")
		}
		if err := s.requireEligibleParticipant(participant); err != nil {
			return err
		}

		height, err := s.resolveHeight(txCtx)
		if err != nil {
			return err
		}
		record := compliance.Record{
			AssetID:        assetID,
			Participant:    participant,
			Approved:       approved,
			VerifiedHeight: height,
			Authority:      caller,
		}
		if err := s.stores.Compliance.Upsert(txCtx, record); err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to write compliance record")
		}
		return s.appendEvent(txCtx, id.ActionComplianceUpdated, assetID, participant, height)
	})
	s.observe(string(id.ActionComplianceUpdated), start, err)
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "compliance updated",
		slog.Uint64("asset_id", uint64(assetID)),
		slog.String("participant", participant.String()),
		slog.Bool("approved", approved),
	)
	return approved, nil
}

// resolveHeight returns the execution height for the current transition:
// the height supplied by the embedding ordering layer, or the next
// transaction id when none was supplied.
func (s *Service) resolveHeight(ctx context.Context) (uint64, error) {
	if h := requestcontext.Height(ctx); h > 0 {
		return h, nil
	}
	last, err := s.stores.Events.LastTxID(ctx)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to resolve execution height")
	}
	return uint64(last) + 1, nil
}

func (s *Service) requireApproved(ctx context.Context, assetID id.AssetID, participant id.Participant) error {
	record, err := s.stores.Compliance.Get(ctx, assetID, participant)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Never-written pairs are denied by default.
			return derrors.New(derrors.CodeComplianceViolation, "recipient is not approved for this asset")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "failed to load compliance record")
	}
	if !record.Approved {
		return derrors.New(derrors.CodeComplianceViolation, "recipient approval has been revoked")
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, action id.Action, assetID id.AssetID, party id.Participant, height uint64) error {
	_, err := s.stores.Events.Append(ctx, events.Event{
		Action:  action,
		AssetID: assetID,
		Party:   party,
		Height:  height,
	})
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to append event")
	}
	return nil
}

func (s *Service) observe(action string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(action, start, err)
	}
}
