package protocol

import (
	"context"
	"errors"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	"github.com/grace-umanah/bit-holdings/internal/compliance"
	"github.com/grace-umanah/bit-holdings/internal/events"
	"github.com/grace-umanah/bit-holdings/internal/ledger"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

// Statistics is the global read over the two counters.
type Statistics struct {
	TotalAssets       uint64 `json:"total_assets"`
	TotalTransactions uint64 `json:"total_transactions"`
}

// Queries are pure reads. Each runs inside the StoreTx read boundary, so a
// query never overlaps an in-flight transition and conservation holds at
// every observable point.

// AssetDetails returns the asset record, or CodeNotFound when the id was
// never assigned. Served from the read-through cache when one is configured;
// asset records are immutable after creation, so cached copies never go
// stale.
func (s *Service) AssetDetails(ctx context.Context, assetID id.AssetID) (*asset.Asset, error) {
	if s.cache != nil {
		return s.cache.Get(ctx, assetID)
	}
	var a *asset.Asset
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		var err error
		a, err = s.stores.Assets.FindByID(txCtx, assetID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "asset not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load asset")
	}
	return a, nil
}

// OwnershipPosition returns the holder's unit balance for the asset, zero
// when no position exists.
func (s *Service) OwnershipPosition(ctx context.Context, assetID id.AssetID, holder id.Participant) (uint64, error) {
	var units uint64
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		var err error
		units, err = s.stores.Holdings.Units(txCtx, assetID, holder)
		return err
	})
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to load ownership position")
	}
	return units, nil
}

// AssetHoldings lists every ownership position for the asset in one
// consistent view. The read boundary guarantees the returned positions sum
// to the asset's TotalUnits even while transfers are executing.
func (s *Service) AssetHoldings(ctx context.Context, assetID id.AssetID) ([]ledger.Position, error) {
	var positions []ledger.Position
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		if _, err := s.stores.Assets.FindByID(txCtx, assetID); err != nil {
			return err
		}
		var err error
		positions, err = s.stores.Holdings.Holdings(txCtx, assetID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "asset not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list holdings")
	}
	return positions, nil
}

// ComplianceStatus returns the record for (asset, participant), or
// CodeNotFound when none was ever written. Callers must treat not-found as
// non-compliant.
func (s *Service) ComplianceStatus(ctx context.Context, assetID id.AssetID, participant id.Participant) (*compliance.Record, error) {
	var record *compliance.Record
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.stores.Compliance.Get(txCtx, assetID, participant)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "no compliance record for participant")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load compliance record")
	}
	return record, nil
}

// TransactionRecord returns the event with the given transaction id, or
// CodeNotFound when the id is out of range.
func (s *Service) TransactionRecord(ctx context.Context, txID id.TxID) (*events.Event, error) {
	var e *events.Event
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		var err error
		e, err = s.stores.Events.FindByTxID(txCtx, txID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "transaction not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load transaction")
	}
	return e, nil
}

// ProtocolStatistics returns the total number of registered assets and
// accepted transactions. Reading both counters inside one read boundary
// keeps the pair mutually consistent.
func (s *Service) ProtocolStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		totalAssets, err := s.stores.Assets.Count(txCtx)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to count assets")
		}
		lastTx, err := s.stores.Events.LastTxID(txCtx)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to read transaction nonce")
		}
		stats = Statistics{
			TotalAssets:       totalAssets,
			TotalTransactions: uint64(lastTx),
		}
		return nil
	})
	if err != nil {
		return Statistics{}, err
	}
	return stats, nil
}
