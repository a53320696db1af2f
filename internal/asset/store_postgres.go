package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
)

// PostgresStore persists assets in the `assets` table and the id counter in
// the shared `counters` table (name = 'asset'). Entry points run inside one
// SQL transaction, so NextID's FOR UPDATE row lock also serializes writers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) NextID(ctx context.Context) (id.AssetID, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT next_value FROM counters WHERE name = 'asset' FOR UPDATE`)
	var next uint64
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("read asset counter: %w", err)
	}
	return id.AssetID(next), nil
}

func (s *PostgresStore) Insert(ctx context.Context, a *Asset) error {
	q := s.q(ctx)

	res, err := q.ExecContext(ctx,
		`UPDATE counters SET next_value = next_value + 1 WHERE name = 'asset' AND next_value = $1`,
		uint64(a.ID))
	if err != nil {
		return fmt.Errorf("advance asset counter: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sentinel.ErrConflict
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO assets (id, primary_owner, total_units, tradeable_units, metadata_hash, transfer_enabled, creation_height)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uint64(a.ID), a.PrimaryOwner.String(), a.TotalUnits, a.TradeableUnits,
		a.MetadataHash.String(), a.TransferEnabled, a.CreationHeight)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, assetID id.AssetID) (*Asset, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, primary_owner, total_units, tradeable_units, metadata_hash, transfer_enabled, creation_height
		 FROM assets WHERE id = $1`, uint64(assetID))

	var (
		a     Asset
		rawID uint64
		owner string
		meta  string
	)
	err := row.Scan(&rawID, &owner, &a.TotalUnits, &a.TradeableUnits, &meta, &a.TransferEnabled, &a.CreationHeight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}
	a.ID = id.AssetID(rawID)
	a.PrimaryOwner = id.Participant(owner)
	a.MetadataHash = id.MetadataHash(meta)
	return &a, nil
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT next_value - 1 FROM counters WHERE name = 'asset'`)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("read asset count: %w", err)
	}
	return count, nil
}
