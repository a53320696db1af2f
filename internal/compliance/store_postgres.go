package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
)

// PostgresStore persists compliance records in the `compliance_records`
// table keyed by (asset_id, participant).
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

func (s *PostgresStore) Get(ctx context.Context, assetID id.AssetID, participant id.Participant) (*Record, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT asset_id, participant, approved, verified_height, authority
		 FROM compliance_records WHERE asset_id = $1 AND participant = $2`,
		uint64(assetID), participant.String())

	var (
		record     Record
		rawID      uint64
		partRaw    string
		authority  string
	)
	err := row.Scan(&rawID, &partRaw, &record.Approved, &record.VerifiedHeight, &authority)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read compliance record: %w", err)
	}
	record.AssetID = id.AssetID(rawID)
	record.Participant = id.Participant(partRaw)
	record.Authority = id.Participant(authority)
	return &record, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO compliance_records (asset_id, participant, approved, verified_height, authority)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (asset_id, participant) DO UPDATE
		 SET approved = EXCLUDED.approved,
		     verified_height = EXCLUDED.verified_height,
		     authority = EXCLUDED.authority`,
		uint64(record.AssetID), record.Participant.String(), record.Approved,
		record.VerifiedHeight, record.Authority.String())
	if err != nil {
		return fmt.Errorf("upsert compliance record: %w", err)
	}
	return nil
}
