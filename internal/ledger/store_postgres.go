package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
)

// PostgresStore persists ownership positions in the `holdings` table keyed by
// (asset_id, holder). Zero-unit rows are deleted rather than kept, matching
// the absent-means-zero semantics of the ledger.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Units(ctx context.Context, assetID id.AssetID, holder id.Participant) (uint64, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT units FROM holdings WHERE asset_id = $1 AND holder = $2`,
		uint64(assetID), holder.String())

	var units uint64
	err := row.Scan(&units)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read position: %w", err)
	}
	return units, nil
}

func (s *PostgresStore) Credit(ctx context.Context, assetID id.AssetID, holder id.Participant, units uint64) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO holdings (asset_id, holder, units) VALUES ($1, $2, $3)
		 ON CONFLICT (asset_id, holder) DO UPDATE SET units = holdings.units + EXCLUDED.units`,
		uint64(assetID), holder.String(), units)
	if err != nil {
		return fmt.Errorf("credit position: %w", err)
	}
	return nil
}

func (s *PostgresStore) Debit(ctx context.Context, assetID id.AssetID, holder id.Participant, units uint64) error {
	q := s.q(ctx)

	res, err := q.ExecContext(ctx,
		`UPDATE holdings SET units = units - $3
		 WHERE asset_id = $1 AND holder = $2 AND units >= $3`,
		uint64(assetID), holder.String(), units)
	if err != nil {
		return fmt.Errorf("debit position: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sentinel.ErrInvalidState
	}

	// Zero positions are logically absent.
	if _, err := q.ExecContext(ctx,
		`DELETE FROM holdings WHERE asset_id = $1 AND holder = $2 AND units = 0`,
		uint64(assetID), holder.String()); err != nil {
		return fmt.Errorf("prune empty position: %w", err)
	}
	return nil
}

func (s *PostgresStore) Holdings(ctx context.Context, assetID id.AssetID) ([]Position, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT asset_id, holder, units FROM holdings WHERE asset_id = $1`,
		uint64(assetID))
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []Position
	for rows.Next() {
		var (
			p      Position
			rawID  uint64
			holder string
		)
		if err := rows.Scan(&rawID, &holder, &p.Units); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		p.AssetID = id.AssetID(rawID)
		p.Holder = id.Participant(holder)
		holdings = append(holdings, p)
	}
	return holdings, rows.Err()
}
