package outbox

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSource reads the event_outbox table through a pgx pool. It runs each
// Claim/Mark pair in a single transaction so a crashed worker never strands
// half-settled rows.
type PgxSource struct {
	pool *pgxpool.Pool

	// claimTx holds the transaction opened by Claim until MarkPublished
	// settles it. The worker calls Claim and MarkPublished from one
	// goroutine, so no lock is needed.
	claimTx pgx.Tx
}

func NewPgxSource(pool *pgxpool.Pool) *PgxSource {
	return &PgxSource{pool: pool}
}

func (s *PgxSource) Claim(ctx context.Context, limit int) ([]Row, error) {
	if s.claimTx != nil {
		_ = s.claimTx.Rollback(ctx)
		s.claimTx = nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin outbox claim: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT o.id, o.tx_id, o.asset_id, o.payload
		FROM event_outbox o
		WHERE o.published_at IS NULL
		ORDER BY o.tx_id
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("claim outbox rows: %w", err)
	}

	claimed, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(&r.ID, &r.TxID, &r.AssetID, &r.Payload)
		return r, err
	})
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("scan outbox rows: %w", err)
	}

	if len(claimed) == 0 {
		_ = tx.Rollback(ctx)
		return nil, nil
	}

	s.claimTx = tx
	return claimed, nil
}

func (s *PgxSource) MarkPublished(ctx context.Context, ids []string) error {
	if s.claimTx == nil {
		return fmt.Errorf("mark published: no claim in progress")
	}
	tx := s.claimTx
	s.claimTx = nil

	if len(ids) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE event_outbox
			SET published_at = now()
			WHERE id = ANY($1)`, ids); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("mark outbox rows published: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit outbox claim: %w", err)
	}
	return nil
}

// Close releases any claim left open by an aborted batch.
func (s *PgxSource) Close(ctx context.Context) {
	if s.claimTx != nil {
		_ = s.claimTx.Rollback(ctx)
		s.claimTx = nil
	}
}
