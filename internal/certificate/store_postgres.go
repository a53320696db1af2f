package certificate

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

// PostgresStore persists certificate bindings in the `certificates` table.
// The primary key on asset_id makes duplicate minting a unique violation.
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

func (s *PostgresStore) Holder(ctx context.Context, assetID id.AssetID) (id.Participant, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT holder FROM certificates WHERE asset_id = $1`, uint64(assetID))

	var holder string
	err := row.Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read certificate: %w", err)
	}
	return id.Participant(holder), nil
}

func (s *PostgresStore) Mint(ctx context.Context, assetID id.AssetID, holder id.Participant) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO certificates (asset_id, holder) VALUES ($1, $2)`,
		uint64(assetID), holder.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("mint certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Transfer(ctx context.Context, assetID id.AssetID, from, to id.Participant) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE certificates SET holder = $3 WHERE asset_id = $1 AND holder = $2`,
		uint64(assetID), from.String(), to.String())
	if err != nil {
		return fmt.Errorf("transfer certificate: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 0 {
		return nil
	}

	// Distinguish "never minted" from "wrong bearer".
	if _, err := s.Holder(ctx, assetID); errors.Is(err, sentinel.ErrNotFound) {
		return sentinel.ErrNotFound
	} else if err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}
