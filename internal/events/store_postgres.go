package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
)

// PostgresStore persists events in the `events` table and mirrors each append
// into the `event_outbox` table in the same transaction (transactional outbox
// pattern). The outbox worker drains pending rows to the stream; the events
// table remains the source of truth for queries.
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

func (s *PostgresStore) Append(ctx context.Context, e Event) (Event, error) {
	q := s.q(ctx)

	// Lock the nonce row; the FOR UPDATE serializes appends and keeps ids
	// gapless even if the surrounding transaction later aborts (an aborted
	// transaction rolls the counter back with everything else).
	row := q.QueryRowContext(ctx,
		`UPDATE counters SET next_value = next_value + 1 WHERE name = 'transaction'
		 RETURNING next_value - 1`)
	var next uint64
	if err := row.Scan(&next); err != nil {
		return Event{}, fmt.Errorf("advance transaction nonce: %w", err)
	}

	prevHash := GenesisHash
	if next > 1 {
		row := q.QueryRowContext(ctx, `SELECT hash FROM events WHERE tx_id = $1`, next-1)
		if err := row.Scan(&prevHash); err != nil {
			return Event{}, fmt.Errorf("read chain head: %w", err)
		}
	}

	e.TxID = id.TxID(next)
	sealed := seal(prevHash, e)

	if _, err := q.ExecContext(ctx,
		`INSERT INTO events (tx_id, action, asset_id, party, height, prev_hash, hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uint64(sealed.TxID), sealed.Action.String(), uint64(sealed.AssetID),
		sealed.Party.String(), sealed.Height, sealed.PrevHash, sealed.Hash); err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}

	payload, err := MarshalStreamPayload(sealed)
	if err != nil {
		return Event{}, fmt.Errorf("encode outbox payload: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO event_outbox (id, tx_id, asset_id, payload) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), uint64(sealed.TxID), uint64(sealed.AssetID), payload); err != nil {
		return Event{}, fmt.Errorf("insert outbox row: %w", err)
	}
	return sealed, nil
}

func (s *PostgresStore) FindByTxID(ctx context.Context, txID id.TxID) (*Event, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT tx_id, action, asset_id, party, height, prev_hash, hash
		 FROM events WHERE tx_id = $1`, uint64(txID))

	var (
		e       Event
		rawTx   uint64
		action  string
		rawID   uint64
		party   string
	)
	err := row.Scan(&rawTx, &action, &rawID, &party, &e.Height, &e.PrevHash, &e.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	e.TxID = id.TxID(rawTx)
	e.Action = id.Action(action)
	e.AssetID = id.AssetID(rawID)
	e.Party = id.Participant(party)
	return &e, nil
}

func (s *PostgresStore) LastTxID(ctx context.Context) (id.TxID, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT next_value - 1 FROM counters WHERE name = 'transaction'`)
	var last uint64
	if err := row.Scan(&last); err != nil {
		return 0, fmt.Errorf("read transaction nonce: %w", err)
	}
	return id.TxID(last), nil
}
