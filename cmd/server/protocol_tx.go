package main

import (
	"context"
	"database/sql"
	"time"

	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
)

const defaultProtocolTxTimeout = 5 * time.Second

// protocolPostgresTx runs each state transition in one SQL transaction. The
// stores pick the transaction up from the context, so a failure anywhere in
// the entry point rolls back every mutation including the counters, keeping
// asset and transaction ids gapless.
type protocolPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newProtocolPostgresTx(db *sql.DB) *protocolPostgresTx {
	return &protocolPostgresTx{db: db}
}

func (t *protocolPostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return derrors.Wrap(err, derrors.CodeTimeout, "transition aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultProtocolTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}

// RunInReadTx runs queries in a read-only transaction so multi-store reads
// see one snapshot and never observe a transition's partial writes.
func (t *protocolPostgresTx) RunInReadTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return derrors.Wrap(err, derrors.CodeTimeout, "query aborted: context cancelled")
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
