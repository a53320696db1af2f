// Package outbox drains committed event rows from the database to the event
// stream. Appends land in the `event_outbox` table inside the entry-point
// transaction; this package's worker claims pending rows and publishes them,
// marking each row only after the broker acknowledges it.
package outbox

import (
	"context"
	"strconv"
	"time"
)

// Row is one pending outbox entry.
type Row struct {
	ID      string
	TxID    uint64
	AssetID uint64
	Payload []byte
}

//go:generate mockgen -source=outbox.go -destination=mocks/mocks.go -package=mocks Source,Producer

// Source claims and settles pending outbox rows.
type Source interface {
	// Claim locks and returns up to limit pending rows in tx-id order.
	// Claimed rows stay invisible to other workers until settled or the
	// claim's transaction ends.
	Claim(ctx context.Context, limit int) ([]Row, error)

	// MarkPublished settles rows that reached the broker.
	MarkPublished(ctx context.Context, ids []string) error
}

// Producer publishes one payload to the stream.
type Producer interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker polls the source and relays rows to the producer.
type Worker struct {
	source   Source
	producer Producer
	interval time.Duration
	batch    int
}

// Option configures the Worker.
type Option func(*Worker)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithBatchSize overrides the per-poll row limit.
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batch = n }
}

func NewWorker(source Source, producer Producer, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		producer: producer,
		interval: time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled. Publish failures abort the
// current batch; unsettled rows are re-claimed on the next tick, so the
// stream is at-least-once and consumers must dedupe on tx id.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				return err
			}
		}
	}
}

// Drain relays one batch of pending rows. Exported so startup can flush the
// backlog before entering the poll loop.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		rows, err := w.source.Claim(ctx, w.batch)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		published := make([]string, 0, len(rows))
		for _, row := range rows {
			key := keyForRow(row)
			if err := w.producer.Publish(ctx, key, row.Payload); err != nil {
				// Settle what did reach the broker, then surface the error.
				if len(published) > 0 {
					if markErr := w.source.MarkPublished(ctx, published); markErr != nil {
						return markErr
					}
				}
				return err
			}
			published = append(published, row.ID)
		}
		if err := w.source.MarkPublished(ctx, published); err != nil {
			return err
		}
		if len(rows) < w.batch {
			return nil
		}
	}
}

func keyForRow(row Row) string {
	// Partition by asset so per-asset event order survives the stream.
	return "asset-" + strconv.FormatUint(row.AssetID, 10)
}
