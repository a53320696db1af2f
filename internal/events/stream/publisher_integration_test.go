//go:build integration

package stream_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/grace-umanah/bit-holdings/internal/events/stream"
	"github.com/grace-umanah/bit-holdings/pkg/testutil/containers"
)

func TestPublisherRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redpanda := containers.NewRedpandaContainer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "bit-holdings.events.test"
	publisher, err := stream.New(ctx, redpanda.Seeds, topic, logger)
	require.NoError(t, err)
	defer publisher.Close()

	require.NoError(t, publisher.Publish(ctx, "asset-1", []byte(`{"tx_id":1}`)))
	require.NoError(t, publisher.Publish(ctx, "asset-1", []byte(`{"tx_id":2}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Seeds...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < 2 {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, fetches.Err())
		records = append(records, fetches.Records()...)
	}

	// Same key, same partition, so order is preserved.
	require.Equal(t, "asset-1", string(records[0].Key))
	require.JSONEq(t, `{"tx_id":1}`, string(records[0].Value))
	require.Equal(t, "asset-1", string(records[1].Key))
	require.JSONEq(t, `{"tx_id":2}`, string(records[1].Value))
}
