//go:build integration

package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/grace-umanah/bit-holdings/internal/events"
	platformpostgres "github.com/grace-umanah/bit-holdings/internal/platform/postgres"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
	"github.com/grace-umanah/bit-holdings/pkg/testutil/containers"
)

type EventsPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *events.PostgresStore
}

func TestEventsPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(EventsPostgresSuite))
}

func (s *EventsPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(platformpostgres.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = events.NewPostgres(s.postgres.DB)
}

func (s *EventsPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "events", "event_outbox"))
	s.Require().NoError(s.postgres.ResetCounters(ctx))
}

func (s *EventsPostgresSuite) inTx(fn func(ctx context.Context) error) error {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		s.Require().NoError(tx.Rollback())
		return err
	}
	return tx.Commit()
}

func (s *EventsPostgresSuite) append(action id.Action, assetID uint64, party string, height uint64) events.Event {
	var sealed events.Event
	err := s.inTx(func(ctx context.Context) error {
		var err error
		sealed, err = s.store.Append(ctx, events.Event{
			Action:  action,
			AssetID: id.AssetID(assetID),
			Party:   id.Participant(party),
			Height:  height,
		})
		return err
	})
	s.Require().NoError(err)
	return sealed
}

func (s *EventsPostgresSuite) TestAppendBuildsGaplessChain() {
	first := s.append(id.ActionAssetTokenized, 1, "issuer-1", 1)
	second := s.append(id.ActionOwnershipTransferred, 1, "issuer-1", 2)
	third := s.append(id.ActionComplianceUpdated, 1, "alice", 3)

	s.Equal(id.TxID(1), first.TxID)
	s.Equal(id.TxID(2), second.TxID)
	s.Equal(id.TxID(3), third.TxID)
	s.Equal(events.GenesisHash, first.PrevHash)
	s.Equal(first.Hash, second.PrevHash)
	s.Equal(second.Hash, third.PrevHash)

	s.Require().NoError(events.VerifyChain([]events.Event{first, second, third}))

	last, err := s.store.LastTxID(context.Background())
	s.Require().NoError(err)
	s.Equal(id.TxID(3), last)
}

func (s *EventsPostgresSuite) TestFindByTxID() {
	sealed := s.append(id.ActionAssetTokenized, 7, "issuer-1", 1)

	got, err := s.store.FindByTxID(context.Background(), sealed.TxID)
	s.Require().NoError(err)
	s.Equal(&sealed, got)

	_, err = s.store.FindByTxID(context.Background(), 99)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EventsPostgresSuite) TestRollbackDoesNotConsumeTxID() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, tx)

	sealed, err := s.store.Append(txCtx, events.Event{
		Action: id.ActionAssetTokenized, AssetID: 1, Party: "issuer-1", Height: 1,
	})
	s.Require().NoError(err)
	s.Equal(id.TxID(1), sealed.TxID)
	s.Require().NoError(tx.Rollback())

	// The aborted append rolls the counter back with everything else.
	replayed := s.append(id.ActionAssetTokenized, 1, "issuer-1", 1)
	s.Equal(id.TxID(1), replayed.TxID)

	last, err := s.store.LastTxID(context.Background())
	s.Require().NoError(err)
	s.Equal(id.TxID(1), last)
}

func (s *EventsPostgresSuite) TestAppendMirrorsIntoOutbox() {
	sealed := s.append(id.ActionAssetTokenized, 4, "issuer-1", 1)

	var (
		txID    uint64
		assetID uint64
		payload []byte
	)
	row := s.postgres.DB.QueryRowContext(context.Background(),
		`SELECT tx_id, asset_id, payload FROM event_outbox WHERE published_at IS NULL`)
	s.Require().NoError(row.Scan(&txID, &assetID, &payload))
	s.Equal(uint64(sealed.TxID), txID)
	s.Equal(uint64(4), assetID)

	want, err := events.MarshalStreamPayload(sealed)
	s.Require().NoError(err)
	s.JSONEq(string(want), string(payload))
}
