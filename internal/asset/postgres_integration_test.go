//go:build integration

package asset_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	platformpostgres "github.com/grace-umanah/bit-holdings/internal/platform/postgres"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
	txcontext "github.com/grace-umanah/bit-holdings/pkg/platform/tx"
	"github.com/grace-umanah/bit-holdings/pkg/testutil/containers"
)

type AssetPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *asset.PostgresStore
}

func TestAssetPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AssetPostgresSuite))
}

func (s *AssetPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(platformpostgres.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = asset.NewPostgres(s.postgres.DB)
}

func (s *AssetPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "assets"))
	s.Require().NoError(s.postgres.ResetCounters(ctx))
}

// inTx runs fn inside a transaction the way the server's StoreTx does, so
// NextID's row lock and the counter advance behave as they do in production.
func (s *AssetPostgresSuite) inTx(fn func(ctx context.Context) error) error {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		s.Require().NoError(tx.Rollback())
		return err
	}
	return tx.Commit()
}

func (s *AssetPostgresSuite) newAsset(assetID uint64) *asset.Asset {
	a, err := asset.New("issuer-1", 1000, 600, "metadata-hash-value", 1)
	s.Require().NoError(err)
	a.ID = id.AssetID(assetID)
	return a
}

func (s *AssetPostgresSuite) TestInsertAssignsSequentialIDs() {
	for want := uint64(1); want <= 3; want++ {
		err := s.inTx(func(ctx context.Context) error {
			next, err := s.store.NextID(ctx)
			s.Require().NoError(err)
			s.Equal(id.AssetID(want), next)
			return s.store.Insert(ctx, s.newAsset(want))
		})
		s.Require().NoError(err)
	}

	count, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(3), count)
}

func (s *AssetPostgresSuite) TestInsertRejectsStaleID() {
	err := s.inTx(func(ctx context.Context) error {
		return s.store.Insert(ctx, s.newAsset(5))
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// The failed insert must not consume an id.
	count, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *AssetPostgresSuite) TestRollbackDoesNotConsumeID() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, tx)

	s.Require().NoError(s.store.Insert(txCtx, s.newAsset(1)))
	s.Require().NoError(tx.Rollback())

	err = s.inTx(func(ctx context.Context) error {
		next, err := s.store.NextID(ctx)
		s.Require().NoError(err)
		s.Equal(id.AssetID(1), next)
		return s.store.Insert(ctx, s.newAsset(1))
	})
	s.Require().NoError(err)
}

func (s *AssetPostgresSuite) TestFindByIDRoundTrip() {
	want := s.newAsset(1)
	err := s.inTx(func(ctx context.Context) error {
		return s.store.Insert(ctx, want)
	})
	s.Require().NoError(err)

	got, err := s.store.FindByID(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(want, got)

	_, err = s.store.FindByID(context.Background(), 99)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
