package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

const defaultAssetCacheTTL = 10 * time.Minute

// AssetCache is a read-through redis cache for asset detail lookups. Asset
// records are immutable after creation, so entries never need invalidation;
// the TTL only bounds memory. Cache failures degrade to store reads.
type AssetCache struct {
	rdb    redis.UniversalClient
	store  asset.Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewAssetCache(rdb redis.UniversalClient, store asset.Store, logger *slog.Logger) *AssetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetCache{
		rdb:    rdb,
		store:  store,
		ttl:    defaultAssetCacheTTL,
		logger: logger,
	}
}

// Get returns the asset, filling the cache on a miss. Concurrent misses for
// the same id collapse into one store read.
func (c *AssetCache) Get(ctx context.Context, assetID id.AssetID) (*asset.Asset, error) {
	key := cacheKey(assetID)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var a asset.Asset
		if err := json.Unmarshal(cached, &a); err == nil {
			return &a, nil
		}
		// Undecodable entry; fall through to the store and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "asset cache read failed", slog.String("error", err.Error()))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		a, err := c.store.FindByID(ctx, assetID)
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(a); err == nil {
			if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
				c.logger.WarnContext(ctx, "asset cache write failed", slog.String("error", err.Error()))
			}
		}
		return a, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "asset not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load asset")
	}
	return v.(*asset.Asset), nil
}

func cacheKey(assetID id.AssetID) string {
	return "bit-holdings:asset:" + strconv.FormatUint(uint64(assetID), 10)
}
