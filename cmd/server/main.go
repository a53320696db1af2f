package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/grace-umanah/bit-holdings/internal/asset"
	"github.com/grace-umanah/bit-holdings/internal/certificate"
	"github.com/grace-umanah/bit-holdings/internal/compliance"
	"github.com/grace-umanah/bit-holdings/internal/events"
	"github.com/grace-umanah/bit-holdings/internal/events/outbox"
	"github.com/grace-umanah/bit-holdings/internal/events/stream"
	jwttoken "github.com/grace-umanah/bit-holdings/internal/jwt_token"
	"github.com/grace-umanah/bit-holdings/internal/ledger"
	"github.com/grace-umanah/bit-holdings/internal/platform/config"
	"github.com/grace-umanah/bit-holdings/internal/platform/httpserver"
	"github.com/grace-umanah/bit-holdings/internal/platform/logger"
	"github.com/grace-umanah/bit-holdings/internal/platform/metrics"
	"github.com/grace-umanah/bit-holdings/internal/platform/postgres"
	platformredis "github.com/grace-umanah/bit-holdings/internal/platform/redis"
	"github.com/grace-umanah/bit-holdings/internal/protocol"
	httptransport "github.com/grace-umanah/bit-holdings/internal/transport/http"
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// main wires dependencies and keeps the server lifecycle small. All ledger
// semantics live in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	owner, err := id.ParseParticipant(cfg.OwnerPrincipal)
	if err != nil {
		return err
	}

	opts := []protocol.Option{
		protocol.WithLogger(log),
		protocol.WithMetrics(metrics.New()),
	}
	if cfg.ContractPrincipal != "" {
		contract, err := id.ParseParticipant(cfg.ContractPrincipal)
		if err != nil {
			return err
		}
		opts = append(opts, protocol.WithContractIdentity(contract))
	}

	var stores protocol.Stores
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		stores = protocol.Stores{
			Assets:       asset.NewPostgres(db),
			Holdings:     ledger.NewPostgres(db),
			Compliance:   compliance.NewPostgres(db),
			Certificates: certificate.NewPostgres(db),
			Events:       events.NewPostgres(db),
		}
		opts = append(opts, protocol.WithStoreTx(newProtocolPostgresTx(db)))
		log.Info("using postgres persistence")
	} else {
		stores = protocol.Stores{
			Assets:       asset.NewInMemoryStore(),
			Holdings:     ledger.NewInMemoryStore(),
			Compliance:   compliance.NewInMemoryStore(),
			Certificates: certificate.NewInMemoryStore(),
			Events:       events.NewInMemoryStore(),
		}
		log.Info("using in-memory persistence")
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, protocol.WithAssetCache(protocol.NewAssetCache(rdb, stores.Assets, log)))
		log.Info("asset cache enabled")
	}

	svc, err := protocol.New(stores, owner, opts...)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "bit-holdings", "bit-holdings-api")
	router := httptransport.NewRouter(httptransport.New(svc, log), jwtService, log)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting bit-holdings", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The outbox worker needs both a durable outbox and a broker to drain to.
	if cfg.PostgresDSN != "" && len(cfg.Kafka.Seeds) > 0 {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		publisher, err := stream.New(ctx, cfg.Kafka.Seeds, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()

		source := outbox.NewPgxSource(pool)
		worker := outbox.NewWorker(source, publisher)
		g.Go(func() error {
			log.Info("starting outbox worker", "topic", cfg.Kafka.Topic)
			defer source.Close(context.Background())
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
