// @title       Agriconnect User Service API
// @version     1.0
// @description Accounts and profiles for farmers, labourers and administrators.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agriconnect/user-service/internal/api"
	"github.com/agriconnect/user-service/internal/api/handler"
	"github.com/agriconnect/user-service/internal/core/ports"
	"github.com/agriconnect/user-service/internal/core/service"
	"github.com/agriconnect/user-service/internal/infrastructure/config"
	"github.com/agriconnect/user-service/internal/infrastructure/db/memory"
	mongodb "github.com/agriconnect/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/agriconnect/user-service/internal/infrastructure/db/redis"
	"github.com/agriconnect/user-service/internal/infrastructure/security"
	"github.com/agriconnect/user-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "user-service"}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("user service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		repo   ports.AccountRepository
		cache  ports.AccountCache
		checks []handler.DependencyCheck
	)

	// --- Store ---
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()

		mongoRepo := mongodb.NewAccountRepository(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = mongoRepo
		checks = append(checks, handler.DependencyCheck{Name: "mongodb", Check: mongodb.Ping(db)})
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	case config.StoreMemory:
		repo = memory.NewAccountRepository()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	}

	// --- Cache ---
	if cfg.Cache.Enabled {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()

		cache = redisdb.NewAccountCache(client, cfg.Cache.TTL)
		checks = append(checks, handler.DependencyCheck{Name: "redis", Check: redisdb.Ping(client)})
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Cache.TTL).Msg("account cache enabled")
	}

	// --- Service & HTTP ---
	accounts := service.NewAccountService(repo, security.NewBcryptHasher(cfg.BcryptCost), cache, log)

	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Log:      log,
		Checks:   checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("user service starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
