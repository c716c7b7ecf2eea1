package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plexi/internal/config"
	cryptoinfra "plexi/internal/infra/crypto"
	"plexi/internal/infra/digestcache"
	"plexi/internal/infra/historydb"
	httpinfra "plexi/internal/infra/http"
	"plexi/internal/infra/policy"
	"plexi/internal/infra/proof"
	"plexi/internal/infra/transport"
	"plexi/internal/usecase"
	"plexi/pkg/attest"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if len(cfg.Namespaces) == 0 {
		logger.Fatal("PLEXI_NAMESPACES is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := transport.New(cfg.RemoteURL, logger)
	if err != nil {
		logger.Fatal("failed to init remote client", zap.Error(err))
	}

	store, err := historydb.NewStore(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("failed to init history store", zap.Error(err))
	}
	var history usecase.HistoryRepository
	var reader httpinfra.HistoryReader
	if store.Enabled() {
		repo := historydb.NewAuditRepository(store)
		history = repo
		reader = repo
	} else {
		logger.Info("POSTGRES_DSN is empty, audit history disabled")
	}

	var digests usecase.DigestStore
	if cfg.RedisAddr != "" {
		digests, err = digestcache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 30*24*time.Hour)
		if err != nil {
			logger.Fatal("failed to init redis digest store", zap.Error(err))
		}
	} else {
		logger.Info("REDIS_ADDR is empty, using in-memory digest store")
		digests = digestcache.NewMemoryStore()
	}

	var alerts usecase.AlertPolicy
	if cfg.PolicyBundlePath != "" {
		engine, err := policy.NewEngineFromBundlePath(ctx, cfg.PolicyBundlePath)
		if err != nil {
			logger.Fatal("failed to load policy bundle", zap.Error(err))
		}
		alerts = engine
	}

	audit := &usecase.AuditEpoch{
		Transport: client,
		Crypto:    cryptoinfra.NewService(),
		Proofs:    proof.NewVerifier(nil),
	}
	watcher := usecase.NewWatcher(audit, digests, history, alerts, logger, cfg.Interval())
	if cfg.VerifyingKeyHex != "" {
		key, err := attest.ParseEd25519PublicKeyHex(cfg.VerifyingKeyHex)
		if err != nil {
			logger.Fatal("invalid PLEXI_VERIFYING_KEY_HEX", zap.Error(err))
		}
		watcher.VerifyingKey = key
	}

	srv := httpinfra.NewServer(cfg.HTTPAddr, watcher, reader, logger)
	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx) }()
	go func() { errCh <- watcher.Run(ctx, cfg.Namespaces) }()

	logger.Info("plexid started",
		zap.String("remote", cfg.RemoteURL),
		zap.Strings("namespaces", cfg.Namespaces),
		zap.Duration("interval", cfg.Interval()),
		zap.String("addr", cfg.HTTPAddr))

	err = <-errCh
	stop()
	if err != nil && ctx.Err() == nil {
		logger.Fatal("plexid exited", zap.Error(err))
	}
	logger.Info("plexid stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
