package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"minimercado/backend/internal/config"
	"minimercado/backend/internal/httpapi"
	"minimercado/backend/internal/logger"
	"minimercado/backend/internal/metrics"
	"minimercado/backend/internal/report"
	"minimercado/backend/internal/service"
	"minimercado/backend/internal/store"
	filestore "minimercado/backend/internal/store/file"
	"minimercado/backend/internal/store/memory"
	pgstore "minimercado/backend/internal/store/postgres"
	redisstore "minimercado/backend/internal/store/redis"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	if envErr != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("storage unavailable")
	}
	closers := []func() error{closeRepo}

	creds, err := service.DefaultCredentials(cfg.SeedAdminPassword, cfg.SeedOperatorPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hash seed credentials")
	}

	rec := metrics.New()
	loc := cfg.Location()
	if loc.String() != cfg.StoreTimezone {
		log.Warn().Str("timezone", cfg.StoreTimezone).Msg("unknown STORE_TIMEZONE, bucketing days in UTC")
	}
	svc, err := service.New(ctx, repo, service.Options{
		Credentials: creds,
		StrictStock: cfg.StrictStock,
		Location:    loc,
		Logger:      log,
		Metrics:     rec,
		Receipt: report.Header{
			StoreName: cfg.StoreName,
			CNPJ:      cfg.StoreCNPJ,
			Address:   cfg.StoreAddress,
			Location:  loc,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("load store state")
	}

	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL())
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, log.With().Str("component", "http").Logger(), rec)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Address()).
			Str("storage", cfg.StorageDriver).
			Bool("strict_stock", cfg.StrictStock).
			Msg("mini-market backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("final flush failed")
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// openRepository builds the configured backend. A configured remote backend
// that cannot be reached is fatal; there is no silent in-memory fallback.
func openRepository(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.Repository, func() error, error) {
	switch cfg.StorageDriver {
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("repository: postgres")
		return pg, pg.Close, nil
	case "redis":
		rd, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("prefix", cfg.RedisPrefix).Msg("repository: redis")
		return rd, rd.Close, nil
	case "file":
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.DataDir).Msg("repository: file")
		return fs, fs.Close, nil
	case "memory":
		mem := memory.New()
		log.Warn().Msg("repository: in-memory, state is lost on exit")
		return mem, mem.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.IsProduction() && (cfg.SeedAdminPassword == "" || cfg.SeedOperatorPassword == "") {
		return fmt.Errorf("SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD must be set in production")
	}
	return nil
}
