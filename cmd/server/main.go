package main // Entry point package

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env loading for local runs
	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"

	"github.com/iliyamo/gear-reservation/internal/booking"
	"github.com/iliyamo/gear-reservation/internal/config"
	"github.com/iliyamo/gear-reservation/internal/database"
	"github.com/iliyamo/gear-reservation/internal/handler"
	"github.com/iliyamo/gear-reservation/internal/lock"
	"github.com/iliyamo/gear-reservation/internal/logger"
	"github.com/iliyamo/gear-reservation/internal/middleware"
	"github.com/iliyamo/gear-reservation/internal/queue"
	"github.com/iliyamo/gear-reservation/internal/repository"
	"github.com/iliyamo/gear-reservation/internal/router"
	queue_publisher "github.com/iliyamo/gear-reservation/internal/service"
	"github.com/iliyamo/gear-reservation/internal/utils"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()
	if *hashPassword != "" {
		h, err := utils.HashPassword(*hashPassword, utils.DefaultPasswordCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	_ = godotenv.Load() // a missing .env is fine; the environment wins

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("record store ready", zap.String("driver", cfg.StoreDriver))

	// Redis is optional; without it the rate limiter and the distributed
	// lock are disabled.
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	var opts []booking.Option
	if cfg.LockEnabled {
		if rdb == nil {
			return errors.New("LOCK_ENABLED requires a reachable Redis")
		}
		opts = append(opts, booking.WithLocker(lock.NewRedisLocker(rdb, "", cfg.LockTTL, cfg.LockTTL)))
	}
	if cfg.EventsEnabled {
		opts = append(opts, booking.WithPublisher(queue_publisher.NewPublisher(cfg.AMQPURL, log)))
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.AuditDir, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}
	engine := booking.NewEngine(store, log, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	router.RegisterRoutes(e, pinger)
	router.RegisterPublic(e, handler.NewReservationHandler(engine), limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, engine, log), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

// openStore builds the record store selected by STORE_DRIVER.  The pinger
// is nil for stores without a connection to probe.
func openStore(ctx context.Context, cfg config.Config) (repository.RecordStore, handler.Pinger, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil, func() {}, nil
	case config.DriverCSV:
		s, err := repository.NewCSVStore(cfg.CSVPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open csv store: %w", err)
		}
		return s, nil, func() {}, nil
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		repo := repository.NewReservationRepo(db)
		return repo, repo, func() { _ = db.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
