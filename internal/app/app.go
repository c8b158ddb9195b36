package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/config"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/postgres"
	"github.com/clubdoor/clubdoor/internal/redis"
	postgresrepo "github.com/clubdoor/clubdoor/internal/repository/postgres"
	redisrepo "github.com/clubdoor/clubdoor/internal/repository/redis"
	"github.com/clubdoor/clubdoor/internal/service"
	"github.com/clubdoor/clubdoor/internal/service/scan"
	"github.com/clubdoor/clubdoor/internal/service/waitlist"
	httpgin "github.com/clubdoor/clubdoor/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewAdmissionsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl:tickets", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	var mail mailer.Mailer = mailer.Nop{}
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTP(mailer.Config{
			Addr:     cfg.SMTP.Addr,
			Host:     cfg.SMTP.Host,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	}

	services := service.NewServices(store, cache, pubsub, mail, clock.NewSystem(), service.Config{
		Waitlist: waitlist.Config{CloseWindow: cfg.Waitlist.CloseWindow},
		Scan:     scan.Config{EmailDomain: cfg.Scan.Domain},
	})

	router := httpgin.NewRouter(services, idempotencyStore, limiter, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
