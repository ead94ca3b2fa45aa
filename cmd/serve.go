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

	"github.com/okian/skillswap/internal/adapters/http/api"
	workerpool "github.com/okian/skillswap/internal/adapters/mq/worker"
	"github.com/okian/skillswap/internal/adapters/notify"
	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/config"
	"github.com/okian/skillswap/internal/domain/pricing"
	"github.com/okian/skillswap/internal/domain/settlement"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

// setup loads configuration and initializes logging from it.
func setup(ctx context.Context) (*config.Config, error) {
	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newNotifier returns the NATS notifier when nats_url is set, nil otherwise.
func newNotifier(cfg *config.Config) (workerpool.Notifier, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	n, err := notify.DialNATS(cfg.NATSURL, cfg.NATSSubjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return n, nil
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config) ([]service.Option, error) {
	policy, err := settlement.ParsePolicy(cfg.NegativeBalancePolicy)
	if err != nil {
		return nil, err
	}
	return []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithDataDir(cfg.DataDir),
		service.WithNegativeBalancePolicy(policy),
		service.WithCommitMaxRetries(cfg.CommitMaxRetries),
		service.WithQueueSize(cfg.NotifyQueueSize),
		service.WithWorkerCount(cfg.NotifyWorkerCount),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithIdempotencyTTL(cfg.IdempotencyTTL),
		service.WithMaxMessageLength(cfg.MaxMessageLength),
		service.WithMaxListLimit(cfg.MaxListLimit),
		service.WithPricer(newPricer(cfg)),
	}, nil
}

// newPricer applies the optional duration cap and decimal place limit.
func newPricer(cfg *config.Config) *pricing.RatePricer {
	return pricing.NewRatePricer(
		pricing.WithMaxDuration(decimal.NewFromFloat(cfg.MaxExchangeHours)),
		pricing.WithMaxPlaces(int32(cfg.CreditPlaces)), //nolint:gosec // validated >= -1
	)
}

func serve(ctx context.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	log := logger.Get()

	opts, err := serviceOptions(cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	if notifier != nil {
		opts = append(opts, service.WithNotifier(notifier))
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc,
		api.WithMaxListLimit(cfg.MaxListLimit),
		api.WithMemberSeeding(cfg.SeedMembers),
		api.WithLogger(logger.Named("api")),
	).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}
