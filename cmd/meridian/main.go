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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-club/meridian/internal/app"
	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/auth"
	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/directory"
	"github.com/meridian-club/meridian/internal/joblisting"
	"github.com/meridian-club/meridian/internal/lifecycle"
	"github.com/meridian-club/meridian/internal/messaging"
	"github.com/meridian-club/meridian/internal/observability"
	"github.com/meridian-club/meridian/internal/period"
	"github.com/meridian-club/meridian/internal/platform/cache"
	"github.com/meridian-club/meridian/internal/platform/db"
	"github.com/meridian-club/meridian/internal/prizedraw"
	"github.com/meridian-club/meridian/internal/scamreport"
	"github.com/meridian-club/meridian/internal/session"
	"github.com/meridian-club/meridian/internal/verification"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	directoryRepo := directory.NewRepository(pool)
	resolver := authz.NewResolver(sessions, directoryRepo, cfg.ResolverTimeout, logger)
	authzMiddleware := authz.Middleware{Resolver: resolver, Logger: logger}

	recorder := audit.NewRecorder(pool, asynqClient, logger)
	metrics := observability.NewMetrics()

	store := lifecycle.NewPGStore(pool, recorder)
	engine := lifecycle.NewEngine(store, recorder, metrics, logger)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessions, cfg.IsProduction())

	periodService := period.NewService(engine)
	periodHandler := period.NewHandler(logger, periodService)

	verificationService := verification.NewService(engine)
	verificationHandler := verification.NewHandler(logger, verificationService)

	scamReportService := scamreport.NewService(engine)
	scamReportHandler := scamreport.NewHandler(logger, scamReportService)

	jobListingService := joblisting.NewService(engine)
	jobListingHandler := joblisting.NewHandler(logger, jobListingService)

	prizeDrawRepo := prizedraw.NewRepository(pool)
	prizeDrawService := prizedraw.NewService(prizeDrawRepo, recorder, logger)
	prizeDrawHandler := prizedraw.NewHandler(logger, prizeDrawService)

	messagingRepo := messaging.NewRepository(pool)
	messagingService := messaging.NewService(messagingRepo, directoryRepo)
	messagingHandler := messaging.NewHandler(logger, messagingService)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthzMiddleware:     authzMiddleware,
		AuthHandler:         authHandler,
		PeriodHandler:       periodHandler,
		VerificationHandler: verificationHandler,
		ScamReportHandler:   scamReportHandler,
		JobListingHandler:   jobListingHandler,
		PrizeDrawHandler:    prizeDrawHandler,
		MessagingHandler:    messagingHandler,
		AuditHandler:        auditHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
