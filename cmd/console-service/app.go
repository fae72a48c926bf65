package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	"github.com/sony/gobreaker"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"admissions/internal/api"
	"admissions/internal/config"
	"admissions/internal/constants"
	"admissions/internal/crud"
	"admissions/internal/documents"
	"admissions/internal/events"
	"admissions/internal/logger"
	"admissions/internal/stripesync"
	"admissions/pkg/bootstrap"
	"admissions/pkg/circuitbreaker"
	"admissions/pkg/health"
	"admissions/pkg/metrics"
	"admissions/pkg/middleware"
	"admissions/pkg/ratelimit"
	"admissions/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	base           *bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redis          *redis.Client
	server         *http.Server
	router         *gin.Engine
	limiters       *ratelimit.Limiters
	scheduler      *stripesync.Scheduler
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.base.InitProducer(ctx); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds,
	}
	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb
	return nil
}

func (a *App) breakerConfig(name string) circuitbreaker.Config {
	cb := a.config.CircuitBreaker
	if !cb.Enabled {
		return circuitbreaker.DefaultConfig(name)
	}
	return circuitbreaker.Config{
		Name:         name,
		MaxRequests:  cb.MaxRequests,
		Interval:     cb.Interval,
		Timeout:      cb.Timeout,
		FailureRatio: cb.FailureRatio,
		MinRequests:  cb.MinRequests,
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.logger.WarnwCtx(context.Background(), "Circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.NewAuth(a.config.Auth.JWTSecret, a.config.Auth.Issuer).Middleware())

	if rl := a.config.Console.RateLimit; rl.Enabled {
		a.limiters = ratelimit.New(ratelimit.Config{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: time.Duration(rl.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(rl.MaxAge) * time.Second,
		})
		router.Use(a.limiters.Middleware())
		a.logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	var publisher crud.EventPublisher
	if a.base.Producer != nil {
		publisher = events.NewPublisher(a.base.Producer, a.config.Broker.Type, a.config.Broker.Topic)
	}
	deps := api.Deps{
		Services: api.NewServices(a.db, publisher, a.logger),
		Logger:   a.logger,
	}

	if a.config.Documents.S3.Bucket != "" {
		linker, err := documents.NewS3Linker(ctx, a.config.Documents.S3)
		if err != nil {
			return err
		}
		deps.Linker = linker
	}

	if a.config.StripeSync.Enabled {
		syncer, err := a.initStripeSync()
		if err != nil {
			return err
		}
		deps.Syncer = syncer
	}

	if _, err := api.RegisterRoutes(router, deps); err != nil {
		return err
	}

	metrics.Register()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redis != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redis))
	}
	router.GET("/health", healthRegistry.Handler())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initStripeSync() (*stripesync.Syncer, error) {
	cfg := a.config.StripeSync
	if a.redis == nil {
		return nil, errors.New("stripe sync requires redis for its run lock")
	}
	client := stripesync.NewClient(cfg.BaseURL, cfg.SecretKey, cfg.PageSize, constants.DefaultHTTPTimeout)
	breaker := circuitbreaker.NewWrapper(a.breakerConfig("stripe"))
	syncer := stripesync.NewSyncer(client, stripesync.NewPostgresStore(a.db), stripesync.NewRedisLocker(a.redis), breaker, cfg, a.logger)

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every " + constants.DefaultSyncInterval.String()
	}
	scheduler, err := stripesync.NewScheduler(schedule, syncer, a.logger)
	if err != nil {
		return nil, err
	}
	a.scheduler = scheduler
	return syncer, nil
}

// Run serves until ctx is done or a background task fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(gctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.limiters != nil {
		g.Go(func() error {
			a.limiters.Run(gctx)
			return nil
		})
	}

	if a.scheduler != nil {
		a.scheduler.Start()
		a.logger.InfowCtx(gctx, "Stripe sync scheduled", "schedule", a.config.StripeSync.Schedule)
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	errs = append(errs, a.base.ShutdownBroker()...)
	errs = append(errs, a.dbConnector.ShutdownDatabases(a.redis, a.db)...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
