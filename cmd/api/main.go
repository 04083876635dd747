// @title                       Task Manager API
// @version                     1.0
// @description                 Task management backend with JWT authentication and role-based access.
// @host                        localhost:5000
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/api"
	"github.com/sirpyerre/task-manager/internal/api/metrics"
	"github.com/sirpyerre/task-manager/internal/api/middleware"
	"github.com/sirpyerre/task-manager/internal/core/service"
	"github.com/sirpyerre/task-manager/internal/infrastructure/auth"
	"github.com/sirpyerre/task-manager/internal/infrastructure/config"
	dbmongo "github.com/sirpyerre/task-manager/internal/infrastructure/db/mongo"
	dbredis "github.com/sirpyerre/task-manager/internal/infrastructure/db/redis"
	"github.com/sirpyerre/task-manager/internal/infrastructure/http/handlers"
	"github.com/sirpyerre/task-manager/internal/infrastructure/queue"
	"github.com/sirpyerre/task-manager/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "task-manager-api"})
		bootLog.Fatal().Err(err).Msg("configuration rejected")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "task-manager-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Stack().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := dbmongo.Connect(ctx, dbmongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "task-manager-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := dbredis.Connect(ctx, dbredis.Config{
		URL:        cfg.Redis.URL,
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ClientName: "task-manager-api",
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := dbmongo.NewUserRepository(db)
	tasks := dbmongo.NewTaskRepository(db)
	auditLog := dbmongo.NewAuditRepository(db)
	if err := dbmongo.EnsureIndexes(ctx, users, tasks, auditLog); err != nil {
		return err
	}

	tokens, err := auth.NewJWTService(auth.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL.Std(),
		RefreshTTL:    cfg.JWT.RefreshTTL.Std(),
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Audit workers outlive the request context so queued events drain on
	// shutdown.
	audit := queue.NewDispatcher(cfg.Audit.Workers, auditLog, log)
	audit.Start(context.Background())

	authService, err := service.NewAuthService(users, hasher, tokens, dbredis.NewRevocationStore(rdb), audit, metrics.Counter{}, log)
	if err != nil {
		return err
	}
	adminService := service.NewAdminService(users, hasher, audit, log)

	if cfg.Admin.Email != "" {
		admin, err := adminService.EnsureAdmin(ctx, cfg.Admin.FullName, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("administrator ready")
	}

	e := api.NewRouter(api.Deps{
		Log:         log,
		Tokens:      tokens,
		AuthService: authService,
		UserService: service.NewUserService(users),
		TaskService: service.NewTaskService(tasks, metrics.Counter{}),
		Admin:       adminService,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		CORSOrigin: cfg.CORSOrigin,
		TrustProxy: cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if err := audit.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Int64("dropped", audit.Dropped()).Msg("audit queue not drained")
	}
	log.Info().Msg("server stopped")
	return nil
}
