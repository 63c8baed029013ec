package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"nyumba/internal/activity"
	"nyumba/internal/assets"
	"nyumba/internal/auth/directory"
	authmodels "nyumba/internal/auth/models"
	authservice "nyumba/internal/auth/service"
	"nyumba/internal/auth/tokenstore"
	"nyumba/internal/cache"
	modservice "nyumba/internal/moderation/service"
	"nyumba/internal/moderation/store"
	"nyumba/internal/platform/config"
	"nyumba/internal/platform/database"
	"nyumba/internal/platform/httpserver"
	"nyumba/internal/platform/logger"
	"nyumba/internal/platform/metrics"
	httptransport "nyumba/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	mx := metrics.New()

	log.Info("initializing nyumba moderation backend",
		"addr", cfg.Addr,
		"directory_mode", cfg.DirectoryMode,
	)

	var (
		dir           directory.Directory
		repo          store.Repository
		activityStore activity.Store
		health        func(ctx context.Context) error
	)

	switch cfg.DirectoryMode {
	case "memory":
		memDir := directory.NewMemory(cfg.SessionSigningKey)
		if err := seedDevAdmin(memDir); err != nil {
			log.Error("failed to seed dev admin", "error", err)
			os.Exit(1)
		}
		dir = memDir
		repo = store.NewMemory()
		activityStore = activity.NewMemoryStore()
	default:
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err := database.New(dbCfg)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if pool == nil {
			log.Error("NYUMBA_DATABASE_URL is required in postgres mode")
			os.Exit(1)
		}
		defer pool.Close()

		dir = directory.NewPostgres(pool.DB())
		repo = store.NewPostgres(pool.DB())
		activityStore = activity.NewPostgresStore(pool.DB())
		health = pool.Health
	}

	recorder := activity.NewRecorder(activityStore,
		activity.WithAsyncBuffer(256),
		activity.WithRecorderLogger(log),
		activity.WithRecorderMetrics(mx),
	)
	defer recorder.Close()

	manager := authservice.NewManager(dir, tokenstore.NewFile(cfg.TokenFile),
		authservice.WithLogger(log),
		authservice.WithActivityRecorder(recorder),
		authservice.WithMetrics(mx),
	)

	// Restore a previously persisted session before serving.
	if res, err := manager.Resume(context.Background()); err != nil {
		log.Warn("session restore failed", "error", err)
	} else {
		log.Info("session restore", "restored", res.Success, "state", string(manager.State()))
	}

	queryCache := cache.New(cache.WithLogger(log), cache.WithMetrics(mx))

	controllerOpts := []modservice.Option{
		modservice.WithLogger(log),
		modservice.WithMetrics(mx),
		modservice.WithCacheTTLs(cfg.PendingRefresh, cfg.StatsRefresh),
	}
	if cfg.StorageEndpoint != "" {
		controllerOpts = append(controllerOpts,
			modservice.WithRemover(assets.NewHTTPRemover(cfg.StorageEndpoint, cfg.StorageKey, assets.WithLogger(log))))
	}
	controller := modservice.New(repo, queryCache, recorder, controllerOpts...)

	refresher := cache.NewRefresher(queryCache, log)
	controller.StartBackgroundRefresh(refresher, cfg.PendingRefresh, cfg.StatsRefresh, cfg.ActivityRefresh)
	defer refresher.Close()

	handlerOpts := []httptransport.HandlerOption{}
	if health != nil {
		handlerOpts = append(handlerOpts, httptransport.WithHealthCheck(health))
	}
	handler := httptransport.NewHandler(manager, controller, log, handlerOpts...)
	router := httptransport.NewRouter(handler, log, httptransport.RouterConfig{
		AllowedOrigin: cfg.AllowedOrigin,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// seedDevAdmin registers the development admin for memory mode. Credentials
// come from the environment so they never end up in source.
func seedDevAdmin(dir *directory.MemoryDirectory) error {
	email := os.Getenv("NYUMBA_DEV_ADMIN_EMAIL")
	if email == "" {
		email = "admin@localhost"
	}
	password := os.Getenv("NYUMBA_DEV_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}

	return dir.Seed(authmodels.AdminIdentity{
		ID:         uuid.New(),
		Email:      email,
		FullName:   "Development Admin",
		Role:       authmodels.RoleSuperAdmin,
		Active:     true,
		FirstLogin: true,
	}, password)
}
