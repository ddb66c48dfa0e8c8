package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"issue-blog-cms/cache"
	"issue-blog-cms/client"
	"issue-blog-cms/config"
	"issue-blog-cms/handlers"
	"issue-blog-cms/helper"
	"issue-blog-cms/logger"
	"issue-blog-cms/repositories"
	"issue-blog-cms/routes"
	"issue-blog-cms/services"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.LoadAppConfig()
	if err != nil {
		logger.New("info", true).Fatal("invalid configuration", logger.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Debug("no .env file found")
	}

	authCfg := config.LoadAuthConfig()
	if authCfg.SecureCookie {
		gin.SetMode(gin.ReleaseMode)
	}

	httpHelper, err := helper.NewHTTPHelper()
	if err != nil {
		log.Fatal("failed to set up validation", logger.Error(err))
	}

	// Shared cache
	var (
		redisClient   *redis.Client
		responseCache cache.Store = cache.NewMemoryStore()
		settingsCache cache.Store
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := cache.NewRedisStore(redisClient, "blog:")
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, using the in-process cache", logger.String("addr", cfg.RedisAddr), logger.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			log.Info("redis cache enabled", logger.String("addr", cfg.RedisAddr))
			responseCache = store
			settingsCache = store
		}
		cancel()
	}

	// Settings storage
	var settingsRepo repositories.SettingsRepository
	switch cfg.SettingsStore {
	case "postgres":
		db, err := config.InitDB(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal("failed to connect to database", logger.Error(err))
		}
		if err := repositories.MigrateSettings(db); err != nil {
			log.Fatal("failed to migrate settings table", logger.Error(err))
		}
		settingsRepo = repositories.NewSettingsDBRepository(db)
	default:
		settingsRepo = repositories.NewSettingsFileRepository(cfg.SettingsFile, log)
	}

	var settingsOpts []services.SettingsOption
	if settingsCache != nil {
		settingsOpts = append(settingsOpts, services.WithPersistentCache(settingsCache))
	}
	settingsService := services.NewSettingsService(settingsRepo, httpHelper.Validate, log, settingsOpts...)

	// Upstream client
	apiCfg, err := config.NewResolver(config.ServerContext, os.Getenv).Get()
	var transport client.Transport
	if err == nil {
		transport, err = client.NewTransport(apiCfg, "", nil)
	}
	if err != nil {
		log.Warn("upstream API is not configured, article routes will fail", logger.Error(err))
		transport = client.NewUnavailableTransport(config.ServerContext, err)
	}
	apiClient := client.New(transport,
		client.WithTimeout(cfg.UpstreamTimeout),
		client.WithLogger(log),
		client.WithResponseCache(responseCache, settingsService.RevalidateWindow),
	)

	// Initialize services
	authService, err := services.NewAuthService(authCfg)
	if err != nil {
		log.Fatal("failed to initialize auth", logger.Error(err))
	}
	articleService := services.NewArticleService(apiClient, log)
	commentService := services.NewCommentService(apiClient, log)
	tagService := services.NewTagService(apiClient, articleService, log)
	dashboardService := services.NewDashboardService(articleService, tagService)

	router := routes.SetupRouter(routes.Handlers{
		Article:  handlers.NewArticleHandler(articleService, commentService, httpHelper),
		Comment:  handlers.NewCommentHandler(commentService, httpHelper),
		Tag:      handlers.NewTagHandler(tagService, httpHelper),
		Settings: handlers.NewSettingsHandler(settingsService, httpHelper),
		Auth:     handlers.NewAuthHandler(authService, authCfg, httpHelper),
		Health:   handlers.NewHealthHandler(apiCfg, apiClient),
		Admin:    handlers.NewAdminHandler(articleService, dashboardService, httpHelper),
	}, authService, httpHelper, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", logger.String("port", cfg.Port),
			logger.String("repo", apiCfg.RepoName), logger.String("settings_store", cfg.SettingsStore))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Fatal("http server error", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", logger.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warnf("failed to close redis: %v", err)
		}
	}
	log.Info("server stopped")
}
