package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"core/internal/auth"
	"core/internal/config"
	"core/internal/handler"
	"core/internal/logging"
	"core/internal/middleware"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("BNA Market dashboard server",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	// Market snapshot (SQLite file). The server is useless without it.
	market, err := repository.NewMarketRepository(cfg.Market.DatabasePath)
	if err != nil {
		logger.Error("Failed to open market database", slog.Any("error", err))
		os.Exit(1)
	}
	defer market.Close()
	logger.Info("Market database opened", slog.String("path", cfg.Market.DatabasePath))

	searchService := service.NewSearchService(market, logger, cfg.Search.MaxPerPage)
	metricsService := service.NewMetricsService(market, logger)

	searchHandler := handler.NewSearchHandler(searchService, logger, cfg.Search.DefaultPerPage)
	metricsHandler := handler.NewMetricsHandler(metricsService, logger)
	healthHandler := handler.NewHealthHandler(Version, BuildTime, GitCommit)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "X-Refresh-Token"}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(limiter.Middleware())
	}

	// Root aliases for infrastructure probes.
	router.GET("/health", healthHandler.Health)
	router.GET("/version", healthHandler.Version)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/version", healthHandler.Version)

		api.GET("/properties/search", searchHandler.Search)
		api.GET("/properties/export", searchHandler.Export)

		api.GET("/metrics/fred", metricsHandler.FredMetrics)
		api.GET("/dashboard", metricsHandler.Dashboard)
	}

	// CRM and auth are optional: without a CRM database or identity
	// provider the public search API still runs.
	if cfg.Auth.Enabled() {
		provider := auth.NewClient(cfg.Auth)
		authHandler := handler.NewAuthHandler(provider, logger)

		api.POST("/auth/magic-link", authHandler.MagicLink)
		api.POST("/auth/verify", authHandler.Verify)
		api.POST("/auth/refresh", authHandler.Refresh)

		authed := api.Group("")
		authed.Use(auth.RequireAuth(cfg.Auth.JWTSecret))
		authed.GET("/auth/session", authHandler.Session)
		authed.POST("/auth/logout", authHandler.Logout)

		if cfg.CRM.Enabled() {
			crmRepo, err := repository.NewCRMRepository(
				cfg.GetCRMDSN(),
				cfg.CRM.MaxConnections,
				cfg.CRM.MaxIdleConnections,
			)
			if err != nil {
				logger.Error("Failed to connect to CRM database", slog.Any("error", err))
				os.Exit(1)
			}
			defer crmRepo.Close()
			logger.Info("CRM database connected")

			crmService := service.NewCRMService(crmRepo, logger)
			crmHandler := handler.NewCRMHandler(crmService, logger)

			authed.GET("/crm/leads", crmHandler.ListLeads)
			authed.POST("/crm/leads", crmHandler.CreateLead)
			authed.GET("/crm/leads/:id", crmHandler.GetLead)
			authed.PUT("/crm/leads/:id", crmHandler.UpdateLead)
			authed.DELETE("/crm/leads/:id", crmHandler.DeleteLead)

			authed.GET("/searches", crmHandler.ListSavedSearches)
			authed.POST("/searches", crmHandler.SaveSearch)
			authed.GET("/searches/:id", crmHandler.GetSavedSearch)
			authed.PUT("/searches/:id", crmHandler.UpdateSavedSearch)
			authed.DELETE("/searches/:id", crmHandler.DeleteSavedSearch)

			authed.GET("/crm/alerts", crmHandler.ListAlerts)
			authed.POST("/crm/alerts", crmHandler.CreateAlert)
			authed.PUT("/crm/alerts/:id", crmHandler.UpdateAlert)
			authed.DELETE("/crm/alerts/:id", crmHandler.DeleteAlert)
		} else {
			logger.Warn("CRM database not configured; lead and saved-search endpoints disabled")
		}
	} else {
		logger.Warn("Auth provider not configured; authenticated endpoints disabled")
	}

	setupStaticFiles(router, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not finish cleanly", slog.Any("error", err))
	}
	logger.Info("Server stopped")
}
