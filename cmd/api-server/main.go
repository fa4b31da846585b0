package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/anilist"
	"mangashelf/internal/auth"
	"mangashelf/internal/entries"
	"mangashelf/internal/events"
	"mangashelf/internal/images"
	"mangashelf/internal/stats"
	"mangashelf/pkg/database"
	"mangashelf/pkg/utils"
)

func main() {
	utils.LoadDotenv()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	appCfg := utils.LoadAppConfig()

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		hubStats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hubStats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hubStats.Clients,
		})
	})

	// Entries (public reads)
	entryRepo := entries.NewRepo(db)
	entryHandler := entries.NewHandler(entryRepo, hub)
	entryHandler.RegisterPublicRoutes(router.Group("/entries"))

	// Dashboard stats (public)
	anilistClient := anilist.NewClient()
	if appCfg.AniListEndpoint != "" {
		anilistClient.SetEndpoint(appCfg.AniListEndpoint)
	}
	statsSvc := stats.NewService(
		anilistClient,
		stats.NewCacheRepo(db),
		entryRepo,
		appCfg.AniListUsername,
		appCfg.CacheTTL,
	)
	stats.NewHandler(statsSvc).RegisterRoutes(router.Group("/dashboard"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/users/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	entryHandler.RegisterProtectedRoutes(protected.Group("/entries"))

	// Image ingestion (protected: uploads cost the file host)
	pipeline := images.NewPipeline(appCfg.CatboxEndpoint, appCfg.CORSProxy)
	images.NewHandler(pipeline).RegisterRoutes(protected.Group("/images"))

	httpSrv := &http.Server{
		Addr:    appCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", appCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
