package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/terminal-bench/cabletherm/internal/cache"
	"github.com/terminal-bench/cabletherm/internal/config"
	"github.com/terminal-bench/cabletherm/internal/handlers"
	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/middleware"
	"github.com/terminal-bench/cabletherm/internal/probe"
	"github.com/terminal-bench/cabletherm/internal/repository"
	"github.com/terminal-bench/cabletherm/internal/simulation"
	"github.com/terminal-bench/cabletherm/internal/ws"
)

func main() {
	cfg := config.Load()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to consumption store: %v", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	led := ledger.New(store)

	var runs *repository.RunRepository
	if cfg.DatabaseURL != "" {
		runs, err = repository.NewRunRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize run repository: %v", err)
		}
		defer runs.Close()
	} else {
		log.Println("DATABASE_URL not set, run history disabled")
	}

	stop := make(chan struct{})
	defer close(stop)

	resultCache := cache.New(cfg.CacheTTL, cfg.CacheMaxEntries)
	resultCache.StartJanitor(time.Minute, stop)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	limiter.StartCleanup(stop)

	hub := ws.NewHub()

	estimator := probe.NewEnergyEstimator(cfg.CPUPowerWatts, cfg.CarbonIntensity)
	svc := simulation.New(led, estimator, resultCache, runRecorder(runs), ws.NewBroadcaster(hub))

	router := setupRouter(cfg, svc, led, runs, limiter, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// buildStore connects the Redis-backed ledger store, falling back to the
// in-process store when no Redis is configured. The in-memory store keeps
// single-node deployments and local development working, at the cost of
// durability.
func buildStore(cfg *config.Config) (ledger.Store, error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL empty, using in-memory consumption store")
		return ledger.NewMemoryStore(cfg.LedgerHistoryLimit), nil
	}
	return ledger.NewRedisStore(cfg.RedisURL, cfg.LedgerHistoryLimit)
}

// runRecorder narrows the optional repository to the service's interface
// without handing it a typed nil.
func runRecorder(runs *repository.RunRepository) simulation.RunRecorder {
	if runs == nil {
		return nil
	}
	return runs
}

func setupRouter(cfg *config.Config, svc *simulation.Service, led *ledger.Ledger, runs *repository.RunRepository, limiter *middleware.RateLimiter, hub *ws.Hub) *gin.Engine {
	var router *gin.Engine
	if cfg.Debug {
		router = gin.Default()
	} else {
		router = gin.New()
		router.Use(gin.Recovery())
	}

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RateLimit(limiter))

	sysHandler := handlers.NewSystemHandler(svc)
	router.GET("/", sysHandler.Root)
	router.GET("/health", sysHandler.Health)

	simHandler := handlers.NewSimulationHandler(svc)
	router.POST("/cable_temperature_simulation", simHandler.Single)
	router.POST("/cable_temperature_consumption_simulation", simHandler.SingleConsumption)
	router.POST("/cable_temperature_simulation_list", simHandler.Chained)
	router.POST("/cable_temperature_consumption_simulation_list", simHandler.ChainedConsumption)

	consHandler := handlers.NewConsumptionHandler(svc)
	router.GET("/global_consumption", consHandler.Global)
	router.POST("/reset_global_consumption", middleware.AdminAuth(cfg.AdminJWTSecret), consHandler.Reset)

	if runs != nil {
		router.GET("/simulation_runs", handlers.NewRunHandler(runs).List)
	}

	wsHandler := ws.NewHandler(hub, led)
	router.GET("/ws/consumption", wsHandler.Serve)

	return router
}
