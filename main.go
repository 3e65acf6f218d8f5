package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/config"
	"restaurant-dashboard/handlers"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/routes"
	"restaurant-dashboard/session"
	"restaurant-dashboard/workspace"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open session store:", err)
	}
	sessions := session.NewManager(store, cfg.SessionTTL)

	base := apiclient.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout})
	registry := workspace.NewRegistry(ctx, base, workspace.Settings{
		PollInterval:     cfg.PollInterval,
		StatsConcurrency: cfg.StatsConcurrency,
	})
	defer registry.Close()
	go sweepWorkspaces(ctx, registry, min(cfg.SessionTTL, time.Minute))

	h := handlers.New(sessions, registry, apiclient.NewAPI(base), cfg.CookieSecure)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()
	r.Use(middleware.CORS())
	routes.SetupRoutes(r, h, sessions)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Printf("⚠️  shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Dashboard running on http://localhost:%s (backend %s)", cfg.Port, cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to start server:", err)
	}
	log.Println("👋 Dashboard stopped")
}

func openSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	if cfg.SessionBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Printf("✅ Sessions stored in redis at %s", cfg.Redis.Addr)
		return session.NewRedisStore(rdb), nil
	}

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	store, err := session.NewDBStore(db)
	if err != nil {
		return nil, err
	}
	go purgeSessions(ctx, store, cfg.SessionTTL)
	return store, nil
}

// purgeSessions drops expired session rows; redis expires its keys itself
func purgeSessions(ctx context.Context, store *session.DBStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpired(ctx, now)
			if err != nil {
				log.Printf("⚠️  session purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("🧹 purged %d expired sessions", n)
			}
		}
	}
}

// sweepWorkspaces drops the in-memory state of sessions that expired
// without coming back, which also stops their dashboard pollers
func sweepWorkspaces(ctx context.Context, registry *workspace.Registry, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Sweep(now); n > 0 {
				log.Printf("🧹 closed %d expired workspaces", n)
			}
		}
	}
}
