// jobmate-sync-service
//
// Local-first interview pipeline store, mirrored against the tracker API.
// Exposes a REST API used by the presentation layer to implement:
//   - syncAll()                    — reconcile + dedup (manual refresh)
//   - migrateGuestDataToServer()   — push guest-local interviews
//   - cleanupAll()                 — reference-entity dedup
//   - pushInterview(id)            — opportunistic single-record push
//
// On sign-in (POST /session) the mandatory flow runs: migrate guest data,
// reconcile remote state, deduplicate. Store changes are published to Redis
// for the presentation layer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobmate/sync-service/internal/api"
	"jobmate/sync-service/internal/config"
	"jobmate/sync-service/internal/db"
	"jobmate/sync-service/internal/pipeline"
	"jobmate/sync-service/internal/remote"
	"jobmate/sync-service/internal/scheduler"
	"jobmate/sync-service/internal/store"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[sync-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[sync-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[sync-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[sync-service] PostgreSQL connected ✓")

	st := store.NewPostgres(pool)
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("[sync-service] Schema: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[sync-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[sync-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[sync-service] Redis connected ✓")

	// ── Engine ───────────────────────────────────────────────────────────────
	rc := remote.NewClient(cfg.TrackerAPIURL)
	if cfg.TrackerAPIToken != "" {
		rc.SetToken(cfg.TrackerAPIToken)
	}

	svc := pipeline.NewService(st, rc, rdb)
	if err := svc.Seed(ctx); err != nil {
		log.Fatalf("[sync-service] Seed: %v", err)
	}

	// ── Refresh scheduler ────────────────────────────────────────────────────
	if cfg.RefreshMinutes > 0 {
		sched := scheduler.New(svc, rc, cfg.RefreshMinutes)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[sync-service] Scheduler: %v", err)
		}
		defer sched.Stop()
	} else {
		log.Println("[sync-service] Background refresh disabled")
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := api.NewHandler(svc, rc)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[sync-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[sync-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[sync-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[sync-service] Shutdown error: %v", err)
	}
	log.Println("[sync-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "sync-service",
		"version": version,
	})
}
