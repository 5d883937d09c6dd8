// matchd — the job-candidate match engine.
//
// Scores analyzed repositories against job requirement vectors and exposes:
//   - upsertMatch(jobId, candidateUserId, analysis) — idempotent scored write
//   - transitionStatus(matchId, newStatus)          — review state machine
//   - match lists per job and per candidate
//   - assignment-template upsert per job
//
// Publishes EVENT_MATCH_SCORED / EVENT_MATCH_STATUS_CHANGED to Redis for
// Gateway SSE forward. A cron sweep expires stale non-terminal matches.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"repohire/match-service/internal/assignment"
	"repohire/match-service/internal/config"
	"repohire/match-service/internal/db"
	"repohire/match-service/internal/match"
	"repohire/match-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[match-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[match-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("[match-service] Schema: %v", err)
	}
	log.Println("[match-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[match-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[match-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	svc := match.NewService(pool, rdb)
	asvc := assignment.NewService(pool)

	// ── Expiry sweep ─────────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.ExpireAfterDays, cfg.ExpireSweepIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[match-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── gRPC health endpoint (orchestrator probes) ───────────────────────────
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[match-service] gRPC listen: %v", err)
	}
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("match-service", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		log.Printf("[match-service] gRPC health on :%s", cfg.GRPCPort)
		if err := grpcSrv.Serve(grpcLis); err != nil {
			log.Printf("[match-service] gRPC server error: %v", err)
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := match.NewHandler(svc, asvc)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[match-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[match-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[match-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	healthSrv.Shutdown()
	grpcSrv.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[match-service] Shutdown error: %v", err)
	}
	log.Println("[match-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "match-service",
		"version": version,
	})
}
