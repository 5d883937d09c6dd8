// reconcile — operator-run repair of the job_matches uniqueness key.
//
// Brings a table created before repo_full_name existed into compliance with
// the (job_id, candidate_user_id, repo_full_name) unique key, then repairs
// candidate-assignment progress objects. Runs in a single transaction and is
// safe to re-run; it must not be invoked concurrently with itself.
//
// Exits non-zero on any failure — a failed step rolls everything back and
// needs operator inspection before a retry.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"repohire/match-service/internal/db"
	"repohire/match-service/internal/reconcile"
)

func main() {
	// Only the database is touched; no Redis, no ports.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("[reconcile] DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	log.Println("[reconcile] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("[reconcile] PostgreSQL: %v", err)
	}
	defer pool.Close()

	r := reconcile.New(pool)

	log.Println("[reconcile] Repairing job_matches uniqueness key…")
	report, err := r.Run(ctx)
	if err != nil {
		log.Fatalf("[reconcile] %v", err)
	}
	log.Printf("[reconcile] backfilled=%d placeholders=%d duplicates removed=%d",
		report.Backfilled, report.PlaceholderFilled, report.DuplicatesRemoved)

	log.Println("[reconcile] Repairing candidate assignment progress…")
	repaired, err := r.RepairAssignmentProgress(ctx)
	if err != nil {
		log.Fatalf("[reconcile] %v", err)
	}
	log.Printf("[reconcile] progress objects repaired=%d", repaired)

	log.Println("[reconcile] Done.")
}
