// Package reconcile repairs the job_matches table after the uniqueness key
// changed shape from (job_id, candidate_user_id) to (job_id,
// candidate_user_id, repo_full_name).
//
// The procedure runs outside the request path, once per migration, inside a
// single transaction: either every step commits or none does. Each step
// re-checks its own precondition (IF NOT EXISTS and friends), so re-running
// against an already-compliant table is a no-op. Callers must ensure at most
// one reconciliation is in flight at a time.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repohire/match-service/internal/assignment"
)

// ReconciliationError reports which step aborted the migration transaction.
// Not retried automatically: a failed backfill or dedup can indicate an
// unexpected data shape that needs operator inspection.
type ReconciliationError struct {
	Step string
	Err  error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation aborted at step %q: %v", e.Step, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// Report summarizes what a reconciliation run changed.
type Report struct {
	Backfilled        int64 // rows filled from their linked analysis
	PlaceholderFilled int64 // orphaned rows filled with a synthesized name
	DuplicatesRemoved int64 // older rows deleted per (job, candidate, repo) key
}

// Reconciler owns the key-shape repair of job_matches.
type Reconciler struct {
	pool *pgxpool.Pool
}

// New returns a Reconciler over the given pool.
func New(pool *pgxpool.Pool) *Reconciler {
	return &Reconciler{pool: pool}
}

// Run executes the ordered repair inside one transaction:
//
//  1. add the repo_full_name column (nullable) if absent
//  2. backfill it from each row's linked repo_analyses record
//  3. fallback-fill remaining nulls with synthesized unique placeholders
//  4. delete duplicate rows per new key, keeping the most recent
//  5. swap the two-column unique index for the three-column one
//  6. enforce NOT NULL on repo_full_name
//  7. add the supporting lookup index on repo_full_name
//
// Any failure rolls the whole transaction back; a partially migrated table
// is never observable.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reconciliation: %w", err)
	}
	defer tx.Rollback(ctx)

	report := &Report{}

	if _, err := tx.Exec(ctx,
		`ALTER TABLE job_matches ADD COLUMN IF NOT EXISTS repo_full_name TEXT`,
	); err != nil {
		return nil, &ReconciliationError{Step: "add column", Err: err}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE job_matches m
		 SET repo_full_name = ra.repo_full_name
		 FROM repo_analyses ra
		 WHERE m.repo_full_name IS NULL
		   AND m.analysis_id = ra.id`,
	)
	if err != nil {
		return nil, &ReconciliationError{Step: "backfill", Err: err}
	}
	report.Backfilled = tag.RowsAffected()

	n, err := fillPlaceholders(ctx, tx)
	if err != nil {
		return nil, &ReconciliationError{Step: "fallback-fill", Err: err}
	}
	report.PlaceholderFilled = n

	// Rank rows per new key by recency and delete everything below rank 1.
	tag, err = tx.Exec(ctx,
		`DELETE FROM job_matches
		 WHERE id IN (
		   SELECT id FROM (
		     SELECT id, ROW_NUMBER() OVER (
		              PARTITION BY job_id, candidate_user_id, repo_full_name
		              ORDER BY created_at DESC, id DESC
		            ) AS rn
		     FROM job_matches
		   ) ranked
		   WHERE ranked.rn > 1
		 )`,
	)
	if err != nil {
		return nil, &ReconciliationError{Step: "dedup", Err: err}
	}
	report.DuplicatesRemoved = tag.RowsAffected()

	// The new index may only appear once steps 2-4 guarantee no duplicates.
	if _, err := tx.Exec(ctx, `
		ALTER TABLE job_matches DROP CONSTRAINT IF EXISTS job_matches_job_id_candidate_user_id_key;
		DROP INDEX IF EXISTS job_matches_job_candidate_key;
		CREATE UNIQUE INDEX IF NOT EXISTS job_matches_job_candidate_repo_key
		  ON job_matches (job_id, candidate_user_id, repo_full_name)`,
	); err != nil {
		return nil, &ReconciliationError{Step: "index swap", Err: err}
	}

	if _, err := tx.Exec(ctx,
		`ALTER TABLE job_matches ALTER COLUMN repo_full_name SET NOT NULL`,
	); err != nil {
		return nil, &ReconciliationError{Step: "not null", Err: err}
	}

	if _, err := tx.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS job_matches_repo_full_name_idx
		 ON job_matches (repo_full_name)`,
	); err != nil {
		return nil, &ReconciliationError{Step: "lookup index", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reconciliation: %w", err)
	}
	return report, nil
}

// fillPlaceholders synthesizes repo_full_name for rows whose analysis is
// orphaned or was never linked, so the column can become NOT NULL without
// manual intervention.
func fillPlaceholders(ctx context.Context, tx pgx.Tx) (int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT id::text, COALESCE(analysis_id::text, '')
		 FROM job_matches
		 WHERE repo_full_name IS NULL`,
	)
	if err != nil {
		return 0, fmt.Errorf("select orphaned rows: %w", err)
	}

	type orphan struct{ id, analysisID string }
	orphans := make([]orphan, 0)
	for rows.Next() {
		var o orphan
		if err := rows.Scan(&o.id, &o.analysisID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan orphaned row: %w", err)
		}
		orphans = append(orphans, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, o := range orphans {
		if _, err := tx.Exec(ctx,
			`UPDATE job_matches SET repo_full_name = $1 WHERE id = $2`,
			PlaceholderRepoName(o.id, o.analysisID), o.id,
		); err != nil {
			return 0, fmt.Errorf("fill placeholder for %s: %w", o.id, err)
		}
	}
	return int64(len(orphans)), nil
}

// RepairAssignmentProgress replaces every candidate_assignments.todo value
// that is null or not a JSON object (a historical bug initialized some rows
// with a bare array) with the canonical empty-progress object. Idempotent:
// compliant rows are untouched.
func (r *Reconciler) RepairAssignmentProgress(ctx context.Context) (int64, error) {
	canonical, _ := json.Marshal(assignment.EmptyProgress())

	tag, err := r.pool.Exec(ctx,
		`UPDATE candidate_assignments
		 SET todo       = $1::jsonb,
		     updated_at = NOW()
		 WHERE todo IS NULL OR jsonb_typeof(todo) <> 'object'`,
		canonical,
	)
	if err != nil {
		return 0, fmt.Errorf("repairAssignmentProgress: %w", err)
	}
	return tag.RowsAffected(), nil
}
