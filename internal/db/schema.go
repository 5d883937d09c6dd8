package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL is the idempotent bootstrap for a fresh database. It creates the
// post-migration shape of every table: job_matches already carries the
// three-column unique key. Legacy databases that predate repo_full_name are
// brought to this shape by the reconcile binary, not by this bootstrap.
const schemaDDL = `
DO $$ BEGIN
  CREATE TYPE match_status AS ENUM (
    'not_started', 'in_progress', 'completed',
    'flagged', 'proceed', 'rejected', 'waitlisted', 'expired'
  );
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS jobs (
  id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  title           TEXT NOT NULL,
  required_stacks JSONB NOT NULL DEFAULT '{}'::jsonb,
  is_published    BOOLEAN NOT NULL DEFAULT false,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS repo_analyses (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  candidate_user_id TEXT NOT NULL,
  repo_full_name    TEXT NOT NULL,
  skills            JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS repo_analyses_candidate_idx
  ON repo_analyses (candidate_user_id);

CREATE TABLE IF NOT EXISTS job_matches (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  job_id            UUID NOT NULL REFERENCES jobs(id),
  candidate_user_id TEXT NOT NULL,
  repo_full_name    TEXT NOT NULL,
  analysis_id       UUID REFERENCES repo_analyses(id),
  score             DOUBLE PRECISION NOT NULL DEFAULT 0,
  status            match_status NOT NULL DEFAULT 'not_started',
  history_log       JSONB NOT NULL DEFAULT '[]'::jsonb,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS job_matches_job_candidate_repo_key
  ON job_matches (job_id, candidate_user_id, repo_full_name);

CREATE INDEX IF NOT EXISTS job_matches_repo_full_name_idx
  ON job_matches (repo_full_name);

CREATE TABLE IF NOT EXISTS assignments (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  job_id            UUID NOT NULL UNIQUE REFERENCES jobs(id),
  repo_template_url TEXT NOT NULL,
  instructions      TEXT NOT NULL DEFAULT '',
  created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS candidate_assignments (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  assignment_id     UUID NOT NULL REFERENCES assignments(id),
  candidate_user_id TEXT NOT NULL,
  todo              JSONB NOT NULL DEFAULT '{"mainTask":"","subtasks":[],"completedCount":0}'::jsonb,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (assignment_id, candidate_user_id)
);
`

// EnsureSchema applies the bootstrap DDL. Every statement is guarded with
// IF NOT EXISTS, so running it on every startup is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
