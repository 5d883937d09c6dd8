package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"repohire/match-service/internal/scoring"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates all match-engine business logic.
// It has no dependency on net/http — it can be used by any transport layer.
type Service struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool, rdb *redis.Client) *Service {
	return &Service{pool: pool, rdb: rdb}
}

// matchCols is the shared SELECT/RETURNING column list for job_matches.
// UUID columns are cast to text so nullable ids scan cleanly into *string.
const matchCols = `id::text, job_id::text, candidate_user_id, repo_full_name,
       analysis_id::text, score, status, history_log, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for a unique-key conflict.
const uniqueViolation = "23505"

// ─── Upsert path ─────────────────────────────────────────────────────────────

// UpsertMatch scores analysis against the job's requirement vector and writes
// the JobMatch row keyed by (jobId, candidateUserId, analysis.RepoFullName).
// An existing row is updated in place (score, analysisId, updatedAt); a new
// row starts at not_started. Safe under concurrent invocation for the same
// key: the write is a single atomic INSERT ... ON CONFLICT statement.
func (s *Service) UpsertMatch(ctx context.Context, jobID, candidateUserID string, analysis RepoAnalysis) (*JobMatch, error) {
	return s.upsert(ctx, jobID, candidateUserID, analysis, StatusNotStarted)
}

// UpsertCompletedMatch is the pipeline-terminal entry point: identical to
// UpsertMatch, but a newly created row starts at completed. Used when the
// upsert is invoked as the last step of an already-finished analysis run.
func (s *Service) UpsertCompletedMatch(ctx context.Context, jobID, candidateUserID string, analysis RepoAnalysis) (*JobMatch, error) {
	return s.upsert(ctx, jobID, candidateUserID, analysis, StatusCompleted)
}

func (s *Service) upsert(ctx context.Context, jobID, candidateUserID string, analysis RepoAnalysis, initial Status) (*JobMatch, error) {
	if jobID == "" || candidateUserID == "" {
		return nil, &ValidationError{Msg: "jobId and candidateUserId are required"}
	}
	if analysis.RepoFullName == "" {
		return nil, &ValidationError{Msg: "analysis.repoFullName is required"}
	}
	if err := scoring.ValidateVector(analysis.Skills); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("skills vector: %v", err)}
	}

	reqs, err := s.jobRequirements(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := scoring.ValidateVector(reqs); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("requirement vector: %v", err)}
	}

	score := scoring.Score(reqs, analysis.Skills)

	var analysisID *string
	if analysis.ID != "" {
		analysisID = &analysis.ID
	}

	m, err := s.writeMatch(ctx, jobID, candidateUserID, analysis.RepoFullName, analysisID, score, initial)
	if isUniqueViolation(err) {
		// Should not happen: ON CONFLICT resolves the key race. Retry once,
		// then surface as a retryable conflict.
		m, err = s.writeMatch(ctx, jobID, candidateUserID, analysis.RepoFullName, analysisID, score, initial)
		if isUniqueViolation(err) {
			return nil, ErrConflictNotResolved
		}
	}
	if err != nil {
		return nil, fmt.Errorf("upsertMatch: %w", err)
	}

	s.publish(ctx, "EVENT_MATCH_SCORED", map[string]string{
		"type":            "EVENT_MATCH_SCORED",
		"matchId":         m.ID,
		"jobId":           jobID,
		"candidateUserId": candidateUserID,
		"repoFullName":    analysis.RepoFullName,
		"score":           fmt.Sprintf("%.2f", m.Score),
	})

	return m, nil
}

// writeMatch performs the single atomic conditional write. The status of an
// existing row is deliberately left untouched: re-scoring must never rewind
// a review already in progress.
func (s *Service) writeMatch(ctx context.Context, jobID, candidateUserID, repoFullName string, analysisID *string, score float64, initial Status) (*JobMatch, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO job_matches (job_id, candidate_user_id, repo_full_name, analysis_id, score, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (job_id, candidate_user_id, repo_full_name)
		 DO UPDATE SET score       = EXCLUDED.score,
		               analysis_id = EXCLUDED.analysis_id,
		               updated_at  = NOW()
		 RETURNING `+matchCols,
		jobID, candidateUserID, repoFullName, analysisID, score, string(initial),
	)
	return scanMatch(row)
}

// jobRequirements loads the job's required_stacks vector. The publication
// flag is intentionally not checked here: scoring an unpublished job is
// allowed, publication only gates front-end visibility.
func (s *Service) jobRequirements(ctx context.Context, jobID string) (map[string]float64, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT required_stacks FROM jobs WHERE id = $1`, jobID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ValidationError{Msg: fmt.Sprintf("job %s does not exist", jobID)}
	}
	if err != nil {
		return nil, fmt.Errorf("load job requirements: %w", err)
	}

	reqs := make(map[string]float64)
	if err := json.Unmarshal(raw, &reqs); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("job %s has a malformed requirement vector", jobID)}
	}
	return reqs, nil
}

// ─── Status transitions ──────────────────────────────────────────────────────

// TransitionStatus moves a match to a new review status.
// Returns ErrNotFound if the match does not exist, InvalidTransitionError if
// the state machine rejects the move, and ErrConflictNotResolved if a
// concurrent writer changed the row between read and update.
func (s *Service) TransitionStatus(ctx context.Context, matchID, newStatusStr string) (*JobMatch, error) {
	newStatus, err := ParseStatus(newStatusStr)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	var currentStr string
	err = s.pool.QueryRow(ctx,
		`SELECT status FROM job_matches WHERE id = $1`, matchID,
	).Scan(&currentStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transitionStatus read: %w", err)
	}

	current, _ := ParseStatus(currentStr)
	if !IsTransitionAllowed(current, newStatus) {
		return nil, &InvalidTransitionError{From: current, To: newStatus}
	}

	historyEntry, _ := json.Marshal(map[string]string{
		"from": string(current),
		"to":   string(newStatus),
		"at":   time.Now().UTC().Format(time.RFC3339),
	})

	// The status guard in the WHERE clause makes the update conditional on
	// the state we validated against; losing that race is retryable.
	row := s.pool.QueryRow(ctx,
		`UPDATE job_matches
		 SET status      = $1::match_status,
		     history_log = history_log || $2::jsonb,
		     updated_at  = NOW()
		 WHERE id = $3 AND status = $4::match_status
		 RETURNING `+matchCols,
		string(newStatus), fmt.Sprintf("[%s]", historyEntry), matchID, string(current),
	)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConflictNotResolved
	}
	if err != nil {
		return nil, fmt.Errorf("transitionStatus update: %w", err)
	}

	s.publish(ctx, "EVENT_MATCH_STATUS_CHANGED", map[string]string{
		"type":    "EVENT_MATCH_STATUS_CHANGED",
		"matchId": matchID,
		"from":    string(current),
		"to":      string(newStatus),
	})

	return m, nil
}

// ExpireStale moves every non-terminal match not updated within olderThan to
// expired, returning the number of rows swept. Backs the retention cron.
func (s *Service) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_matches
		 SET status      = 'expired',
		     history_log = history_log || jsonb_build_array(jsonb_build_object(
		                     'from', status::text, 'to', 'expired',
		                     'at', to_char(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'))),
		     updated_at  = NOW()
		 WHERE status NOT IN ('proceed', 'rejected', 'expired')
		   AND updated_at < NOW() - $1::interval`,
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("expireStale: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// GetMatch returns a single match by id.
func (s *Service) GetMatch(ctx context.Context, matchID string) (*JobMatch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+matchCols+` FROM job_matches WHERE id = $1`, matchID,
	)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getMatch: %w", err)
	}
	return m, nil
}

// ListForJob returns all matches for a job, most recent first.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]JobMatch, error) {
	return s.list(ctx, `job_id`, jobID)
}

// ListForCandidate returns all matches for a candidate, most recent first.
func (s *Service) ListForCandidate(ctx context.Context, candidateUserID string) ([]JobMatch, error) {
	return s.list(ctx, `candidate_user_id`, candidateUserID)
}

func (s *Service) list(ctx context.Context, keyCol, key string) ([]JobMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+matchCols+` FROM job_matches WHERE `+keyCol+` = $1
		 ORDER BY created_at DESC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches query: %w", err)
	}
	defer rows.Close()

	matches := make([]JobMatch, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches scan: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func scanMatch(row pgx.Row) (*JobMatch, error) {
	var m JobMatch
	err := row.Scan(
		&m.ID, &m.JobID, &m.CandidateUserID, &m.RepoFullName,
		&m.AnalysisID, &m.Score, &m.Status, &m.HistoryLog,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// publish sends a lifecycle event to Redis for downstream SSE fan-out.
// Non-fatal: the write already committed, a lost event is only a UI delay.
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish event failed", "channel", channel, "err", err)
	}
}
