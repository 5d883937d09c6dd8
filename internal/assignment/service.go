// Package assignment manages the per-job coding-assignment template and the
// per-candidate progress record.
//
// A job has at most one template: UpsertAssignment is keyed ON CONFLICT
// (job_id), so creating a "second" assignment replaces the first instead of
// duplicating it. A candidate progress row always carries a todo object of
// the canonical shape {mainTask, subtasks, completedCount} — never null and
// never a bare array.
package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ─── Models ──────────────────────────────────────────────────────────────────

// Assignment is the per-job coding-assignment template.
type Assignment struct {
	ID              string    `json:"id"`
	JobID           string    `json:"jobId"`
	RepoTemplateURL string    `json:"repoTemplateUrl"`
	Instructions    string    `json:"instructions"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Progress is the structured todo object stored on a candidate assignment.
type Progress struct {
	MainTask       string    `json:"mainTask"`
	Subtasks       []Subtask `json:"subtasks"`
	CompletedCount int       `json:"completedCount"`
}

// Subtask is one step of an assignment's task list.
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// CandidateAssignment tracks one candidate working one assignment.
type CandidateAssignment struct {
	ID              string          `json:"id"`
	AssignmentID    string          `json:"assignmentId"`
	CandidateUserID string          `json:"candidateUserId"`
	Todo            json.RawMessage `json:"todo"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// EmptyProgress returns the canonical zero-value progress object.
func EmptyProgress() Progress {
	return Progress{MainTask: "", Subtasks: []Subtask{}, CompletedCount: 0}
}

// ErrNotFound is returned when a job has no assignment template.
var ErrNotFound = fmt.Errorf("assignment not found")

// ─── Service ─────────────────────────────────────────────────────────────────

// Service owns persistence of assignment templates and candidate progress.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// UpsertAssignment creates or replaces the template for a job. A single
// atomic conditional write keyed by job_id — a job can never end up with two
// assignment rows.
func (s *Service) UpsertAssignment(ctx context.Context, jobID, repoTemplateURL, instructions string) (*Assignment, error) {
	if jobID == "" || repoTemplateURL == "" {
		return nil, fmt.Errorf("jobId and repoTemplateUrl are required")
	}

	var a Assignment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO assignments (job_id, repo_template_url, instructions)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id)
		 DO UPDATE SET repo_template_url = EXCLUDED.repo_template_url,
		               instructions      = EXCLUDED.instructions,
		               updated_at        = NOW()
		 RETURNING id::text, job_id::text, repo_template_url, instructions, created_at, updated_at`,
		jobID, repoTemplateURL, instructions,
	).Scan(&a.ID, &a.JobID, &a.RepoTemplateURL, &a.Instructions, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsertAssignment: %w", err)
	}
	return &a, nil
}

// GetForJob returns the template for a job, or ErrNotFound.
func (s *Service) GetForJob(ctx context.Context, jobID string) (*Assignment, error) {
	var a Assignment
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, job_id::text, repo_template_url, instructions, created_at, updated_at
		 FROM assignments WHERE job_id = $1`,
		jobID,
	).Scan(&a.ID, &a.JobID, &a.RepoTemplateURL, &a.Instructions, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getForJob: %w", err)
	}
	return &a, nil
}

// StartCandidateAssignment creates (or returns) the progress row for a
// candidate on an assignment. The todo column is seeded with the canonical
// empty-progress object, never null and never an array.
func (s *Service) StartCandidateAssignment(ctx context.Context, assignmentID, candidateUserID string) (*CandidateAssignment, error) {
	todo, _ := json.Marshal(EmptyProgress())

	var ca CandidateAssignment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO candidate_assignments (assignment_id, candidate_user_id, todo)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (assignment_id, candidate_user_id) DO UPDATE SET updated_at = NOW()
		 RETURNING id::text, assignment_id::text, candidate_user_id, todo, created_at, updated_at`,
		assignmentID, candidateUserID, todo,
	).Scan(&ca.ID, &ca.AssignmentID, &ca.CandidateUserID, &ca.Todo, &ca.CreatedAt, &ca.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("startCandidateAssignment: %w", err)
	}
	return &ca, nil
}
