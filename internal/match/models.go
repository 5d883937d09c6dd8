package match

import (
	"encoding/json"
	"time"
)

// JobMatch is the persisted, scored, status-bearing pairing of a job, a
// candidate and one analyzed repository. repo_full_name is denormalized onto
// the row so the (job, candidate, repo) uniqueness key holds even for rows
// whose analysis was deleted or never linked.
type JobMatch struct {
	ID              string          `json:"id"`
	JobID           string          `json:"jobId"`
	CandidateUserID string          `json:"candidateUserId"`
	RepoFullName    string          `json:"repoFullName"`
	AnalysisID      *string         `json:"analysisId"`
	Score           float64         `json:"score"`
	Status          string          `json:"status"`
	HistoryLog      json.RawMessage `json:"historyLog"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// RepoAnalysis is the opaque output of the external analysis pipeline; the
// engine only reads it. Skills maps technology name → strength in [0,1].
type RepoAnalysis struct {
	ID           string             `json:"id"`
	RepoFullName string             `json:"repoFullName"`
	Skills       map[string]float64 `json:"skills"`
	CreatedAt    time.Time          `json:"createdAt"`
}
