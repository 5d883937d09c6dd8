// Package match: HTTP handlers for the match service.
//
// The engine assumes its caller (the Gateway) has already established
// required access; there is no authorization policy here.
//
// Routes:
//
//	POST /matches                     → upsert a scored match (idempotent)
//	GET  /matches/{id}                → fetch one match
//	POST /matches/{id}/transition     → move a match to a new review status
//	GET  /jobs/{id}/matches           → list matches for a job
//	PUT  /jobs/{id}/assignment        → create/replace the job's assignment template
//	GET  /jobs/{id}/assignment        → fetch the job's assignment template
//	GET  /candidates/{id}/matches     → list matches for a candidate
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"repohire/match-service/internal/assignment"
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	svc  *Service
	asvc *assignment.Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, asvc *assignment.Service) *Handler {
	return &Handler{svc: svc, asvc: asvc}
}

// RegisterRoutes mounts all match-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/matches", h.handleMatches)
	mux.HandleFunc("/matches/", h.handleMatchAction)
	mux.HandleFunc("/jobs/", h.handleJobSub)
	mux.HandleFunc("/candidates/", h.handleCandidateSub)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleMatches handles POST /matches
func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.upsertMatch(w, r)
}

// handleMatchAction handles GET /matches/{id} and POST /matches/{id}/transition
func (h *Handler) handleMatchAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.getMatch(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "transition" && r.Method == http.MethodPost:
		h.transition(w, r, parts[1])
	default:
		jsonError(w, "not found", http.StatusNotFound)
	}
}

// handleJobSub handles GET /jobs/{id}/matches and PUT|GET /jobs/{id}/assignment
func (h *Handler) handleJobSub(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	jobID := parts[1]

	switch {
	case parts[2] == "matches" && r.Method == http.MethodGet:
		h.listForJob(w, r, jobID)
	case parts[2] == "assignment" && r.Method == http.MethodPut:
		h.upsertAssignment(w, r, jobID)
	case parts[2] == "assignment" && r.Method == http.MethodGet:
		h.getAssignment(w, r, jobID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", parts[2]), http.StatusNotFound)
	}
}

// handleCandidateSub handles GET /candidates/{id}/matches
func (h *Handler) handleCandidateSub(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "matches" || r.Method != http.MethodGet {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.listForCandidate(w, r, parts[1])
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) upsertMatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JobID           string       `json:"jobId"`
		CandidateUserID string       `json:"candidateUserId"`
		Completed       bool         `json:"completed"`
		Analysis        RepoAnalysis `json:"analysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	upsert := h.svc.UpsertMatch
	if body.Completed {
		// Pipeline-terminal entry point: the analysis already finished.
		upsert = h.svc.UpsertCompletedMatch
	}

	m, err := upsert(r.Context(), body.JobID, body.CandidateUserID, body.Analysis)
	if err != nil {
		h.writeError(w, "upsertMatch", err)
		return
	}
	jsonOK(w, m)
}

func (h *Handler) getMatch(w http.ResponseWriter, r *http.Request, matchID string) {
	m, err := h.svc.GetMatch(r.Context(), matchID)
	if err != nil {
		h.writeError(w, "getMatch", err)
		return
	}
	jsonOK(w, m)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, matchID string) {
	var body struct {
		NewStatus string `json:"newStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}

	m, err := h.svc.TransitionStatus(r.Context(), matchID, body.NewStatus)
	if err != nil {
		h.writeError(w, "transition", err)
		return
	}
	jsonOK(w, m)
}

func (h *Handler) listForJob(w http.ResponseWriter, r *http.Request, jobID string) {
	matches, err := h.svc.ListForJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, "listForJob", err)
		return
	}
	jsonOK(w, matches)
}

func (h *Handler) listForCandidate(w http.ResponseWriter, r *http.Request, candidateUserID string) {
	matches, err := h.svc.ListForCandidate(r.Context(), candidateUserID)
	if err != nil {
		h.writeError(w, "listForCandidate", err)
		return
	}
	jsonOK(w, matches)
}

func (h *Handler) upsertAssignment(w http.ResponseWriter, r *http.Request, jobID string) {
	var body struct {
		RepoTemplateURL string `json:"repoTemplateUrl"`
		Instructions    string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RepoTemplateURL == "" {
		jsonError(w, "body must contain repoTemplateUrl", http.StatusBadRequest)
		return
	}

	a, err := h.asvc.UpsertAssignment(r.Context(), jobID, body.RepoTemplateURL, body.Instructions)
	if err != nil {
		h.writeError(w, "upsertAssignment", err)
		return
	}
	jsonOK(w, a)
}

func (h *Handler) getAssignment(w http.ResponseWriter, r *http.Request, jobID string) {
	a, err := h.asvc.GetForJob(r.Context(), jobID)
	if errors.Is(err, assignment.ErrNotFound) {
		jsonError(w, "assignment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, "getAssignment", err)
		return
	}
	jsonOK(w, a)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// writeError maps domain errors onto HTTP statuses. The split matters to
// callers: 503 means retry is safe, 409 means the action is not permitted
// from the current state.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	var te *InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.As(err, &te):
		jsonError(w, te.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflictNotResolved):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Printf("[match] %s error: %v", op, err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
