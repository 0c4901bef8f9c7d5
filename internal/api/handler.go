// Package api implements the HTTP surface of the sync service.
//
// This is the contract boundary with the presentation layer: it triggers
// sync/migration/cleanup passes and records local writes, and renders
// whatever local store state results.
//
// Routes:
//
//	GET    /interviews                → list local interviews by display date
//	POST   /interviews                → create locally + immediate push
//	POST   /interviews/{id}/push      → re-push one interview
//	POST   /interviews/{id}/advance   → next round, previous outcome → PASSED
//	POST   /sync                      → reconcile + dedup (manual refresh)
//	POST   /migrate                   → push guest-local interviews
//	POST   /cleanup                   → dedup only
//	POST   /session                   → install token, run sign-in flow
//	DELETE /session                   → clear token
//	GET    /status                    → flags + revision counter
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/pipeline"
	"jobmate/sync-service/internal/remote"
)

// TokenSink is where the session endpoints install the bearer token.
// *remote.Client satisfies it.
type TokenSink interface {
	SetToken(token string)
}

// Handler holds shared dependencies.
type Handler struct {
	svc    *pipeline.Service
	tokens TokenSink
}

// NewHandler returns a configured Handler.
func NewHandler(svc *pipeline.Service, tokens TokenSink) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes mounts all sync-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/interviews", h.handleInterviews)
	mux.HandleFunc("/interviews/", h.handleInterviewAction)
	mux.HandleFunc("/sync", h.handleSync)
	mux.HandleFunc("/migrate", h.handleMigrate)
	mux.HandleFunc("/cleanup", h.handleCleanup)
	mux.HandleFunc("/session", h.handleSession)
	mux.HandleFunc("/status", h.handleStatus)
}

// ─── Wire shapes ─────────────────────────────────────────────────────────────

// interviewJSON is the JSON shape returned to the presentation layer.
type interviewJSON struct {
	ID              int64      `json:"id"`
	RemoteID        *int64     `json:"remoteId"`
	CompanyID       int64      `json:"companyId"`
	StageID         *int64     `json:"stageId"`
	StageMethodID   *int64     `json:"stageMethodId"`
	JobTitle        string     `json:"jobTitle"`
	ClientCompany   string     `json:"clientCompany,omitempty"`
	Interviewer     string     `json:"interviewer,omitempty"`
	ApplicationDate time.Time  `json:"applicationDate"`
	Date            *time.Time `json:"date,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	DisplayDate     *time.Time `json:"displayDate,omitempty"`
	Outcome         string     `json:"outcome,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Link            string     `json:"link,omitempty"`
	JobListing      string     `json:"jobListing,omitempty"`
	Location        string     `json:"location,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toInterviewJSON(i model.Interview) interviewJSON {
	out := interviewJSON{
		ID:              i.ID,
		RemoteID:        i.RemoteID,
		CompanyID:       i.CompanyID,
		StageID:         i.StageID,
		StageMethodID:   i.StageMethodID,
		JobTitle:        i.JobTitle,
		ClientCompany:   i.ClientCompany,
		Interviewer:     i.Interviewer,
		ApplicationDate: i.ApplicationDate,
		Date:            i.Date,
		Deadline:        i.Deadline,
		Outcome:         string(i.Outcome),
		Notes:           i.Notes,
		Link:            i.Link,
		JobListing:      i.Metadata.JobListing,
		Location:        i.Metadata.Location,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if t, ok := i.DisplayDate(); ok {
		out.DisplayDate = &t
	}
	return out
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

func (h *Handler) handleInterviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listInterviews(w, r)
	case http.MethodPost:
		h.addInterview(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleInterviewAction handles POST /interviews/{id}/push|advance
func (h *Handler) handleInterviewAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		jsonError(w, "invalid interview id", http.StatusBadRequest)
		return
	}

	switch parts[2] {
	case "push":
		h.pushInterview(w, r, id)
	case "advance":
		h.advanceInterview(w, r, id)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", parts[2]), http.StatusNotFound)
	}
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) listInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.svc.ListInterviews(r.Context())
	if err != nil {
		log.Printf("[api] listInterviews error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	out := make([]interviewJSON, len(interviews))
	for i, iv := range interviews {
		out[i] = toInterviewJSON(iv)
	}
	jsonOK(w, out)
}

func (h *Handler) addInterview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Company         string     `json:"company"`
		JobTitle        string     `json:"jobTitle"`
		ApplicationDate time.Time  `json:"applicationDate"`
		ClientCompany   string     `json:"clientCompany"`
		Interviewer     string     `json:"interviewer"`
		StageID         *int64     `json:"stageId"`
		StageMethodID   *int64     `json:"stageMethodId"`
		Date            *time.Time `json:"date"`
		Deadline        *time.Time `json:"deadline"`
		Notes           string     `json:"notes"`
		Link            string     `json:"link"`
		JobListing      string     `json:"jobListing"`
		Location        string     `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	iv, err := h.svc.AddInterview(r.Context(), pipeline.InterviewInput{
		CompanyName:     body.Company,
		JobTitle:        body.JobTitle,
		ApplicationDate: body.ApplicationDate,
		ClientCompany:   body.ClientCompany,
		Interviewer:     body.Interviewer,
		StageID:         body.StageID,
		StageMethodID:   body.StageMethodID,
		Date:            body.Date,
		Deadline:        body.Deadline,
		Notes:           body.Notes,
		Link:            body.Link,
		JobListing:      body.JobListing,
		Location:        body.Location,
	})
	if err != nil {
		h.writeError(w, "addInterview", err)
		return
	}
	jsonOK(w, toInterviewJSON(*iv))
}

func (h *Handler) pushInterview(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.PushInterview(r.Context(), id); err != nil {
		h.writeError(w, "pushInterview", err)
		return
	}
	jsonOK(w, map[string]string{"status": "pushed"})
}

func (h *Handler) advanceInterview(w http.ResponseWriter, r *http.Request, id int64) {
	var body struct {
		StageID       *int64     `json:"stageId"`
		StageMethodID *int64     `json:"stageMethodId"`
		Date          *time.Time `json:"date"`
		Deadline      *time.Time `json:"deadline"`
		Interviewer   string     `json:"interviewer"`
		Notes         string     `json:"notes"`
		Link          string     `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	next, err := h.svc.AdvanceInterview(r.Context(), id, pipeline.AdvanceInput{
		StageID:       body.StageID,
		StageMethodID: body.StageMethodID,
		Date:          body.Date,
		Deadline:      body.Deadline,
		Interviewer:   body.Interviewer,
		Notes:         body.Notes,
		Link:          body.Link,
	})
	if err != nil {
		h.writeError(w, "advanceInterview", err)
		return
	}
	jsonOK(w, toInterviewJSON(*next))
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.svc.SyncAll(r.Context()); err != nil {
		h.writeError(w, "sync", err)
		return
	}
	jsonOK(w, map[string]string{"status": "synced"})
}

func (h *Handler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	err := h.svc.MigrateGuestData(r.Context())
	var partial *pipeline.MigrationError
	if errors.As(err, &partial) {
		// Successes are committed; report the aggregate with 207.
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"status":    "partial",
			"succeeded": partial.Succeeded,
			"failed":    partial.Failed,
		})
		return
	}
	if err != nil {
		h.writeError(w, "migrate", err)
		return
	}
	jsonOK(w, map[string]string{"status": "migrated"})
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.svc.CleanupAll(r.Context()); err != nil {
		h.writeError(w, "cleanup", err)
		return
	}
	jsonOK(w, map[string]string{"status": "cleaned"})
}

// handleSession installs or clears the bearer token. Installing a token
// runs the full sign-in flow (migrate → reconcile → dedup).
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
			jsonError(w, "body must contain token", http.StatusBadRequest)
			return
		}
		h.tokens.SetToken(body.Token)
		if err := h.svc.PerformSignIn(r.Context()); err != nil {
			var partial *pipeline.MigrationError
			if errors.As(err, &partial) {
				writeJSON(w, http.StatusMultiStatus, map[string]any{
					"status":    "signed-in-partial",
					"succeeded": partial.Succeeded,
					"failed":    partial.Failed,
				})
				return
			}
			h.writeError(w, "signIn", err)
			return
		}
		jsonOK(w, map[string]string{"status": "signed-in"})
	case http.MethodDelete:
		h.tokens.SetToken("")
		jsonOK(w, map[string]string{"status": "signed-out"})
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, map[string]any{
		"syncing":   h.svc.Syncing(),
		"migrating": h.svc.Migrating(),
		"revision":  h.svc.Revision(),
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// writeError maps engine and remote errors onto HTTP statuses. Sync
// failures are retryable by design, so remote trouble surfaces as 502/503
// rather than burying the local state.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var validation *pipeline.ValidationError
	var serverErr *remote.ServerError
	var netErr *remote.NetworkError

	switch {
	case errors.As(err, &validation):
		jsonError(w, validation.Msg, http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrInterviewNotFound):
		jsonError(w, "interview not found", http.StatusNotFound)
	case errors.Is(err, pipeline.ErrNotAuthenticated), errors.Is(err, remote.ErrUnauthorized):
		jsonError(w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, pipeline.ErrSyncInProgress), errors.Is(err, pipeline.ErrMigrationInProgress):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &serverErr), errors.Is(err, remote.ErrDecoding):
		log.Printf("[api] %s remote error: %v", op, err)
		jsonError(w, "tracker API error", http.StatusBadGateway)
	case errors.As(err, &netErr):
		log.Printf("[api] %s network error: %v", op, err)
		jsonError(w, "tracker API unreachable", http.StatusServiceUnavailable)
	default:
		log.Printf("[api] %s error: %v", op, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
