package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/ratelimit"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/antigravlabs/stashd/internal/tasks"
	"github.com/charmbracelet/log"
)

// Pipeline is the recognition entry point the API delegates to.
type Pipeline interface {
	Recognize(ctx context.Context, url string, progress chan<- tasks.ProgressUpdate) (*models.Recognition, error)
}

// LibrarianFactory builds a per-request Librarian from the caller's bearer
// token.
type LibrarianFactory func(token string) (*tasks.Librarian, error)

// API serves the recognition surface. Implements [Handler].
type API struct {
	limiter      *ratelimit.Limiter
	pipeline     Pipeline
	newLibrarian LibrarianFactory
	labeler      tasks.Labeler
	logger       *log.Logger
}

// NewAPI creates the API handler set.
func NewAPI(limiter *ratelimit.Limiter, pipeline Pipeline, factory LibrarianFactory, labeler tasks.Labeler, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		limiter:      limiter,
		pipeline:     pipeline,
		newLibrarian: factory,
		labeler:      labeler,
		logger:       logger,
	}
}

// Routes returns the path patterns this handler serves.
func (a *API) Routes() []string {
	return []string{"/", "/recognize", "/save_track", "/remove_track", "/analyze_vibe"}
}

// ServeHTTP dispatches to the endpoint handlers.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		a.health(w, r)
	case "/recognize":
		a.post(w, r, a.recognize)
	case "/save_track":
		a.post(w, r, a.saveTrack)
	case "/remove_track":
		a.post(w, r, a.removeTrack)
	case "/analyze_vibe":
		a.post(w, r, a.analyzeVibe)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) post(w http.ResponseWriter, r *http.Request, handler http.HandlerFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError mirrors the {"detail": ...} error envelope the web client expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Stash Engine Online"})
}

type recognizeRequest struct {
	URL string `json:"url"`
}

// recognize gates admission per client, then runs the pipeline. Acquisition
// failures come back unprocessable so the client can suggest another link;
// identification failures are internal errors.
func (a *API) recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	clientID := ClientID(r)
	if !a.limiter.Allow(clientID) {
		writeError(w, http.StatusTooManyRequests, fmt.Sprintf(
			"Daily limit reached (%d reels/day). Upgrade to Pro for unlimited access!", a.limiter.Limit(),
		))
		return
	}

	a.logger.Info("processing", "url", req.URL, "client", clientID, "count", a.limiter.Count(clientID))

	result, err := a.pipeline.Recognize(r.Context(), req.URL, nil)
	switch {
	case errors.Is(err, shared.ErrAcquisitionFailed):
		writeError(w, http.StatusUnprocessableEntity,
			"Could not download audio. Instagram/TikTok might be blocking the request. Try a different link.")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

type saveTrackRequest struct {
	Token      string `json:"token"`
	TrackID    string `json:"track_id"`
	PlaylistID string `json:"playlist_id"`
}

func (a *API) saveTrack(w http.ResponseWriter, r *http.Request) {
	var req saveTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	librarian, err := a.newLibrarian(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := librarian.SaveTrack(r.Context(), req.TrackID, req.PlaylistID)
	if err != nil {
		a.logger.Error("save failed", "track", req.TrackID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type removeTrackRequest struct {
	Token      string `json:"token"`
	TrackID    string `json:"track_id"`
	PlaylistID string `json:"playlist_id"`
}

func (a *API) removeTrack(w http.ResponseWriter, r *http.Request) {
	req := removeTrackRequest{PlaylistID: "1"}
	if !decodeBody(w, r, &req) {
		return
	}

	librarian, err := a.newLibrarian(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := librarian.RemoveTrack(r.Context(), req.TrackID, req.PlaylistID); err != nil {
		a.logger.Error("remove failed", "track", req.TrackID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type analyzeVibeRequest struct {
	Songs []string `json:"songs"`
}

// analyzeVibe needs no user token; the labeler runs on app credentials and
// the vibe is computed from the song list the client already holds.
func (a *API) analyzeVibe(w http.ResponseWriter, r *http.Request) {
	var req analyzeVibeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, tasks.VibeSummary(r.Context(), a.labeler, req.Songs))
}
