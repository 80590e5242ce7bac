package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/ratelimit"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/antigravlabs/stashd/internal/tasks"
	tu "github.com/antigravlabs/stashd/internal/testing"
)

func newTestAPI(pipeline Pipeline, library *tu.MockLibrary, limit int) *API {
	labeler := &tu.MockLabeler{Genre: "Techno", Vibe: "Late-night warehouse energy."}
	factory := func(token string) (*tasks.Librarian, error) {
		if token == "" {
			return nil, shared.ErrNotAuthenticated
		}
		return tasks.NewLibrarian(library, labeler, nil), nil
	}
	return NewAPI(ratelimit.New(limit), pipeline, factory, labeler, nil)
}

func postJSON(t *testing.T, api *API, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)

	t.Run("GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]string
		json.NewDecoder(rec.Body).Decode(&body)
		if body["status"] == "" {
			t.Error("expected a status field")
		}
	})

	t.Run("HEAD", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("POST Is Rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestRecognizeEndpoint(t *testing.T) {
	success := &models.Recognition{
		Success:    true,
		Track:      "One More Time",
		Artist:     "Daft Punk",
		SpotifyURI: "spotify:track:t1",
		Confidence: 0.99,
	}

	t.Run("Successful Recognition", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{Result: success}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/recognize", `{"url":"https://instagram.com/reel/x"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var body models.Recognition
		json.NewDecoder(rec.Body).Decode(&body)
		if !body.Success || body.Track != "One More Time" {
			t.Errorf("unexpected body %+v", body)
		}
	})

	t.Run("No Match Is Still 200", func(t *testing.T) {
		noMatch := &models.Recognition{Success: false, Error: "Could not identify song from audio"}
		api := newTestAPI(&tu.MockPipeline{Result: noMatch}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body models.Recognition
		json.NewDecoder(rec.Body).Decode(&body)
		if body.Success {
			t.Error("expected success=false")
		}
	})

	t.Run("Acquisition Failure Is 422", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{Err: shared.ErrAcquisitionFailed}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("Identify Failure Is 500", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{Err: shared.ErrIdentifyFailed}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Limit Exhaustion Is 429 With Limit In Message", func(t *testing.T) {
		pipeline := &tu.MockPipeline{Result: success}
		api := newTestAPI(pipeline, &tu.MockLibrary{}, 2)

		headers := map[string]string{"X-Forwarded-For": "203.0.113.9"}
		for i := 0; i < 2; i++ {
			if rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, headers); rec.Code != http.StatusOK {
				t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
			}
		}

		rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, headers)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var body map[string]string
		json.NewDecoder(rec.Body).Decode(&body)
		if !strings.Contains(body["detail"], "2") {
			t.Errorf("denial message must name the limit, got %q", body["detail"])
		}
		if len(pipeline.URLs) != 2 {
			t.Errorf("denied request must not reach the pipeline, got %d calls", len(pipeline.URLs))
		}
	})

	t.Run("Clients Without Forwarding Header Share A Bucket", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{Result: success}, &tu.MockLibrary{}, 1)

		if rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/1"}`, nil); rec.Code != http.StatusOK {
			t.Fatalf("first request should pass, got %d", rec.Code)
		}
		if rec := postJSON(t, api, "/recognize", `{"url":"https://x.com/2"}`, nil); rec.Code != http.StatusTooManyRequests {
			t.Errorf("un-proxied clients share the unknown bucket, got %d", rec.Code)
		}
	})

	t.Run("Missing URL Is 400", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)
		if rec := postJSON(t, api, "/recognize", `{}`, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Invalid JSON Is 400", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)
		if rec := postJSON(t, api, "/recognize", `{nope`, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSaveTrackEndpoint(t *testing.T) {
	t.Run("Saves To Liked Songs", func(t *testing.T) {
		library := &tu.MockLibrary{}
		api := newTestAPI(&tu.MockPipeline{}, library, 10)

		rec := postJSON(t, api, "/save_track", `{"token":"tok","track_id":"t1","playlist_id":"1"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var result models.SaveResult
		json.NewDecoder(rec.Body).Decode(&result)
		if !result.Success || result.Genre != "Techno" {
			t.Errorf("unexpected result %+v", result)
		}
		if len(library.Liked) != 1 {
			t.Errorf("expected one liked track, got %v", library.Liked)
		}
	})

	t.Run("Missing Token Is 401", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)
		rec := postJSON(t, api, "/save_track", `{"track_id":"t1","playlist_id":"1"}`, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Library Failure Is 500", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{Err: errors.New("spotify down")}, 10)
		rec := postJSON(t, api, "/save_track", `{"token":"tok","track_id":"t1","playlist_id":"1"}`, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestRemoveTrackEndpoint(t *testing.T) {
	t.Run("Defaults To Liked Songs", func(t *testing.T) {
		library := &tu.MockLibrary{}
		api := newTestAPI(&tu.MockPipeline{}, library, 10)

		rec := postJSON(t, api, "/remove_track", `{"token":"tok","track_id":"t1"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(library.Unliked) != 1 {
			t.Errorf("expected liked-songs removal, got %v", library.Unliked)
		}
		if len(library.Removed) != 0 {
			t.Error("default removal should not touch playlists")
		}
	})

	t.Run("Playlist Removal", func(t *testing.T) {
		library := &tu.MockLibrary{}
		api := newTestAPI(&tu.MockPipeline{}, library, 10)

		rec := postJSON(t, api, "/remove_track", `{"token":"tok","track_id":"t1","playlist_id":"p7"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := library.Removed["p7"]; len(got) != 1 {
			t.Errorf("expected playlist removal, got %v", library.Removed)
		}
	})
}

func TestAnalyzeVibeEndpoint(t *testing.T) {
	t.Run("Needs No Token", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/analyze_vibe", `{"songs":["Spastik - Plastikman"]}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var vibe models.Vibe
		json.NewDecoder(rec.Body).Decode(&vibe)
		if vibe.Vibe != "Late-night warehouse energy." {
			t.Errorf("unexpected vibe %q", vibe.Vibe)
		}
	})

	t.Run("Empty List Gets Starter Message", func(t *testing.T) {
		api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)

		rec := postJSON(t, api, "/analyze_vibe", `{"songs":[]}`, nil)
		var vibe models.Vibe
		json.NewDecoder(rec.Body).Decode(&vibe)
		if !strings.Contains(vibe.Vibe, "No music yet") {
			t.Errorf("unexpected message %q", vibe.Vibe)
		}
	})
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(&tu.MockPipeline{}, &tu.MockLibrary{}, 10)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
