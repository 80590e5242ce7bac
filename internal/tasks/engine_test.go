package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/antigravlabs/stashd/internal/media"
	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
)

type stubAcquirer struct {
	clipPath string
	err      error
}

func (s *stubAcquirer) Acquire(_ context.Context, _ string) (*media.Clip, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &media.Clip{Path: s.clipPath}, nil
}

// stubRecognizer fails with errs[i] on the i-th call, then returns result.
type stubRecognizer struct {
	errs   []error
	result models.Fingerprint
	calls  int
}

func (s *stubRecognizer) Recognize(_ context.Context, _ string) (models.Fingerprint, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return models.Fingerprint{}, s.errs[s.calls-1]
	}
	return s.result, nil
}

type stubSearcher struct {
	tracks []services.SpotifyTrack
	err    error
	query  string
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) ([]services.SpotifyTrack, error) {
	s.query = query
	return s.tracks, s.err
}

func newClipFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertClipGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clip must be deleted before the pipeline returns")
	}
}

func newEngine(a Acquirer, r Recognizer, s Searcher) *PipelineEngine {
	e := NewPipelineEngine(a, r, s, nil)
	e.sleep = func(time.Duration) {}
	return e
}

func TestPipelineRecognize(t *testing.T) {
	matched := models.Fingerprint{Matched: true, Title: "One More Time", Artist: "Daft Punk"}

	t.Run("Full Pipeline Success", func(t *testing.T) {
		clip := newClipFile(t)
		searcher := &stubSearcher{tracks: []services.SpotifyTrack{
			{
				ID:         "t1",
				Name:       "One More Time",
				Artists:    []services.SpotifyArtist{{Name: "Daft Punk"}},
				Popularity: 80,
				URI:        "spotify:track:t1",
				Album:      services.SpotifyAlbum{Images: []services.SpotifyImage{{URL: "http://art"}}},
			},
		}}
		engine := newEngine(&stubAcquirer{clipPath: clip}, &stubRecognizer{result: matched}, searcher)

		result, err := engine.Recognize(context.Background(), "https://example.com/reel", nil)
		if err != nil {
			t.Fatalf("pipeline failed: %v", err)
		}
		if !result.Success {
			t.Fatal("expected success")
		}
		if result.Track != "One More Time" || result.Artist != "Daft Punk" {
			t.Errorf("unexpected result %+v", result)
		}
		if result.Confidence != MatchConfidence {
			t.Errorf("expected confidence %v, got %v", MatchConfidence, result.Confidence)
		}
		if result.AlbumArt != "http://art" {
			t.Errorf("expected first album image, got %q", result.AlbumArt)
		}
		if searcher.query != "One More Time Daft Punk" {
			t.Errorf("expected combined title artist query, got %q", searcher.query)
		}
		assertClipGone(t, clip)
	})

	t.Run("Acquisition Failure Propagates", func(t *testing.T) {
		engine := newEngine(&stubAcquirer{err: shared.ErrAcquisitionFailed}, &stubRecognizer{}, &stubSearcher{})

		_, err := engine.Recognize(context.Background(), "https://example.com/x", nil)
		if !errors.Is(err, shared.ErrAcquisitionFailed) {
			t.Errorf("expected ErrAcquisitionFailed, got %v", err)
		}
	})

	t.Run("No Match Is Not An Error", func(t *testing.T) {
		clip := newClipFile(t)
		engine := newEngine(&stubAcquirer{clipPath: clip}, &stubRecognizer{result: models.Fingerprint{Matched: false}}, &stubSearcher{})

		result, err := engine.Recognize(context.Background(), "https://example.com/x", nil)
		if err != nil {
			t.Fatalf("no-match should not error: %v", err)
		}
		if result.Success {
			t.Error("expected success=false")
		}
		if result.Error != "Could not identify song from audio" {
			t.Errorf("unexpected message %q", result.Error)
		}
		assertClipGone(t, clip)
	})

	t.Run("Empty Search Results Is Not Found", func(t *testing.T) {
		clip := newClipFile(t)
		engine := newEngine(&stubAcquirer{clipPath: clip}, &stubRecognizer{result: matched}, &stubSearcher{})

		result, err := engine.Recognize(context.Background(), "https://example.com/x", nil)
		if err != nil {
			t.Fatalf("not-found should not error: %v", err)
		}
		if result.Success || result.Error != "Not found on Spotify" {
			t.Errorf("unexpected result %+v", result)
		}
		assertClipGone(t, clip)
	})

	t.Run("Clip Removed When Identification Fails", func(t *testing.T) {
		clip := newClipFile(t)
		recognizer := &stubRecognizer{errs: []error{
			errors.New("down"), errors.New("down"), errors.New("down"),
		}}
		engine := newEngine(&stubAcquirer{clipPath: clip}, recognizer, &stubSearcher{})

		_, err := engine.Recognize(context.Background(), "https://example.com/x", nil)
		if !errors.Is(err, shared.ErrIdentifyFailed) {
			t.Errorf("expected ErrIdentifyFailed, got %v", err)
		}
		assertClipGone(t, clip)
	})

	t.Run("Search Failure Surfaces As Identify Error", func(t *testing.T) {
		clip := newClipFile(t)
		engine := newEngine(&stubAcquirer{clipPath: clip}, &stubRecognizer{result: matched}, &stubSearcher{err: errors.New("spotify down")})

		_, err := engine.Recognize(context.Background(), "https://example.com/x", nil)
		if !errors.Is(err, shared.ErrIdentifyFailed) {
			t.Errorf("expected ErrIdentifyFailed, got %v", err)
		}
		assertClipGone(t, clip)
	})

	t.Run("Progress Updates Are Emitted", func(t *testing.T) {
		clip := newClipFile(t)
		engine := newEngine(&stubAcquirer{clipPath: clip}, &stubRecognizer{result: models.Fingerprint{Matched: false}}, &stubSearcher{})

		progress := make(chan ProgressUpdate, 16)
		engine.Recognize(context.Background(), "https://example.com/x", progress)
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		if len(phases) < 2 || phases[0] != AcquireClip || phases[1] != IdentifyAudio {
			t.Errorf("expected acquire then identify phases, got %v", phases)
		}
	})
}

func TestPipelineIdentifyRetry(t *testing.T) {
	t.Run("Third Attempt Result Is Returned", func(t *testing.T) {
		var waits []time.Duration
		recognizer := &stubRecognizer{
			errs:   []error{errors.New("flaky"), errors.New("flaky")},
			result: models.Fingerprint{Matched: true, Title: "Song", Artist: "Artist"},
		}
		engine := NewPipelineEngine(&stubAcquirer{}, recognizer, &stubSearcher{}, nil)
		engine.sleep = func(d time.Duration) { waits = append(waits, d) }

		fp, err := engine.identify(context.Background(), "clip.mp3", nil)
		if err != nil {
			t.Fatalf("third attempt should succeed: %v", err)
		}
		if fp.Title != "Song" {
			t.Errorf("expected third call's result, got %+v", fp)
		}
		if recognizer.calls != 3 {
			t.Errorf("expected 3 attempts, got %d", recognizer.calls)
		}

		// Linear backoff: 1s after the first failure, 2s after the second.
		if len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
			t.Errorf("expected backoff [1s 2s], got %v", waits)
		}
	})

	t.Run("No Match Is Final Not Retried", func(t *testing.T) {
		recognizer := &stubRecognizer{result: models.Fingerprint{Matched: false}}
		engine := newEngine(&stubAcquirer{}, recognizer, &stubSearcher{})

		fp, err := engine.identify(context.Background(), "clip.mp3", nil)
		if err != nil {
			t.Fatal(err)
		}
		if fp.Matched {
			t.Error("expected no match")
		}
		if recognizer.calls != 1 {
			t.Errorf("a clean no-match must not be retried, got %d calls", recognizer.calls)
		}
	})

	t.Run("Three Failures Is Fatal", func(t *testing.T) {
		recognizer := &stubRecognizer{errs: []error{
			errors.New("a"), errors.New("b"), errors.New("c"),
		}}
		engine := newEngine(&stubAcquirer{}, recognizer, &stubSearcher{})

		_, err := engine.identify(context.Background(), "clip.mp3", nil)
		if !errors.Is(err, shared.ErrIdentifyFailed) {
			t.Fatalf("expected ErrIdentifyFailed, got %v", err)
		}
		if recognizer.calls != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", recognizer.calls)
		}
	})
}
