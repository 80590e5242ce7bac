package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/antigravlabs/stashd/internal/media"
	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/charmbracelet/log"
)

const (
	identifyAttempts = 3
	noMatchMessage   = "Could not identify song from audio"
	notFoundMessage  = "Not found on Spotify"
)

// Acquirer produces a local audio clip from a source URL.
type Acquirer interface {
	Acquire(ctx context.Context, url string) (*media.Clip, error)
}

// Recognizer fingerprints a local audio clip.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (models.Fingerprint, error)
}

// Searcher queries the catalog for track candidates.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]services.SpotifyTrack, error)
}

// PipelineEngine runs the full recognition pipeline: acquire a clip, identify
// it with bounded retry, search the catalog and pick the best candidate.
type PipelineEngine struct {
	acquirer   Acquirer
	recognizer Recognizer
	searcher   Searcher
	logger     *log.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewPipelineEngine creates a PipelineEngine with the provided stages.
func NewPipelineEngine(acquirer Acquirer, recognizer Recognizer, searcher Searcher, logger *log.Logger) *PipelineEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PipelineEngine{
		acquirer:   acquirer,
		recognizer: recognizer,
		searcher:   searcher,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Recognize runs the pipeline for one source URL.
//
// Outcomes: a successful recognition; a Recognition with Success=false when
// the audio matched nothing or the match is absent from the catalog; or an
// error (ErrAcquisitionFailed, ErrIdentifyFailed) when a stage broke. The
// clip is deleted before returning on every path.
func (e *PipelineEngine) Recognize(ctx context.Context, url string, progress chan<- ProgressUpdate) (*models.Recognition, error) {
	if e.acquirer == nil || e.recognizer == nil || e.searcher == nil {
		return nil, fmt.Errorf("%w: pipeline stages not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, acquiringUpdate(url))

	clip, err := e.acquirer.Acquire(ctx, url)
	if err != nil {
		return nil, err
	}
	defer clip.Remove()

	fingerprint, err := e.identify(ctx, clip.Path, progress)
	if err != nil {
		return nil, err
	}

	if !fingerprint.Matched {
		e.logger.Info("no fingerprint match", "url", url)
		return &models.Recognition{Success: false, Error: noMatchMessage}, nil
	}

	e.logger.Info("fingerprint match", "title", fingerprint.Title, "artist", fingerprint.Artist)

	query := fmt.Sprintf("%s %s", fingerprint.Title, fingerprint.Artist)
	e.sendProgress(progress, searchUpdate(query))

	candidates, err := e.searcher.Search(ctx, query, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog search: %v", shared.ErrIdentifyFailed, err)
	}

	best, err := BestMatch(candidates, fingerprint.Artist)
	if err != nil {
		e.logger.Info("no catalog candidate", "query", query)
		return &models.Recognition{Success: false, Error: notFoundMessage}, nil
	}

	e.sendProgress(progress, matchedUpdate(best))

	result := &models.Recognition{
		Success:    true,
		Track:      best.Name,
		Artist:     best.PrimaryArtist(),
		SpotifyURI: best.URI,
		SpotifyURL: best.ExternalURLs.Spotify,
		PreviewURL: best.PreviewURL,
		Confidence: MatchConfidence,
	}
	if len(best.Album.Images) > 0 {
		result.AlbumArt = best.Album.Images[0].URL
	}

	return result, nil
}

// identify fingerprints the clip with up to three attempts and linearly
// increasing backoff between them. A clean no-match result is final and is
// never retried.
func (e *PipelineEngine) identify(ctx context.Context, path string, progress chan<- ProgressUpdate) (models.Fingerprint, error) {
	var lastErr error

	for attempt := 1; attempt <= identifyAttempts; attempt++ {
		e.sendProgress(progress, identifyUpdate(attempt, identifyAttempts))

		fingerprint, err := e.recognizer.Recognize(ctx, path)
		if err == nil {
			return fingerprint, nil
		}

		lastErr = err
		e.logger.Warn("recognition attempt failed", "attempt", attempt, "error", err)

		if attempt < identifyAttempts {
			e.sleep(time.Duration(attempt) * time.Second)
		}
	}

	return models.Fingerprint{}, fmt.Errorf("%w: %v", shared.ErrIdentifyFailed, lastErr)
}
