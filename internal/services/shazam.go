// Audio recognition client for the Shazam detect API
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/shared"
)

// ShazamService submits audio clips to the recognition endpoint and extracts
// the top match. Retry policy lives in the pipeline engine, not here; a single
// Recognize call is a single upstream request.
type ShazamService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// detectResponse mirrors the detect API's envelope. Only the match list and
// the top track's title/subtitle are consumed; secondary matches are ignored.
type detectResponse struct {
	Matches []json.RawMessage `json:"matches"`
	Track   struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
	} `json:"track"`
}

// NewShazamService creates a recognition client for the configured endpoint.
func NewShazamService(cfg shared.ShazamConfig) (*ShazamService, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: shazam endpoint and api_key are required", shared.ErrMissingCredentials)
	}

	return &ShazamService{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *ShazamService) Name() string {
	return "Shazam"
}

// Recognize uploads the clip at path and returns the best textual guess.
// A response without matches is a normal no-match result, not an error.
func (s *ShazamService) Recognize(ctx context.Context, path string) (models.Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Fingerprint{}, fmt.Errorf("failed to read clip: %w", err)
	}

	body := base64.StdEncoding.EncodeToString(data)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(body))
	if err != nil {
		return models.Fingerprint{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-RapidAPI-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Fingerprint{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Fingerprint{}, fmt.Errorf("%w: recognition status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.Fingerprint{}, fmt.Errorf("failed to decode recognition response: %w", err)
	}

	if len(decoded.Matches) == 0 {
		return models.Fingerprint{Matched: false}, nil
	}

	return models.Fingerprint{
		Matched: true,
		Title:   decoded.Track.Title,
		Artist:  decoded.Track.Subtitle,
	}, nil
}
