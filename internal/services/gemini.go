// Generative-text client for genre and vibe labeling
//
// Labeling is cosmetic: every failure degrades to a fixed placeholder string
// instead of failing the request that asked for it.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/charmbracelet/log"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// Placeholders returned when labeling fails or cannot run.
	FallbackGenre = "Unknown"
	FallbackVibe  = "Eclectic and mysterious."
)

// GeminiService labels tracks with a one-word genre and summarizes recent
// saves into a one-sentence vibe.
type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiService creates a labeling client. A missing API key is allowed;
// every call will then return its fallback.
func NewGeminiService(cfg shared.GeminiConfig, logger *log.Logger) *GeminiService {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &GeminiService{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

func (g *GeminiService) Name() string {
	return "Gemini"
}

// generate runs a single prompt and returns the first candidate's text.
func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", shared.ErrMissingCredentials
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	var req generateRequest
	req.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	req.Contents[0].Parts = make([]struct {
		Text string `json:"text"`
	}, 1)
	req.Contents[0].Parts[0].Text = prompt

	var resp generateResponse
	if err := doJSON(ctx, g.httpClient, http.MethodPost, url, nil, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty generation response")
	}

	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

// DetectGenre returns the primary genre of a track as a single word, or
// [FallbackGenre] on any failure.
func (g *GeminiService) DetectGenre(ctx context.Context, track, artist string) string {
	prompt := fmt.Sprintf(
		"What is the primary music genre of the song '%s' by '%s'? Return only ONE word (e.g., Techno, House, Pop, Rock, Ambient). Do not write sentences.",
		track, artist,
	)

	genre, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("genre labeling failed", "track", track, "error", err)
		return FallbackGenre
	}

	return strings.ReplaceAll(genre, ".", "")
}

// AnalyzeVibe summarizes recently saved songs into a short sentence, or
// [FallbackVibe] on any failure. Only the first 20 songs are sent.
func (g *GeminiService) AnalyzeVibe(ctx context.Context, songs []string) string {
	if len(songs) > 20 {
		songs = songs[:20]
	}

	prompt := fmt.Sprintf(
		"Here is a user's recently liked music: %s. In one short, fun sentence (max 10 words), describe their current 'music vibe' or mood. Be creative like Spotify Wrapped. Example: 'Melancholic late-night techno drive by yourself.'",
		strings.Join(songs, ", "),
	)

	vibe, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("vibe labeling failed", "songs", len(songs), "error", err)
		return FallbackVibe
	}

	return vibe
}
