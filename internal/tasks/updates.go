package tasks

import (
	"fmt"

	"github.com/antigravlabs/stashd/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	AcquireClip Phase = iota
	IdentifyAudio
	SearchCatalog
	SaveToLibrary
)

func (p Phase) String() string {
	switch p {
	case AcquireClip:
		return "acquire_clip"
	case IdentifyAudio:
		return "identify_audio"
	case SearchCatalog:
		return "search_catalog"
	case SaveToLibrary:
		return "save_to_library"
	default:
		return ""
	}
}

func acquiringUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireClip,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Downloading audio from %s...", url),
	}
}

func identifyUpdate(attempt, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   IdentifyAudio,
		Step:    attempt,
		Total:   total,
		Message: fmt.Sprintf("Listening... (attempt %d/%d)", attempt, total),
	}
}

func searchUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching Spotify for %q...", query),
	}
}

func matchedUpdate(track services.SpotifyTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched: %s - %s", track.PrimaryArtist(), track.Name),
		Data:    track,
	}
}
