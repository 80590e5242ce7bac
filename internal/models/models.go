package models

// Fingerprint is the textual best guess produced by the audio recognition
// service. A zero Matched means the service answered but found nothing, which
// is a normal negative outcome rather than an error.
type Fingerprint struct {
	Matched bool   // Matched reports whether the service returned at least one match
	Title   string // Title of the top match
	Artist  string // Artist is the top match's primary subtitle/artist field
}

// Recognition is the pipeline's final answer for one source URL.
//
// The JSON field names mirror the public API contract consumed by the web
// client, including the null-able preview URL.
type Recognition struct {
	Success    bool    `json:"success"`
	Track      string  `json:"track,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	AlbumArt   string  `json:"album_art,omitempty"`
	SpotifyURI string  `json:"spotify_uri,omitempty"`
	SpotifyURL string  `json:"spotify_url,omitempty"`
	PreviewURL *string `json:"preview_url,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// SaveResult describes where a track ended up after a save operation.
type SaveResult struct {
	Success      bool   `json:"success"`
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name"`
	Genre        string `json:"genre"`
}

// Vibe is the generative one-liner describing a user's recent music taste.
type Vibe struct {
	Vibe string `json:"vibe"`
}
