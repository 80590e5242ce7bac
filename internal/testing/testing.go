// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/tasks"
)

// MockPipeline is a test double for the recognition pipeline. Result and Err
// are returned as-is; URLs records every call.
type MockPipeline struct {
	Result *models.Recognition
	Err    error
	URLs   []string
}

func (m *MockPipeline) Recognize(_ context.Context, url string, _ chan<- tasks.ProgressUpdate) (*models.Recognition, error) {
	m.URLs = append(m.URLs, url)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// MockLibrary is a test double for [tasks.LibraryClient]. Zero value serves
// a single user with no playlists.
type MockLibrary struct {
	Playlists []services.SpotifyPlaylist
	Liked     []string
	Unliked   []string
	Added     map[string][]string
	Removed   map[string][]string
	Err       error
}

func (m *MockLibrary) CurrentUser(context.Context) (*services.SpotifyUser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.SpotifyUser{ID: "mock-user"}, nil
}

func (m *MockLibrary) Track(_ context.Context, trackID string) (*services.SpotifyTrack, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.SpotifyTrack{
		ID:      trackID,
		Name:    "Mock Track",
		Artists: []services.SpotifyArtist{{Name: "Mock Artist"}},
	}, nil
}

func (m *MockLibrary) CurrentUserPlaylists(context.Context, int) (*services.SpotifyPaginatedPlaylists, error) {
	return &services.SpotifyPaginatedPlaylists{Items: m.Playlists}, nil
}

func (m *MockLibrary) Playlist(_ context.Context, id string) (*services.SpotifyPlaylist, error) {
	for _, p := range m.Playlists {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("playlist not found")
}

func (m *MockLibrary) CreatePlaylist(_ context.Context, _, name string, _ bool) (*services.SpotifyPlaylist, error) {
	playlist := services.SpotifyPlaylist{ID: "created", Name: name}
	m.Playlists = append(m.Playlists, playlist)
	return &playlist, nil
}

func (m *MockLibrary) PlaylistAddItems(_ context.Context, playlistID string, uris []string) error {
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return nil
}

func (m *MockLibrary) PlaylistRemoveItems(_ context.Context, playlistID string, uris []string) error {
	if m.Removed == nil {
		m.Removed = map[string][]string{}
	}
	m.Removed[playlistID] = append(m.Removed[playlistID], uris...)
	return nil
}

func (m *MockLibrary) SavedTracksAdd(_ context.Context, ids []string) error {
	m.Liked = append(m.Liked, ids...)
	return nil
}

func (m *MockLibrary) SavedTracksDelete(_ context.Context, ids []string) error {
	m.Unliked = append(m.Unliked, ids...)
	return nil
}

// MockLabeler returns fixed genre and vibe labels.
type MockLabeler struct {
	Genre string
	Vibe  string
}

func (m *MockLabeler) DetectGenre(context.Context, string, string) string { return m.Genre }
func (m *MockLabeler) AnalyzeVibe(context.Context, []string) string       { return m.Vibe }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
