package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/charmbracelet/log"
)

// Sentinel playlist IDs understood by the library operations. "1" (or an
// empty ID) targets the user's liked songs; SmartSortPlaylist routes the
// track into a genre playlist found or created on the fly.
const (
	SmartSortPlaylist = "smart_sort"
	likedSongsID      = "1"

	emptyVibeMessage = "No music yet! Start stashing to find your vibe."
)

// LibraryClient is the user-scoped slice of the catalog API the Librarian
// needs.
type LibraryClient interface {
	CurrentUser(ctx context.Context) (*services.SpotifyUser, error)
	Track(ctx context.Context, trackID string) (*services.SpotifyTrack, error)
	CurrentUserPlaylists(ctx context.Context, limit int) (*services.SpotifyPaginatedPlaylists, error)
	Playlist(ctx context.Context, playlistID string) (*services.SpotifyPlaylist, error)
	CreatePlaylist(ctx context.Context, userID, name string, public bool) (*services.SpotifyPlaylist, error)
	PlaylistAddItems(ctx context.Context, playlistID string, uris []string) error
	PlaylistRemoveItems(ctx context.Context, playlistID string, uris []string) error
	SavedTracksAdd(ctx context.Context, trackIDs []string) error
	SavedTracksDelete(ctx context.Context, trackIDs []string) error
}

// Labeler produces cosmetic genre and vibe labels.
type Labeler interface {
	DetectGenre(ctx context.Context, track, artist string) string
	AnalyzeVibe(ctx context.Context, songs []string) string
}

// Librarian performs library mutations on behalf of one authenticated user.
// Construct one per request around a user-scoped client.
type Librarian struct {
	client  LibraryClient
	labeler Labeler
	logger  *log.Logger
}

// NewLibrarian creates a Librarian for a user-scoped client.
func NewLibrarian(client LibraryClient, labeler Labeler, logger *log.Logger) *Librarian {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Librarian{client: client, labeler: labeler, logger: logger}
}

func trackURI(trackID string) string {
	return fmt.Sprintf("spotify:track:%s", trackID)
}

// SaveTrack stores a track in the user's library. The genre is always
// labeled for the result payload; with SmartSortPlaylist the track lands in
// a private "Stash: <genre>" playlist, found case-insensitively among the
// user's first 50 playlists or created if absent.
func (l *Librarian) SaveTrack(ctx context.Context, trackID, playlistID string) (*models.SaveResult, error) {
	user, err := l.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	track, err := l.client.Track(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("fetching track: %w", err)
	}

	genre := l.labeler.DetectGenre(ctx, track.Name, track.PrimaryArtist())
	genrePlaylistName := "Stash: " + genre

	targetID := playlistID
	if playlistID == SmartSortPlaylist {
		targetID, err = l.findOrCreatePlaylist(ctx, user.ID, genrePlaylistName)
		if err != nil {
			return nil, err
		}
	}

	finalName := "Liked Songs"
	if targetID != "" && targetID != likedSongsID {
		if err := l.client.PlaylistAddItems(ctx, targetID, []string{trackURI(trackID)}); err != nil {
			return nil, fmt.Errorf("adding to playlist: %w", err)
		}

		if playlistID == SmartSortPlaylist {
			finalName = genrePlaylistName
		} else if details, err := l.client.Playlist(ctx, targetID); err == nil {
			finalName = details.Name
		} else {
			finalName = "Selected Playlist"
		}
		l.logger.Info("added to playlist", "playlist", finalName, "track", track.Name)
	} else {
		if err := l.client.SavedTracksAdd(ctx, []string{trackID}); err != nil {
			return nil, fmt.Errorf("saving to liked songs: %w", err)
		}
		l.logger.Info("added to liked songs", "track", track.Name)
	}

	return &models.SaveResult{
		Success:      true,
		PlaylistID:   targetID,
		PlaylistName: finalName,
		Genre:        genre,
	}, nil
}

// findOrCreatePlaylist returns the ID of the user's playlist with the given
// name (case-insensitive, first 50 playlists), creating it privately when
// none exists.
func (l *Librarian) findOrCreatePlaylist(ctx context.Context, userID, name string) (string, error) {
	playlists, err := l.client.CurrentUserPlaylists(ctx, 50)
	if err != nil {
		return "", fmt.Errorf("listing playlists: %w", err)
	}

	for _, p := range playlists.Items {
		if strings.EqualFold(p.Name, name) {
			l.logger.Info("found existing playlist", "playlist", p.Name)
			return p.ID, nil
		}
	}

	created, err := l.client.CreatePlaylist(ctx, userID, name, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}
	l.logger.Info("created playlist", "playlist", name)
	return created.ID, nil
}

// RemoveTrack takes a track out of liked songs and, when a concrete playlist
// ID is given, out of that playlist too. Either removal failing individually
// is tolerated; the track may simply not be there.
func (l *Librarian) RemoveTrack(ctx context.Context, trackID, playlistID string) error {
	if err := l.client.SavedTracksDelete(ctx, []string{trackID}); err != nil {
		l.logger.Warn("not in liked songs", "track", trackID, "error", err)
	}

	if playlistID != "" && playlistID != likedSongsID && playlistID != SmartSortPlaylist {
		if err := l.client.PlaylistRemoveItems(ctx, playlistID, []string{trackURI(trackID)}); err != nil {
			l.logger.Warn("playlist removal failed", "playlist", playlistID, "error", err)
		}
	}

	return nil
}

// Vibe summarizes a list of "Song - Artist" strings into a one-line mood.
func (l *Librarian) Vibe(ctx context.Context, songs []string) models.Vibe {
	return VibeSummary(ctx, l.labeler, songs)
}

// VibeSummary is the tokenless form of [Librarian.Vibe]; vibe analysis needs
// only the labeler, not a user-scoped client.
func VibeSummary(ctx context.Context, labeler Labeler, songs []string) models.Vibe {
	if len(songs) == 0 {
		return models.Vibe{Vibe: emptyVibeMessage}
	}
	return models.Vibe{Vibe: labeler.AnalyzeVibe(ctx, songs)}
}
