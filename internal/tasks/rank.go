package tasks

import (
	"sort"
	"strings"

	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
)

// MatchConfidence is reported for every successful recognition. The pipeline
// does not compute a real probabilistic confidence; this is a deliberate
// approximation.
const MatchConfidence = 0.99

// rankTier classifies how well a candidate's primary artist matches the
// fingerprint's artist guess. Lower tiers are preferred.
func rankTier(candidate services.SpotifyTrack, artist string) int {
	got := strings.ToLower(candidate.PrimaryArtist())
	want := strings.ToLower(artist)

	switch {
	case got == want:
		return 0
	case strings.Contains(got, want) || strings.Contains(want, got):
		return 1
	default:
		return 2
	}
}

// Rank orders catalog candidates for an artist guess: exact primary-artist
// matches first, then partial (substring either way), then everything else.
// Within a tier, higher popularity wins; ties keep the search API's order.
func Rank(candidates []services.SpotifyTrack, artist string) []services.SpotifyTrack {
	ranked := make([]services.SpotifyTrack, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := rankTier(ranked[i], artist), rankTier(ranked[j], artist)
		if ti != tj {
			return ti < tj
		}
		return ranked[i].Popularity > ranked[j].Popularity
	})

	return ranked
}

// BestMatch returns the top-ranked candidate, or ErrTrackNotFound when the
// search yielded nothing.
func BestMatch(candidates []services.SpotifyTrack, artist string) (services.SpotifyTrack, error) {
	if len(candidates) == 0 {
		return services.SpotifyTrack{}, shared.ErrTrackNotFound
	}
	return Rank(candidates, artist)[0], nil
}
