package media

import (
	"net/url"
	"strings"

	"github.com/antigravlabs/stashd/internal/credentials"
)

// Classify maps a source URL to the credential platform it belongs to, by
// hostname pattern. Unrecognized hosts (TikTok and friends) return an empty
// platform, which the credential pool resolves to its generic fallback.
func Classify(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)

	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return credentials.PlatformYouTube
	case strings.Contains(host, "instagram.com"):
		return credentials.PlatformInstagram
	default:
		return ""
	}
}
