// package credentials holds rotating per-platform cookie credentials for
// authenticated media acquisition.
//
// Pools are populated once at startup, primarily from the TOML config, with a
// legacy environment-slot scan layered on top for existing deployments. After
// construction a pool is immutable, so concurrent readers need no locking.
// Selection is uniformly random to spread load across rotated accounts.
package credentials

import (
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/antigravlabs/stashd/internal/shared"
)

// Source platforms with dedicated pools. Any other platform falls back to the
// Instagram pool, matching the acquisition layer's "general" cookie behavior.
const (
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
)

// Pool maps platform names to their credential blobs.
type Pool struct {
	sets map[string][]string
}

// NewPool builds a [Pool] from configured per-platform credential lists,
// supplemented by legacy environment slots. Duplicate blobs are kept once.
func NewPool(cfg shared.CookiesConfig) *Pool {
	return newPool(cfg, os.Getenv)
}

func newPool(cfg shared.CookiesConfig, getenv func(string) string) *Pool {
	p := &Pool{sets: map[string][]string{
		PlatformInstagram: {},
		PlatformYouTube:   {},
	}}

	for _, blob := range cfg.Instagram {
		p.add(PlatformInstagram, blob)
	}
	for _, blob := range cfg.YouTube {
		p.add(PlatformYouTube, blob)
	}

	p.loadEnv(getenv)
	return p
}

// add appends blob to the platform's set unless it is empty or already present.
func (p *Pool) add(platform, blob string) {
	if blob == "" {
		return
	}
	if slices.Contains(p.sets[platform], blob) {
		return
	}
	p.sets[platform] = append(p.sets[platform], blob)
}

// loadEnv scans the legacy environment slots: a single-slot name per platform
// plus numbered slots read until the first gap.
func (p *Pool) loadEnv(getenv func(string) string) {
	for _, name := range []string{"YTDLP_COOKIES", "YTDLP_COOKIES_INSTAGRAM"} {
		p.add(PlatformInstagram, getenv(name))
	}
	for _, prefix := range []string{"YTDLP_COOKIES_", "YTDLP_COOKIES_INSTAGRAM_"} {
		for i := 1; ; i++ {
			blob := getenv(fmt.Sprintf("%s%d", prefix, i))
			if blob == "" {
				break
			}
			p.add(PlatformInstagram, blob)
		}
	}

	p.add(PlatformYouTube, getenv("YTDLP_COOKIES_YOUTUBE"))
	for i := 1; ; i++ {
		blob := getenv(fmt.Sprintf("YTDLP_COOKIES_YOUTUBE_%d", i))
		if blob == "" {
			break
		}
		p.add(PlatformYouTube, blob)
	}
}

// Select returns a uniformly random credential for the platform. Platforms
// without a dedicated non-empty pool fall back to the Instagram pool. The
// second return value is false when no credential is available at all.
func (p *Pool) Select(platform string) (string, bool) {
	set := p.sets[platform]
	if len(set) == 0 {
		set = p.sets[PlatformInstagram]
	}
	if len(set) == 0 {
		return "", false
	}
	return set[rand.IntN(len(set))], true
}

// Size returns the number of credentials held for the platform.
func (p *Pool) Size(platform string) int {
	return len(p.sets[platform])
}
