// package media acquires short audio clips from social video URLs via yt-dlp.
//
// Acquisition is a two-step fallback: an unauthenticated attempt first (public
// posts need no cookies), then a single authenticated retry with a rotated
// credential from the pool. Only the first seconds of the source are fetched
// at the lowest practical audio quality, since fingerprinting needs just a few
// seconds of audio.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/antigravlabs/stashd/internal/credentials"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"
)

const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"

// Clip is a transient local audio artifact owned by a single request. Every
// pipeline exit path must call [Clip.Remove].
type Clip struct {
	Path string
}

// Remove deletes the clip file. Removing an already-removed clip is not an error.
func (c *Clip) Remove() error {
	if c == nil || c.Path == "" {
		return nil
	}
	if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Acquirer downloads bounded audio clips for the recognition pipeline.
type Acquirer struct {
	pool        *credentials.Pool
	tempDir     string
	clipSeconds int
	logger      *log.Logger

	// hasTranscoder and fetch are swapped out in tests.
	hasTranscoder func() bool
	fetch         func(ctx context.Context, url, outputPrefix, cookieFile string) error
}

// AcquirerOpts contains configuration options for creating an [Acquirer].
type AcquirerOpts struct {
	Pool        *credentials.Pool
	TempDir     string
	ClipSeconds int
	Logger      *log.Logger
}

// NewAcquirer creates an [Acquirer] with the provided configuration.
func NewAcquirer(opts AcquirerOpts) *Acquirer {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.ClipSeconds <= 0 {
		opts.ClipSeconds = 15
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	a := &Acquirer{
		pool:        opts.Pool,
		tempDir:     opts.TempDir,
		clipSeconds: opts.ClipSeconds,
		logger:      opts.Logger,
	}
	a.hasTranscoder = func() bool {
		_, err := exec.LookPath("ffmpeg")
		return err == nil
	}
	a.fetch = a.runYtdlp
	return a
}

// Acquire downloads a clip for url, trying without credentials first and
// falling back to a single authenticated attempt. Both attempts failing is
// [shared.ErrAcquisitionFailed].
func (a *Acquirer) Acquire(ctx context.Context, url string) (*Clip, error) {
	requestID := shared.GenerateID()
	prefix := filepath.Join(a.tempDir, "stash_"+requestID)

	if clip := a.attempt(ctx, url, prefix, ""); clip != nil {
		return clip, nil
	}

	a.logger.Warn("unauthenticated download failed, retrying with credentials", "url", url)

	platform := Classify(url)
	blob, ok := a.pool.Select(platform)
	if !ok {
		a.logger.Warn("no credentials available", "platform", platform)
		return nil, fmt.Errorf("%w: both attempts exhausted", shared.ErrAcquisitionFailed)
	}

	cookieFile := filepath.Join(a.tempDir, "cookies_"+requestID+".txt")
	if err := os.WriteFile(cookieFile, []byte(blob), 0600); err != nil {
		a.logger.Error("failed to write cookie file", "error", err)
		return nil, fmt.Errorf("%w: both attempts exhausted", shared.ErrAcquisitionFailed)
	}
	defer os.Remove(cookieFile)

	if clip := a.attempt(ctx, url, prefix, cookieFile); clip != nil {
		return clip, nil
	}

	return nil, fmt.Errorf("%w: both attempts exhausted", shared.ErrAcquisitionFailed)
}

// attempt runs one fetch and locates its output. Fetch errors are logged and
// swallowed; only the absence of an output file marks the attempt as failed.
func (a *Acquirer) attempt(ctx context.Context, url, prefix, cookieFile string) *Clip {
	if err := a.fetch(ctx, url, prefix, cookieFile); err != nil {
		a.logger.Warn("download attempt failed", "url", url, "authenticated", cookieFile != "", "error", err)
	}

	matches, err := filepath.Glob(prefix + "*")
	if err != nil || len(matches) == 0 {
		return nil
	}
	return &Clip{Path: matches[0]}
}

// runYtdlp performs the actual yt-dlp invocation for one attempt.
func (a *Acquirer) runYtdlp(ctx context.Context, url, outputPrefix, cookieFile string) error {
	dl := ytdlp.New().
		NoWarnings().
		NoPlaylist().
		NoCheckCertificates().
		DownloadSections(fmt.Sprintf("*0-%d", a.clipSeconds)).
		ForceKeyframesAtCuts().
		UserAgent(mobileUserAgent).
		AddHeaders("Accept-Language:en-US,en;q=0.9")

	if cookieFile != "" {
		dl = dl.Cookies(cookieFile)
	}

	if a.hasTranscoder() {
		// 64kbps mp3 is plenty for fingerprinting.
		dl = dl.Format("worstaudio/worst").
			ExtractAudio().
			AudioFormat("mp3").
			AudioQuality("64K").
			Output(outputPrefix)
	} else {
		dl = dl.Format("bestaudio").Output(outputPrefix + ".%(ext)s")
	}

	_, err := dl.Run(ctx, url)
	return err
}
