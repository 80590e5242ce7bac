// package formatter renders recognition results to various formats (JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/shared"
)

// ToJSON renders a recognition result as indented JSON.
func ToJSON(result *models.Recognition) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// ToText renders a recognition result as plain text for terminal output.
func ToText(result *models.Recognition) []byte {
	var buf bytes.Buffer

	if !result.Success {
		buf.WriteString(fmt.Sprintf("No match: %s\n", result.Error))
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Track:      %s\n", result.Track))
	buf.WriteString(fmt.Sprintf("Artist:     %s\n", result.Artist))
	buf.WriteString(fmt.Sprintf("Confidence: %.2f\n", result.Confidence))
	if result.SpotifyURL != "" {
		buf.WriteString(fmt.Sprintf("Spotify:    %s\n", result.SpotifyURL))
	}
	if result.PreviewURL != nil && *result.PreviewURL != "" {
		buf.WriteString(fmt.Sprintf("Preview:    %s\n", *result.PreviewURL))
	}

	return buf.Bytes()
}

// ToMarkdown renders a recognition result as Markdown with an optional local
// cover image reference.
func ToMarkdown(result *models.Recognition, imageFilename string) []byte {
	var buf bytes.Buffer

	if !result.Success {
		buf.WriteString("# No Match\n\n")
		buf.WriteString(fmt.Sprintf("%s\n", result.Error))
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", result.Track))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", result.Artist))
	buf.WriteString(fmt.Sprintf("**Confidence**: %.2f\n\n", result.Confidence))

	if result.SpotifyURL != "" {
		buf.WriteString(fmt.Sprintf("[Listen on Spotify](%s)\n", result.SpotifyURL))
	}
	if result.PreviewURL != nil && *result.PreviewURL != "" {
		buf.WriteString(fmt.Sprintf("[Preview](%s)\n", *result.PreviewURL))
	}

	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes a recognition result to {dir}/README.md,
// downloading the album art to {dir}/cover.jpg when available. A failed art
// download degrades to a Markdown file without a cover.
func WriteMarkdownExport(result *models.Recognition, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "recognition"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	export := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if result.AlbumArt != "" {
		imageData, err := DownloadImage(result.AlbumArt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download album art: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save album art: %v\n", err)
				coverImageFilename = ""
			} else {
				export.CoverImage = coverImagePath
				export.Files = append(export.Files, coverImagePath)
			}
		}
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, ToMarkdown(result, coverImageFilename), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	export.Files = append(export.Files, mdFile)

	return export, nil
}

// WriteTextExport writes a recognition result to a plain text file.
//
// Defaults to recognition.txt as the filename.
func WriteTextExport(result *models.Recognition, path string) (string, error) {
	if path == "" {
		path = "recognition.txt"
	}

	if err := os.WriteFile(path, ToText(result), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
