// Package media acquires visual assets for slides: generated illustrations
// downloaded from an image generation service, and rendered diagrams.
package media

import (
	"context"
	"fmt"
	"path/filepath"
)

// ImageGenerator turns a prompt into the URL of a generated image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Downloader fetches url into the file dest.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// DiagramRenderer renders a diagram description into the image file dest.
type DiagramRenderer interface {
	Render(ctx context.Context, spec, dest string) error
}

// ImagePrompt wraps a short slide hint into a prompt for an illustration.
func ImagePrompt(hint string) string {
	return fmt.Sprintf("A clear, simple, minimalist educational diagram illustrating the concept of: '%s'. "+
		"White background, infographic style, high quality.", hint)
}

// AssetPath is where the asset for slideID is stored under dir.
func AssetPath(dir, slideID string) string {
	return filepath.Join(dir, slideID+".png")
}
