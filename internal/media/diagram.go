package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DotRenderer renders Graphviz DOT source with the dot binary.
type DotRenderer struct {
	Binary  string
	Timeout time.Duration
}

func NewDotRenderer(binary string, timeout time.Duration) *DotRenderer {
	if binary == "" {
		binary = "dot"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DotRenderer{Binary: binary, Timeout: timeout}
}

// Available reports whether the dot binary can be found.
func (r *DotRenderer) Available() bool {
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// Render writes a PNG of spec to dest.
func (r *DotRenderer) Render(ctx context.Context, spec, dest string) error {
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("empty diagram spec")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, "-Tpng", "-o", dest)
	cmd.Stdin = strings.NewReader(spec)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(dest)
		if ctx.Err() != nil {
			return fmt.Errorf("dot timed out after %s", r.Timeout)
		}
		return fmt.Errorf("dot: %w: %s", err, truncate(stderr.String(), 200))
	}
	return nil
}
