package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxDownloadBytes bounds a single asset download.
const maxDownloadBytes = 25 << 20

// HTTPDownloader fetches assets over HTTP with a per-request timeout.
type HTTPDownloader struct {
	httpClient *http.Client
}

func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPDownloader{httpClient: &http.Client{Timeout: timeout}}
}

// Download writes the response body to dest. A partial file is removed on
// failure.
func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxDownloadBytes {
		err = fmt.Errorf("asset larger than %d bytes", maxDownloadBytes)
	}
	if err == nil && n == 0 {
		err = fmt.Errorf("empty download")
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write asset: %w", err)
	}
	return os.Rename(tmp, dest)
}
