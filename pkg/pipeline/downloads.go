package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Downloader fetches a linked document and returns the local path it was
// saved to. A nil Downloader disables document collection for the run.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// HTTPDownloader saves documents into Dir over plain HTTP.
type HTTPDownloader struct {
	Dir    string
	Client *http.Client
}

func NewHTTPDownloader(dir string) *HTTPDownloader {
	return &HTTPDownloader{
		Dir:    dir,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *HTTPDownloader) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = urlFilename(url) + ".bin"
	}
	path := filepath.Join(d.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// urlFilename derives a filesystem-safe name from a URL: protocol stripped,
// path separators and query characters replaced, capped at 50 characters.
func urlFilename(url string) string {
	name := url
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.NewReplacer("/", "_", "?", "_", "&", "_").Replace(name)
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}
