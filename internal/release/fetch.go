// Package release downloads driver-box release archives.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// Repo identifies the GitHub repository that publishes driver-box releases.
const Repo = "markmybytes/driver-box"

// DefaultBaseURL is the base URL for release downloads.
const DefaultBaseURL = "https://github.com/" + Repo + "/releases"

// DefaultChunkSize is the number of bytes read per progress update.
const DefaultChunkSize = 1024

// ErrInvalidArtifact reports a response that is not a release archive. GitHub
// answers unknown versions and binary types with an HTML page.
var ErrInvalidArtifact = errors.New("invalid version or binary type")

var acceptedContentTypes = map[string]struct{}{
	"application/zip":          {},
	"application/octet-stream": {},
}

// Reporter observes download progress. total is -1 when the server does not
// declare a length.
type Reporter interface {
	Start(name string, total int64)
	Advance(n int)
	Finish()
}

// Fetcher downloads release assets into a local directory.
type Fetcher struct {
	BaseURL   string
	Client    *http.Client
	ChunkSize int
	Reporter  Reporter
	Logger    *log.Logger
}

// NewFetcher returns a Fetcher for baseURL with no client timeout.
func NewFetcher(baseURL string) *Fetcher {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Fetcher{
		BaseURL:   baseURL,
		Client:    &http.Client{},
		ChunkSize: DefaultChunkSize,
	}
}

// AssetName returns the archive file name for a binary type.
func AssetName(binaryType string, webview bool) string {
	if webview {
		return fmt.Sprintf("driver-box.%s-wv2.zip", binaryType)
	}
	return fmt.Sprintf("driver-box.%s.zip", binaryType)
}

// DownloadURL returns the release download URL for version and asset.
func DownloadURL(baseURL string, version string, asset string) string {
	return fmt.Sprintf("%s/download/v%s/%s", strings.TrimRight(baseURL, "/"), version, asset)
}

// Fetch downloads the asset for version into destDir and returns its path.
func (f *Fetcher) Fetch(ctx context.Context, version string, binaryType string, webview bool, destDir string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	asset := AssetName(binaryType, webview)
	url := DownloadURL(f.baseURL(), version, asset)
	logger := f.logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf(messages.ReleaseCreateRequestFmt, url, err)
	}
	req.Header.Set("User-Agent", "driver-box-updater")
	logger.Debug("requesting release asset", "url", url)

	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf(messages.ReleaseDownloadFailedFmt, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	logger.Debug("release response", "status", resp.Status, "content_type", contentType, "content_length", resp.ContentLength)
	if !isArchiveContentType(contentType) {
		return "", fmt.Errorf("%w: "+messages.ReleaseInvalidContentTypeFmt, ErrInvalidArtifact, url, contentType)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrInvalidArtifact, url, resp.Status)
	}

	path := filepath.Join(destDir, asset)
	if err := f.writeBody(resp.Body, path, asset, resp.ContentLength); err != nil {
		return "", err
	}
	return path, nil
}

func (f *Fetcher) writeBody(body io.Reader, path string, asset string, total int64) (err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf(messages.ReleaseCreateFileFmt, path, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf(messages.ReleaseCloseFileFmt, path, closeErr)
		}
	}()

	reporter := f.reporter()
	reporter.Start(asset, total)
	defer reporter.Finish()

	buf := make([]byte, f.chunkSize())
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf(messages.ReleaseWriteFileFmt, path, err)
			}
			reporter.Advance(n)
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf(messages.ReleaseDownloadFailedFmt, asset, readErr)
		}
	}
}

// isArchiveContentType ignores media type parameters such as charset.
func isArchiveContentType(raw string) bool {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(raw))
	}
	_, ok := acceptedContentTypes[mediaType]
	return ok
}

func (f *Fetcher) baseURL() string {
	if strings.TrimSpace(f.BaseURL) == "" {
		return DefaultBaseURL
	}
	return f.BaseURL
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Fetcher) chunkSize() int {
	if f.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return f.ChunkSize
}

func (f *Fetcher) reporter() Reporter {
	if f.Reporter == nil {
		return nopReporter{}
	}
	return f.Reporter
}

func (f *Fetcher) logger() *log.Logger {
	if f.Logger == nil {
		return log.New(io.Discard)
	}
	return f.Logger
}

type nopReporter struct{}

func (nopReporter) Start(string, int64) {}
func (nopReporter) Advance(int)         {}
func (nopReporter) Finish()             {}
