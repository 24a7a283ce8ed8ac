// Package blob stores uploaded file bytes behind an afs URL.
package blob

import (
	"bytes"
	"context"
	"fmt"
	neturl "net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Uploader is the write side used by ingestion.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name, mimeType string) (string, error)
}

const uploadsDir = "uploads"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Storage writes uploads under <baseURL>/uploads/<millis>-<safe name>.
type Storage struct {
	fs      afs.Service
	baseURL string
	public  bool
	now     func() time.Time
}

// Option configures Storage.
type Option func(*Storage)

// WithPublicURL makes gs:// uploads report their storage.googleapis.com URL.
func WithPublicURL(enabled bool) Option {
	return func(s *Storage) { s.public = enabled }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// WithService replaces the afs service.
func WithService(fs afs.Service) Option {
	return func(s *Storage) { s.fs = fs }
}

// New creates a Storage rooted at baseURL (file://, mem://, gs://, s3://).
func New(baseURL string, opts ...Option) *Storage {
	ret := &Storage{
		fs:      afs.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// SafeName replaces every character outside [A-Za-z0-9.-] with '_'.
func SafeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Upload stores data and returns the URL it can be read back from.
func (s *Storage) Upload(ctx context.Context, data []byte, name, mimeType string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("blob: upload: empty name")
	}
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	objectURL := url.Join(s.baseURL, uploadsDir, stamp+"-"+SafeName(name))
	if err := s.fs.Upload(ctx, objectURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("blob: upload %s (%s): %w", name, mimeType, err)
	}
	return s.PublicURL(objectURL), nil
}

// Download reads an object written by Upload or any other afs URL. Public
// storage.googleapis.com URLs are mapped back to gs://.
func (s *Storage) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, storageURL(URL))
	if err != nil {
		return nil, fmt.Errorf("blob: download %s: %w", URL, err)
	}
	return data, nil
}

// PublicURL maps gs://bucket/path to https://storage.googleapis.com/bucket/path.
// Other schemes are returned unchanged.
func (s *Storage) PublicURL(objectURL string) string {
	if !s.public || url.Scheme(objectURL, file.Scheme) != "gs" {
		return objectURL
	}
	u, err := neturl.Parse(objectURL)
	if err != nil {
		return objectURL
	}
	return "https://storage.googleapis.com/" + u.Host + u.Path
}

const publicPrefix = "https://storage.googleapis.com/"

func storageURL(URL string) string {
	if strings.HasPrefix(URL, publicPrefix) {
		return "gs://" + strings.TrimPrefix(URL, publicPrefix)
	}
	return URL
}

var stampPrefix = regexp.MustCompile(`^\d+-`)

// DisplayName derives the user facing name from a stored path: the last path
// segment without its upload timestamp prefix.
func DisplayName(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return stampPrefix.ReplaceAllString(path, "")
}
