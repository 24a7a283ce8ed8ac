package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/viant/projectlens/hash"
	"github.com/viant/projectlens/matching"
	"github.com/viant/projectlens/schema"
)

// FolderRequest describes a bulk import of every file under URL.
type FolderRequest struct {
	URL    string
	UserID string
	ChatID string
	Filter *matching.Filter
}

// FolderResult reports a bulk import. Failed files do not stop the import.
type FolderResult struct {
	Documents  []*schema.Document
	Skipped    []string
	Duplicates []string
	Failed     map[string]error
}

// IngestFolder walks req.URL recursively and ingests each file the filter
// allows. Files with identical content are stored once per import.
func (s *Service) IngestFolder(ctx context.Context, req *FolderRequest) (*FolderResult, error) {
	location := req.URL
	if url.Scheme(location, "") == "" {
		if url.IsRelative(location) {
			abs, err := filepath.Abs(location)
			if err != nil {
				return nil, fmt.Errorf("ingest: resolve %s: %w", location, err)
			}
			location = abs
		}
		location = url.ToFileURL(location)
	}
	filter := req.Filter
	if filter == nil {
		filter = matching.New()
	}
	w := &folderWalk{
		service: s,
		fs:      afs.New(),
		filter:  filter,
		req:     req,
		seen:    map[uint64]bool{},
		result:  &FolderResult{Failed: map[string]error{}},
	}
	if err := w.walk(ctx, location); err != nil {
		return w.result, err
	}
	s.logger.Printf("folder imported: url=%s documents=%d skipped=%d duplicates=%d failed=%d",
		location, len(w.result.Documents), len(w.result.Skipped), len(w.result.Duplicates), len(w.result.Failed))
	return w.result, nil
}

type folderWalk struct {
	service *Service
	fs      afs.Service
	filter  *matching.Filter
	req     *FolderRequest
	seen    map[uint64]bool
	result  *FolderResult
}

func (w *folderWalk) walk(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, err := w.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("ingest: list %s: %w", location, err)
	}
	root := strings.TrimSuffix(url.Path(location), "/")
	for _, object := range objects {
		if !object.IsDir() {
			if !w.filter.Allowed(object.URL(), object.Size()) || !w.filter.Included(object.URL()) {
				w.result.Skipped = append(w.result.Skipped, object.URL())
				continue
			}
			w.file(ctx, object)
			continue
		}
		// The listing includes the folder itself, possibly with a host in its URL.
		if strings.TrimSuffix(url.Path(object.URL()), "/") == root {
			continue
		}
		if !w.filter.Allowed(object.URL(), -1) {
			continue
		}
		if err := w.walk(ctx, object.URL()); err != nil {
			return err
		}
	}
	return nil
}

func (w *folderWalk) file(ctx context.Context, object storage.Object) {
	data, err := w.fs.Download(ctx, object)
	if err != nil {
		w.result.Failed[object.URL()] = err
		return
	}
	if len(data) == 0 {
		w.result.Skipped = append(w.result.Skipped, object.URL())
		return
	}
	if sum, err := hash.Sum64(data); err == nil {
		if w.seen[sum] {
			w.result.Duplicates = append(w.result.Duplicates, object.URL())
			return
		}
		w.seen[sum] = true
	}
	doc, err := w.service.Ingest(ctx, &Request{
		Data:   data,
		Name:   object.Name(),
		UserID: w.req.UserID,
		ChatID: w.req.ChatID,
	})
	if doc != nil {
		w.result.Documents = append(w.result.Documents, doc)
	}
	if err != nil {
		w.result.Failed[object.URL()] = err
	}
}
