// Package matching decides which files of a folder are ingested.
package matching

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/viant/afs/url"
)

// Filter applies exclusion, inclusion and size rules to file locations.
type Filter struct {
	exclusions  []string
	inclusions  []string
	maxFileSize int64
}

// Option configures a Filter.
type Option func(*Filter)

// WithExclusions adds exclusion patterns. A pattern ending in "/" excludes a
// directory anywhere in the path; other patterns match the base name as a glob.
func WithExclusions(patterns ...string) Option {
	return func(f *Filter) { f.exclusions = append(f.exclusions, clean(patterns)...) }
}

// WithInclusions restricts the filter to base names matching one of the globs,
// e.g. "*.pdf".
func WithInclusions(patterns ...string) Option {
	return func(f *Filter) { f.inclusions = append(f.inclusions, clean(patterns)...) }
}

// WithMaxFileSize excludes files larger than size bytes.
func WithMaxFileSize(size int64) Option {
	return func(f *Filter) { f.maxFileSize = size }
}

// WithIgnoreFile adds the patterns of a .gitignore style reader.
func WithIgnoreFile(reader io.Reader) Option {
	return func(f *Filter) {
		var patterns []string
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			patterns = append(patterns, scanner.Text())
		}
		f.exclusions = append(f.exclusions, clean(patterns)...)
	}
}

// New creates a Filter with the default exclusions followed by opts.
func New(opts ...Option) *Filter {
	f := &Filter{exclusions: DefaultExclusions()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultExclusions lists tooling directories and office lock or temp files.
func DefaultExclusions() []string {
	return []string{
		".git/",
		".svn/",
		"node_modules/",
		"__MACOSX/",
		".Trash/",
		".DS_Store",
		"Thumbs.db",
		"desktop.ini",
		"~$*",
		"*.tmp",
		"*.swp",
		"*.lock",
		"*.exe",
		"*.dll",
	}
}

// Allowed reports whether location, with the given size, should be ingested.
// A negative size skips the size rule, as used for directories.
func (f *Filter) Allowed(location string, size int64) bool {
	if f.maxFileSize > 0 && size > f.maxFileSize {
		return false
	}
	path := filepath.ToSlash(url.Path(location))
	base := filepath.Base(path)
	for _, pattern := range f.exclusions {
		if matches(path, base, pattern) {
			return false
		}
	}
	return true
}

// Included reports whether a file base name passes the inclusion globs.
func (f *Filter) Included(location string) bool {
	if len(f.inclusions) == 0 {
		return true
	}
	base := filepath.Base(filepath.ToSlash(url.Path(location)))
	for _, pattern := range f.inclusions {
		if globMatch(pattern, base) {
			return true
		}
	}
	return false
}

func matches(path, base, pattern string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		dir = strings.TrimPrefix(dir, "/")
		return base == dir || strings.Contains(path+"/", "/"+dir+"/")
	}
	return globMatch(strings.TrimPrefix(pattern, "/"), base)
}

func globMatch(pattern, name string) bool {
	if matched, _ := filepath.Match(pattern, name); matched {
		return true
	}
	matched, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
	return matched
}

func clean(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		out = append(out, p)
	}
	return out
}
