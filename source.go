package wdl

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// SourceReader is the injected collaborator the core uses for every
// filesystem access: loading WDL documents for the import resolver, and
// servicing the read_*/glob/size stdlib family during evaluation.
type SourceReader interface {
	// Read loads the full contents of uri, returning the bytes and the
	// canonicalized form of uri (used as the import resolver's cache key).
	Read(ctx context.Context, uri string) (data []byte, canonicalURI string, err error)
	// Glob expands a shell glob pattern (relative to the working directory
	// implied by base) into a sorted list of matching URIs.
	Glob(ctx context.Context, base, pattern string) ([]string, error)
	// Size returns the size in bytes of the file at uri.
	Size(ctx context.Context, uri string) (int64, error)
}

// FileWriter is the companion collaborator for the write_* stdlib family,
// which must materialize a new file whose path is returned to the caller as
// a File value. It is a small, deliberate addition to spec section 6's
// collaborator list: write_lines/write_tsv/write_map/write_json all need to
// create a file, and no read-only interface can express that.
type FileWriter interface {
	// WriteTempFile writes content to a freshly created file and returns its
	// path.
	WriteTempFile(ctx context.Context, content string) (path string, err error)
}

// FileSourceReader is the default SourceReader, backed by
// github.com/grailbio/base/file so that local paths, "file://" URIs, and
// any other scheme base/file has a registered handler for (e.g. "s3://" in
// environments that link in the S3 handler) all work uniformly -- the same
// dependency gql/gql.go uses for all of its script and table I/O.
type FileSourceReader struct{}

var _ SourceReader = FileSourceReader{}
var _ FileWriter = FileSourceReader{}

// Read implements SourceReader.
func (FileSourceReader) Read(ctx context.Context, uri string) ([]byte, string, error) {
	canonical, err := canonicalizeURI(uri)
	if err != nil {
		return nil, "", err
	}
	data, err := file.ReadFile(ctx, canonical)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read %s", uri)
	}
	return data, canonical, nil
}

// Glob implements SourceReader.
func (FileSourceReader) Glob(ctx context.Context, base, pattern string) ([]string, error) {
	dir := filepath.Dir(base)
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s", pattern)
	}
	return matches, nil
}

// Size implements SourceReader.
func (FileSourceReader) Size(ctx context.Context, uri string) (int64, error) {
	info, err := file.Stat(ctx, uri)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", uri)
	}
	return info.Size(), nil
}

// WriteTempFile implements FileWriter.
func (FileSourceReader) WriteTempFile(ctx context.Context, content string) (string, error) {
	f, err := os.CreateTemp("", "wdl-write-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return "", errors.Wrap(err, "write temp file")
	}
	return f.Name(), nil
}

// canonicalizeURI normalizes a bare local path into an absolute path, while
// leaving scheme-qualified URIs (file://, s3://, ...) untouched.
func canonicalizeURI(uri string) (string, error) {
	if hasScheme(uri) {
		return uri, nil
	}
	abs, err := filepath.Abs(uri)
	if err != nil {
		return "", errors.Wrapf(err, "canonicalize %s", uri)
	}
	return abs, nil
}

func hasScheme(uri string) bool {
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c == ':':
			return i > 0 && i+2 < len(uri) && uri[i+1] == '/' && uri[i+2] == '/'
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.':
			continue
		default:
			return false
		}
	}
	return false
}
