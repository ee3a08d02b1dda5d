package wdl

import "fmt"

// SourceFile is an interned source document: a URI plus its full text. Spans
// reference a SourceFile by pointer so they stay cheap to copy, the way gql
// interned strings into symbol.IDs instead of passing them around raw.
type SourceFile struct {
	// URI is the canonicalized identity of the document (see canonicalizeURI).
	URI string
	// Text is the full UTF-8 source text.
	Text string

	// lineStarts[i] is the byte offset of the start of line i+1 (1-based
	// lines). Computed once by newSourceFile when the file is interned.
	lineStarts []int
}

func newSourceFile(uri, text string) *SourceFile {
	f := &SourceFile{URI: uri, Text: text}
	f.lineStarts = []int{0}
	for i, r := range text {
		if r == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position converts a byte offset into a 1-based (line, column) pair.
func (f *SourceFile) Position(offset int) (line, col int) {
	// Binary search for the last lineStart <= offset.
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - f.lineStarts[lo] + 1
}

// Span identifies a range of source text, 1-based line/column, end-exclusive
// columns, immutable once constructed.
type Span struct {
	File       *SourceFile
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// String renders the span as "uri:line:col-line:col" for error messages.
func (s Span) String() string {
	uri := "<unknown>"
	if s.File != nil {
		uri = s.File.URI
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", uri, s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// SourceURI returns the owning document's URI, or "" if the span has no
// associated file (e.g. a synthesized node).
func (s Span) SourceURI() string {
	if s.File == nil {
		return ""
	}
	return s.File.URI
}

// Merge returns the smallest span covering both s and other. Used when
// building a composite node's span from its children.
func (s Span) Merge(other Span) Span {
	if s.File == nil {
		return other
	}
	if other.File == nil {
		return s
	}
	out := s
	if other.StartLine < out.StartLine || (other.StartLine == out.StartLine && other.StartCol < out.StartCol) {
		out.StartLine, out.StartCol = other.StartLine, other.StartCol
	}
	if other.EndLine > out.EndLine || (other.EndLine == out.EndLine && other.EndCol > out.EndCol) {
		out.EndLine, out.EndCol = other.EndLine, other.EndCol
	}
	return out
}

// Registry owns byte buffers for every document read during a session, so
// parse trees can hold *SourceFile pointers instead of copying text.
type Registry struct {
	files map[string]*SourceFile
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*SourceFile)}
}

// Intern registers (or returns the existing) SourceFile for the given
// canonical URI and text. If the URI was already interned, the existing
// entry's text is returned unchanged (a Registry never rewrites a document
// out from under spans that reference it).
func (r *Registry) Intern(uri, text string) *SourceFile {
	if f, ok := r.files[uri]; ok {
		return f
	}
	f := newSourceFile(uri, text)
	r.files[uri] = f
	return f
}

// Lookup returns the SourceFile previously interned for uri, if any.
func (r *Registry) Lookup(uri string) (*SourceFile, bool) {
	f, ok := r.files[uri]
	return f, ok
}
