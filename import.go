package wdl

import (
	"context"
	"fmt"

	"github.com/grailbio/wdltools/hash"
)

// ImportResolver parses and type-checks a document together with every
// document it transitively imports, matching spec section 9's resolution
// algorithm: a canonical-URI-keyed cache so a document imported from two
// different places is only parsed and checked once, and an explicit
// on-stack set so a cycle is reported as an ImportError rather than
// recursing forever.
type ImportResolver struct {
	Reader   SourceReader
	Registry *Registry

	cache   map[string]*TypedDocument
	onStack map[string]bool
}

// NewImportResolver builds a resolver backed by reader for loading import
// targets and registry for interning their source text into Spans.
func NewImportResolver(reader SourceReader, registry *Registry) *ImportResolver {
	return &ImportResolver{
		Reader:   reader,
		Registry: registry,
		cache:    map[string]*TypedDocument{},
		onStack:  map[string]bool{},
	}
}

// Resolve parses and type-checks the document at uri, recursively resolving
// every "import" statement it contains first so their struct and task
// signatures are available to the importing document's own type check.
func (r *ImportResolver) Resolve(ctx context.Context, uri string) (*TypedDocument, *Error) {
	data, canonical, err := r.Reader.Read(ctx, uri)
	if err != nil {
		return nil, NewImportError(nil, "import %s: %s", uri, err).Wrap(err)
	}
	return r.resolveCanonical(ctx, canonical, data)
}

func (r *ImportResolver) resolveCanonical(ctx context.Context, canonical string, data []byte) (*TypedDocument, *Error) {
	if td, ok := r.cache[canonical]; ok {
		return td, nil
	}
	if r.onStack[canonical] {
		return nil, NewImportError(nil, "import cycle detected at %s", canonical)
	}
	r.onStack[canonical] = true
	defer delete(r.onStack, canonical)

	file := r.Registry.Intern(canonical, string(data))
	doc, perr := ParseDocument(file)
	if perr != nil {
		return nil, perr
	}

	imported := map[string]*TypedDocument{}
	seenStructs := map[string]hash.Hash{}
	for _, im := range doc.Imports {
		idata, icanon, err := r.Reader.Read(ctx, im.URI)
		if err != nil {
			return nil, NewImportError(&im.Span, "import %s: %s", im.URI, err).Wrap(err)
		}
		itd, ierr := r.resolveCanonical(ctx, icanon, idata)
		if ierr != nil {
			return nil, ierr
		}
		alias := im.Alias
		if alias == "" {
			alias = defaultAlias(im.URI)
		}
		renamed := applyStructAliases(itd, im.Structs)
		imported[alias] = renamed
		if err := checkStructIdentity(seenStructs, renamed, im); err != nil {
			return nil, err
		}
	}

	td, terr := TypeCheck(doc, imported)
	if terr != nil {
		return nil, terr
	}
	r.cache[canonical] = td
	return td, nil
}

// defaultAlias derives an import's default alias from its URI's basename
// without extension, per spec section 9 ("a.wdl" imported without an
// explicit "as" clause is referred to as "a.").
func defaultAlias(uri string) string {
	start := 0
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '/' {
			start = i + 1
			break
		}
	}
	name := uri[start:]
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

// applyStructAliases returns a shallow copy of itd with its Structs table
// re-keyed per the importing document's "alias A as B" clauses, so the
// importer sees the renamed struct under its chosen local name while the
// imported document's own checked signatures are left untouched.
func applyStructAliases(itd *TypedDocument, aliases []ImportStructAlias) *TypedDocument {
	if len(aliases) == 0 {
		return itd
	}
	renamed := &TypedDocument{
		Doc: itd.Doc, ExprTypes: itd.ExprTypes, ApplyFuncs: itd.ApplyFuncs,
		Coercions: itd.Coercions, Tasks: itd.Tasks, Workflow: itd.Workflow,
		Structs: map[string]StructType{},
	}
	for name, st := range itd.Structs {
		renamed.Structs[name] = st
	}
	for _, a := range aliases {
		if st, ok := itd.Structs[a.Name]; ok {
			renamed.Structs[a.Alias] = st
		}
	}
	return renamed
}

// checkStructIdentity enforces spec section 9's struct-identity rule: two
// structs that reach the importing document under the same name (whether by
// coincidence across separate imports or by explicit aliasing) must have
// identical member sets, or the import is rejected -- compared via
// order-independent hash.Add so member declaration order doesn't spuriously
// distinguish two structurally-equal structs. seenStructs accumulates across
// every import processed so far in the current document.
func checkStructIdentity(seenStructs map[string]hash.Hash, renamed *TypedDocument, im *ImportDecl) *Error {
	for name, st := range renamed.Structs {
		h := structHash(st)
		if prior, ok := seenStructs[name]; ok {
			if prior != h {
				return NewImportError(&im.Span, "struct %q imported from %s conflicts with an existing definition of the same name", name, im.URI)
			}
			continue
		}
		seenStructs[name] = h
	}
	return nil
}

func structHash(st StructType) hash.Hash {
	var h hash.Hash
	for _, name := range st.Order {
		h = h.Add(hash.String(fmt.Sprintf("%s:%s", name, st.Fields[name])))
	}
	return h
}
