package wdl

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeReader serves documents out of an in-memory map, keyed by the same
// string used as both the requested URI and its canonical form.
type fakeReader struct {
	files map[string]string
}

func (f *fakeReader) Read(ctx context.Context, uri string) ([]byte, string, error) {
	data, ok := f.files[uri]
	if !ok {
		return nil, "", fmt.Errorf("no such file: %s", uri)
	}
	return []byte(data), uri, nil
}

func (f *fakeReader) Glob(ctx context.Context, base, pattern string) ([]string, error) {
	return nil, fmt.Errorf("glob not supported in fakeReader")
}

func (f *fakeReader) Size(ctx context.Context, uri string) (int64, error) {
	data, ok := f.files[uri]
	if !ok {
		return 0, fmt.Errorf("no such file: %s", uri)
	}
	return int64(len(data)), nil
}

func TestImportResolverCachesByCanonicalURI(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"lib.wdl": "version 1.0\n\nstruct Sample {\n  String name\n}\n",
		"main.wdl": "version 1.0\n\nimport \"lib.wdl\"\n\ntask t {\n  input {\n    Sample s\n  }\n  command {}\n  output {}\n}\n",
	}}
	resolver := NewImportResolver(reader, NewRegistry())
	td, err := resolver.Resolve(context.Background(), "main.wdl")
	assert.Nil(t, err)
	assert.NotNil(t, td)
	assert.False(t, td.Errors.HasFatal())

	cached, ok := resolver.cache["lib.wdl"]
	assert.True(t, ok)
	assert.Contains(t, cached.Structs, "Sample")
}

func TestImportResolverDetectsCycle(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"a.wdl": "version 1.0\n\nimport \"b.wdl\"\n",
		"b.wdl": "version 1.0\n\nimport \"a.wdl\"\n",
	}}
	resolver := NewImportResolver(reader, NewRegistry())
	_, err := resolver.Resolve(context.Background(), "a.wdl")
	assert.NotNil(t, err)
	assert.Equal(t, ImportErrorKind, err.Kind)
}

func TestImportResolverRejectsConflictingStructShapes(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"lib1.wdl": "version 1.0\n\nstruct Sample {\n  String name\n}\n",
		"lib2.wdl": "version 1.0\n\nstruct Sample {\n  Int depth\n}\n",
		"main.wdl": "version 1.0\n\nimport \"lib1.wdl\"\nimport \"lib2.wdl\"\n",
	}}
	resolver := NewImportResolver(reader, NewRegistry())
	_, err := resolver.Resolve(context.Background(), "main.wdl")
	assert.NotNil(t, err)
	assert.Equal(t, ImportErrorKind, err.Kind)
}

func TestImportResolverAllowsIdenticalStructShapes(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"lib1.wdl": "version 1.0\n\nstruct Sample {\n  String name\n}\n",
		"lib2.wdl": "version 1.0\n\nstruct Sample {\n  String name\n}\n",
		"main.wdl": "version 1.0\n\nimport \"lib1.wdl\"\nimport \"lib2.wdl\"\n",
	}}
	resolver := NewImportResolver(reader, NewRegistry())
	td, err := resolver.Resolve(context.Background(), "main.wdl")
	assert.Nil(t, err)
	assert.False(t, td.Errors.HasFatal())
}

func TestDefaultAliasStripsDirAndExtension(t *testing.T) {
	assert.Equal(t, "lib", defaultAlias("tasks/lib.wdl"))
	assert.Equal(t, "lib", defaultAlias("lib.wdl"))
}
