package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeShadowingAllowedAcrossScopes(t *testing.T) {
	outer := newScope(nil)
	assert.True(t, outer.declare("x", IntType{}, "declaration"))

	inner := newScope(outer)
	assert.True(t, inner.declare("x", StringType{}, "scatter variable"))

	entry, ok := inner.lookup("x")
	assert.True(t, ok)
	assert.Equal(t, StringType{}, entry.typ)

	outerEntry, ok := outer.lookup("x")
	assert.True(t, ok)
	assert.Equal(t, IntType{}, outerEntry.typ)
}

func TestScopeRedeclarationInSameScopeRejected(t *testing.T) {
	s := newScope(nil)
	assert.True(t, s.declare("x", IntType{}, "declaration"))
	assert.False(t, s.declare("x", StringType{}, "declaration"))
}

func TestScopeLookupMissesReturnsFalse(t *testing.T) {
	s := newScope(nil)
	_, ok := s.lookup("missing")
	assert.False(t, ok)
}

func TestResolveTypeExprCompound(t *testing.T) {
	te := &TypeExpr{Name: "Array", Params: []*TypeExpr{
		{Name: "Pair", Params: []*TypeExpr{{Name: "String"}, {Name: "Int"}}},
	}}
	typ, err := resolveTypeExpr(te, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Array[Pair[String, Int]]", typ.String())
}

func TestResolveTypeExprNonEmptyMarker(t *testing.T) {
	te := &TypeExpr{Name: "Array", Params: []*TypeExpr{
		{Name: "Int"}, {Name: "+"},
	}}
	typ, err := resolveTypeExpr(te, nil)
	assert.Nil(t, err)
	at, ok := typ.(ArrayType)
	assert.True(t, ok)
	assert.True(t, at.NonEmpty)
}

func TestResolveTypeExprOptional(t *testing.T) {
	te := &TypeExpr{Name: "String", Optional: true}
	typ, err := resolveTypeExpr(te, nil)
	assert.Nil(t, err)
	assert.Equal(t, "String?", typ.String())
}

func TestResolveTypeExprUnknownNameErrors(t *testing.T) {
	te := &TypeExpr{Name: "Bogus"}
	_, err := resolveTypeExpr(te, nil)
	assert.NotNil(t, err)
	assert.Equal(t, TypeErrorKind, err.Kind)
}

func TestResolveTypeExprStructLookup(t *testing.T) {
	structs := map[string]StructType{
		"Sample": {Name: "Sample", Fields: map[string]Type{"name": StringType{}}, Order: []string{"name"}},
	}
	te := &TypeExpr{Name: "Sample"}
	typ, err := resolveTypeExpr(te, structs)
	assert.Nil(t, err)
	assert.Equal(t, "Sample", typ.String())
}
