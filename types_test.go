package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveCoercion(t *testing.T) {
	assert.True(t, IntType{}.IsCoercibleTo(FloatType{}))
	assert.True(t, IntType{}.IsCoercibleTo(StringType{}))
	assert.False(t, FloatType{}.IsCoercibleTo(IntType{}))
	assert.True(t, FileType{}.IsCoercibleTo(StringType{}))
	assert.True(t, StringType{}.IsCoercibleTo(FileType{}))
	assert.True(t, BoolType{}.IsCoercibleTo(AnyType{}))
	assert.False(t, BoolType{}.IsCoercibleTo(IntType{}))
}

func TestOptionalFlattens(t *testing.T) {
	old := FlattenNestedOptionals
	defer func() { FlattenNestedOptionals = old }()
	FlattenNestedOptionals = true

	once := NewOptional(IntType{})
	twice := NewOptional(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "Int?", twice.String())
}

func TestOptionalNoFlattenWhenDisabled(t *testing.T) {
	old := FlattenNestedOptionals
	defer func() { FlattenNestedOptionals = old }()
	FlattenNestedOptionals = false

	once := NewOptional(IntType{})
	twice := NewOptional(once)
	nested, ok := twice.(OptionalType)
	assert.True(t, ok)
	assert.Equal(t, once, nested.Elem)
}

func TestStructEqualityIsStructuralByFieldName(t *testing.T) {
	a := StructType{Name: "Sample", Fields: map[string]Type{"name": StringType{}, "coverage": FloatType{}}, Order: []string{"name", "coverage"}}
	b := StructType{Name: "Other", Fields: map[string]Type{"coverage": FloatType{}, "name": StringType{}}, Order: []string{"coverage", "name"}}
	assert.True(t, TypeEqual(a, b))

	obj := ObjectType{Fields: a.Fields, Order: a.Order}
	assert.True(t, TypeEqual(a, obj))

	c := StructType{Name: "Sample", Fields: map[string]Type{"name": StringType{}}, Order: []string{"name"}}
	assert.False(t, TypeEqual(a, c))
}

func TestArrayCoercionRespectsNonEmpty(t *testing.T) {
	plain := ArrayType{Elem: IntType{}}
	nonEmpty := ArrayType{Elem: IntType{}, NonEmpty: true}
	assert.True(t, nonEmpty.IsCoercibleTo(plain))
	assert.False(t, plain.IsCoercibleTo(nonEmpty))
}

func TestUnifyIfThenElseBranches(t *testing.T) {
	u, ok := Unify(IntType{}, FloatType{})
	assert.True(t, ok)
	assert.Equal(t, FloatType{}, u)

	u, ok = Unify(NewOptional(IntType{}), IntType{})
	assert.True(t, ok)
	assert.Equal(t, "Int?", u.String())

	u, ok = Unify(ArrayType{Elem: IntType{}}, ArrayType{Elem: FloatType{}})
	assert.True(t, ok)
	assert.Equal(t, "Array[Float]", u.String())

	_, ok = Unify(StringType{}, BoolType{})
	assert.False(t, ok)
}

func TestUnifyAnyAbsorbs(t *testing.T) {
	u, ok := Unify(AnyType{}, IntType{})
	assert.True(t, ok)
	assert.Equal(t, IntType{}, u)
}
