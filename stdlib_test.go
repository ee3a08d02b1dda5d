package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupStdlibArityAndCoercion(t *testing.T) {
	proto, err := LookupStdlib("length", []Type{ArrayType{Elem: StringType{}}})
	assert.NoError(t, err)
	assert.Equal(t, "length", proto.Name)

	_, err = LookupStdlib("length", []Type{StringType{}})
	assert.Error(t, err)

	_, err = LookupStdlib("no_such_func", []Type{IntType{}})
	assert.Error(t, err)
}

func TestLookupStdlibCoercesIntArgToFloatParam(t *testing.T) {
	proto, err := LookupStdlib("ceil", []Type{IntType{}})
	assert.NoError(t, err)
	assert.Equal(t, IntType{}, proto.ReturnType)
}

func TestSelectFirstReturnTypeUnwrapsOptional(t *testing.T) {
	proto, err := LookupStdlib("select_first", []Type{ArrayType{Elem: NewOptional(IntType{})}})
	assert.NoError(t, err)
	ret, ok := proto.resolveReturnType([]Type{ArrayType{Elem: NewOptional(IntType{})}})
	assert.True(t, ok)
	assert.Equal(t, IntType{}, ret)
}

func TestSepConcatenatesArrayOfString(t *testing.T) {
	proto, err := LookupStdlib("sep", []Type{StringType{}, ArrayType{Elem: StringType{}}})
	assert.NoError(t, err)
	out, everr := proto.Eval(nil, nil, Span{}, []Value{
		StringValue(","),
		ArrayValue(StringType{}, []Value{StringValue("a"), StringValue("b"), StringValue("c")}),
	})
	assert.Nil(t, everr)
	assert.Equal(t, "a,b,c", out.Str)
}
