package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqualCrossNumeric(t *testing.T) {
	assert.True(t, IntValue(3).Equal(FloatValue(3.0)))
	assert.False(t, IntValue(3).Equal(FloatValue(3.5)))
}

func TestValueEqualMapOrderIndependent(t *testing.T) {
	a := MapValue(StringType{}, IntType{}, []Value{StringValue("x"), StringValue("y")}, []Value{IntValue(1), IntValue(2)})
	b := MapValue(StringType{}, IntType{}, []Value{StringValue("y"), StringValue("x")}, []Value{IntValue(2), IntValue(1)})
	assert.True(t, a.Equal(b))
}

func TestValueEqualPair(t *testing.T) {
	a := PairValue(IntType{}, StringType{}, IntValue(1), StringValue("x"))
	b := PairValue(IntType{}, StringType{}, IntValue(1), StringValue("x"))
	c := PairValue(IntType{}, StringType{}, IntValue(2), StringValue("x"))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNullValueIsNull(t *testing.T) {
	n := NullValue(IntType{})
	assert.True(t, n.IsNull())
	assert.Equal(t, "Int?", n.Type.String())
}

func TestValueStringRendering(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "hello", StringValue("hello").String())
}
