package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueToJSONRoundTripsArrayAndObject(t *testing.T) {
	v := ObjectValue(map[string]Value{
		"name":  StringValue("sample1"),
		"depth": IntValue(30),
		"tags":  ArrayValue(StringType{}, []Value{StringValue("a"), StringValue("b")}),
	}, []string{"name", "depth", "tags"})

	data, err := ValueToJSON(v, Span{})
	assert.Nil(t, err)

	back, err := JSONToValue(data, Span{})
	assert.Nil(t, err)
	assert.Equal(t, "sample1", back.Fields["name"].Str)
	assert.Equal(t, int64(30), back.Fields["depth"].Int)
	assert.Len(t, back.Fields["tags"].Arr, 2)
}

func TestValueToJSONRejectsNonStringMapKeys(t *testing.T) {
	m := MapValue(IntType{}, StringType{}, []Value{IntValue(1)}, []Value{StringValue("x")})
	_, err := ValueToJSON(m, Span{})
	assert.NotNil(t, err)
	assert.Equal(t, EvalErrorKind, err.Kind)
	assert.Equal(t, ReasonBadCoercion, err.Reason)
}

func TestValueToJSONPairRendersLeftRight(t *testing.T) {
	p := PairValue(IntType{}, StringType{}, IntValue(1), StringValue("x"))
	data, err := ValueToJSON(p, Span{})
	assert.Nil(t, err)

	back, err := JSONToValue(data, Span{})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), back.Fields["left"].Int)
	assert.Equal(t, "x", back.Fields["right"].Str)
}

func TestJSONToValueNull(t *testing.T) {
	v, err := JSONToValue([]byte("null"), Span{})
	assert.Nil(t, err)
	assert.True(t, v.IsNull())
}
