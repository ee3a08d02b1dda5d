package wdl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalDivisionByZero(t *testing.T) {
	bin := &Binary{Op: TokSlash, Left: &IntLit{Value: 10}, Right: &IntLit{Value: 0}}
	_, err := Eval(context.Background(), nil, nil, bin)
	assert.NotNil(t, err)
	assert.Equal(t, EvalErrorKind, err.Kind)
	assert.Equal(t, ReasonDivisionByZero, err.Reason)
}

func TestEvalModuloByZeroFloat(t *testing.T) {
	bin := &Binary{Op: TokPercent, Left: &FloatLit{Value: 10}, Right: &IntLit{Value: 0}}
	_, err := Eval(context.Background(), nil, nil, bin)
	assert.NotNil(t, err)
	assert.Equal(t, ReasonDivisionByZero, err.Reason)
}

func TestEvalArithPromotesToFloat(t *testing.T) {
	bin := &Binary{Op: TokPlus, Left: &IntLit{Value: 1}, Right: &FloatLit{Value: 2.5}}
	v, err := Eval(context.Background(), nil, nil, bin)
	assert.Nil(t, err)
	assert.Equal(t, KindFloat, v.Kind)
	assert.Equal(t, 3.5, v.Float)
}

func TestEvalStringConcatViaPlus(t *testing.T) {
	bin := &Binary{Op: TokPlus, Left: &StringLit{Fragments: []StringFragment{{Literal: "foo"}}}, Right: &StringLit{Fragments: []StringFragment{{Literal: "bar"}}}}
	v, err := Eval(context.Background(), nil, nil, bin)
	assert.Nil(t, err)
	assert.Equal(t, "foobar", v.Str)
}

func TestEvalArrayIndexOutOfBounds(t *testing.T) {
	at := &At{
		Collection: &ArrayLit{Elements: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}},
		Index:      &IntLit{Value: 5},
	}
	_, err := Eval(context.Background(), nil, nil, at)
	assert.NotNil(t, err)
	assert.Equal(t, ReasonIndexOutOfBounds, err.Reason)
}

func TestEvalMapMissingKey(t *testing.T) {
	at := &At{
		Collection: &MapLit{
			Keys:   []Expr{&StringLit{Fragments: []StringFragment{{Literal: "a"}}}},
			Values: []Expr{&IntLit{Value: 1}},
		},
		Index: &StringLit{Fragments: []StringFragment{{Literal: "b"}}},
	}
	_, err := Eval(context.Background(), nil, nil, at)
	assert.NotNil(t, err)
	assert.Equal(t, ReasonMissingMember, err.Reason)
}

func TestEvalUndefinedIdentifier(t *testing.T) {
	_, err := Eval(context.Background(), nil, nil, &Ident{Name: "nope"})
	assert.NotNil(t, err)
	assert.Equal(t, ReasonMissingBinding, err.Reason)
}

func TestEvalPlaceholderSepJoinsArrayElements(t *testing.T) {
	env := (*Ctx)(nil).Bind("xs", ArrayValue(StringType{}, []Value{StringValue("a"), StringValue("b"), StringValue("c")}))
	ph := &Placeholder{
		Expr:   &Ident{Name: "xs"},
		Option: PlaceholderOption{Kind: PlaceholderSep, Sep: ","},
	}
	out, err := evalPlaceholder(context.Background(), nil, env, ph)
	assert.Nil(t, err)
	assert.Equal(t, "a,b,c", out)
}

func TestEvalPlaceholderTrueFalse(t *testing.T) {
	env := (*Ctx)(nil).Bind("flag", BoolValue(true))
	ph := &Placeholder{
		Expr:   &Ident{Name: "flag"},
		Option: PlaceholderOption{Kind: PlaceholderTrueFalse, True: "--yes", False: "--no"},
	}
	out, err := evalPlaceholder(context.Background(), nil, env, ph)
	assert.Nil(t, err)
	assert.Equal(t, "--yes", out)
}

func TestEvalPlaceholderDefaultOnNull(t *testing.T) {
	env := (*Ctx)(nil).Bind("opt", NullValue(StringType{}))
	ph := &Placeholder{
		Expr:   &Ident{Name: "opt"},
		Option: PlaceholderOption{Kind: PlaceholderDefault, Default: "fallback"},
	}
	out, err := evalPlaceholder(context.Background(), nil, env, ph)
	assert.Nil(t, err)
	assert.Equal(t, "fallback", out)
}

func TestCoerceValueNullToNonOptionalFails(t *testing.T) {
	_, err := CoerceValue(NullValue(AnyType{}), IntType{}, Span{})
	assert.NotNil(t, err)
	assert.Equal(t, ReasonBadCoercion, err.Reason)
}

func TestCoerceValueIntToFloat(t *testing.T) {
	v, err := CoerceValue(IntValue(3), FloatType{}, Span{})
	assert.Nil(t, err)
	assert.Equal(t, KindFloat, v.Kind)
	assert.Equal(t, 3.0, v.Float)
}

func TestEvalGetNamePairFieldsAreCaseInsensitive(t *testing.T) {
	pair := &PairLit{Left: &IntLit{Value: 1}, Right: &IntLit{Value: 2}}
	for _, field := range []string{"left", "Left", "LEFT"} {
		v, err := Eval(context.Background(), nil, nil, &GetName{Expr: pair, Name: field})
		assert.Nil(t, err)
		assert.Equal(t, int64(1), v.Int)
	}
	for _, field := range []string{"right", "Right", "RIGHT"} {
		v, err := Eval(context.Background(), nil, nil, &GetName{Expr: pair, Name: field})
		assert.Nil(t, err)
		assert.Equal(t, int64(2), v.Int)
	}
}
