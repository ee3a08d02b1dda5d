package wdl

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/wdltools/symbol"
)

// Runtime bundles the collaborators an evaluation needs for I/O: the
// injected SourceReader/FileWriter (see source.go) plus the working
// directory new File/Directory values are resolved relative to. It is the
// single value threaded through every stdlib FuncEval callback, the same
// role gql's ctx-scoped session state plays for builtin functions that need
// table/file access.
type Runtime struct {
	Reader  SourceReader
	Writer  FileWriter
	WorkDir string
}

// Ctx is an immutable binding environment: evaluating a Declaration or a
// Call produces a new Ctx rather than mutating the caller's, the same
// append-only discipline gql/bindings.go uses for lexical scoping, just
// without the frame-pool reuse machinery (no closures means no hot path to
// optimize).
type Ctx struct {
	parent *Ctx
	name   string
	value  Value
}

// Bind returns a new Ctx extending c with one additional name/value pair.
func (c *Ctx) Bind(name string, v Value) *Ctx {
	return &Ctx{parent: c, name: name, value: v}
}

// Lookup searches c and its ancestors for name.
func (c *Ctx) Lookup(name string) (Value, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, true
		}
	}
	return Value{}, false
}

// Eval evaluates an expression node against bindings env, returning its
// runtime Value. Every EvalError case enumerated in section 7 -- division
// by zero, index out of bounds, a missing binding, a failing stdlib call,
// an unrepresentable coercion -- aborts only this Eval call, which callers
// (bindDeclaration, scatter/conditional expansion in doc.go) may choose to recover
// from at a granularity appropriate to the construct being evaluated.
func Eval(ctx context.Context, rt *Runtime, env *Ctx, expr Expr) (Value, *Error) {
	switch n := expr.(type) {
	case *IntLit:
		return IntValue(n.Value), nil
	case *FloatLit:
		return FloatValue(n.Value), nil
	case *BoolLit:
		return BoolValue(n.Value), nil
	case *NullLit:
		return NullValue(AnyType{}), nil
	case *StringLit:
		return evalFragments(ctx, rt, env, n.Fragments)
	case *Ident:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return Value{}, NewEvalError(n.Span, ReasonMissingBinding, "undefined identifier %q", n.Name)
		}
		return v, nil
	case *ArrayLit:
		return evalArrayLit(ctx, rt, env, n)
	case *MapLit:
		return evalMapLit(ctx, rt, env, n)
	case *PairLit:
		l, err := Eval(ctx, rt, env, n.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := Eval(ctx, rt, env, n.Right)
		if err != nil {
			return Value{}, err
		}
		return PairValue(l.Type, r.Type, l, r), nil
	case *ObjectLit:
		return evalObjectLit(ctx, rt, env, n)
	case *Unary:
		return evalUnary(ctx, rt, env, n)
	case *Binary:
		return evalBinary(ctx, rt, env, n)
	case *IfThenElse:
		cond, err := Eval(ctx, rt, env, n.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Bool {
			return Eval(ctx, rt, env, n.Then)
		}
		return Eval(ctx, rt, env, n.Else)
	case *At:
		return evalAt(ctx, rt, env, n)
	case *GetName:
		return evalGetName(ctx, rt, env, n)
	case *Apply:
		return evalApply(ctx, rt, env, n)
	case *Placeholder:
		return Eval(ctx, rt, env, n.Expr)
	case *Coerce:
		v, err := Eval(ctx, rt, env, n.Expr)
		if err != nil {
			return Value{}, err
		}
		return CoerceValue(v, n.Target, n.Span)
	default:
		span := expr.exprSpan()
		return Value{}, NewInternalError(&span, fmt.Sprintf("%T", expr), "unexpected expression node in Eval")
	}
}

func evalArrayLit(ctx context.Context, rt *Runtime, env *Ctx, n *ArrayLit) (Value, *Error) {
	elems := make([]Value, len(n.Elements))
	var elemType Type = AnyType{}
	for i, e := range n.Elements {
		v, err := Eval(ctx, rt, env, e)
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
		if i == 0 {
			elemType = v.Type
		} else if u, ok := Unify(elemType, v.Type); ok {
			elemType = u
		}
	}
	return ArrayValue(elemType, elems), nil
}

func evalMapLit(ctx context.Context, rt *Runtime, env *Ctx, n *MapLit) (Value, *Error) {
	keys := make([]Value, len(n.Keys))
	vals := make([]Value, len(n.Values))
	var keyType, valType Type = AnyType{}, AnyType{}
	for i := range n.Keys {
		k, err := Eval(ctx, rt, env, n.Keys[i])
		if err != nil {
			return Value{}, err
		}
		v, err := Eval(ctx, rt, env, n.Values[i])
		if err != nil {
			return Value{}, err
		}
		keys[i], vals[i] = k, v
		if i == 0 {
			keyType, valType = k.Type, v.Type
		} else {
			if u, ok := Unify(keyType, k.Type); ok {
				keyType = u
			}
			if u, ok := Unify(valType, v.Type); ok {
				valType = u
			}
		}
	}
	return MapValue(keyType, valType, keys, vals), nil
}

func evalObjectLit(ctx context.Context, rt *Runtime, env *Ctx, n *ObjectLit) (Value, *Error) {
	fields := map[string]Value{}
	for i, k := range n.Keys {
		v, err := Eval(ctx, rt, env, n.Values[i])
		if err != nil {
			return Value{}, err
		}
		fields[k] = v
	}
	if n.StructName != "" {
		return StructValue(n.StructName, fields, n.Keys), nil
	}
	return ObjectValue(fields, n.Keys), nil
}

func evalUnary(ctx context.Context, rt *Runtime, env *Ctx, n *Unary) (Value, *Error) {
	v, err := Eval(ctx, rt, env, n.Expr)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case TokNot:
		return BoolValue(!v.Bool), nil
	case TokMinus:
		if v.Kind == KindFloat {
			return FloatValue(-v.Float), nil
		}
		return IntValue(-v.Int), nil
	default:
		return Value{}, NewInternalError(&n.Span, "Unary", "unknown unary operator")
	}
}

func evalBinary(ctx context.Context, rt *Runtime, env *Ctx, n *Binary) (Value, *Error) {
	l, err := Eval(ctx, rt, env, n.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := Eval(ctx, rt, env, n.Right)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case TokAnd:
		return BoolValue(l.Bool && r.Bool), nil
	case TokOr:
		return BoolValue(l.Bool || r.Bool), nil
	case TokEq:
		return BoolValue(l.Equal(r)), nil
	case TokNe:
		return BoolValue(!l.Equal(r)), nil
	case TokLt, TokLe, TokGt, TokGe:
		return evalCompare(n.Op, l, r), nil
	case TokPlus:
		if l.Kind == KindString || r.Kind == KindString {
			return StringValue(l.String() + r.String()), nil
		}
		return evalArith(n.Span, n.Op, l, r)
	case TokMinus, TokStar, TokSlash, TokPercent:
		return evalArith(n.Span, n.Op, l, r)
	default:
		return Value{}, NewInternalError(&n.Span, "Binary", "unknown binary operator")
	}
}

func evalCompare(op TokenKind, l, r Value) Value {
	var cmp int
	switch {
	case l.Kind == KindString:
		switch {
		case l.Str < r.Str:
			cmp = -1
		case l.Str > r.Str:
			cmp = 1
		}
	default:
		lf, rf := l.AsFloat(), r.AsFloat()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}
	switch op {
	case TokLt:
		return BoolValue(cmp < 0)
	case TokLe:
		return BoolValue(cmp <= 0)
	case TokGt:
		return BoolValue(cmp > 0)
	default:
		return BoolValue(cmp >= 0)
	}
}

func evalArith(span Span, op TokenKind, l, r Value) (Value, *Error) {
	useFloat := l.Kind == KindFloat || r.Kind == KindFloat
	if useFloat {
		lf, rf := l.AsFloat(), r.AsFloat()
		switch op {
		case TokPlus:
			return FloatValue(lf + rf), nil
		case TokMinus:
			return FloatValue(lf - rf), nil
		case TokStar:
			return FloatValue(lf * rf), nil
		case TokSlash:
			if rf == 0 {
				return Value{}, NewEvalError(span, ReasonDivisionByZero, "division by zero")
			}
			return FloatValue(lf / rf), nil
		case TokPercent:
			if rf == 0 {
				return Value{}, NewEvalError(span, ReasonDivisionByZero, "modulo by zero")
			}
			return FloatValue(float64(int64(lf) % int64(rf))), nil
		}
	}
	li, ri := l.Int, r.Int
	switch op {
	case TokPlus:
		return IntValue(li + ri), nil
	case TokMinus:
		return IntValue(li - ri), nil
	case TokStar:
		return IntValue(li * ri), nil
	case TokSlash:
		if ri == 0 {
			return Value{}, NewEvalError(span, ReasonDivisionByZero, "division by zero")
		}
		return IntValue(li / ri), nil
	case TokPercent:
		if ri == 0 {
			return Value{}, NewEvalError(span, ReasonDivisionByZero, "modulo by zero")
		}
		return IntValue(li % ri), nil
	}
	return Value{}, NewInternalError(&span, "Binary", "unreachable arithmetic operator")
}

func evalAt(ctx context.Context, rt *Runtime, env *Ctx, n *At) (Value, *Error) {
	coll, err := Eval(ctx, rt, env, n.Collection)
	if err != nil {
		return Value{}, err
	}
	idx, err := Eval(ctx, rt, env, n.Index)
	if err != nil {
		return Value{}, err
	}
	switch coll.Kind {
	case KindArray:
		i := idx.Int
		if i < 0 || i >= int64(len(coll.Arr)) {
			return Value{}, NewEvalError(n.Span, ReasonIndexOutOfBounds, "array index %d out of bounds (length %d)", i, len(coll.Arr))
		}
		return coll.Arr[i], nil
	case KindMap:
		for i, k := range coll.MapKeys {
			if k.Equal(idx) {
				return coll.MapVals[i], nil
			}
		}
		return Value{}, NewEvalError(n.Span, ReasonMissingMember, "key %v not found in map", idx)
	default:
		return Value{}, NewInternalError(&n.Span, "At", "indexing a non-Array/Map value")
	}
}

func evalGetName(ctx context.Context, rt *Runtime, env *Ctx, n *GetName) (Value, *Error) {
	v, err := Eval(ctx, rt, env, n.Expr)
	if err != nil {
		return Value{}, err
	}
	switch v.Kind {
	case KindObject:
		fv, ok := v.Fields[n.Name]
		if !ok {
			return Value{}, NewEvalError(n.Span, ReasonMissingMember, "no member %q", n.Name)
		}
		return fv, nil
	case KindPair:
		switch symbol.Intern(strings.ToLower(n.Name)) {
		case symbol.Left:
			return *v.Left, nil
		case symbol.Right:
			return *v.Right, nil
		}
		return Value{}, NewEvalError(n.Span, ReasonMissingMember, "pair has no member %q", n.Name)
	default:
		return Value{}, NewInternalError(&n.Span, "GetName", "member access on a scalar value")
	}
}

func evalApply(ctx context.Context, rt *Runtime, env *Ctx, n *Apply) (Value, *Error) {
	argTypes := make([]Type, len(n.Args))
	argVals := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, rt, env, a)
		if err != nil {
			return Value{}, err
		}
		argVals[i] = v
		argTypes[i] = v.Type
	}
	proto, lookupErr := LookupStdlib(n.Name, argTypes)
	if lookupErr != nil {
		return Value{}, NewEvalError(n.Span, ReasonStdlibFailure, "%s", lookupErr)
	}
	return proto.Eval(ctx, rt, n.Span, argVals)
}

// evalFragments evaluates a StringLit/CommandSection's fragments and
// concatenates them, applying each placeholder's sep=/true=/false=/default=
// directive as specified in section 4.2.
func evalFragments(ctx context.Context, rt *Runtime, env *Ctx, frags []StringFragment) (Value, *Error) {
	out := ""
	for _, f := range frags {
		if f.Placeholder == nil {
			out += f.Literal
			continue
		}
		text, err := evalPlaceholder(ctx, rt, env, f.Placeholder)
		if err != nil {
			return Value{}, err
		}
		out += text
	}
	return StringValue(out), nil
}

func evalPlaceholder(ctx context.Context, rt *Runtime, env *Ctx, ph *Placeholder) (string, *Error) {
	v, err := Eval(ctx, rt, env, ph.Expr)
	if err != nil {
		return "", err
	}
	switch ph.Option.Kind {
	case PlaceholderTrueFalse:
		if v.IsNull() {
			return "", nil
		}
		if v.Bool {
			return ph.Option.True, nil
		}
		return ph.Option.False, nil
	case PlaceholderDefault:
		if v.IsNull() {
			return ph.Option.Default, nil
		}
		return v.String(), nil
	case PlaceholderSep:
		if v.IsNull() {
			return "", nil
		}
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = e.String()
		}
		out := ""
		for i, p := range parts {
			if i > 0 {
				out += ph.Option.Sep
			}
			out += p
		}
		return out, nil
	default:
		if v.IsNull() {
			return "", nil
		}
		return v.String(), nil
	}
}

// CoerceValue converts v to target per the coercion lattice of section 4.3.
// The only runtime failure is a null value coerced to a non-optional type,
// an EvalError(ReasonBadCoercion). An Int is widened for a Float target, any
// value is rendered for a String target, and the string payload is retagged
// for a File or Directory target; for every other target v is returned
// unchanged, and array elements, map entries and fields are not converted.
func CoerceValue(v Value, target Type, span Span) (Value, *Error) {
	if v.IsNull() {
		if _, ok := target.(OptionalType); ok {
			return NullValue(target), nil
		}
		if _, ok := target.(AnyType); ok {
			return v, nil
		}
		return Value{}, NewEvalError(span, ReasonBadCoercion, "cannot coerce null to non-optional type %s", target)
	}
	if opt, ok := target.(OptionalType); ok {
		inner, err := CoerceValue(v, opt.Elem, span)
		if err != nil {
			return Value{}, err
		}
		inner.Type = NewOptional(inner.Type)
		return inner, nil
	}
	switch target.(type) {
	case AnyType:
		return v, nil
	case FloatType:
		if v.Kind == KindInt {
			return FloatValue(float64(v.Int)), nil
		}
		return v, nil
	case StringType:
		if v.Kind == KindString {
			return StringValue(v.Str), nil
		}
		return StringValue(v.String()), nil
	case FileType:
		return FileValue(v.Str), nil
	case DirectoryType:
		return DirectoryValue(v.Str), nil
	default:
		return v, nil
	}
}
