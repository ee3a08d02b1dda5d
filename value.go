package wdl

import (
	"fmt"
	"sort"
)

// ValueKind tags a Value's dynamic representation. A plain tagged struct is
// used in place of gql/value.go's unsafe.Pointer-packed encoding: that
// optimization exists to keep gql's columnar Table rows (potentially
// millions per script) compact, which has no analog here -- a WDL
// evaluation manipulates at most a few thousand bindings at once. See
// DESIGN.md.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindString // also backs File and Directory values
	KindArray
	KindMap
	KindPair
	KindObject // also backs Struct values
)

// Value is a runtime WDL value together with its static type (needed to
// distinguish e.g. a String from a File holding the same text, and to
// render a Struct's field order).
type Value struct {
	Kind   ValueKind
	Type   Type
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	Arr    []Value
	MapKeys []Value
	MapVals []Value
	Left, Right *Value
	Fields  map[string]Value
	Order   []string // field order for Object/Struct, preserved for JSON/display
}

func NullValue(t Type) Value       { return Value{Kind: KindNull, Type: NewOptional(t)} }
func IntValue(v int64) Value       { return Value{Kind: KindInt, Type: IntType{}, Int: v} }
func FloatValue(v float64) Value   { return Value{Kind: KindFloat, Type: FloatType{}, Float: v} }
func BoolValue(v bool) Value       { return Value{Kind: KindBool, Type: BoolType{}, Bool: v} }
func StringValue(v string) Value   { return Value{Kind: KindString, Type: StringType{}, Str: v} }
func FileValue(v string) Value     { return Value{Kind: KindString, Type: FileType{}, Str: v} }
func DirectoryValue(v string) Value { return Value{Kind: KindString, Type: DirectoryType{}, Str: v} }

func ArrayValue(elemType Type, elems []Value) Value {
	return Value{Kind: KindArray, Type: ArrayType{Elem: elemType}, Arr: elems}
}

func MapValue(keyType, valType Type, keys, vals []Value) Value {
	return Value{Kind: KindMap, Type: MapType{Key: keyType, Value: valType}, MapKeys: keys, MapVals: vals}
}

func PairValue(leftType, rightType Type, left, right Value) Value {
	return Value{Kind: KindPair, Type: PairType{Left: leftType, Right: rightType}, Left: &left, Right: &right}
}

func ObjectValue(fields map[string]Value, order []string) Value {
	ft := map[string]Type{}
	for k, v := range fields {
		ft[k] = v.Type
	}
	return Value{Kind: KindObject, Type: ObjectType{Fields: ft, Order: order}, Fields: fields, Order: order}
}

func StructValue(structName string, fields map[string]Value, order []string) Value {
	ft := map[string]Type{}
	for k, v := range fields {
		ft[k] = v.Type
	}
	return Value{Kind: KindObject, Type: StructType{Name: structName, Fields: ft, Order: order}, Fields: fields, Order: order}
}

// IsNull reports whether v holds the null value (as opposed to merely
// having an Optional static type).
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal implements WDL value equality: structural for compounds, Map
// equality treats entries as an order-independent set of key/value pairs,
// Object/Struct equality compares by field name regardless of declaration
// order or nominal type, matching TypeEqual's structural Object==Struct
// rule.
func (v Value) Equal(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	switch v.Kind {
	case KindInt:
		if o.Kind == KindFloat {
			return float64(v.Int) == o.Float
		}
		return o.Kind == KindInt && v.Int == o.Int
	case KindFloat:
		if o.Kind == KindInt {
			return v.Float == float64(o.Int)
		}
		return o.Kind == KindFloat && v.Float == o.Float
	case KindBool:
		return o.Kind == KindBool && v.Bool == o.Bool
	case KindString:
		return o.Kind == KindString && v.Str == o.Str
	case KindArray:
		if o.Kind != KindArray || len(v.Arr) != len(o.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(o.Arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if o.Kind != KindMap || len(v.MapKeys) != len(o.MapVals) {
			return false
		}
		return mapEqualAsSet(v, o)
	case KindPair:
		return o.Kind == KindPair && v.Left.Equal(*o.Left) && v.Right.Equal(*o.Right)
	case KindObject:
		if o.Kind != KindObject || len(v.Fields) != len(o.Fields) {
			return false
		}
		for k, fv := range v.Fields {
			ov, ok := o.Fields[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func mapEqualAsSet(a, b Value) bool {
	if len(a.MapKeys) != len(b.MapKeys) {
		return false
	}
	used := make([]bool, len(b.MapKeys))
	for i, ak := range a.MapKeys {
		found := false
		for j, bk := range b.MapKeys {
			if used[j] {
				continue
			}
			if ak.Equal(bk) && a.MapVals[i].Equal(b.MapVals[j]) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String renders v for error messages and for command/string interpolation
// of non-String scalars (numbers, booleans); File/Directory already carry a
// string payload. Inference does not reject an Array/Map/Pair/Object in a
// plain placeholder, so such a value is interpolated in the bracketed form
// rendered below.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindArray:
		out := "["
		for i, e := range v.Arr {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindMap:
		out := "{"
		for i := range v.MapKeys {
			if i > 0 {
				out += ", "
			}
			out += v.MapKeys[i].String() + ": " + v.MapVals[i].String()
		}
		return out + "}"
	case KindPair:
		return fmt.Sprintf("(%s, %s)", v.Left.String(), v.Right.String())
	case KindObject:
		out := "{"
		keys := v.Order
		if len(keys) == 0 {
			for k := range v.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}
		for i, k := range keys {
			if i > 0 {
				out += ", "
			}
			out += k + ": " + v.Fields[k].String()
		}
		return out + "}"
	default:
		return "<invalid>"
	}
}

// AsFloat returns v's numeric value widened to float64, for use by
// arithmetic that mixes Int and Float operands.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}
