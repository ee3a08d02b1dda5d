package wdl

import (
	"sort"

	"github.com/grailbio/wdltools/marshal"
)

// ValueToJSON renders a Value as a JSON document per section 6's mapping:
// Int/Float/Boolean/String/File/Directory map to their natural JSON
// scalars (File/Directory as their path string), Array to a JSON array,
// Map[String, _] to a JSON object (a non-String-keyed Map is rejected,
// since JSON object keys must be strings), Pair to a two-element
// {"left":..., "right":...} object, and Object/Struct to a JSON object
// keyed by field name.
func ValueToJSON(v Value, span Span) ([]byte, *Error) {
	enc := marshal.NewEncoder()
	if err := encodeValue(enc, v, span); err != nil {
		marshal.ReleaseEncoder(enc)
		return nil, err
	}
	return marshal.ReleaseEncoder(enc), nil
}

func encodeValue(enc *marshal.Encoder, v Value, span Span) *Error {
	if v.IsNull() {
		enc.PutNull()
		return nil
	}
	switch v.Kind {
	case KindInt:
		enc.PutInt(v.Int)
	case KindFloat:
		enc.PutFloat(v.Float)
	case KindBool:
		enc.PutBool(v.Bool)
	case KindString:
		enc.PutString(v.Str)
	case KindArray:
		enc.BeginArray()
		for _, e := range v.Arr {
			if err := encodeValue(enc, e, span); err != nil {
				return err
			}
		}
		enc.EndArray()
	case KindMap:
		if mt, ok := v.Type.(MapType); ok {
			if _, ok := mt.Key.(StringType); !ok {
				return NewEvalError(span, ReasonBadCoercion, "write_json: only Map[String, _] can be serialized to JSON")
			}
		}
		enc.BeginObject()
		for i, k := range v.MapKeys {
			enc.PutKey(k.Str)
			if err := encodeValue(enc, v.MapVals[i], span); err != nil {
				return err
			}
		}
		enc.EndObject()
	case KindPair:
		enc.BeginObject()
		enc.PutKey("left")
		if err := encodeValue(enc, *v.Left, span); err != nil {
			return err
		}
		enc.PutKey("right")
		if err := encodeValue(enc, *v.Right, span); err != nil {
			return err
		}
		enc.EndObject()
	case KindObject:
		enc.BeginObject()
		keys := v.Order
		if len(keys) == 0 {
			for k := range v.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}
		for _, k := range keys {
			enc.PutKey(k)
			if err := encodeValue(enc, v.Fields[k], span); err != nil {
				return err
			}
		}
		enc.EndObject()
	default:
		return NewInternalError(&span, "Value", "unrecognized value kind in JSON encoding")
	}
	return nil
}

// JSONToValue parses a JSON document into an untyped Object/Array/scalar
// Value tree -- used by read_json, whose static return type is Any, so the
// dynamic shape of the parsed document becomes the value's type directly.
func JSONToValue(data []byte, span Span) (Value, *Error) {
	dec := marshal.NewDecoder(data)
	defer marshal.ReleaseDecoder(dec)
	raw, err := dec.Decode()
	if err != nil {
		return Value{}, NewEvalError(span, ReasonBadCoercion, "read_json: %s", err)
	}
	return jsonToValue(raw), nil
}

func jsonToValue(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue(AnyType{})
	case bool:
		return BoolValue(x)
	case int64:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case string:
		return StringValue(x)
	case []interface{}:
		elems := make([]Value, len(x))
		elemType := Type(AnyType{})
		for i, e := range x {
			elems[i] = jsonToValue(e)
			if i == 0 {
				elemType = elems[i].Type
			} else if u, ok := Unify(elemType, elems[i].Type); ok {
				elemType = u
			}
		}
		return ArrayValue(elemType, elems)
	case map[string]interface{}:
		fields := map[string]Value{}
		var order []string
		for k, e := range x {
			fields[k] = jsonToValue(e)
			order = append(order, k)
		}
		sort.Strings(order)
		return ObjectValue(fields, order)
	default:
		return NullValue(AnyType{})
	}
}
