package wdl

import (
	"fmt"
	"strings"
)

// Type is implemented by every WDL static type. Types are immutable and
// compared/stored by value (primitives) or by structurally-comparable
// fields (compounds), never by pointer identity, so two independently
// constructed Array[Int] values are Equal.
type Type interface {
	String() string
	// IsCoercibleTo reports whether a value of this type can be implicitly
	// converted to target, per the coercion lattice of section 4.3.
	IsCoercibleTo(target Type) bool
	typeTag() string
}

// FlattenNestedOptionals controls whether NewOptional(Optional(T)) collapses
// to Optional(T) rather than nesting. WDL's own type system treats "T??" as
// meaningless since an optional value is already representable by a single
// level of nullability; flattening avoids manufacturing a distinction no
// evaluator rule can observe. See DESIGN.md's Open Question resolution.
var FlattenNestedOptionals = true

// Primitive types.
type (
	IntType    struct{}
	FloatType  struct{}
	BoolType   struct{}
	StringType struct{}
	FileType   struct{}
	DirectoryType struct{}
	// AnyType is the fallback assigned to an expression after a TypeError, so
	// inference can continue accumulating further diagnostics instead of
	// aborting the whole pass.
	AnyType struct{}
)

func (IntType) String() string    { return "Int" }
func (FloatType) String() string  { return "Float" }
func (BoolType) String() string   { return "Boolean" }
func (StringType) String() string { return "String" }
func (FileType) String() string   { return "File" }
func (DirectoryType) String() string { return "Directory" }
func (AnyType) String() string    { return "Any" }

func (IntType) typeTag() string       { return "Int" }
func (FloatType) typeTag() string     { return "Float" }
func (BoolType) typeTag() string      { return "Boolean" }
func (StringType) typeTag() string    { return "String" }
func (FileType) typeTag() string      { return "File" }
func (DirectoryType) typeTag() string { return "Directory" }
func (AnyType) typeTag() string       { return "Any" }

// IsCoercibleTo implements the primitive coercion lattice: Int -> Float,
// Int/Float/Boolean/File/Directory -> String (stringification), File <->
// String (either direction, since a File is represented as a path string),
// Directory <-> String likewise, and Any absorbs/produces any coercion so
// that inference can keep going after an earlier TypeError.
func (t IntType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case IntType, FloatType, StringType, AnyType:
		return true
	}
	return false
}

func (t FloatType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case FloatType, StringType, AnyType:
		return true
	}
	return false
}

func (t BoolType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case BoolType, StringType, AnyType:
		return true
	}
	return false
}

func (t StringType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case StringType, FileType, DirectoryType, AnyType:
		return true
	}
	return false
}

func (t FileType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case FileType, StringType, AnyType:
		return true
	}
	return false
}

func (t DirectoryType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.IsCoercibleTo(opt.Elem)
	}
	switch target.(type) {
	case DirectoryType, StringType, AnyType:
		return true
	}
	return false
}

func (AnyType) IsCoercibleTo(Type) bool { return true }

// OptionalType wraps an underlying type, permitting null in addition to
// every value the underlying type permits.
type OptionalType struct {
	Elem Type
}

// NewOptional constructs Optional(t), flattening Optional(Optional(u)) to
// Optional(u) when FlattenNestedOptionals is set.
func NewOptional(t Type) Type {
	if opt, ok := t.(OptionalType); ok && FlattenNestedOptionals {
		return opt
	}
	return OptionalType{Elem: t}
}

func (t OptionalType) String() string { return t.Elem.String() + "?" }
func (t OptionalType) typeTag() string { return "Optional" }

func (t OptionalType) IsCoercibleTo(target Type) bool {
	if opt, ok := target.(OptionalType); ok {
		return t.Elem.IsCoercibleTo(opt.Elem)
	}
	// Coercion to Any is trivial; unwrapping to any other non-optional target
	// is spec-illegal (section 3.4) -- callers must go through
	// select_first/defined to strip the optional, per section 4.4.
	_, ok := target.(AnyType)
	return ok
}

// ArrayType is Array[Elem], optionally constrained to be non-empty ("+").
type ArrayType struct {
	Elem     Type
	NonEmpty bool
}

func (t ArrayType) String() string {
	suffix := ""
	if t.NonEmpty {
		suffix = "+"
	}
	return fmt.Sprintf("Array[%s]%s", t.Elem.String(), suffix)
}
func (t ArrayType) typeTag() string { return "Array" }

func (t ArrayType) IsCoercibleTo(target Type) bool {
	switch tgt := target.(type) {
	case OptionalType:
		return t.IsCoercibleTo(tgt.Elem)
	case ArrayType:
		if tgt.NonEmpty && !t.NonEmpty {
			return false
		}
		return t.Elem.IsCoercibleTo(tgt.Elem)
	case AnyType:
		return true
	}
	return false
}

// MapType is Map[Key, Value].
type MapType struct {
	Key, Value Type
}

func (t MapType) String() string { return fmt.Sprintf("Map[%s, %s]", t.Key.String(), t.Value.String()) }
func (t MapType) typeTag() string { return "Map" }

func (t MapType) IsCoercibleTo(target Type) bool {
	switch tgt := target.(type) {
	case OptionalType:
		return t.IsCoercibleTo(tgt.Elem)
	case MapType:
		return t.Key.IsCoercibleTo(tgt.Key) && t.Value.IsCoercibleTo(tgt.Value)
	case AnyType:
		return true
	}
	return false
}

// PairType is Pair[Left, Right].
type PairType struct {
	Left, Right Type
}

func (t PairType) String() string { return fmt.Sprintf("Pair[%s, %s]", t.Left.String(), t.Right.String()) }
func (t PairType) typeTag() string { return "Pair" }

func (t PairType) IsCoercibleTo(target Type) bool {
	switch tgt := target.(type) {
	case OptionalType:
		return t.IsCoercibleTo(tgt.Elem)
	case PairType:
		return t.Left.IsCoercibleTo(tgt.Left) && t.Right.IsCoercibleTo(tgt.Right)
	case AnyType:
		return true
	}
	return false
}

// ObjectType is the type of an untyped "object {...}" / Object literal: an
// open-ended bag of named fields, equal to another ObjectType (or a
// StructType) with the same field names regardless of declaration order.
type ObjectType struct {
	Fields map[string]Type
	Order  []string
}

func (t ObjectType) String() string { return "Object" }
func (t ObjectType) typeTag() string { return "Object" }

func (t ObjectType) IsCoercibleTo(target Type) bool {
	switch tgt := target.(type) {
	case OptionalType:
		return t.IsCoercibleTo(tgt.Elem)
	case ObjectType:
		return sameFieldNames(t.Fields, tgt.Fields)
	case StructType:
		return sameFieldNames(t.Fields, tgt.Fields)
	case AnyType:
		return true
	}
	return false
}

// StructType is a named, nominal record type declared by a "struct { ... }"
// block, but compared structurally (by field name set), matching Object ==
// Object equality and this module's Open Question resolution: two
// independently-declared struct types with identical field names are equal.
type StructType struct {
	Name   string
	Fields map[string]Type
	Order  []string
}

func (t StructType) String() string { return t.Name }
func (t StructType) typeTag() string { return "Struct" }

func (t StructType) IsCoercibleTo(target Type) bool {
	switch tgt := target.(type) {
	case OptionalType:
		return t.IsCoercibleTo(tgt.Elem)
	case StructType:
		return sameFieldNames(t.Fields, tgt.Fields)
	case ObjectType:
		return sameFieldNames(t.Fields, tgt.Fields)
	case AnyType:
		return true
	}
	return false
}

func sameFieldNames(a, b map[string]Type) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// CallOutputType is the type of a workflow call's result: a struct-like
// bundle of its callee's output names and types, accessed via
// "call_name.output_name".
type CallOutputType struct {
	CallName string
	Fields   map[string]Type
	Order    []string
}

func (t CallOutputType) String() string { return "call " + t.CallName }
func (t CallOutputType) typeTag() string { return "CallOutput" }

func (t CallOutputType) IsCoercibleTo(target Type) bool {
	if _, ok := target.(AnyType); ok {
		return true
	}
	return false
}

// TypeEqual reports structural equality: identical tag and, for compounds,
// identical structure (field names for Object/Struct, element types
// recursively for Array/Map/Pair/Optional).
func TypeEqual(a, b Type) bool {
	switch av := a.(type) {
	case OptionalType:
		bv, ok := b.(OptionalType)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case ArrayType:
		bv, ok := b.(ArrayType)
		return ok && av.NonEmpty == bv.NonEmpty && TypeEqual(av.Elem, bv.Elem)
	case MapType:
		bv, ok := b.(MapType)
		return ok && TypeEqual(av.Key, bv.Key) && TypeEqual(av.Value, bv.Value)
	case PairType:
		bv, ok := b.(PairType)
		return ok && TypeEqual(av.Left, bv.Left) && TypeEqual(av.Right, bv.Right)
	case ObjectType:
		return fieldsEqualAsObject(av.Fields, b)
	case StructType:
		return fieldsEqualAsObject(av.Fields, b)
	default:
		return a.typeTag() == b.typeTag()
	}
}

func fieldsEqualAsObject(fields map[string]Type, b Type) bool {
	var bFields map[string]Type
	switch bv := b.(type) {
	case ObjectType:
		bFields = bv.Fields
	case StructType:
		bFields = bv.Fields
	default:
		return false
	}
	if len(fields) != len(bFields) {
		return false
	}
	for k, t := range fields {
		bt, ok := bFields[k]
		if !ok || !TypeEqual(t, bt) {
			return false
		}
	}
	return true
}

// Unify computes the least upper bound of a and b: the narrowest type both
// coerce to, used for if/then/else and for inferring an array literal's
// element type from its members. Returns (AnyType{}, false) when no common
// type exists other than Any.
func Unify(a, b Type) (Type, bool) {
	if TypeEqual(a, b) {
		return a, true
	}
	if _, ok := a.(AnyType); ok {
		return b, true
	}
	if _, ok := b.(AnyType); ok {
		return a, true
	}
	aOpt, aIsOpt := a.(OptionalType)
	bOpt, bIsOpt := b.(OptionalType)
	if aIsOpt || bIsOpt {
		inner := a
		if aIsOpt {
			inner = aOpt.Elem
		}
		other := b
		if bIsOpt {
			other = bOpt.Elem
		}
		u, ok := Unify(inner, other)
		if !ok {
			return AnyType{}, false
		}
		return NewOptional(u), true
	}
	if a.IsCoercibleTo(b) {
		return b, true
	}
	if b.IsCoercibleTo(a) {
		return a, true
	}
	switch av := a.(type) {
	case ArrayType:
		if bv, ok := b.(ArrayType); ok {
			u, ok := Unify(av.Elem, bv.Elem)
			if ok {
				return ArrayType{Elem: u, NonEmpty: av.NonEmpty && bv.NonEmpty}, true
			}
		}
	case MapType:
		if bv, ok := b.(MapType); ok {
			uk, ok1 := Unify(av.Key, bv.Key)
			uv, ok2 := Unify(av.Value, bv.Value)
			if ok1 && ok2 {
				return MapType{Key: uk, Value: uv}, true
			}
		}
	case PairType:
		if bv, ok := b.(PairType); ok {
			ul, ok1 := Unify(av.Left, bv.Left)
			ur, ok2 := Unify(av.Right, bv.Right)
			if ok1 && ok2 {
				return PairType{Left: ul, Right: ur}, true
			}
		}
	}
	return AnyType{}, false
}

// typeExprName returns a TypeExpr's head name with any trailing "?"
// removed.
func typeExprName(t *TypeExpr) string {
	return strings.TrimSuffix(t.Name, "?")
}
