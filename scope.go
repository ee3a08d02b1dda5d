package wdl

import "github.com/grailbio/wdltools/symbol"

// scope is an ordered map from identifier to its inferred (type,
// provenance) pair, chained into a parent to model nested lexical scopes
// (task/workflow body, scatter body, conditional body), matching section
// 4.4's "scopes stack in a context chain" environment description. Names
// are interned to symbol.IDs before being used as map keys and compared,
// the same way gql/ai.go's AIType environment keys bindings by interned
// symbol rather than raw string.
type scope struct {
	parent *scope
	names  map[symbol.ID]scopeEntry
	order  []symbol.ID
}

// scopeEntry records a name's inferred type plus where it came from, used
// for shadowing diagnostics and for reporting "undeclared identifier"
// against the right enclosing construct.
type scopeEntry struct {
	typ        Type
	provenance string // e.g. "input", "declaration", "call output", "scatter variable"
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[symbol.ID]scopeEntry{}}
}

// declare adds name to s. Returns false if name is already declared in s
// itself (not a parent) -- section 4.4's shadowing policy: redeclaring a
// name already bound in the *same* scope is a TypeError, but a nested
// scope (e.g. a scatter body) may shadow an outer binding freely, the same
// way gql's bindings.go permits a pushed frame to shadow an outer one.
func (s *scope) declare(name string, t Type, provenance string) bool {
	id := symbol.Intern(name)
	if _, exists := s.names[id]; exists {
		return false
	}
	s.names[id] = scopeEntry{typ: t, provenance: provenance}
	s.order = append(s.order, id)
	return true
}

// lookup searches s and its ancestors for name.
func (s *scope) lookup(name string) (scopeEntry, bool) {
	id := symbol.Intern(name)
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.names[id]; ok {
			return e, true
		}
	}
	return scopeEntry{}, false
}

// resolveTypeExpr converts a parsed TypeExpr into a Type, consulting
// structDefs for nominal struct/Object references. Compound type
// parameters are resolved recursively; an Array[T]+ marker (stashed as a
// synthetic "+"-named TypeExpr param by the parser) sets NonEmpty instead
// of contributing an element type.
func resolveTypeExpr(te *TypeExpr, structDefs map[string]StructType) (Type, *Error) {
	var base Type
	switch te.Name {
	case "Int":
		base = IntType{}
	case "Float":
		base = FloatType{}
	case "Boolean":
		base = BoolType{}
	case "String":
		base = StringType{}
	case "File":
		base = FileType{}
	case "Directory":
		base = DirectoryType{}
	case "Object":
		base = ObjectType{}
	case "Array":
		if len(te.Params) == 0 {
			return nil, NewTypeError(te.Span, "Array requires an element type parameter")
		}
		elem, err := resolveTypeExpr(te.Params[0], structDefs)
		if err != nil {
			return nil, err
		}
		nonEmpty := false
		for _, p := range te.Params[1:] {
			if p.Name == "+" {
				nonEmpty = true
			}
		}
		base = ArrayType{Elem: elem, NonEmpty: nonEmpty}
	case "Map":
		if len(te.Params) != 2 {
			return nil, NewTypeError(te.Span, "Map requires two type parameters")
		}
		k, err := resolveTypeExpr(te.Params[0], structDefs)
		if err != nil {
			return nil, err
		}
		v, err := resolveTypeExpr(te.Params[1], structDefs)
		if err != nil {
			return nil, err
		}
		base = MapType{Key: k, Value: v}
	case "Pair":
		if len(te.Params) != 2 {
			return nil, NewTypeError(te.Span, "Pair requires two type parameters")
		}
		l, err := resolveTypeExpr(te.Params[0], structDefs)
		if err != nil {
			return nil, err
		}
		r, err := resolveTypeExpr(te.Params[1], structDefs)
		if err != nil {
			return nil, err
		}
		base = PairType{Left: l, Right: r}
	default:
		st, ok := structDefs[te.Name]
		if !ok {
			return nil, NewTypeError(te.Span, "unknown type %q", te.Name)
		}
		base = st
	}
	if te.Optional {
		return NewOptional(base), nil
	}
	return base, nil
}
