package wdl

import (
	"fmt"
	"strings"

	"github.com/grailbio/wdltools/symbol"
)

// TypeCheck runs the bidirectional type inferencer over doc, consuming
// already-checked imported documents (keyed by the alias the importing
// document will refer to them by) for cross-document struct and call
// resolution. It never returns a nil *TypedDocument: even when fatal
// errors occur, the partial result (and td.Errors) is returned so callers
// can report every accumulated TypeError in one pass, per section 4.4's
// failure semantics. A SyntaxError/ImportError/InternalError discovered
// mid-pass is still returned as the function's *Error (fatal), distinct
// from the accumulated, non-fatal TypeErrors in td.Errors.
func TypeCheck(doc *Document, imported map[string]*TypedDocument) (*TypedDocument, *Error) {
	td := newTypedDocument(doc)

	for alias, idoc := range imported {
		for name, st := range idoc.Structs {
			td.Structs[qualify(alias, name)] = st
			if _, exists := td.Structs[name]; !exists {
				td.Structs[name] = st
			}
		}
	}

	for _, s := range doc.Structs {
		st, err := inferStructDecl(s, td.Structs)
		if err != nil {
			td.Errors = append(td.Errors, err)
			continue
		}
		td.Structs[s.Name] = st
	}

	for _, t := range doc.Tasks {
		sig := inferTask(t, td)
		td.Tasks[t.Name] = sig
	}

	for alias, idoc := range imported {
		for name, sig := range idoc.Tasks {
			td.Tasks[qualify(alias, name)] = sig
		}
	}

	if doc.Workflow != nil {
		td.Workflow = inferWorkflow(doc.Workflow, td)
	}

	return td, nil
}

func qualify(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}

func inferStructDecl(s *StructDecl, structDefs map[string]StructType) (StructType, *Error) {
	fields := map[string]Type{}
	var order []string
	for _, m := range s.Members {
		t, err := resolveTypeExpr(m.Type, structDefs)
		if err != nil {
			return StructType{}, err
		}
		fields[m.Name] = t
		order = append(order, m.Name)
	}
	return StructType{Name: s.Name, Fields: fields, Order: order}, nil
}

func inferTask(t *TaskDecl, td *TypedDocument) *TaskSignature {
	sc := newScope(nil)
	sig := &TaskSignature{Name: t.Name, Inputs: map[string]Type{}, Required: map[string]bool{}, Outputs: map[string]Type{}}

	for _, d := range t.Inputs {
		typ := inferDeclaration(d, sc, td)
		sig.Inputs[d.Name] = typ
		sig.Required[d.Name] = d.Expr == nil && !isOptional(typ)
	}
	for _, d := range t.Decls {
		inferDeclaration(d, sc, td)
	}
	if t.Command != nil {
		for _, f := range t.Command.Fragments {
			if f.Placeholder != nil {
				inferPlaceholder(f.Placeholder, sc, td)
			}
		}
	}
	if t.Runtime != nil {
		for _, e := range t.Runtime.Entries {
			inferExpr(e, sc, td)
		}
	}
	if t.Hints != nil {
		for _, e := range t.Hints.Entries {
			inferExpr(e, sc, td)
		}
	}
	outScope := newScope(sc)
	for _, d := range t.Outputs {
		typ := inferDeclaration(d, outScope, td)
		sig.Outputs[d.Name] = typ
	}
	return sig
}

func isOptional(t Type) bool {
	_, ok := t.(OptionalType)
	return ok
}

// inferDeclaration type-checks "Type name [= expr]", recording a Coerce
// requirement when expr's inferred type differs from the declared type but
// is coercible to it, and a TypeError when it is not. Redeclaring a name
// already bound in the same scope is a TypeError (section 4.4's shadowing
// policy, enforced only within one scope -- nested scopes may shadow
// freely).
func inferDeclaration(d *Declaration, sc *scope, td *TypedDocument) Type {
	declared, err := resolveTypeExpr(d.Type, td.Structs)
	if err != nil {
		td.Errors = append(td.Errors, err)
		declared = AnyType{}
	}
	if d.Expr != nil {
		exprType := inferExpr(d.Expr, sc, td)
		if !exprType.IsCoercibleTo(declared) {
			td.Errors = append(td.Errors, NewTypeError(d.Expr.exprSpan(),
				"cannot coerce %s to declared type %s for %q", exprType, declared, d.Name))
		} else if !TypeEqual(exprType, declared) {
			td.Coercions[d.Expr] = declared
		}
	}
	if !sc.declare(d.Name, declared, "declaration") {
		td.Errors = append(td.Errors, NewTypeError(d.Span, "redeclaration of %q in the same scope", d.Name))
	}
	return declared
}

// inferExpr is the bidirectional core: it infers each node's type bottom-up
// (synthesis), records it in td.ExprTypes, and on any rule violation
// records a TypeError while still returning Any so inference continues.
func inferExpr(e Expr, sc *scope, td *TypedDocument) Type {
	var t Type
	switch n := e.(type) {
	case *IntLit:
		t = IntType{}
	case *FloatLit:
		t = FloatType{}
	case *BoolLit:
		t = BoolType{}
	case *NullLit:
		t = NewOptional(AnyType{})
	case *StringLit:
		for _, f := range n.Fragments {
			if f.Placeholder != nil {
				inferPlaceholder(f.Placeholder, sc, td)
			}
		}
		t = StringType{}
	case *Ident:
		entry, ok := sc.lookup(n.Name)
		if !ok {
			td.Errors = append(td.Errors, NewTypeError(n.Span, "undeclared identifier %q", n.Name))
			t = AnyType{}
		} else {
			t = entry.typ
		}
	case *ArrayLit:
		t = inferArrayLit(n, sc, td)
	case *MapLit:
		t = inferMapLit(n, sc, td)
	case *PairLit:
		l := inferExpr(n.Left, sc, td)
		r := inferExpr(n.Right, sc, td)
		t = PairType{Left: l, Right: r}
	case *ObjectLit:
		t = inferObjectLit(n, sc, td)
	case *Unary:
		t = inferUnary(n, sc, td)
	case *Binary:
		t = inferBinary(n, sc, td)
	case *IfThenElse:
		t = inferIfThenElse(n, sc, td)
	case *At:
		t = inferAt(n, sc, td)
	case *GetName:
		t = inferGetName(n, sc, td)
	case *Apply:
		t = inferApply(n, sc, td)
	default:
		td.Errors = append(td.Errors, NewTypeError(e.exprSpan(), "unsupported expression node %T", e))
		t = AnyType{}
	}
	td.ExprTypes[e] = t
	return t
}

func inferPlaceholder(ph *Placeholder, sc *scope, td *TypedDocument) {
	t := inferExpr(ph.Expr, sc, td)
	switch ph.Option.Kind {
	case PlaceholderSep:
		if _, ok := t.(ArrayType); !ok {
			if _, ok2 := t.(AnyType); !ok2 {
				td.Errors = append(td.Errors, NewTypeError(ph.Span, "sep= placeholder requires an Array expression, got %s", t))
			}
		}
	case PlaceholderTrueFalse:
		under := t
		if opt, ok := under.(OptionalType); ok {
			under = opt.Elem
		}
		if _, ok := under.(BoolType); !ok {
			if _, ok2 := under.(AnyType); !ok2 {
				td.Errors = append(td.Errors, NewTypeError(ph.Span, "true=/false= placeholder requires a Boolean expression, got %s", t))
			}
		}
	}
}

func inferArrayLit(n *ArrayLit, sc *scope, td *TypedDocument) Type {
	elemType := Type(AnyType{})
	for i, e := range n.Elements {
		et := inferExpr(e, sc, td)
		if i == 0 {
			elemType = et
			continue
		}
		if u, ok := Unify(elemType, et); ok {
			elemType = u
		} else {
			td.Errors = append(td.Errors, NewTypeError(e.exprSpan(), "array element type %s does not unify with %s", et, elemType))
		}
	}
	return ArrayType{Elem: elemType, NonEmpty: len(n.Elements) > 0}
}

func inferMapLit(n *MapLit, sc *scope, td *TypedDocument) Type {
	keyType, valType := Type(AnyType{}), Type(AnyType{})
	for i := range n.Keys {
		kt := inferExpr(n.Keys[i], sc, td)
		vt := inferExpr(n.Values[i], sc, td)
		if i == 0 {
			keyType, valType = kt, vt
			continue
		}
		if u, ok := Unify(keyType, kt); ok {
			keyType = u
		}
		if u, ok := Unify(valType, vt); ok {
			valType = u
		}
	}
	return MapType{Key: keyType, Value: valType}
}

func inferObjectLit(n *ObjectLit, sc *scope, td *TypedDocument) Type {
	fields := map[string]Type{}
	for i, k := range n.Keys {
		fields[k] = inferExpr(n.Values[i], sc, td)
	}
	if n.StructName != "" {
		if st, ok := td.Structs[n.StructName]; ok {
			return st
		}
		td.Errors = append(td.Errors, NewTypeError(n.Span, "unknown struct %q", n.StructName))
	}
	return ObjectType{Fields: fields, Order: n.Keys}
}

func inferUnary(n *Unary, sc *scope, td *TypedDocument) Type {
	t := inferExpr(n.Expr, sc, td)
	switch n.Op {
	case TokNot:
		if _, ok := t.(BoolType); !ok {
			if _, ok2 := t.(AnyType); !ok2 {
				td.Errors = append(td.Errors, NewTypeError(n.Span, "'!' requires Boolean, got %s", t))
			}
		}
		return BoolType{}
	case TokMinus:
		switch t.(type) {
		case IntType:
			return IntType{}
		case FloatType:
			return FloatType{}
		case AnyType:
			return AnyType{}
		default:
			td.Errors = append(td.Errors, NewTypeError(n.Span, "unary '-' requires Int or Float, got %s", t))
			return AnyType{}
		}
	}
	return AnyType{}
}

func inferBinary(n *Binary, sc *scope, td *TypedDocument) Type {
	l := inferExpr(n.Left, sc, td)
	r := inferExpr(n.Right, sc, td)
	switch n.Op {
	case TokAnd, TokOr:
		return BoolType{}
	case TokEq, TokNe:
		return BoolType{}
	case TokLt, TokLe, TokGt, TokGe:
		return BoolType{}
	case TokPlus:
		if isStringy(l) || isStringy(r) {
			return StringType{}
		}
		return numericResult(n.Span, l, r, td)
	case TokMinus, TokStar, TokSlash, TokPercent:
		return numericResult(n.Span, l, r, td)
	}
	return AnyType{}
}

func isStringy(t Type) bool {
	switch t.(type) {
	case StringType, FileType, DirectoryType:
		return true
	}
	return false
}

func numericResult(span Span, l, r Type, td *TypedDocument) Type {
	_, lAny := l.(AnyType)
	_, rAny := r.(AnyType)
	if lAny || rAny {
		return AnyType{}
	}
	_, lFloat := l.(FloatType)
	_, rFloat := r.(FloatType)
	_, lInt := l.(IntType)
	_, rInt := r.(IntType)
	if (lInt || lFloat) && (rInt || rFloat) {
		if lFloat || rFloat {
			return FloatType{}
		}
		return IntType{}
	}
	td.Errors = append(td.Errors, NewTypeError(span, "arithmetic requires numeric operands, got %s and %s", l, r))
	return AnyType{}
}

func inferIfThenElse(n *IfThenElse, sc *scope, td *TypedDocument) Type {
	condType := inferExpr(n.Cond, sc, td)
	if _, ok := condType.(BoolType); !ok {
		if _, ok2 := condType.(AnyType); !ok2 {
			td.Errors = append(td.Errors, NewTypeError(n.Cond.exprSpan(), "if condition must be Boolean, got %s", condType))
		}
	}
	thenType := inferExpr(n.Then, sc, td)
	elseType := inferExpr(n.Else, sc, td)
	if u, ok := Unify(thenType, elseType); ok {
		return u
	}
	td.Errors = append(td.Errors, NewTypeError(n.Span, "if/then/else branches do not unify: %s vs %s", thenType, elseType))
	return AnyType{}
}

func inferAt(n *At, sc *scope, td *TypedDocument) Type {
	collType := inferExpr(n.Collection, sc, td)
	idxType := inferExpr(n.Index, sc, td)
	switch ct := collType.(type) {
	case ArrayType:
		if _, ok := idxType.(IntType); !ok {
			if _, ok2 := idxType.(AnyType); !ok2 {
				td.Errors = append(td.Errors, NewTypeError(n.Index.exprSpan(), "array index must be Int, got %s", idxType))
			}
		}
		return ct.Elem
	case MapType:
		if !idxType.IsCoercibleTo(ct.Key) {
			td.Errors = append(td.Errors, NewTypeError(n.Index.exprSpan(), "map index type %s is not coercible to key type %s", idxType, ct.Key))
		}
		return ct.Value
	case AnyType:
		return AnyType{}
	default:
		td.Errors = append(td.Errors, NewTypeError(n.Span, "'[]' requires an Array or Map, got %s", collType))
		return AnyType{}
	}
}

func inferGetName(n *GetName, sc *scope, td *TypedDocument) Type {
	base := inferExpr(n.Expr, sc, td)
	switch bt := base.(type) {
	case StructType:
		if t, ok := bt.Fields[n.Name]; ok {
			return t
		}
		td.Errors = append(td.Errors, NewTypeError(n.Span, "%s has no member %q", bt.Name, n.Name))
		return AnyType{}
	case ObjectType:
		if t, ok := bt.Fields[n.Name]; ok {
			return t
		}
		td.Errors = append(td.Errors, NewTypeError(n.Span, "object has no member %q", n.Name))
		return AnyType{}
	case PairType:
		switch symbol.Intern(strings.ToLower(n.Name)) {
		case symbol.Left:
			return bt.Left
		case symbol.Right:
			return bt.Right
		}
		td.Errors = append(td.Errors, NewTypeError(n.Span, "Pair has no member %q", n.Name))
		return AnyType{}
	case CallOutputType:
		if t, ok := bt.Fields[n.Name]; ok {
			return t
		}
		td.Errors = append(td.Errors, NewTypeError(n.Span, "call %s has no output %q", bt.CallName, n.Name))
		return AnyType{}
	case AnyType:
		return AnyType{}
	default:
		td.Errors = append(td.Errors, NewTypeError(n.Span, "'.' requires a Struct, Object, Pair, or call result, got %s", base))
		return AnyType{}
	}
}

func inferApply(n *Apply, sc *scope, td *TypedDocument) Type {
	argTypes := make([]Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = inferExpr(a, sc, td)
	}
	proto, err := LookupStdlib(n.Name, argTypes)
	if err != nil {
		td.Errors = append(td.Errors, NewTypeError(n.Span, "%s", fmt.Sprint(err)))
		return AnyType{}
	}
	td.ApplyFuncs[n] = proto
	ret, ok := proto.resolveReturnType(argTypes)
	if !ok {
		return AnyType{}
	}
	return ret
}

// inferWorkflow type-checks a workflow's inputs, body statements (in
// order, so a later declaration may reference an earlier one, a call's
// inputs may reference any preceding binding, and scatter/conditional
// bodies see their enclosing scope), and outputs.
func inferWorkflow(w *WorkflowDecl, td *TypedDocument) *WorkflowSignature {
	sig := &WorkflowSignature{Name: w.Name, Inputs: map[string]Type{}, Required: map[string]bool{}, Outputs: map[string]Type{}}
	sc := newScope(nil)
	for _, d := range w.Inputs {
		typ := inferDeclaration(d, sc, td)
		sig.Inputs[d.Name] = typ
		sig.Required[d.Name] = d.Expr == nil && !isOptional(typ)
	}
	for _, elem := range w.Body {
		inferWorkflowElement(elem, sc, td)
	}
	outScope := newScope(sc)
	for _, d := range w.Outputs {
		typ := inferDeclaration(d, outScope, td)
		sig.Outputs[d.Name] = typ
	}
	return sig
}

func inferWorkflowElement(elem WorkflowElement, sc *scope, td *TypedDocument) {
	switch n := elem.(type) {
	case *Declaration:
		inferDeclaration(n, sc, td)
	case *CallStmt:
		inferCall(n, sc, td)
	case *ScatterStmt:
		inferScatter(n, sc, td)
	case *ConditionalStmt:
		inferConditional(n, sc, td)
	}
}

// inferCall type-checks a "call target as alias { input: ... }" statement:
// every named input must exist on the callee's signature and coerce to its
// declared type, and every required input without a default must be
// supplied, either explicitly or via an identically-named binding already
// in scope (the call-without-braces shorthand).
func inferCall(c *CallStmt, sc *scope, td *TypedDocument) {
	sig, outputs := lookupCallee(c.Target, td)
	if sig == nil {
		td.Errors = append(td.Errors, NewTypeError(c.Span, "call to undefined task/workflow %q", c.Target))
		name := c.Alias
		if name == "" {
			name = c.Target
		}
		sc.declare(name, CallOutputType{CallName: name, Fields: map[string]Type{}}, "call output")
		return
	}
	provided := map[string]bool{}
	for _, in := range c.Inputs {
		provided[in.Name] = true
		declaredType, ok := sig.Inputs[in.Name]
		if !ok {
			td.Errors = append(td.Errors, NewTypeError(c.Span, "call %q has no input %q", c.Target, in.Name))
			continue
		}
		var argType Type
		if in.Expr != nil {
			argType = inferExpr(in.Expr, sc, td)
		} else {
			entry, ok := sc.lookup(in.Name)
			if !ok {
				td.Errors = append(td.Errors, NewTypeError(c.Span, "call input shorthand %q has no matching binding in scope", in.Name))
				continue
			}
			argType = entry.typ
		}
		if !argType.IsCoercibleTo(declaredType) {
			td.Errors = append(td.Errors, NewTypeError(c.Span, "call %q input %q: cannot coerce %s to %s", c.Target, in.Name, argType, declaredType))
		}
	}
	for name, required := range sig.Required {
		if required && !provided[name] {
			if _, ok := sc.lookup(name); !ok {
				td.Errors = append(td.Errors, NewTypeError(c.Span, "call %q is missing required input %q", c.Target, name))
			}
		}
	}
	name := c.Alias
	if name == "" {
		name = c.Target
		if i := lastDot(name); i >= 0 {
			name = name[i+1:]
		}
	}
	sc.declare(name, CallOutputType{CallName: name, Fields: outputs}, "call output")
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// lookupCallee resolves a call target against known tasks/subworkflow(s);
// subworkflow calls are out of scope for this evaluator (section 1's
// Non-goals), so only task signatures are consulted.
func lookupCallee(target string, td *TypedDocument) (*TaskSignature, map[string]Type) {
	if sig, ok := td.Tasks[target]; ok {
		return sig, sig.Outputs
	}
	return nil, nil
}

func inferScatter(s *ScatterStmt, sc *scope, td *TypedDocument) {
	arrType := inferExpr(s.Expr, sc, td)
	at, ok := arrType.(ArrayType)
	if !ok {
		if _, ok2 := arrType.(AnyType); !ok2 {
			td.Errors = append(td.Errors, NewTypeError(s.Span, "scatter expression must be an Array, got %s", arrType))
		}
		at = ArrayType{Elem: AnyType{}}
	}
	inner := newScope(sc)
	inner.declare(s.Var, at.Elem, "scatter variable")
	iterSym := symbol.Intern(s.Var)
	for _, elem := range s.Body {
		inferWorkflowElement(elem, inner, td)
	}
	// Every name declared in the scatter body becomes an Array in the
	// enclosing scope once the scatter completes (section 4.4's "scatter
	// wraps every body binding in Array"). The iterator itself is not
	// exported.
	var names []string
	for _, id := range inner.order {
		if id == iterSym {
			continue
		}
		name := id.Str()
		entry := inner.names[id]
		sc.declare(name, ArrayType{Elem: entry.typ}, entry.provenance)
		names = append(names, name)
	}
	td.ScatterNames[s] = names
}

func inferConditional(c *ConditionalStmt, sc *scope, td *TypedDocument) {
	condType := inferExpr(c.Expr, sc, td)
	if _, ok := condType.(BoolType); !ok {
		if _, ok2 := condType.(AnyType); !ok2 {
			td.Errors = append(td.Errors, NewTypeError(c.Expr.exprSpan(), "if condition must be Boolean, got %s", condType))
		}
	}
	inner := newScope(sc)
	for _, elem := range c.Body {
		inferWorkflowElement(elem, inner, td)
	}
	// Every binding from the conditional body becomes Optional in the
	// enclosing scope, since the body may not have executed.
	var names []string
	for _, id := range inner.order {
		name := id.Str()
		entry := inner.names[id]
		sc.declare(name, NewOptional(entry.typ), entry.provenance)
		names = append(names, name)
	}
	td.ConditionalNames[c] = names
}
