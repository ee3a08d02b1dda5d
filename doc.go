package wdl

import "context"

// LoadAndCheck parses the document at uri and type-checks it together with
// everything it imports, the single entry point most callers need instead
// of composing NewImportResolver/Resolve themselves.
func LoadAndCheck(ctx context.Context, reader SourceReader, registry *Registry, uri string) (*TypedDocument, *Error) {
	r := NewImportResolver(reader, registry)
	return r.Resolve(ctx, uri)
}

// CallExecutor runs a resolved call's inputs to completion and returns its
// outputs, exercising the process/container machinery section 1 places
// firmly outside this module: the evaluator here only ever materializes a
// call's fully-typed input Values and hands them to the injected executor,
// never spawning anything itself.
type CallExecutor interface {
	Execute(ctx context.Context, callName string, inputs map[string]Value) (map[string]Value, error)
}

// EvaluateTaskCommand binds a task's input and intermediate declarations
// against the supplied (already coerced) input values and materializes its
// dedented command string, per section 4.5. The returned Ctx carries every
// binding visible to the task body, which EvaluateTaskOutputs extends with
// whatever the external executor produces (e.g. stdout()/read_* targets)
// before evaluating the output section.
func EvaluateTaskCommand(ctx context.Context, rt *Runtime, td *TypedDocument, task *TaskDecl, inputs map[string]Value) (string, *Ctx, *Error) {
	env := (*Ctx)(nil)
	for _, d := range task.Inputs {
		v, err := bindDeclaration(ctx, rt, td, env, d, inputs)
		if err != nil {
			return "", nil, err
		}
		env = env.Bind(d.Name, v)
	}
	for _, d := range task.Decls {
		v, err := bindDeclaration(ctx, rt, td, env, d, nil)
		if err != nil {
			return "", nil, err
		}
		env = env.Bind(d.Name, v)
	}
	if task.Command == nil {
		return "", env, nil
	}
	cmd, err := ApplyCommand(ctx, rt, env, task.Command)
	return cmd, env, err
}

// EvaluateTaskOutputs evaluates a task's output declarations against env --
// the Ctx returned by EvaluateTaskCommand, extended by the caller with
// whatever post-execution bindings the output expressions reference (e.g.
// stdout() resolving to a real produced file once the executor has run).
func EvaluateTaskOutputs(ctx context.Context, rt *Runtime, td *TypedDocument, task *TaskDecl, env *Ctx) (map[string]Value, *Error) {
	outputs := map[string]Value{}
	for _, d := range task.Outputs {
		v, err := bindDeclaration(ctx, rt, td, env, d, nil)
		if err != nil {
			return nil, err
		}
		env = env.Bind(d.Name, v)
		outputs[d.Name] = v
	}
	return outputs, nil
}

// bindDeclaration evaluates a single Declaration's initializer (or takes its
// value from supplied inputs, for a task/workflow input declaration with no
// initializer in source) and coerces it to the declared type.
func bindDeclaration(ctx context.Context, rt *Runtime, td *TypedDocument, env *Ctx, d *Declaration, inputs map[string]Value) (Value, *Error) {
	if d.Expr == nil {
		if v, ok := inputs[d.Name]; ok {
			return v, nil
		}
		return Value{}, NewEvalError(d.Span, ReasonMissingBinding, "no value supplied for required input %q", d.Name)
	}
	v, err := Eval(ctx, rt, env, d.Expr)
	if err != nil {
		return Value{}, err
	}
	declared, terr := resolveTypeExpr(d.Type, td.Structs)
	if terr != nil {
		return Value{}, NewEvalError(d.Span, ReasonBadCoercion, "%s", terr)
	}
	return CoerceValue(v, declared, d.Span)
}

// EvaluateWorkflow walks a workflow's body in source order, evaluating
// declarations directly, dispatching calls through exec, and expanding
// scatter/conditional blocks per section 4.4's scoping rules, then evaluates
// the output section. td supplies the per-scatter/conditional declared-name
// lists inference recorded, so the shape (Array-of / Optional-of) of each
// body binding surfacing in the enclosing scope is known statically rather
// than re-derived at evaluation time.
func EvaluateWorkflow(ctx context.Context, rt *Runtime, td *TypedDocument, wf *WorkflowDecl, inputs map[string]Value, exec CallExecutor) (map[string]Value, *Error) {
	env := (*Ctx)(nil)
	for _, d := range wf.Inputs {
		v, err := bindDeclaration(ctx, rt, td, env, d, inputs)
		if err != nil {
			return nil, err
		}
		env = env.Bind(d.Name, v)
	}
	for _, elem := range wf.Body {
		var err *Error
		env, err = evalWorkflowElement(ctx, rt, td, env, elem, exec)
		if err != nil {
			return nil, err
		}
	}
	outputs := map[string]Value{}
	for _, d := range wf.Outputs {
		v, err := bindDeclaration(ctx, rt, td, env, d, nil)
		if err != nil {
			return nil, err
		}
		env = env.Bind(d.Name, v)
		outputs[d.Name] = v
	}
	return outputs, nil
}

func evalWorkflowElement(ctx context.Context, rt *Runtime, td *TypedDocument, env *Ctx, elem WorkflowElement, exec CallExecutor) (*Ctx, *Error) {
	switch n := elem.(type) {
	case *Declaration:
		v, err := bindDeclaration(ctx, rt, td, env, n, nil)
		if err != nil {
			return nil, err
		}
		return env.Bind(n.Name, v), nil
	case *CallStmt:
		return evalCall(ctx, rt, env, n, exec)
	case *ScatterStmt:
		return evalScatter(ctx, rt, td, env, n, exec)
	case *ConditionalStmt:
		return evalConditional(ctx, rt, td, env, n, exec)
	}
	return env, nil
}

func evalCall(ctx context.Context, rt *Runtime, env *Ctx, c *CallStmt, exec CallExecutor) (*Ctx, *Error) {
	args := map[string]Value{}
	for _, in := range c.Inputs {
		if in.Expr != nil {
			v, err := Eval(ctx, rt, env, in.Expr)
			if err != nil {
				return nil, err
			}
			args[in.Name] = v
			continue
		}
		v, ok := env.Lookup(in.Name)
		if !ok {
			return nil, NewEvalError(c.Span, ReasonMissingBinding, "call %q input shorthand %q has no matching binding in scope", c.Target, in.Name)
		}
		args[in.Name] = v
	}
	name := c.Alias
	if name == "" {
		name = c.Target
		if i := lastDot(name); i >= 0 {
			name = name[i+1:]
		}
	}
	outputs, err := exec.Execute(ctx, c.Target, args)
	if err != nil {
		return nil, NewEvalError(c.Span, ReasonStdlibFailure, "call %q failed: %s", c.Target, err)
	}
	var order []string
	for k := range outputs {
		order = append(order, k)
	}
	return env.Bind(name, StructValue(name, outputs, order)), nil
}

// evalScatter evaluates the scatter collection once, then runs the body for
// every element, collecting each name td.ScatterNames[s] records into a
// parallel array bound in the enclosing scope.
func evalScatter(ctx context.Context, rt *Runtime, td *TypedDocument, env *Ctx, s *ScatterStmt, exec CallExecutor) (*Ctx, *Error) {
	coll, err := Eval(ctx, rt, env, s.Expr)
	if err != nil {
		return nil, err
	}
	if coll.Kind != KindArray {
		return nil, NewEvalError(s.Span, ReasonBadCoercion, "scatter expression did not evaluate to an Array")
	}
	names := td.ScatterNames[s]
	collected := make(map[string][]Value, len(names))
	for _, n := range names {
		collected[n] = nil
	}
	for _, elem := range coll.Arr {
		iterEnv := env.Bind(s.Var, elem)
		for _, body := range s.Body {
			var berr *Error
			iterEnv, berr = evalWorkflowElement(ctx, rt, td, iterEnv, body, exec)
			if berr != nil {
				return nil, berr
			}
		}
		for _, n := range names {
			v, ok := iterEnv.Lookup(n)
			if !ok {
				v = NullValue(AnyType{})
			}
			collected[n] = append(collected[n], v)
		}
	}
	out := env
	for _, n := range names {
		elems := collected[n]
		elemType := Type(AnyType{})
		if len(elems) > 0 {
			elemType = elems[0].Type
		}
		out = out.Bind(n, ArrayValue(elemType, elems))
	}
	return out, nil
}

// evalConditional evaluates the guard; if true it runs the body and binds
// every td.ConditionalNames[c] name to the value the body produced,
// otherwise it binds each to a null value. The bound values keep their
// runtime types (a null is typed Any?); they are not retagged with the
// statically inferred Optional type.
func evalConditional(ctx context.Context, rt *Runtime, td *TypedDocument, env *Ctx, c *ConditionalStmt, exec CallExecutor) (*Ctx, *Error) {
	cond, err := Eval(ctx, rt, env, c.Expr)
	if err != nil {
		return nil, err
	}
	names := td.ConditionalNames[c]
	if !cond.Bool {
		out := env
		for _, n := range names {
			out = out.Bind(n, NullValue(AnyType{}))
		}
		return out, nil
	}
	bodyEnv := env
	for _, body := range c.Body {
		var berr *Error
		bodyEnv, berr = evalWorkflowElement(ctx, rt, td, bodyEnv, body, exec)
		if berr != nil {
			return nil, berr
		}
	}
	out := env
	for _, n := range names {
		v, ok := bodyEnv.Lookup(n)
		if !ok {
			v = NullValue(AnyType{})
		}
		out = out.Bind(n, v)
	}
	return out, nil
}
