package wdl

// TypedDocument is the product of type inference: the original Document
// plus side tables recording each expression's inferred type and each
// Apply's resolved stdlib overload, rather than a second parallel tree.
// Mutating the Document in place (wrapping coercion sites with Coerce
// nodes) was considered and rejected: keeping the original nodes pristine
// lets error messages reference the exact source span the user wrote,
// matching gql's own separation between an ASTNode and the AIType computed
// for it during analysis.
type TypedDocument struct {
	Doc *Document

	// ExprTypes maps every expression node encountered during inference to
	// its resolved type, keyed by pointer identity.
	ExprTypes map[Expr]Type
	// ApplyFuncs maps each Apply node to the stdlib overload inference chose
	// for it, so evaluation doesn't need to repeat overload resolution.
	ApplyFuncs map[*Apply]*FuncPrototype
	// Coercions maps a declaration/call-input/output expression to the
	// target type it must be coerced to when evaluated, if different from
	// its own inferred type.
	Coercions map[Expr]Type

	// ScatterNames records, for each ScatterStmt, the names its body
	// declares (in order), so the evaluator knows which bindings to
	// collect into arrays once the scatter completes.
	ScatterNames map[*ScatterStmt][]string
	// ConditionalNames records, for each ConditionalStmt, the names its
	// body declares (in order), so the evaluator knows which bindings to
	// bind as None when the condition is false.
	ConditionalNames map[*ConditionalStmt][]string

	// Structs is the resolved struct type table, keyed by name.
	Structs map[string]StructType
	// Tasks maps task name to its resolved input/output signature.
	Tasks map[string]*TaskSignature
	// Workflow is the resolved workflow signature, nil if the document
	// declares none.
	Workflow *WorkflowSignature

	Errors ErrorList
}

// TaskSignature is a task's externally visible type interface.
type TaskSignature struct {
	Name    string
	Inputs  map[string]Type
	Required map[string]bool
	Outputs map[string]Type
}

// WorkflowSignature is a workflow's externally visible type interface.
type WorkflowSignature struct {
	Name     string
	Inputs   map[string]Type
	Required map[string]bool
	Outputs  map[string]Type
}

func newTypedDocument(doc *Document) *TypedDocument {
	return &TypedDocument{
		Doc:              doc,
		ExprTypes:        map[Expr]Type{},
		ApplyFuncs:       map[*Apply]*FuncPrototype{},
		Coercions:        map[Expr]Type{},
		ScatterNames:     map[*ScatterStmt][]string{},
		ConditionalNames: map[*ConditionalStmt][]string{},
		Structs:          map[string]StructType{},
		Tasks:            map[string]*TaskSignature{},
	}
}

// TypeOf returns the inferred type of expr, or AnyType{} if expr was never
// visited (e.g. it belongs to a branch that inference aborted before
// reaching, which can only happen for a fatal, non-TypeError failure).
func (td *TypedDocument) TypeOf(e Expr) Type {
	if t, ok := td.ExprTypes[e]; ok {
		return t
	}
	return AnyType{}
}
