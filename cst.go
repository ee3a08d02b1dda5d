package wdl

// This file defines the node types shared by the concrete syntax tree and
// the version-neutral abstract syntax tree. Rather than building two full,
// separate type hierarchies (one per stage) and a bulk converter between
// them, a single node set serves both roles: parsing produces these nodes
// directly in already-normalized (version-neutral) form, with the small
// amount of per-version shape variation handled inline by the dialect-aware
// parser (see version.go's dialect and parser.go's version-gated
// productions). See DESIGN.md for the rationale.

// TypeExpr is a type annotation as written in source: a primitive name, a
// parameterized compound type, or a struct/Object reference.
type TypeExpr struct {
	Span     Span
	Name     string // "Int", "String", "Array", "Map", "Pair", "Object", or a struct name
	Optional bool   // trailing "?"
	Params   []*TypeExpr
}

// Expr is the common interface implemented by every expression node.
type Expr interface {
	exprSpan() Span
}

type (
	// IntLit is an integer literal.
	IntLit struct {
		Span  Span
		Value int64
	}
	// FloatLit is a floating point literal.
	FloatLit struct {
		Span  Span
		Value float64
	}
	// BoolLit is a true/false literal.
	BoolLit struct {
		Span  Span
		Value bool
	}
	// NullLit is the null literal.
	NullLit struct {
		Span Span
	}
	// StringLit is a (possibly interpolated) string literal, already split
	// into literal/placeholder fragments by splitFragments.
	StringLit struct {
		Span      Span
		Fragments []StringFragment
	}
	// Ident is a bare identifier reference.
	Ident struct {
		Span Span
		Name string
	}
	// ArrayLit is an array literal "[e, e, ...]".
	ArrayLit struct {
		Span     Span
		Elements []Expr
	}
	// MapLit is a map literal "{k: v, ...}".
	MapLit struct {
		Span    Span
		Keys    []Expr
		Values  []Expr
	}
	// PairLit is a pair literal "(a, b)".
	PairLit struct {
		Span  Span
		Left  Expr
		Right Expr
	}
	// ObjectLit is an object or struct literal "{k: v, ...}" / "Name{k: v, ...}".
	ObjectLit struct {
		Span       Span
		StructName string // "" for a plain Object literal
		Keys       []string
		Values     []Expr
	}
	// Unary is a prefix "!" or "-" expression.
	Unary struct {
		Span Span
		Op   TokenKind
		Expr Expr
	}
	// Binary is an infix arithmetic/comparison/logical expression.
	Binary struct {
		Span        Span
		Op          TokenKind
		Left, Right Expr
	}
	// IfThenElse is a ternary "if cond then a else b" expression.
	IfThenElse struct {
		Span              Span
		Cond, Then, Else Expr
	}
	// At is an array/map index expression "e[i]".
	At struct {
		Span       Span
		Collection Expr
		Index      Expr
	}
	// GetName is member access "e.field".
	GetName struct {
		Span Span
		Expr Expr
		Name string
	}
	// Apply is a function call "name(args...)".
	Apply struct {
		Span Span
		Name string
		Args []Expr
	}
	// Placeholder is a ~{...}/${...} interpolation site inside a string or
	// command section, carrying its optional true=/false=/sep=/default=
	// directive.
	Placeholder struct {
		Span     Span
		Expr     Expr
		Option   PlaceholderOption
		OptKind  PlaceholderOptKind
	}
	// Coerce wraps an expression whose statically inferred type differs from
	// its context's expected type, recording the coercion the evaluator must
	// perform. No pass of this module builds Coerce nodes: inference
	// records coercions in TypedDocument.Coercions instead.
	Coerce struct {
		Span   Span
		Expr   Expr
		Target Type
	}
)

func (n *IntLit) exprSpan() Span      { return n.Span }
func (n *FloatLit) exprSpan() Span    { return n.Span }
func (n *BoolLit) exprSpan() Span     { return n.Span }
func (n *NullLit) exprSpan() Span     { return n.Span }
func (n *StringLit) exprSpan() Span   { return n.Span }
func (n *Ident) exprSpan() Span       { return n.Span }
func (n *ArrayLit) exprSpan() Span    { return n.Span }
func (n *MapLit) exprSpan() Span      { return n.Span }
func (n *PairLit) exprSpan() Span     { return n.Span }
func (n *ObjectLit) exprSpan() Span   { return n.Span }
func (n *Unary) exprSpan() Span       { return n.Span }
func (n *Binary) exprSpan() Span      { return n.Span }
func (n *IfThenElse) exprSpan() Span  { return n.Span }
func (n *At) exprSpan() Span          { return n.Span }
func (n *GetName) exprSpan() Span     { return n.Span }
func (n *Apply) exprSpan() Span       { return n.Span }
func (n *Placeholder) exprSpan() Span { return n.Span }
func (n *Coerce) exprSpan() Span      { return n.Span }

// PlaceholderOptKind distinguishes which directive, if any, decorates a
// placeholder.
type PlaceholderOptKind int

const (
	PlaceholderNone PlaceholderOptKind = iota
	PlaceholderSep                     // sep="..."
	PlaceholderTrueFalse               // true="..." false="..."
	PlaceholderDefault                 // default="..."
)

// PlaceholderOption carries the literal operand(s) of a placeholder
// directive. Which fields are meaningful depends on Kind.
type PlaceholderOption struct {
	Kind        PlaceholderOptKind
	Sep         string
	True, False string
	Default     string
}

// StringFragment is either a literal run of text or a placeholder
// expression within a string or command section.
type StringFragment struct {
	Literal     string // meaningful iff Placeholder == nil
	Placeholder *Placeholder
}

// Declaration binds a name to a typed value: "Type name = expr" (expr is nil
// for an undeclared input awaiting a runtime binding).
type Declaration struct {
	Span  Span
	Type  *TypeExpr
	Name  string
	Expr  Expr // nil if unbound
}

// CallStmt is a workflow "call task/workflow as alias { input: ... }"
// statement.
type CallStmt struct {
	Span   Span
	Target string // dotted name of the task/subworkflow being called
	Alias  string // "" if no "as" clause
	Inputs []CallInput
}

// CallInput is one "name = expr" pair inside a call's input block, or a bare
// "name" shorthand (Expr == nil, meaning "use the enclosing scope's binding
// of the same name").
type CallInput struct {
	Name string
	Expr Expr
}

// WorkflowElement is implemented by every statement that can appear in a
// workflow body: Declaration, CallStmt, ScatterStmt, ConditionalStmt.
type WorkflowElement interface {
	elementSpan() Span
}

func (n *Declaration) elementSpan() Span { return n.Span }
func (n *CallStmt) elementSpan() Span    { return n.Span }

// ScatterStmt is "scatter (x in expr) { body }".
type ScatterStmt struct {
	Span   Span
	Var    string
	Expr   Expr
	Body   []WorkflowElement
}

func (n *ScatterStmt) elementSpan() Span { return n.Span }

// ConditionalStmt is "if (expr) { body }".
type ConditionalStmt struct {
	Span Span
	Expr Expr
	Body []WorkflowElement
}

func (n *ConditionalStmt) elementSpan() Span { return n.Span }

// CommandSection holds a task's command, already split into fragments by
// splitFragmentsAt the same way a StringLit is.
type CommandSection struct {
	Span      Span
	Fragments []StringFragment
}

// RuntimeSection is a task's "runtime { key: expr, ... }" block.
type RuntimeSection struct {
	Span    Span
	Entries map[string]Expr
	Order   []string // preserves source order for deterministic iteration
}

// MetaSection is a task or workflow's "meta { ... }" or
// "parameter_meta { ... }" block. Values are opaque JSON-like literals, never
// type checked or evaluated.
type MetaSection struct {
	Span    Span
	Entries map[string]Expr
	Order   []string
}

// HintsSection is a Development-only task "hints { ... }" block.
type HintsSection struct {
	Span    Span
	Entries map[string]Expr
	Order   []string
}

// TaskDecl is a single "task name { ... }" definition.
type TaskDecl struct {
	Span          Span
	Name          string
	Inputs        []*Declaration
	Decls         []*Declaration // non-input declarations in the task body
	Command       *CommandSection
	Outputs       []*Declaration
	Runtime       *RuntimeSection
	Meta          *MetaSection
	ParameterMeta *MetaSection
	Hints         *HintsSection
}

// WorkflowDecl is a single "workflow name { ... }" definition.
type WorkflowDecl struct {
	Span          Span
	Name          string
	Inputs        []*Declaration
	Body          []WorkflowElement
	Outputs       []*Declaration
	Meta          *MetaSection
	ParameterMeta *MetaSection
}

// StructMember is one "Type name" line inside a struct definition.
type StructMember struct {
	Span Span
	Type *TypeExpr
	Name string
}

// StructDecl is a "struct Name { ... }" definition.
type StructDecl struct {
	Span    Span
	Name    string
	Members []StructMember
}

// ImportDecl is a single "import \"uri\" as alias { ... }" statement.
type ImportDecl struct {
	Span    Span
	URI     string
	Alias   string // "" if no "as" clause: default alias is the basename
	Structs []ImportStructAlias
}

// ImportStructAlias is one "alias A as B" entry inside an import's struct
// renaming block.
type ImportStructAlias struct {
	Name  string
	Alias string
}

// Document is the root node of a parsed WDL file.
type Document struct {
	Span     Span
	Version  Version
	Imports  []*ImportDecl
	Structs  []*StructDecl
	Tasks    []*TaskDecl
	Workflow *WorkflowDecl // nil if the document has none
	Comments CommentMap
}
