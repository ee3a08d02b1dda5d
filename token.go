package wdl

// TokenKind enumerates the lexical token categories produced by the lexer.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokInt
	TokFloat
	// TokString carries the raw, unescaped text between a pair of quotes
	// (the quote characters themselves are not included). Escape
	// processing and ~{}/${} fragment extraction happen later, in
	// splitFragments.
	TokString
	// TokCommandBlock carries the raw text of a command section, between
	// its delimiters (exclusive). Delim records which delimiter was used.
	TokCommandBlock

	// Keywords with dedicated token kinds (structural keywords only; type
	// names and true/false/null are recognized contextually from TokIdent).
	TokVersion
	TokImport
	TokAs
	TokStruct
	TokTask
	TokWorkflow
	TokInput
	TokOutput
	TokCommandKW
	TokRuntime
	TokMeta
	TokParameterMeta
	TokScatter
	TokIn
	TokIf
	TokThen
	TokElse
	TokCall
	TokAlias
	TokHints
	TokObject

	// Punctuation and operators.
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokComma
	TokColon
	TokSemi
	TokDot
	TokQuestion
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokEq
	TokNe
	TokLe
	TokGe
	TokLt
	TokGt
	TokAnd
	TokOr
	TokNot
	TokAssign
)

// CommandDelim distinguishes the two legal command-section delimiter pairs.
type CommandDelim int

const (
	CommandDelimCurly   CommandDelim = iota // { ... }
	CommandDelimHeredoc                     // <<< ... >>>
)

// Token is one lexical unit, with the span it occupies in source.
type Token struct {
	Kind         TokenKind
	Text         string
	Span         Span
	CommandDelim CommandDelim // meaningful only when Kind == TokCommandBlock
	// Offset is the absolute byte offset, within the owning SourceFile's
	// Text, of this token's first character (the opening quote for
	// TokString, the opening delimiter for TokCommandBlock). Used to
	// re-lex ~{}/${} placeholder substrings at their true file position.
	Offset int
}

var keywords = map[string]TokenKind{
	"version":        TokVersion,
	"import":         TokImport,
	"as":             TokAs,
	"struct":         TokStruct,
	"task":           TokTask,
	"workflow":       TokWorkflow,
	"input":          TokInput,
	"output":         TokOutput,
	"command":        TokCommandKW,
	"runtime":        TokRuntime,
	"meta":           TokMeta,
	"parameter_meta": TokParameterMeta,
	"scatter":        TokScatter,
	"in":             TokIn,
	"if":             TokIf,
	"then":           TokThen,
	"else":           TokElse,
	"call":           TokCall,
	"alias":          TokAlias,
	"hints":          TokHints,
	"object":         TokObject,
}
