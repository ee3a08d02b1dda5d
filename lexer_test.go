package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lexAll(t *testing.T, src string) []Token {
	reg := NewRegistry()
	file := reg.Intern("test.wdl", src)
	toks, _, err := tokenizeAll(file, src, 0)
	assert.Nil(t, err)
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerBasicDeclaration(t *testing.T) {
	toks := lexAll(t, "Int x = 5")
	assert.Equal(t, []TokenKind{TokIdent, TokIdent, TokAssign, TokInt, TokEOF}, kinds(toks))
	assert.Equal(t, "Int", toks[0].Text)
	assert.Equal(t, "x", toks[1].Text)
	assert.Equal(t, "5", toks[3].Text)
}

func TestLexerFloatWithExponent(t *testing.T) {
	toks := lexAll(t, "1.5e10")
	assert.Equal(t, TokFloat, toks[0].Kind)
	assert.Equal(t, "1.5e10", toks[0].Text)
}

func TestLexerIntDoesNotConsumeTrailingDotWithoutDigit(t *testing.T) {
	toks := lexAll(t, "5.foo")
	assert.Equal(t, TokInt, toks[0].Kind)
	assert.Equal(t, TokDot, toks[1].Kind)
	assert.Equal(t, TokIdent, toks[2].Kind)
}

func TestLexerStringWithInterpolation(t *testing.T) {
	toks := lexAll(t, `"hello ~{name}"`)
	assert.Equal(t, TokString, toks[0].Kind)
	assert.Equal(t, `hello ~{name}`, toks[0].Text)
}

func TestLexerStringInterpolationBraceDepth(t *testing.T) {
	toks := lexAll(t, `"~{if x then "{" else "}"}"`)
	assert.Equal(t, TokString, toks[0].Kind)
}

func TestLexerKeywordsRecognized(t *testing.T) {
	toks := lexAll(t, "task workflow input output runtime")
	assert.Equal(t, []TokenKind{TokTask, TokWorkflow, TokInput, TokOutput, TokRuntime, TokEOF}, kinds(toks))
}

func TestLexerCommandCurlyBlock(t *testing.T) {
	toks := lexAll(t, "command { echo hi }")
	assert.Equal(t, TokCommandKW, toks[0].Kind)
	assert.Equal(t, TokCommandBlock, toks[1].Kind)
	assert.Equal(t, CommandDelimCurly, toks[1].CommandDelim)
	assert.Equal(t, " echo hi ", toks[1].Text)
}

func TestLexerCommandHeredocBlock(t *testing.T) {
	toks := lexAll(t, "command <<< echo hi >>>")
	assert.Equal(t, TokCommandKW, toks[0].Kind)
	assert.Equal(t, TokCommandBlock, toks[1].Kind)
	assert.Equal(t, CommandDelimHeredoc, toks[1].CommandDelim)
	assert.Equal(t, " echo hi ", toks[1].Text)
}

func TestLexerCommandBraceNestingCountsTowardDepth(t *testing.T) {
	toks := lexAll(t, "command { if true { x } }")
	assert.Equal(t, TokCommandBlock, toks[1].Kind)
	assert.Equal(t, " if true { x } ", toks[1].Text)
}

func TestLexerUnterminatedStringIsSyntaxError(t *testing.T) {
	reg := NewRegistry()
	file := reg.Intern("bad.wdl", `"unterminated`)
	_, _, err := tokenizeAll(file, `"unterminated`, 0)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}

func TestLexerTokenOffsetPointsAtFileStart(t *testing.T) {
	toks := lexAll(t, "  Int x")
	assert.Equal(t, 2, toks[0].Offset)
}

func TestLexerOperators(t *testing.T) {
	toks := lexAll(t, "== != <= >= && || . ? + - * / %")
	assert.Equal(t, []TokenKind{
		TokEq, TokNe, TokLe, TokGe, TokAnd, TokOr, TokDot, TokQuestion,
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent, TokEOF,
	}, kinds(toks))
}

func TestLexerCommentsRecorded(t *testing.T) {
	reg := NewRegistry()
	src := "# a comment\nInt x"
	file := reg.Intern("c.wdl", src)
	_, comments, err := tokenizeAll(file, src, 0)
	assert.Nil(t, err)
	assert.NotEmpty(t, comments)
}
