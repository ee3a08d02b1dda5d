package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseCommandSrc(t *testing.T, src string) *CommandSection {
	reg := NewRegistry()
	file := reg.Intern("c.wdl", src)
	toks, comments, terr := tokenizeAll(file, src, 0)
	assert.Nil(t, terr)
	p := &parser{file: file, dialect: dialectFor(V1_0), toks: toks, comments: comments}
	cs, err := p.parseCommandSection()
	assert.Nil(t, err)
	return cs
}

func TestParseCommandSectionLiteralAndPlaceholder(t *testing.T) {
	cs := parseCommandSrc(t, "command { echo ~{name} }")
	assert.Len(t, cs.Fragments, 3)
	assert.Equal(t, " echo ", cs.Fragments[0].Literal)
	assert.NotNil(t, cs.Fragments[1].Placeholder)
	ident, ok := cs.Fragments[1].Placeholder.Expr.(*Ident)
	assert.True(t, ok)
	assert.Equal(t, "name", ident.Name)
	assert.Equal(t, " ", cs.Fragments[2].Literal)
}

func TestParseCommandSectionSepDirective(t *testing.T) {
	cs := parseCommandSrc(t, `command { echo ~{sep="," xs} }`)
	ph := cs.Fragments[1].Placeholder
	assert.Equal(t, PlaceholderSep, ph.Option.Kind)
	assert.Equal(t, ",", ph.Option.Sep)
	_, ok := ph.Expr.(*Ident)
	assert.True(t, ok)
}

func TestParseCommandSectionTrueFalseDirective(t *testing.T) {
	cs := parseCommandSrc(t, `command { echo ~{true="--yes" false="--no" flag} }`)
	ph := cs.Fragments[1].Placeholder
	assert.Equal(t, PlaceholderTrueFalse, ph.Option.Kind)
	assert.Equal(t, "--yes", ph.Option.True)
	assert.Equal(t, "--no", ph.Option.False)
}

func TestParseCommandSectionDefaultDirective(t *testing.T) {
	cs := parseCommandSrc(t, `command { echo ~{default="x" opt} }`)
	ph := cs.Fragments[1].Placeholder
	assert.Equal(t, PlaceholderDefault, ph.Option.Kind)
	assert.Equal(t, "x", ph.Option.Default)
}

func TestParseCommandSectionHeredocDelimiter(t *testing.T) {
	cs := parseCommandSrc(t, "command <<<\n  echo ~{name}\n>>>")
	assert.NotNil(t, cs)
	assert.NotNil(t, cs.Fragments[1].Placeholder)
}

func TestParseCommandSectionDollarBraceInterpolation(t *testing.T) {
	cs := parseCommandSrc(t, "command { echo ${name} }")
	assert.NotNil(t, cs.Fragments[1].Placeholder)
}

func TestUnescapeLiteralHandlesCommonEscapes(t *testing.T) {
	assert.Equal(t, "a\nb", unescapeLiteral(`a\nb`))
	assert.Equal(t, "a\tb", unescapeLiteral(`a\tb`))
	assert.Equal(t, `a"b`, unescapeLiteral(`a\"b`))
}

func TestSplitFragmentsUnterminatedPlaceholderErrors(t *testing.T) {
	reg := NewRegistry()
	file := reg.Intern("bad.wdl", "x")
	_, err := splitFragmentsAt(file, dialectFor(V1_0), "echo ~{unterminated", 0)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}
