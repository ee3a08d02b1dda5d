package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedentStripsCommonIndentAndBlankEnds(t *testing.T) {
	in := "\n    echo hello\n    echo world\n"
	got := Dedent(in)
	assert.Equal(t, "echo hello\necho world\n", got)
}

func TestDedentIsIdempotent(t *testing.T) {
	in := "\n  samtools view -b\n  | sort\n"
	once := Dedent(in)
	twice := Dedent(once)
	assert.Equal(t, once, twice)
}

func TestDedentCountsTabsAsTwoColumns(t *testing.T) {
	in := "\n\tfoo\n\tbar\n"
	got := Dedent(in)
	assert.Equal(t, "foo\nbar\n", got)
}

func TestDedentPreservesRelativeIndentation(t *testing.T) {
	in := "\n  if [ -f x ]; then\n    echo yes\n  fi\n"
	got := Dedent(in)
	assert.Equal(t, "if [ -f x ]; then\n  echo yes\nfi\n", got)
}
