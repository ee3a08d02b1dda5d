package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/wdltools/symbol"
)

func TestIntern(t *testing.T) {
	assert.Equal(t, symbol.Intern("abc"), symbol.Intern("abc"))
	assert.False(t, symbol.Intern("abc") == symbol.Intern("cde"))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"_", "_3", "$x", "xyz"} {
		id := symbol.Intern(name)
		name2 := id.Str()
		assert.Equal(t, name, name2)
	}
}

func TestInvalid(t *testing.T) {
	assert.False(t, symbol.Invalid.Valid())
	assert.True(t, symbol.Intern("x").Valid())
}

func TestPredefined(t *testing.T) {
	assert.Equal(t, "left", symbol.Left.Str())
	assert.Equal(t, "right", symbol.Right.Str())
	assert.Equal(t, "_", symbol.AnonRow.Str())
}
