// Package symbol manages symbols. Symbols are deduped strings represented as
// small integers, so identifiers and struct/member names can be compared and
// hashed cheaply throughout the parser, type checker, and evaluator.
package symbol

import (
	"sync"

	"github.com/grailbio/base/log"
)

// ID represents an interned symbol.
type ID int32

const (
	// Invalid is a sentinel returned for the empty symbol.
	Invalid = ID(0)
)

type table struct {
	mu   sync.RWMutex
	ids  []string
	byID map[string]ID
}

var symbols = newTable()

func newTable() *table {
	t := &table{byID: make(map[string]ID, 1024)}
	t.ids = append(t.ids, "(invalid)")
	t.byID["(invalid)"] = Invalid
	return t
}

// Intern finds or creates an ID for the given string.
func Intern(v string) ID {
	if v == "" {
		log.Panicf("symbol: empty symbol")
	}
	symbols.mu.RLock()
	if id, ok := symbols.byID[v]; ok {
		symbols.mu.RUnlock()
		return id
	}
	symbols.mu.RUnlock()

	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	if id, ok := symbols.byID[v]; ok {
		return id
	}
	id := ID(len(symbols.ids))
	symbols.ids = append(symbols.ids, v)
	symbols.byID[v] = id
	return id
}

// Str returns the human-readable name of the symbol.
//
// Note: we don't call it String() to avoid accidental use in fmt verbs that
// would otherwise silently stringify an ID meant to be compared as an
// integer.
func (id ID) Str() string {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	if int(id) >= len(symbols.ids) {
		log.Panicf("symboltable: id %d not found", id)
	}
	return symbols.ids[id]
}

// Valid reports whether the ID refers to an interned symbol.
func (id ID) Valid() bool { return id != Invalid }
