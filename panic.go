package wdl

import (
	"runtime/debug"

	"github.com/grailbio/base/errors"
)

// Recover runs cb, turning any panic it raises into an error. InternalErrors
// (invariant violations -- an AST node that should never appear after
// lowering) are surfaced this way rather than crashing the host process.
func Recover(cb func()) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.E("panic: %v: %v", e, string(debug.Stack()))
		}
	}()
	cb()
	return nil
}
