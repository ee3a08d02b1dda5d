package wdl

// Logging helpers, similar to those in the standard "log" package, that
// tag each line with the source-code span of the node being processed when
// one is available.

import (
	"fmt"

	"github.com/grailbio/base/log"
)

// Debugf logs at debug level. Pass a nil span if the location is unknown.
func Debugf(span *Span, format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Output(2, log.Debug, spanPrefix(span)+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}

// Logf logs at info level.
func Logf(span *Span, format string, args ...interface{}) {
	if log.At(log.Info) {
		log.Output(2, log.Info, spanPrefix(span)+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}

// Errorf logs at error level.
func Errorf(span *Span, format string, args ...interface{}) {
	log.Output(2, log.Error, spanPrefix(span)+fmt.Sprintf(format, args...)) // nolint: errcheck
}

func spanPrefix(span *Span) string {
	if span == nil {
		return ""
	}
	return span.String() + ": "
}
