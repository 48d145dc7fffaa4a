// Package diagnostics provides the structured-logging hook shared by
// package leftright and package evmap. It wraps logrus rather than wrapping
// the standard library's log package, matching the rest of this module's
// dependency on github.com/sirupsen/logrus for ambient logging.
package diagnostics

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Nop is a logger configured to discard everything, used as the default when
// no logger is supplied via WithLogger.
func Nop() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
