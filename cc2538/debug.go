package cc2538

import (
	"encoding/hex"
	"strings"
)

// Logger is the interface used for debug messages.
//
// Some messages will be multiple lines.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(format string, args ...interface{}) {}

func getLogger(l Logger) Logger {
	if l == nil {
		return nullLogger{}
	}
	return l
}

// hexDump is a byte slice that formats as a hex dump when printed.
type hexDump []byte

func (h hexDump) String() string {
	return strings.TrimSuffix(hex.Dump(h), "\n")
}
