package shared

import (
	"fmt"
	"os"
)

var debugEnabled = os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"

// EnableDebug turns on debug output for the rest of the process. Call it
// before any goroutines start.
func EnableDebug() {
	debugEnabled = true
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debugEnabled
}

// Debugf prints a debug line when debug output is on.
func Debugf(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Printf("DEBUG: "+format+"\n", args...)
	}
}
