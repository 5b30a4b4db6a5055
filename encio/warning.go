package encio

import (
	"fmt"
	"io"
	"os"
)

// Warnings is where warnings are sent to.
// In many cases datapack will continue to operate with e.g. incorrectly implemented io.Writers or types no factory claims,
// however I don't want to silently put up with things that seem worrying.
var Warnings io.Writer = os.Stderr

// Warnf writes a formatted warning line to Warnings.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(Warnings, "datapack: "+format+"\n", args...)
}
