package psd

import "log"

// Verbose enables section-boundary tracing during Parse/Write. Off by
// default; a caller debugging an unfamiliar file can flip it on.
var Verbose = false

func logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	log.Printf(format, args...)
}
