// Package monitoring provides the diagnostic logging surface for the
// inference pipeline. The pipeline never writes to a sink directly; it emits
// leveled messages through a replaceable callback so the host application
// decides format and transport.
package monitoring

import (
	"fmt"
	"log"
	"sort"
)

// Level classifies an emitted log message.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Emit is the leveled emission callback invoked synchronously at the point of
// logging. Context carries optional structured fields and may be nil.
type Emit func(level Level, msg string, context map[string]interface{})

// emit is the active leveled callback. The default renders the level, message
// and sorted context fields through Logf.
var emit Emit = defaultEmit

// SetEmitter replaces the leveled emission callback. Passing nil restores the
// default, which renders through Logf.
func SetEmitter(f Emit) {
	if f == nil {
		emit = defaultEmit
		return
	}
	emit = f
}

func defaultEmit(level Level, msg string, context map[string]interface{}) {
	if len(context) == 0 {
		Logf("[%s] %s", level, msg)
		return
	}
	// Sort keys so output is stable for log scraping and tests.
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := ""
	for _, k := range keys {
		fields += fmt.Sprintf(" %s=%v", k, context[k])
	}
	Logf("[%s] %s%s", level, msg, fields)
}

// Debug emits a debug-level message.
func Debug(msg string, context map[string]interface{}) {
	emit(LevelDebug, msg, context)
}

// Info emits an info-level message.
func Info(msg string, context map[string]interface{}) {
	emit(LevelInfo, msg, context)
}

// Warn emits a warn-level message.
func Warn(msg string, context map[string]interface{}) {
	emit(LevelWarn, msg, context)
}

// Error emits an error-level message.
func Error(msg string, context map[string]interface{}) {
	emit(LevelError, msg, context)
}
