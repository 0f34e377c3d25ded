package gcode

import (
	kitlog "github.com/go-kit/log"
)

// Logger is the module logger capability (§9 "Global state" design note:
// pass it in as a configured capability rather than reaching for a
// process-wide global). go-kit/log.Logger already satisfies this.
type Logger interface {
	Log(keyvals ...interface{}) error
}

func defaultLogger() Logger {
	return kitlog.NewNopLogger()
}

func logDropped(logger Logger, reason string, line string) {
	if logger == nil {
		return
	}
	_ = logger.Log("msg", "dropped g-code line", "reason", reason, "line", line)
}
