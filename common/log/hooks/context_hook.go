package hooks

import (
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"
)

// contextHook adds the caller's "file:line" (relative to the squirm tree) to every entry.
type contextHook struct {
}

func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []log.Level {
	return log.AllLevels
}

func (hook contextHook) Fire(entry *log.Entry) error {
	if loc := callerLocation(string(debug.Stack())); loc != "" {
		entry.Data["file:line"] = loc
	}
	return nil
}

// callerLocation walks a goroutine stack dump and returns the first file:line
// after the hook's own frame that is not inside logrus.
func callerLocation(stack string) string {
	lines := strings.Split(stack, "\n")
	foundLoggerBlock := false
	incr := 1
	for i := 0; i < len(lines); i = i + incr {
		if strings.Contains(lines[i], "context_hook.go:") {
			foundLoggerBlock = true
			incr = 2
			continue
		}
		if !foundLoggerBlock || strings.Contains(lines[i], "sirupsen/logrus") {
			continue
		}
		ctx := strings.Split(lines[i], "squirm/")
		if fields := strings.Fields(ctx[len(ctx)-1]); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}
