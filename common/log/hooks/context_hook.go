package hooks

import (
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"
)

// contextHook adds the "file:line" of the logging call site to every entry.
type contextHook struct {
}

func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []log.Level {
	return log.AllLevels
}

func (hook contextHook) Fire(entry *log.Entry) error {
	if site := callSite(string(debug.Stack())); site != "" {
		entry.Data["file:line"] = site
	}
	return nil
}

// callSite scans a goroutine stack dump for the first frame below this hook that is
// not inside logrus. Frames are function/location line pairs; locations are shortened
// to the path below the repo root.
func callSite(stack string) string {
	lines := strings.Split(stack, "\n")
	foundLoggerBlock := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.Contains(line, "context_hook.go:") {
			foundLoggerBlock = true
			continue
		}
		if !foundLoggerBlock || !strings.HasPrefix(line, "\t") {
			continue
		}
		if strings.Contains(line, "sirupsen/logrus") {
			continue
		}
		ctx := strings.Split(line, "ditto/")
		loc := strings.TrimSpace(ctx[len(ctx)-1])
		if plus := strings.LastIndex(loc, " +0x"); plus >= 0 {
			loc = loc[:plus]
		}
		return loc
	}
	return ""
}
