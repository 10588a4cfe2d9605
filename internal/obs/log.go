package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	stdoutOnce sync.Once
	stdout     *log.Logger
)

// Logger returns the process-wide logger. One JSON object per line on
// stdout, no prefix, so the log collector ingests it as-is.
func Logger() *log.Logger {
	stdoutOnce.Do(func() {
		stdout = log.New(os.Stdout, "", 0)
	})
	return stdout
}

// LogRequest writes entry as a single JSON line. Entries that cannot be
// marshalled are replaced by a fixed error line instead of being dropped.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log_entry_marshal_failed"}`)
		return
	}
	Logger().Println(string(data))
}
