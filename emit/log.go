package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogEmitter implements Emitter by writing structured log output to a writer.
//
// Supports two output modes:
//   - Text mode (default): human-readable format with key=value pairs
//   - JSON mode: machine-readable JSON, one event per line
//
// Example text output:
//
//	[provider_request] provider=openai model=gpt-4o meta={"preview":"hello"}
//
// Example JSON output:
//
//	{"time":"...","msg":"provider_request","provider":"openai","model":"gpt-4o"}
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to the given writer.
// A nil writer defaults to stdout.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// Emit writes the event to the configured writer. Write failures are
// swallowed; logging must never take down message handling.
func (l *LogEmitter) Emit(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		l.emitJSON(event)
	} else {
		l.emitText(event)
	}
}

func (l *LogEmitter) emitJSON(event Event) {
	payload := struct {
		Time     time.Time              `json:"time"`
		Msg      string                 `json:"msg"`
		Provider string                 `json:"provider,omitempty"`
		Model    string                 `json:"model,omitempty"`
		Channel  string                 `json:"channel,omitempty"`
		Err      string                 `json:"err,omitempty"`
		Meta     map[string]interface{} `json:"meta,omitempty"`
	}(event)

	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(l.writer, `{"msg":"emit_marshal_error","err":%q}`+"\n", err.Error())
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]", event.Msg)

	if event.Provider != "" {
		fmt.Fprintf(&sb, " provider=%s", event.Provider)
	}
	if event.Model != "" {
		fmt.Fprintf(&sb, " model=%s", event.Model)
	}
	if event.Channel != "" {
		fmt.Fprintf(&sb, " channel=%s", event.Channel)
	}
	if event.Err != "" {
		fmt.Fprintf(&sb, " err=%q", event.Err)
	}
	if len(event.Meta) > 0 {
		keys := make([]string, 0, len(event.Meta))
		for k := range event.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, event.Meta[k])
		}
	}

	fmt.Fprintln(l.writer, sb.String())
}
